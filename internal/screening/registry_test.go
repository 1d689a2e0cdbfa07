package screening

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()

	if reg.Version() != "builtin" {
		t.Errorf("Expected version builtin, got %q", reg.Version())
	}
	if len(reg.ExclusionCategories()) == 0 {
		t.Error("Expected built-in exclusion categories")
	}
	if len(reg.Countries()) == 0 {
		t.Error("Expected built-in country list")
	}
}

func TestRegistryAccessorsReturnCopies(t *testing.T) {
	reg := DefaultRegistry()

	countries := reg.Countries()
	original := countries[0]
	countries[0] = "mutated"

	if reg.Countries()[0] != original {
		t.Error("Mutating the returned slice must not affect the registry")
	}
}

func TestLoadRegistryFileReplacesExclusions(t *testing.T) {
	path := writeRuleFile(t, `{
		"version": "test-1",
		"exclusions": [
			{"tag": "test-exclusion", "label": "测试排除", "keywords": ["特殊测试词"]}
		]
	}`)

	reg, err := LoadRegistryFile(path)
	if err != nil {
		t.Fatalf("LoadRegistryFile failed: %v", err)
	}
	if reg.Version() != "test-1" {
		t.Errorf("Expected version test-1, got %q", reg.Version())
	}

	classifier := NewClassifier(reg)

	result := classifier.Classify(NewDocument("本公告含特殊测试词，涉及境外投资", ""))
	if result.ExclusionReason != "test-exclusion" {
		t.Errorf("Expected custom exclusion tag, got %q", result.ExclusionReason)
	}

	// The replaced set no longer knows drug registration, so the marker and
	// action scans decide instead.
	result = classifier.Classify(NewDocument("子公司产品在美国获得FDA上市批准", ""))
	if result.ExclusionReason == "drug-registration" {
		t.Error("Expected built-in drug-registration category to be replaced")
	}
}

func TestLoadRegistryFileKeepsDefaultsForOmittedSections(t *testing.T) {
	path := writeRuleFile(t, `{"version": "test-2", "countries": ["火星国"]}`)

	reg, err := LoadRegistryFile(path)
	if err != nil {
		t.Fatalf("LoadRegistryFile failed: %v", err)
	}

	countries := reg.Countries()
	if len(countries) != 1 || countries[0] != "火星国" {
		t.Errorf("Expected replaced country list, got %v", countries)
	}
	if len(reg.ExclusionCategories()) != len(defaultExclusions()) {
		t.Errorf("Expected default exclusions to survive, got %d categories",
			len(reg.ExclusionCategories()))
	}
}

func TestLoadRegistryFileMergesFieldRules(t *testing.T) {
	path := writeRuleFile(t, `{
		"field_rules": [
			{
				"category": "基本信息",
				"field": "交易金额/投资额",
				"patterns": ["(\\d{1,10}沙币)"]
			}
		]
	}`)

	reg, err := LoadRegistryFile(path)
	if err != nil {
		t.Fatalf("LoadRegistryFile failed: %v", err)
	}

	extractor := NewExtractor(reg)

	ex := extractor.Extract(NewDocument("投资额为500沙币，交易金额为1.25亿美元", ""), "")
	if got := ex.Get(CategoryBasicInfo, FieldDealAmount); got != "500沙币" {
		t.Errorf("Expected replaced amount chain to match 500沙币, got %q", got)
	}

	// Untouched field rules keep working.
	ex = extractor.Extract(NewDocument("公司与Vinapharm集团签署协议", ""), "")
	if got := ex.Get(CategoryBasicInfo, FieldCounterparty); got != "Vinapharm集团" {
		t.Errorf("Expected default counterparty chain to survive, got %q", got)
	}
}

func TestLoadRegistryFileMissing(t *testing.T) {
	if _, err := LoadRegistryFile(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("Expected error for missing rules file")
	}
}

func TestLoadRegistryFileBadJSON(t *testing.T) {
	path := writeRuleFile(t, `{"exclusions": [`)

	if _, err := LoadRegistryFile(path); err == nil {
		t.Error("Expected error for malformed JSON")
	}
}

func TestLoadRegistryFileBadPattern(t *testing.T) {
	path := writeRuleFile(t, `{
		"field_rules": [
			{"category": "基本信息", "field": "交易对手方", "patterns": ["([未闭合"]}
		]
	}`)

	_, err := LoadRegistryFile(path)
	if err == nil {
		t.Fatal("Expected error for invalid pattern")
	}
	if !strings.Contains(err.Error(), "交易对手方") {
		t.Errorf("Expected error to name the broken field rule, got: %v", err)
	}
}

func TestLoadRegistryFileBadTemplatePattern(t *testing.T) {
	path := writeRuleFile(t, `{
		"field_rules": [
			{"category": "基本信息", "field": "标的公司/项目名称", "patterns": ["收购{country}([坏"]}
		]
	}`)

	if _, err := LoadRegistryFile(path); err == nil {
		t.Error("Expected templated pattern to be validated at load time")
	}
}

func TestLoadRegistryFileValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty exclusion keywords", `{"exclusions": [{"tag": "x", "label": "排除", "keywords": []}]}`},
		{"missing exclusion label", `{"exclusions": [{"tag": "x", "keywords": ["词"]}]}`},
		{"duplicate exclusion tags", `{"exclusions": [
			{"tag": "x", "label": "甲", "keywords": ["词一"]},
			{"tag": "x", "label": "乙", "keywords": ["词二"]}
		]}`},
		{"unnamed transaction type", `{"transaction_types": [{"name": "", "keywords": ["收购"]}]}`},
		{"field rule without field", `{"field_rules": [{"category": "基本信息", "patterns": ["x"]}]}`},
		{"bad investment pattern", `{"investment_patterns": ["([没闭合"]}`},
	}

	for _, tt := range tests {
		path := writeRuleFile(t, tt.body)
		if _, err := LoadRegistryFile(path); err == nil {
			t.Errorf("%s: expected load to fail", tt.name)
		}
	}
}

func writeRuleFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("Failed to write rules file: %v", err)
	}
	return path
}
