package screening

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// countryToken marks the spot in a field-rule pattern where the detected
// country name is substituted before compiling.
const countryToken = "{country}"

// ExclusionCategory is one exclusion rule. Tag is the stable machine
// identifier reported in ExclusionReason, Label the Chinese report text.
type ExclusionCategory struct {
	Tag      string   `json:"tag"`
	Label    string   `json:"label"`
	Keywords []string `json:"keywords"`
}

// TransactionType maps a type name to its trigger keywords.
type TransactionType struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

// ApprovalMatter maps a domestic filing matter to its trigger keywords.
type ApprovalMatter struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

// ValueRule maps a pattern hit anywhere in the text to a fixed value.
type ValueRule struct {
	Pattern string `json:"pattern"`
	Value   string `json:"value"`
}

// FieldRule is the extraction rule for one category/field pair.
//
// Patterns form an ordered chain; the first match wins and the chain stops.
// A pattern may contain the {country} token, in which case it only runs when
// a country was detected. Keywords drive the sentence fallback, Defaults the
// fixed-value ladder, and Fallback is the value when nothing else applied.
type FieldRule struct {
	Category string      `json:"category"`
	Field    string      `json:"field"`
	Patterns []string    `json:"patterns,omitempty"`
	Keywords []string    `json:"keywords,omitempty"`
	Exclude  []string    `json:"exclude,omitempty"`
	Defaults []ValueRule `json:"defaults,omitempty"`
	Fallback string      `json:"fallback,omitempty"`
	Clip     int         `json:"clip,omitempty"`
	MinLen   int         `json:"min_len,omitempty"`
}

// RuleFile is the on-disk JSON shape accepted by LoadRegistryFile. Every
// populated section replaces the built-in default wholesale, except
// FieldRules which merge per category/field pair.
type RuleFile struct {
	Version            string              `json:"version,omitempty"`
	Description        string              `json:"description,omitempty"`
	Exclusions         []ExclusionCategory `json:"exclusions,omitempty"`
	OverseasMarkers    []string            `json:"overseas_markers,omitempty"`
	Countries          []string            `json:"countries,omitempty"`
	InvestmentKeywords []string            `json:"investment_keywords,omitempty"`
	InvestmentPatterns []string            `json:"investment_patterns,omitempty"`
	TransactionTypes   []TransactionType   `json:"transaction_types,omitempty"`
	ApprovalMatters    []ApprovalMatter    `json:"approval_matters,omitempty"`
	FieldRules         []FieldRule         `json:"field_rules,omitempty"`
}

// fieldPattern is one compiled chain entry. re is nil when the expression
// carries the {country} token and must be compiled per detected country.
type fieldPattern struct {
	expr string
	re   *regexp.Regexp
}

type compiledValueRule struct {
	re    *regexp.Regexp
	value string
}

type compiledFieldRule struct {
	rule     FieldRule
	patterns []fieldPattern
	defaults []compiledValueRule
}

// Registry holds the full compiled rule set. It is immutable after
// construction, so a single instance is safe for concurrent use.
type Registry struct {
	version          string
	exclusions       []ExclusionCategory
	overseasMarkers  []string
	countries        []string
	investKeywords   []string
	investPatterns   []*regexp.Regexp
	transactionTypes []TransactionType
	approvalMatters  []ApprovalMatter
	fieldRules       map[string]*compiledFieldRule
}

// DefaultRegistry builds the registry from the built-in rule tables. The
// defaults are known good, so a compile failure here is a programming error.
func DefaultRegistry() *Registry {
	reg, err := buildRegistry(defaultRuleFile())
	if err != nil {
		panic(fmt.Sprintf("built-in screening rules are invalid: %v", err))
	}
	return reg
}

// LoadRegistryFile reads a RuleFile from path and builds a registry from the
// defaults overlaid with the file's populated sections. Any invalid pattern
// or empty mandatory section fails the load; nothing is ever deferred to
// classification time.
func LoadRegistryFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var file RuleFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse rules file: %w", err)
	}

	merged := defaultRuleFile()
	merged.overlay(&file)

	reg, err := buildRegistry(merged)
	if err != nil {
		return nil, fmt.Errorf("invalid rules file %s: %w", path, err)
	}
	return reg, nil
}

// Version reports the rule-set version, "builtin" for the defaults.
func (r *Registry) Version() string {
	return r.version
}

// ExclusionCategories returns the exclusion categories in evaluation order.
func (r *Registry) ExclusionCategories() []ExclusionCategory {
	out := make([]ExclusionCategory, len(r.exclusions))
	copy(out, r.exclusions)
	return out
}

// Countries returns the recognized country and region names.
func (r *Registry) Countries() []string {
	out := make([]string, len(r.countries))
	copy(out, r.countries)
	return out
}

func defaultRuleFile() *RuleFile {
	return &RuleFile{
		Version:            "builtin",
		Exclusions:         defaultExclusions(),
		OverseasMarkers:    defaultOverseasMarkers(),
		Countries:          defaultCountries(),
		InvestmentKeywords: defaultInvestmentKeywords(),
		InvestmentPatterns: defaultInvestmentPatterns(),
		TransactionTypes:   defaultTransactionTypes(),
		ApprovalMatters:    defaultApprovalMatters(),
		FieldRules:         defaultFieldRules(),
	}
}

// overlay replaces each populated section of the receiver with the file's
// version. Field rules merge per category/field so a file can retune one
// chain without restating the rest.
func (f *RuleFile) overlay(over *RuleFile) {
	if over.Version != "" {
		f.Version = over.Version
	}
	if len(over.Exclusions) > 0 {
		f.Exclusions = over.Exclusions
	}
	if len(over.OverseasMarkers) > 0 {
		f.OverseasMarkers = over.OverseasMarkers
	}
	if len(over.Countries) > 0 {
		f.Countries = over.Countries
	}
	if len(over.InvestmentKeywords) > 0 {
		f.InvestmentKeywords = over.InvestmentKeywords
	}
	if len(over.InvestmentPatterns) > 0 {
		f.InvestmentPatterns = over.InvestmentPatterns
	}
	if len(over.TransactionTypes) > 0 {
		f.TransactionTypes = over.TransactionTypes
	}
	if len(over.ApprovalMatters) > 0 {
		f.ApprovalMatters = over.ApprovalMatters
	}
	for _, rule := range over.FieldRules {
		replaced := false
		for i := range f.FieldRules {
			if f.FieldRules[i].Category == rule.Category && f.FieldRules[i].Field == rule.Field {
				f.FieldRules[i] = rule
				replaced = true
				break
			}
		}
		if !replaced {
			f.FieldRules = append(f.FieldRules, rule)
		}
	}
}

func buildRegistry(file *RuleFile) (*Registry, error) {
	if err := validateRuleFile(file); err != nil {
		return nil, err
	}

	reg := &Registry{
		version:          file.Version,
		exclusions:       file.Exclusions,
		overseasMarkers:  file.OverseasMarkers,
		countries:        file.Countries,
		investKeywords:   file.InvestmentKeywords,
		transactionTypes: file.TransactionTypes,
		approvalMatters:  file.ApprovalMatters,
		fieldRules:       make(map[string]*compiledFieldRule, len(file.FieldRules)),
	}

	for i, expr := range file.InvestmentPatterns {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("investment pattern %d (%s): %w", i, expr, err)
		}
		reg.investPatterns = append(reg.investPatterns, re)
	}

	for _, rule := range file.FieldRules {
		compiled, err := compileFieldRule(rule)
		if err != nil {
			return nil, err
		}
		reg.fieldRules[fieldKey(rule.Category, rule.Field)] = compiled
	}

	return reg, nil
}

func compileFieldRule(rule FieldRule) (*compiledFieldRule, error) {
	compiled := &compiledFieldRule{rule: rule}

	for i, expr := range rule.Patterns {
		if strings.Contains(expr, countryToken) {
			// Validate with a placeholder name so a broken template fails
			// at load time, not mid-extraction.
			probe := strings.ReplaceAll(expr, countryToken, "测试国")
			if _, err := regexp.Compile(probe); err != nil {
				return nil, fmt.Errorf("field rule %s/%s pattern %d (%s): %w",
					rule.Category, rule.Field, i, expr, err)
			}
			compiled.patterns = append(compiled.patterns, fieldPattern{expr: expr})
			continue
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("field rule %s/%s pattern %d (%s): %w",
				rule.Category, rule.Field, i, expr, err)
		}
		compiled.patterns = append(compiled.patterns, fieldPattern{expr: expr, re: re})
	}

	for i, def := range rule.Defaults {
		re, err := regexp.Compile(def.Pattern)
		if err != nil {
			return nil, fmt.Errorf("field rule %s/%s default %d (%s): %w",
				rule.Category, rule.Field, i, def.Pattern, err)
		}
		compiled.defaults = append(compiled.defaults, compiledValueRule{re: re, value: def.Value})
	}

	return compiled, nil
}

func validateRuleFile(file *RuleFile) error {
	if len(file.Exclusions) == 0 {
		return fmt.Errorf("exclusions must not be empty")
	}
	seen := make(map[string]bool, len(file.Exclusions))
	for i, cat := range file.Exclusions {
		if cat.Tag == "" {
			return fmt.Errorf("exclusion %d: tag must not be empty", i)
		}
		if seen[cat.Tag] {
			return fmt.Errorf("exclusion %d: duplicate tag %q", i, cat.Tag)
		}
		seen[cat.Tag] = true
		if cat.Label == "" {
			return fmt.Errorf("exclusion %q: label must not be empty", cat.Tag)
		}
		if len(cat.Keywords) == 0 {
			return fmt.Errorf("exclusion %q: keywords must not be empty", cat.Tag)
		}
	}
	if len(file.OverseasMarkers) == 0 {
		return fmt.Errorf("overseas markers must not be empty")
	}
	if len(file.Countries) == 0 {
		return fmt.Errorf("countries must not be empty")
	}
	if len(file.InvestmentKeywords) == 0 {
		return fmt.Errorf("investment keywords must not be empty")
	}
	for i, tt := range file.TransactionTypes {
		if tt.Name == "" || len(tt.Keywords) == 0 {
			return fmt.Errorf("transaction type %d: name and keywords are required", i)
		}
	}
	for i, am := range file.ApprovalMatters {
		if am.Name == "" || len(am.Keywords) == 0 {
			return fmt.Errorf("approval matter %d: name and keywords are required", i)
		}
	}
	for i, rule := range file.FieldRules {
		if rule.Category == "" || rule.Field == "" {
			return fmt.Errorf("field rule %d: category and field are required", i)
		}
	}
	return nil
}

func fieldKey(category, field string) string {
	return category + "/" + field
}

// fieldRule looks up the compiled rule for a category/field pair.
func (r *Registry) fieldRule(category, field string) *compiledFieldRule {
	return r.fieldRules[fieldKey(category, field)]
}

// compile renders a chain entry against the detected country. It returns nil
// for templated entries when no country is known.
func (p fieldPattern) compile(country string) *regexp.Regexp {
	if p.re != nil {
		return p.re
	}
	if country == "" {
		return nil
	}
	expr := strings.ReplaceAll(p.expr, countryToken, regexp.QuoteMeta(country))
	re, err := regexp.Compile(expr)
	if err != nil {
		// Template was validated at load time, so only a pathological
		// country string could get here. Skip the entry.
		return nil
	}
	return re
}
