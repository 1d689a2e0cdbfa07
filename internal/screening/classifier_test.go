package screening

import (
	"testing"
)

func TestClassifyEquityAcquisition(t *testing.T) {
	classifier := NewClassifier(nil)
	doc := NewDocument("拟收购越南IMP公司100%股权，交易金额为1.25亿美元", "")

	result := classifier.Classify(doc)

	if !result.IsODI {
		t.Fatalf("Expected is_odi=true, got false (reason=%q exclusion=%q)",
			result.Reason, result.ExclusionReason)
	}
	if result.TargetCountry != "越南" {
		t.Errorf("Expected target country 越南, got %q", result.TargetCountry)
	}
	if result.Reason != "" || result.ExclusionReason != "" {
		t.Errorf("Expected no reason on positive result, got reason=%q exclusion=%q",
			result.Reason, result.ExclusionReason)
	}
}

func TestClassifyMarkerWithoutInvestmentAction(t *testing.T) {
	classifier := NewClassifier(nil)
	doc := NewDocument("公司境外子公司(香港)工资发放事项公告", "")

	result := classifier.Classify(doc)

	if result.IsODI {
		t.Fatal("Expected is_odi=false for a payroll notice")
	}
	if result.ExclusionReason != ExclusionNotInvestment {
		t.Errorf("Expected exclusion reason %q, got %q",
			ExclusionNotInvestment, result.ExclusionReason)
	}
	if result.Reason != "" {
		t.Errorf("Expected empty reason, got %q", result.Reason)
	}
	if result.TargetCountry != "香港" {
		t.Errorf("Expected target country 香港 on excluded result, got %q", result.TargetCountry)
	}
}

func TestClassifyDrugRegistrationExclusion(t *testing.T) {
	classifier := NewClassifier(nil)
	doc := NewDocument("子公司产品在美国获得FDA上市批准", "")

	result := classifier.Classify(doc)

	if result.IsODI {
		t.Fatal("Expected is_odi=false for a drug approval notice")
	}
	if result.ExclusionReason != "drug-registration" {
		t.Errorf("Expected exclusion reason drug-registration, got %q", result.ExclusionReason)
	}
	if result.ExclusionLabel != "仅境外药品注册/上市批准" {
		t.Errorf("Expected Chinese exclusion label, got %q", result.ExclusionLabel)
	}
}

func TestClassifyEmptyDocument(t *testing.T) {
	classifier := NewClassifier(nil)

	for _, text := range []string{"", "   ", "\n\t "} {
		result := classifier.Classify(NewDocument(text, ""))
		if result.IsODI {
			t.Errorf("Expected is_odi=false for %q", text)
		}
		if result.Reason != ReasonNoOverseasMarker {
			t.Errorf("Expected reason %q for %q, got %q",
				ReasonNoOverseasMarker, text, result.Reason)
		}
		if result.ExclusionReason != "" {
			t.Errorf("Expected empty exclusion reason for %q, got %q",
				text, result.ExclusionReason)
		}
	}
}

func TestClassifySubsidiaryEstablishment(t *testing.T) {
	classifier := NewClassifier(nil)
	doc := NewDocument("拟在新加坡设立全资子公司，注册资本500万美元", "")

	result := classifier.Classify(doc)

	if !result.IsODI {
		t.Fatalf("Expected is_odi=true, got false (reason=%q exclusion=%q)",
			result.Reason, result.ExclusionReason)
	}
	if result.TargetCountry != "新加坡" {
		t.Errorf("Expected target country 新加坡, got %q", result.TargetCountry)
	}
}

func TestClassifyDomesticText(t *testing.T) {
	classifier := NewClassifier(nil)
	doc := NewDocument("公司拟收购上海某科技公司60%股权，交易金额为2亿元人民币", "")

	result := classifier.Classify(doc)

	if result.IsODI {
		t.Fatal("Expected is_odi=false for a domestic acquisition")
	}
	if result.Reason != ReasonNoOverseasMarker {
		t.Errorf("Expected reason %q, got %q", ReasonNoOverseasMarker, result.Reason)
	}
}

func TestClassifyDomesticMentionDoesNotExclude(t *testing.T) {
	// 中国境内公司 must not trip the domestic-transaction category; the
	// decision has to come from the marker and action scans.
	classifier := NewClassifier(nil)
	doc := NewDocument("中国境内公司拟收购德国机械制造公司全部股权", "")

	result := classifier.Classify(doc)

	if !result.IsODI {
		t.Fatalf("Expected is_odi=true, got false (reason=%q exclusion=%q)",
			result.Reason, result.ExclusionReason)
	}
	if result.TargetCountry != "德国" {
		t.Errorf("Expected target country 德国, got %q", result.TargetCountry)
	}
}

func TestClassifyExclusionPrecedence(t *testing.T) {
	// An exclusion keyword wins even when the text is full of investment
	// signals. The scan order is fixed.
	classifier := NewClassifier(nil)
	doc := NewDocument("公司拟收购美国制药公司股权，该公司药品注册申请已获批准，投资金额1亿美元", "")

	result := classifier.Classify(doc)

	if result.IsODI {
		t.Fatal("Expected exclusion to take precedence over investment signals")
	}
	if result.ExclusionReason != "drug-registration" {
		t.Errorf("Expected exclusion reason drug-registration, got %q", result.ExclusionReason)
	}
}

func TestClassifyExclusionCategoryOrder(t *testing.T) {
	tests := []struct {
		name string
		text string
		tag  string
	}{
		{"financial disclosure", "公司发布境外子公司主要运营数据公告", "financial-disclosure"},
		{"export trade", "公司与海外客户签订出口贸易合同", "export-trade"},
		{"voluntary disclosure", "关于海外业务进展的自愿性信息披露公告", "voluntary-disclosure"},
		{"non investment", "本次担保事项不涉及境外投资", "non-investment-business"},
		{"domestic transaction", "本次收购为境内交易，不涉及跨境审批", "domestic-transaction"},
	}

	classifier := NewClassifier(nil)
	for _, tt := range tests {
		result := classifier.Classify(NewDocument(tt.text, ""))
		if result.IsODI {
			t.Errorf("%s: expected is_odi=false", tt.name)
			continue
		}
		if result.ExclusionReason != tt.tag {
			t.Errorf("%s: expected exclusion reason %q, got %q",
				tt.name, tt.tag, result.ExclusionReason)
		}
	}
}

func TestClassifyFirstCountryWins(t *testing.T) {
	classifier := NewClassifier(nil)
	doc := NewDocument("公司拟投资德国子公司，并评估美国市场机会", "")

	result := classifier.Classify(doc)

	if !result.IsODI {
		t.Fatalf("Expected is_odi=true, got false (reason=%q)", result.Reason)
	}
	if result.TargetCountry != "德国" {
		t.Errorf("Expected first-mentioned country 德国, got %q", result.TargetCountry)
	}
}

func TestClassifyCountryTieBreak(t *testing.T) {
	// 印度尼西亚 starts with the same runes as 印度; the longer name must win
	// at the same text position.
	classifier := NewClassifier(nil)
	doc := NewDocument("拟在印度尼西亚设立生产基地，投资总额3亿美元", "")

	result := classifier.Classify(doc)

	if !result.IsODI {
		t.Fatalf("Expected is_odi=true, got false (reason=%q)", result.Reason)
	}
	if result.TargetCountry != "印度尼西亚" {
		t.Errorf("Expected target country 印度尼西亚, got %q", result.TargetCountry)
	}
}

func TestClassifyFileNameSuppliesAction(t *testing.T) {
	classifier := NewClassifier(nil)
	doc := NewDocument(
		"本次交易涉及境外标的，具体安排详见后续公告",
		"600111北方稀土2024-03-01关于收购海外矿业资产的公告.pdf",
	)

	result := classifier.Classify(doc)

	if !result.IsODI {
		t.Fatalf("Expected filename keywords to supply the action signal, got reason=%q exclusion=%q",
			result.Reason, result.ExclusionReason)
	}
}

func TestClassifyResultInvariant(t *testing.T) {
	texts := []string{
		"",
		"拟收购越南IMP公司100%股权，交易金额为1.25亿美元",
		"公司境外子公司(香港)工资发放事项公告",
		"子公司产品在美国获得FDA上市批准",
		"拟在新加坡设立全资子公司，注册资本500万美元",
		"公司召开年度股东大会的通知",
		"境外全资子公司完成清算注销",
		"公司发布主要财务数据公告",
	}

	classifier := NewClassifier(nil)
	for _, text := range texts {
		result := classifier.Classify(NewDocument(text, ""))
		if result.IsODI {
			if result.Reason != "" || result.ExclusionReason != "" {
				t.Errorf("Positive result for %q carries reason=%q exclusion=%q",
					text, result.Reason, result.ExclusionReason)
			}
			continue
		}
		hasReason := result.Reason != ""
		hasExclusion := result.ExclusionReason != ""
		if hasReason == hasExclusion {
			t.Errorf("Negative result for %q must set exactly one of reason/exclusion, got reason=%q exclusion=%q",
				text, result.Reason, result.ExclusionReason)
		}
	}
}

func TestClassifyDeterminism(t *testing.T) {
	classifier := NewClassifier(nil)
	doc := NewDocument("公司拟通过境外子公司收购法国食品集团65%股权，交易对价2.4亿欧元", "")

	first := classifier.Classify(doc)
	for i := 0; i < 10; i++ {
		again := classifier.Classify(doc)
		if again.IsODI != first.IsODI ||
			again.Reason != first.Reason ||
			again.ExclusionReason != first.ExclusionReason ||
			again.TargetCountry != first.TargetCountry {
			t.Fatalf("Run %d diverged: %+v vs %+v", i, again, first)
		}
	}
}

func TestClassifyTraceStages(t *testing.T) {
	classifier := NewClassifier(nil)
	result := classifier.Classify(NewDocument("拟收购越南IMP公司100%股权", ""))

	if len(result.Trace) == 0 {
		t.Fatal("Expected a non-empty trace")
	}
	stages := make(map[string]bool, len(result.Trace))
	for _, step := range result.Trace {
		stages[step.Stage] = true
	}
	for _, stage := range []string{StageExclusion, StageMarker, StageAction} {
		if !stages[stage] {
			t.Errorf("Expected trace to cover stage %q, trace=%+v", stage, result.Trace)
		}
	}
}

func BenchmarkClassify(b *testing.B) {
	classifier := NewClassifier(nil)
	doc := NewDocument(
		"本公司第五届董事会第十二次会议审议通过了对外投资议案，拟通过全资子公司"+
			"收购德国精密机械制造公司80%股权，交易金额为2.5亿欧元，资金来源为自有资金。"+
			"本次交易尚需取得发改委备案、商务部备案及外汇登记。",
		"600519某某股份2024-05-20关于境外收购的公告.pdf",
	)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		classifier.Classify(doc)
	}
}
