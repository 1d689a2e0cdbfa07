package screening

// Extraction categories. They double as sheet vocabulary in the exported
// workbook, so the values are the Chinese report headings.
const (
	CategoryBasicInfo = "基本信息"
	CategoryStructure = "交易结构"
	CategoryApprovals = "合规审批"
)

// Basic-information fields.
const (
	FieldStockCode     = "股票代码"
	FieldCompanyName   = "公司名称"
	FieldAnnounceDate  = "公告日期"
	FieldFileName      = "文件名称"
	FieldTargetCountry = "标的公司注册地"
	FieldTargetCompany = "标的公司/项目名称"
	FieldDealType      = "交易类型"
	FieldDealAmount    = "交易金额/投资额"
	FieldEquityRatio   = "股权比例"
	FieldCounterparty  = "交易对手方"
	FieldProgress      = "当前进展阶段"
	FieldBusinessScope = "业务范围"
)

// Transaction-structure fields.
const (
	FieldInvestor     = "投资主体"
	FieldSPV          = "SPV结构"
	FieldFunding      = "资金来源"
	FieldPayment      = "支付方式"
	FieldVAM          = "对赌/业绩承诺"
	FieldArchitecture = "交易架构"
)

// Compliance-approval fields.
const (
	FieldDomesticApprovals = "境内审批事项"
	FieldForeignApprovals  = "境外审批事项"
	FieldApprovalProgress  = "审批进度"
	FieldApprovalTerms     = "审批条件"
	FieldClosingTerms      = "交割条件"
	FieldLicenses          = "特殊许可"
)

// Fixed classification outcome strings.
const (
	// ReasonNoOverseasMarker is set when neither a generic overseas marker
	// nor any listed country/region name occurs in the text.
	ReasonNoOverseasMarker = "no overseas marker found"

	// ExclusionNotInvestment is set when an overseas marker is present but
	// no investment-action signal is.
	ExclusionNotInvestment = "overseas marker found but not an investment transaction"

	// LabelNotInvestment is the report-facing label paired with
	// ExclusionNotInvestment.
	LabelNotInvestment = "发现境外标识但非投资类交易"
)

// Document is the immutable input value for classification and extraction.
// It is constructed once per file by the parsing side and never mutated by
// the core.
type Document struct {
	Text     string   `json:"text_content"`
	FileName string   `json:"file_name,omitempty"`
	Pages    int      `json:"num_pages,omitempty"`
	Meta     FileMeta `json:"meta,omitempty"`
}

// FileMeta holds the structured metadata parsed from a disclosure filename.
// Absent parts are empty strings.
type FileMeta struct {
	StockCode    string `json:"stock_code,omitempty"`
	CompanyName  string `json:"company_name,omitempty"`
	AnnounceDate string `json:"announce_date,omitempty"`
}

// Issuer renders the announcing entity as "code name" for report rows.
func (m FileMeta) Issuer() string {
	switch {
	case m.StockCode == "":
		return m.CompanyName
	case m.CompanyName == "":
		return m.StockCode
	default:
		return m.StockCode + " " + m.CompanyName
	}
}

// Result is the outcome of classifying one document.
//
// Exactly one of Reason / ExclusionReason is populated when IsODI is false;
// neither is populated when IsODI is true. ExclusionReason carries the stable
// category tag (e.g. "drug-registration") or ExclusionNotInvestment.
type Result struct {
	IsODI           bool   `json:"is_odi"`
	Reason          string `json:"reason,omitempty"`
	ExclusionReason string `json:"exclusion_reason,omitempty"`

	// ExclusionLabel is the Chinese display label matching ExclusionReason,
	// used verbatim in the excluded-files report sheet.
	ExclusionLabel string `json:"exclusion_label,omitempty"`

	// TargetCountry is the first country/region name occurring in the text.
	// It is filled whenever a country was found, including on documents that
	// fail the investment-action step, so excluded rows stay reviewable.
	TargetCountry string `json:"target_country,omitempty"`

	Trace []TraceStep `json:"trace,omitempty"`
}

// TraceStep records one decision the classifier took, for offline audit.
type TraceStep struct {
	Stage    string `json:"stage"`
	Rule     string `json:"rule,omitempty"`
	Evidence string `json:"evidence,omitempty"`
	Matched  bool   `json:"matched"`
}

// Trace stages.
const (
	StageExclusion = "exclusion"
	StageMarker    = "overseas_marker"
	StageAction    = "investment_action"
	StageCountry   = "target_country"
)

// Extraction maps category name to field name to extracted value. Every
// declared field is present; unmatched fields hold an empty string.
type Extraction map[string]map[string]string

// fieldsByCategory declares the full field set. Extraction results always
// carry every one of these keys.
var fieldsByCategory = map[string][]string{
	CategoryBasicInfo: {
		FieldStockCode, FieldCompanyName, FieldAnnounceDate, FieldFileName,
		FieldTargetCountry, FieldTargetCompany, FieldDealType, FieldDealAmount,
		FieldEquityRatio, FieldCounterparty, FieldProgress, FieldBusinessScope,
	},
	CategoryStructure: {
		FieldInvestor, FieldSPV, FieldFunding, FieldPayment, FieldVAM,
		FieldArchitecture,
	},
	CategoryApprovals: {
		FieldDomesticApprovals, FieldForeignApprovals, FieldApprovalProgress,
		FieldApprovalTerms, FieldClosingTerms, FieldLicenses,
	},
}

// NewExtraction returns an extraction with every declared field present and
// empty.
func NewExtraction() Extraction {
	ex := make(Extraction, len(fieldsByCategory))
	for category, fields := range fieldsByCategory {
		m := make(map[string]string, len(fields))
		for _, f := range fields {
			m[f] = ""
		}
		ex[category] = m
	}
	return ex
}

// Get returns the value for a category/field pair, empty when absent.
func (ex Extraction) Get(category, field string) string {
	if m, ok := ex[category]; ok {
		return m[field]
	}
	return ""
}

// Set stores a value, creating the category map if needed.
func (ex Extraction) Set(category, field, value string) {
	m, ok := ex[category]
	if !ok {
		m = make(map[string]string)
		ex[category] = m
	}
	m[field] = value
}

// Categories returns the declared category names in report order.
func Categories() []string {
	return []string{CategoryBasicInfo, CategoryStructure, CategoryApprovals}
}

// Fields returns the declared field names for a category in report order.
func Fields(category string) []string {
	fields := fieldsByCategory[category]
	out := make([]string, len(fields))
	copy(out, fields)
	return out
}
