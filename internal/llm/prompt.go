package llm

import "fmt"

// maxPromptTextRunes caps how much announcement text goes into a prompt so a
// long filing does not blow the model's context window.
const maxPromptTextRunes = 8000

const defaultSystemPrompt = `你是一名专业的境外投资（ODI）公告分析助手，精通中国上市公司信息披露文件。
你的任务是从公告文本中准确提取交易的结构化信息，严格按照要求的JSON格式输出，不输出任何额外说明。`

// PromptBuilder assembles the extraction prompts sent to the model.
type PromptBuilder struct {
	systemPrompt string
}

// NewPromptBuilder creates a builder. An empty systemPrompt selects the
// built-in default.
func NewPromptBuilder(systemPrompt string) *PromptBuilder {
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}
	return &PromptBuilder{systemPrompt: systemPrompt}
}

// SystemPrompt returns the system message for extraction calls.
func (b *PromptBuilder) SystemPrompt() string {
	return b.systemPrompt
}

// ExtractionPrompt builds the user message asking the model to extract the
// three-category transaction record from an announcement.
func (b *PromptBuilder) ExtractionPrompt(text, fileName, targetCountry string) string {
	if targetCountry == "" {
		targetCountry = "未明确"
	}

	preview := text
	if runes := []rune(text); len(runes) > maxPromptTextRunes {
		preview = string(runes[:maxPromptTextRunes]) + "\n...[中间内容省略]..."
	}

	return fmt.Sprintf(`请从以下境外投资交易公告文本中提取结构化信息。

文件名: %s
目标国家/地区: %s

=== 公告文本 ===
%s
=== 文本结束 ===

请提取以下信息，并以JSON格式返回：

{
    "基本信息": {
        "标的公司/项目名称": "完整的公司名称或项目名称（包括外文原名）",
        "标的公司注册地": "目标公司注册的国家/地区",
        "交易类型": "收购股权、设立子公司、境外放款、增资等",
        "交易金额/投资额": "交易金额或投资额，保留单位（如：7,319万元、1.25亿美元）",
        "股权比例": "涉及的股权比例（如：100%%、51%%）",
        "交易对手方": "交易对手方名称",
        "当前进展阶段": "交易当前进展状态（如：已通过审议、已签署协议、已完成交割、拟进行）",
        "业务范围": "目标公司的主要业务范围"
    },
    "交易结构": {
        "投资主体": "实施投资的公司或子公司名称",
        "SPV结构": "特殊目的公司结构描述",
        "资金来源": "资金来源（如：自有资金、募集资金、银行贷款）",
        "支付方式": "支付方式（如：现金、股权置换）",
        "对赌/业绩承诺": "对赌协议或业绩承诺内容",
        "交易架构": "完整的交易架构描述"
    },
    "合规审批": {
        "境内审批事项": "需要办理的境内审批（如：发改委、商务部、外汇局）",
        "境外审批事项": "需要办理的境外审批（如：反垄断审查、外商投资审查）",
        "审批进度": "当前审批进度",
        "审批条件": "交易的先决条件和审批条件（如：需获得备案批准、满足交割前提等。如无特殊审批条件，请根据实际情况标注"新设公司，不涉及"或"未明确"或"人工确认"）",
        "交割条件": "交易完成的条件",
        "特殊许可": "需要的特殊牌照或许可（如：经营牌照、行业资质、许可证、特许经营权等。如无特殊许可要求，请根据实际情况标注"新设公司，不涉及"或"无需特殊许可"或"未明确"或"人工确认"）"
    }
}

提取要求：
1. 如果文本中没有明确提及某个字段，返回空字符串 ""
2. "当前进展阶段"字段要准确提取状态描述，不要提取百分比（如100%%、99.9%%）
3. "标的公司/项目名称"要提取完整的外文名称，包括公司类型后缀（如GmbH、Corp、Inc、Ltd），不要提取描述性简称（如"紧固件德国公司"）
4. "业务范围"必须是目标公司（标的公司/被收购方）的主要业务范围，不要提取投资方（我司、本公司）的业务范围。如果只提到了投资方的业务范围，该字段应返回空字符串 ""
5. 对于"审批条件"和"特殊许可"字段，如果文本中确实没有相关要求，应根据实际情况标注"新设公司，不涉及"、"无需特殊许可"、"未明确"或"人工确认"，不要直接返回空字符串
6. 金额和比例要保留原文格式
7. 返回标准的JSON格式，不要有其他说明文字
`, fileName, targetCountry, preview)
}
