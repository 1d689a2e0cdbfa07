package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractionPrompt(t *testing.T) {
	b := NewPromptBuilder("")
	prompt := b.ExtractionPrompt("公司拟收购越南子公司", "600000_浦发银行_公告.pdf", "越南")

	assert.Contains(t, prompt, "文件名: 600000_浦发银行_公告.pdf")
	assert.Contains(t, prompt, "目标国家/地区: 越南")
	assert.Contains(t, prompt, "公司拟收购越南子公司")
	for _, category := range []string{"基本信息", "交易结构", "合规审批"} {
		assert.Contains(t, prompt, category)
	}
	assert.Contains(t, prompt, "标的公司/项目名称")
	assert.Contains(t, prompt, "特殊许可")
	assert.NotContains(t, prompt, "省略")
}

func TestExtractionPromptMissingCountry(t *testing.T) {
	b := NewPromptBuilder("")
	prompt := b.ExtractionPrompt("文本", "a.pdf", "")
	assert.Contains(t, prompt, "目标国家/地区: 未明确")
}

func TestExtractionPromptClipsLongText(t *testing.T) {
	b := NewPromptBuilder("")
	long := strings.Repeat("境外投资公告内容。", 2000)
	prompt := b.ExtractionPrompt(long, "a.pdf", "德国")

	assert.Contains(t, prompt, "...[中间内容省略]...")
	assert.Less(t, len([]rune(prompt)), len([]rune(long)))
}

func TestSystemPrompt(t *testing.T) {
	assert.Contains(t, NewPromptBuilder("").SystemPrompt(), "境外投资")
	assert.Equal(t, "自定义", NewPromptBuilder("自定义").SystemPrompt())
}
