package llm

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/panshi-lab/odiscan/internal/screening"
)

// ChatClient is the completion surface the hybrid extractor needs.
// *Client satisfies it.
type ChatClient interface {
	ChatCompletion(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// RuleExtractor is the rule-based extraction surface.
// *screening.Extractor satisfies it.
type RuleExtractor interface {
	Extract(doc screening.Document, targetCountry string) screening.Extraction
}

// Stats counts how extraction work split between the model and the rules.
type Stats struct {
	LLMSuccess  int `json:"llm_success"`
	LLMFallback int `json:"llm_fallback"`
	RuleUsed    int `json:"rule_used"`
}

// HybridExtractor extracts transaction records LLM-first with rule fallback.
// Filename-derived fields always come from the rule extractor; when the model
// call fails entirely the whole record falls back to rules, and when enabled,
// individual empty model fields are backfilled rule-side.
type HybridExtractor struct {
	client       ChatClient
	rules        RuleExtractor
	prompts      *PromptBuilder
	ruleFallback bool
	logger       *slog.Logger

	mu    sync.Mutex
	stats Stats
}

// NewHybridExtractor wires a model client and a rule extractor together.
func NewHybridExtractor(client ChatClient, rules RuleExtractor, prompts *PromptBuilder, ruleFallback bool, logger *slog.Logger) *HybridExtractor {
	if prompts == nil {
		prompts = NewPromptBuilder("")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HybridExtractor{
		client:       client,
		rules:        rules,
		prompts:      prompts,
		ruleFallback: ruleFallback,
		logger:       logger,
	}
}

// filename-derived fields are overwritten from the rule extractor even when
// the model answered, since the model never sees the parsed filename metadata.
var filenameFields = []string{
	screening.FieldStockCode,
	screening.FieldCompanyName,
	screening.FieldAnnounceDate,
	screening.FieldFileName,
}

// Extract produces the transaction record for one classified document.
func (h *HybridExtractor) Extract(ctx context.Context, doc screening.Document, result screening.Result) screening.Extraction {
	llmResult, ok := h.extractWithLLM(ctx, doc, result.TargetCountry)
	if !ok {
		h.logger.Warn("llm.extract.fallback", "file", doc.FileName)
		h.mu.Lock()
		h.stats.RuleUsed++
		h.mu.Unlock()
		return h.rules.Extract(doc, result.TargetCountry)
	}

	ruleResult := h.rules.Extract(doc, result.TargetCountry)

	merged := screening.NewExtraction()
	for _, category := range screening.Categories() {
		for _, field := range screening.Fields(category) {
			merged.Set(category, field, strings.TrimSpace(llmResult.Get(category, field)))
		}
	}
	for _, field := range filenameFields {
		merged.Set(screening.CategoryBasicInfo, field, ruleResult.Get(screening.CategoryBasicInfo, field))
	}

	if h.ruleFallback {
		backfilled := 0
		for _, category := range screening.Categories() {
			for _, field := range screening.Fields(category) {
				if merged.Get(category, field) != "" {
					continue
				}
				if v := ruleResult.Get(category, field); v != "" {
					merged.Set(category, field, v)
					backfilled++
				}
			}
		}
		if backfilled > 0 {
			h.logger.Debug("llm.extract.backfill", "file", doc.FileName, "fields", backfilled)
			h.mu.Lock()
			h.stats.LLMFallback += backfilled
			h.mu.Unlock()
		}
	}

	h.mu.Lock()
	h.stats.LLMSuccess++
	h.mu.Unlock()
	return merged
}

func (h *HybridExtractor) extractWithLLM(ctx context.Context, doc screening.Document, targetCountry string) (screening.Extraction, bool) {
	prompt := h.prompts.ExtractionPrompt(doc.Text, doc.FileName, targetCountry)

	response, err := h.client.ChatCompletion(ctx, h.prompts.SystemPrompt(), prompt)
	if err != nil {
		h.logger.Warn("llm.chat.failed", "file", doc.FileName, "error", err)
		return nil, false
	}
	if response == "" {
		h.logger.Warn("llm.chat.empty", "file", doc.FileName)
		return nil, false
	}

	var parsed map[string]map[string]string
	if err := json.Unmarshal([]byte(stripCodeFences(response)), &parsed); err != nil {
		h.logger.Warn("llm.response.unparseable", "file", doc.FileName, "error", err)
		return nil, false
	}
	return screening.Extraction(parsed), true
}

// Stats returns a snapshot of the extraction counters.
func (h *HybridExtractor) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stats
}

// stripCodeFences removes a surrounding markdown code block, which models
// commonly wrap JSON answers in.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	lines = lines[1:]
	if n := len(lines); n > 0 && strings.TrimSpace(lines[n-1]) == "```" {
		lines = lines[:n-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
