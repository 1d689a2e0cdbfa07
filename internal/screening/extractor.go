package screening

import (
	"strings"
)

// Extractor pulls the structured transaction fields out of a document. Every
// call returns a complete Extraction; fields without a match hold an empty
// string and extraction itself never fails.
type Extractor struct {
	registry *Registry
}

// NewExtractor creates an extractor over the given registry. A nil registry
// falls back to the built-in rules.
func NewExtractor(registry *Registry) *Extractor {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Extractor{registry: registry}
}

// Extract fills all declared fields from the document text and filename
// metadata. targetCountry is the country the classifier detected; it feeds
// the registered-location field and the country-templated name patterns, and
// may be empty.
func (e *Extractor) Extract(doc Document, targetCountry string) Extraction {
	ex := NewExtraction()
	text := doc.Text

	ex.Set(CategoryBasicInfo, FieldStockCode, doc.Meta.StockCode)
	ex.Set(CategoryBasicInfo, FieldCompanyName, doc.Meta.CompanyName)
	ex.Set(CategoryBasicInfo, FieldAnnounceDate, doc.Meta.AnnounceDate)
	ex.Set(CategoryBasicInfo, FieldFileName, doc.FileName)
	ex.Set(CategoryBasicInfo, FieldTargetCountry, targetCountry)
	ex.Set(CategoryBasicInfo, FieldTargetCompany, e.chainValue(CategoryBasicInfo, FieldTargetCompany, text, targetCountry))
	ex.Set(CategoryBasicInfo, FieldDealType, e.transactionType(text))
	ex.Set(CategoryBasicInfo, FieldDealAmount, e.chainValue(CategoryBasicInfo, FieldDealAmount, text, ""))
	ex.Set(CategoryBasicInfo, FieldEquityRatio, e.equityRatio(text))
	ex.Set(CategoryBasicInfo, FieldCounterparty, e.chainValue(CategoryBasicInfo, FieldCounterparty, text, ""))
	ex.Set(CategoryBasicInfo, FieldProgress, e.progress(text))
	ex.Set(CategoryBasicInfo, FieldBusinessScope, e.firstKeywordSentence(CategoryBasicInfo, FieldBusinessScope, text))

	ex.Set(CategoryStructure, FieldInvestor, e.patternOrLadder(CategoryStructure, FieldInvestor, text))
	ex.Set(CategoryStructure, FieldSPV, e.firstKeywordSentence(CategoryStructure, FieldSPV, text))
	ex.Set(CategoryStructure, FieldFunding, e.patternOrLadder(CategoryStructure, FieldFunding, text))
	ex.Set(CategoryStructure, FieldPayment, e.patternOrLadder(CategoryStructure, FieldPayment, text))
	ex.Set(CategoryStructure, FieldVAM, e.firstKeywordSentence(CategoryStructure, FieldVAM, text))
	ex.Set(CategoryStructure, FieldArchitecture, e.firstKeywordSentence(CategoryStructure, FieldArchitecture, text))

	ex.Set(CategoryApprovals, FieldDomesticApprovals, e.domesticApprovals(text))
	ex.Set(CategoryApprovals, FieldForeignApprovals, e.joinedKeywordSentences(CategoryApprovals, FieldForeignApprovals, text, 1))
	ex.Set(CategoryApprovals, FieldApprovalProgress, e.joinedKeywordSentences(CategoryApprovals, FieldApprovalProgress, text, 1))
	ex.Set(CategoryApprovals, FieldApprovalTerms, e.firstKeywordSentence(CategoryApprovals, FieldApprovalTerms, text))
	ex.Set(CategoryApprovals, FieldClosingTerms, e.firstKeywordSentence(CategoryApprovals, FieldClosingTerms, text))
	ex.Set(CategoryApprovals, FieldLicenses, e.joinedKeywordSentences(CategoryApprovals, FieldLicenses, text, 2))

	return ex
}

// chainValue runs a field's pattern chain against the text and returns the
// first captured value, cleaned. Templated patterns are skipped when country
// is empty.
func (e *Extractor) chainValue(category, field, text, country string) string {
	r := e.registry.fieldRule(category, field)
	if r == nil {
		return ""
	}
	for _, p := range r.patterns {
		re := p.compile(country)
		if re == nil {
			continue
		}
		if m := re.FindStringSubmatch(text); m != nil {
			return cleanText(capturedValue(m))
		}
	}
	return ""
}

// patternOrLadder is chainValue followed by the field's fixed-value ladder
// and fallback.
func (e *Extractor) patternOrLadder(category, field, text string) string {
	if v := e.chainValue(category, field, text, ""); v != "" {
		return v
	}
	r := e.registry.fieldRule(category, field)
	if r == nil {
		return ""
	}
	return ladderValue(r, text)
}

// transactionType returns the first transaction type whose keywords occur in
// the text, or 其他 when none match.
func (e *Extractor) transactionType(text string) string {
	for _, tt := range e.registry.transactionTypes {
		for _, kw := range tt.Keywords {
			if strings.Contains(text, kw) {
				return tt.Name
			}
		}
	}
	return "其他"
}

// equityRatio finds a percentage inside sentences that carry equity context
// and canonicalizes it to the N% form. Percentages outside equity sentences
// are ignored so lease terms and tax rates do not leak in.
func (e *Extractor) equityRatio(text string) string {
	r := e.registry.fieldRule(CategoryBasicInfo, FieldEquityRatio)
	if r == nil {
		return ""
	}
	for _, kw := range r.rule.Keywords {
		for _, sentence := range sentencesWithKeyword(text, kw) {
			for _, p := range r.patterns {
				re := p.compile("")
				if re == nil {
					continue
				}
				if m := re.FindStringSubmatch(sentence); m != nil {
					if v := canonicalPercent(capturedValue(m)); v != "" {
						return v
					}
				}
			}
		}
	}
	return ""
}

// progress matches the stage patterns and reports the sentence containing
// the first hit, falling back to the keyword ladder.
func (e *Extractor) progress(text string) string {
	r := e.registry.fieldRule(CategoryBasicInfo, FieldProgress)
	if r == nil {
		return ""
	}
	for _, p := range r.patterns {
		re := p.compile("")
		if re == nil {
			continue
		}
		m := re.FindString(text)
		if m == "" {
			continue
		}
		if sentences := sentencesWithKeyword(text, m); len(sentences) > 0 {
			return clipRunes(cleanText(sentences[0]), r.rule.Clip)
		}
		return cleanText(m)
	}
	return ladderValue(r, text)
}

// firstKeywordSentence returns the first sentence containing any of the
// field's keywords, honoring the exclude list and minimum length, clipped to
// the field's limit.
func (e *Extractor) firstKeywordSentence(category, field, text string) string {
	r := e.registry.fieldRule(category, field)
	if r == nil {
		return ""
	}
	for _, kw := range r.rule.Keywords {
		for _, sentence := range sentencesWithKeyword(text, kw) {
			if !sentenceQualifies(r.rule, sentence) {
				continue
			}
			return clipRunes(cleanText(sentence), r.rule.Clip)
		}
	}
	return ""
}

// joinedKeywordSentences collects up to perKeyword qualifying sentences for
// each keyword, deduplicates them and joins with "; ".
func (e *Extractor) joinedKeywordSentences(category, field, text string, perKeyword int) string {
	r := e.registry.fieldRule(category, field)
	if r == nil {
		return ""
	}
	seen := make(map[string]bool)
	var parts []string
	for _, kw := range r.rule.Keywords {
		taken := 0
		for _, sentence := range sentencesWithKeyword(text, kw) {
			if taken >= perKeyword {
				break
			}
			if !sentenceQualifies(r.rule, sentence) {
				continue
			}
			v := clipRunes(cleanText(sentence), r.rule.Clip)
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			parts = append(parts, v)
			taken++
		}
	}
	return strings.Join(parts, "; ")
}

// domesticApprovals lists the filing matters whose keywords occur in the
// text, joined with "; ".
func (e *Extractor) domesticApprovals(text string) string {
	var parts []string
	for _, matter := range e.registry.approvalMatters {
		for _, kw := range matter.Keywords {
			if strings.Contains(text, kw) {
				parts = append(parts, matter.Name)
				break
			}
		}
	}
	return strings.Join(parts, "; ")
}

// ladderValue returns the value of the first default rule matching the text,
// or the field's fallback.
func ladderValue(r *compiledFieldRule, text string) string {
	for _, def := range r.defaults {
		if def.re.MatchString(text) {
			return def.value
		}
	}
	return r.rule.Fallback
}

// sentenceQualifies applies a field's exclude list and minimum rune length.
func sentenceQualifies(rule FieldRule, sentence string) bool {
	if rule.MinLen > 0 && len([]rune(sentence)) < rule.MinLen {
		return false
	}
	for _, word := range rule.Exclude {
		if strings.Contains(sentence, word) {
			return false
		}
	}
	return true
}

// capturedValue returns the first capture group when present, otherwise the
// whole match.
func capturedValue(m []string) string {
	if len(m) > 1 && m[1] != "" {
		return m[1]
	}
	return m[0]
}

// canonicalPercent renders a raw percentage capture as N%. Digit captures
// pass through; Chinese numerals are converted.
func canonicalPercent(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if isASCIINumber(raw) {
		return raw + "%"
	}
	if n, ok := parseChineseNumeral(raw); ok {
		return n + "%"
	}
	return ""
}

func isASCIINumber(s string) bool {
	dot := false
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '.' && !dot && i > 0 && i < len(s)-1:
			dot = true
		default:
			return false
		}
	}
	return true
}
