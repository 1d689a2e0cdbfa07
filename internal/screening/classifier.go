package screening

import "strings"

// Classifier decides whether a disclosure describes an overseas direct
// investment. It is a pure function of the document and the registry it was
// built with; the same input always yields the same Result.
type Classifier struct {
	registry *Registry
}

// NewClassifier creates a classifier over the given registry. A nil registry
// falls back to the built-in rules.
func NewClassifier(registry *Registry) *Classifier {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Classifier{registry: registry}
}

// Classify runs the screening decision in fixed order: exclusion categories
// first, then the overseas-marker scan, then the investment-action scan.
// Later evidence never overturns an earlier verdict.
func (c *Classifier) Classify(doc Document) Result {
	text := doc.Text

	if strings.TrimSpace(text) == "" {
		return Result{
			Reason: ReasonNoOverseasMarker,
			Trace: []TraceStep{
				{Stage: StageMarker, Evidence: "empty document"},
			},
		}
	}

	var trace []TraceStep

	if tag, label, keyword := c.matchExclusion(text); tag != "" {
		trace = append(trace, TraceStep{
			Stage:    StageExclusion,
			Rule:     tag,
			Evidence: keyword,
			Matched:  true,
		})
		return Result{
			ExclusionReason: tag,
			ExclusionLabel:  label,
			Trace:           trace,
		}
	}
	trace = append(trace, TraceStep{Stage: StageExclusion})

	marker := c.matchMarker(text)
	country, hasCountry := firstCountry(text, c.registry.countries)
	if marker == "" && !hasCountry {
		trace = append(trace, TraceStep{Stage: StageMarker})
		return Result{
			Reason: ReasonNoOverseasMarker,
			Trace:  trace,
		}
	}
	evidence := marker
	if evidence == "" {
		evidence = country
	}
	trace = append(trace, TraceStep{Stage: StageMarker, Evidence: evidence, Matched: true})
	if hasCountry {
		trace = append(trace, TraceStep{Stage: StageCountry, Evidence: country, Matched: true})
	}

	action := c.matchAction(text, doc.FileName)
	if action == "" {
		trace = append(trace, TraceStep{Stage: StageAction})
		return Result{
			ExclusionReason: ExclusionNotInvestment,
			ExclusionLabel:  LabelNotInvestment,
			TargetCountry:   country,
			Trace:           trace,
		}
	}
	trace = append(trace, TraceStep{Stage: StageAction, Evidence: action, Matched: true})

	return Result{
		IsODI:         true,
		TargetCountry: country,
		Trace:         trace,
	}
}

// TargetCountry returns the first country name occurring in text, or the
// empty string. Exposed for callers that extract from unclassified text.
func (c *Classifier) TargetCountry(text string) string {
	country, _ := firstCountry(text, c.registry.countries)
	return country
}

// matchExclusion scans the exclusion categories in registry order and
// returns the first category with a keyword present in the text.
func (c *Classifier) matchExclusion(text string) (tag, label, keyword string) {
	for _, cat := range c.registry.exclusions {
		for _, kw := range cat.Keywords {
			if strings.Contains(text, kw) {
				return cat.Tag, cat.Label, kw
			}
		}
	}
	return "", "", ""
}

// matchMarker returns the first generic overseas marker present in the text.
func (c *Classifier) matchMarker(text string) string {
	for _, marker := range c.registry.overseasMarkers {
		if strings.Contains(text, marker) {
			return marker
		}
	}
	return ""
}

// matchAction looks for an investment-action signal: a keyword in the text,
// a keyword in the filename, or a phrasing pattern in the text.
func (c *Classifier) matchAction(text, fileName string) string {
	for _, kw := range c.registry.investKeywords {
		if strings.Contains(text, kw) {
			return kw
		}
	}
	if fileName != "" {
		for _, kw := range c.registry.investKeywords {
			if strings.Contains(fileName, kw) {
				return kw
			}
		}
	}
	for _, re := range c.registry.investPatterns {
		if m := re.FindString(text); m != "" {
			return m
		}
	}
	return ""
}
