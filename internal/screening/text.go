package screening

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// sentenceBoundary reports whether r terminates a sentence in disclosure
// prose. The set covers full-width and half-width terminators plus newlines,
// because extracted PDF text keeps hard line breaks.
func sentenceBoundary(r rune) bool {
	switch r {
	case '。', '；', ';', '！', '!', '？', '?', '\n':
		return true
	}
	return false
}

// splitSentences cuts text at sentence boundaries and drops empty segments.
func splitSentences(text string) []string {
	parts := strings.FieldsFunc(text, sentenceBoundary)
	out := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// sentencesWithKeyword returns the trimmed sentences containing keyword, in
// document order.
func sentencesWithKeyword(text, keyword string) []string {
	if keyword == "" || !strings.Contains(text, keyword) {
		return nil
	}
	var out []string
	for _, s := range splitSentences(text) {
		if strings.Contains(s, keyword) {
			out = append(out, s)
		}
	}
	return out
}

// cleanText collapses all whitespace runs to single spaces and trims the
// ends. PDF extraction scatters line breaks and full-width spaces through
// values, so every reported field goes through here.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// clipRunes truncates s to at most n runes. n <= 0 means no limit.
func clipRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// firstCountry returns the country name with the smallest byte offset in
// text. Ties at the same offset resolve to the longer name, so 印度尼西亚
// beats 印度. The second result is false when no name occurs.
func firstCountry(text string, countries []string) (string, bool) {
	best := ""
	bestIdx := -1
	for _, name := range countries {
		idx := strings.Index(text, name)
		if idx < 0 {
			continue
		}
		if bestIdx < 0 || idx < bestIdx {
			best, bestIdx = name, idx
			continue
		}
		if idx == bestIdx && utf8.RuneCountInString(name) > utf8.RuneCountInString(best) {
			best = name
		}
	}
	return best, bestIdx >= 0
}

var chineseDigits = map[rune]int{
	'零': 0, '一': 1, '两': 2, '二': 2, '三': 3, '四': 4,
	'五': 5, '六': 6, '七': 7, '八': 8, '九': 9,
}

// parseChineseNumeral converts a numeral like 五十, 十五 or 百 to its decimal
// string. It covers the 0-100 range that percentage prose uses.
func parseChineseNumeral(s string) (string, bool) {
	if s == "百" || s == "一百" {
		return "100", true
	}
	total := 0
	tens := -1
	current := 0
	for _, r := range s {
		if r == '十' {
			if tens >= 0 {
				return "", false
			}
			if current == 0 {
				current = 1
			}
			tens = current
			current = 0
			continue
		}
		d, ok := chineseDigits[r]
		if !ok {
			return "", false
		}
		current = current*10 + d
	}
	if tens >= 0 {
		total = tens*10 + current
	} else {
		total = current
	}
	if total > 100 {
		return "", false
	}
	return strconv.Itoa(total), true
}
