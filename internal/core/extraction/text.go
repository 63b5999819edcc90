// Package extraction turns noisy bilingual OCR transcripts of Emirates ID
// cards into field sets. Every function here is total: a field that cannot
// be found is simply left out of the result.
package extraction

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// stopwords mark lines that carry card boilerplate rather than a person's
// name or address.
var stopwords = []string{
	"resident", "identity", "card", "id number", "id no", "number",
	"nationality", "date of birth", "date", "expiry", "issuing",
	"signature", "sex", "passport", "signature/", "issue",
}

// normalizeLines splits text on CR and LF and drops blank lines.
func normalizeLines(text string) []string {
	text = strings.ReplaceAll(text, "\r", "\n")
	raw := strings.Split(text, "\n")
	out := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

func containsStopword(line string) bool {
	low := strings.ToLower(line)
	for _, sw := range stopwords {
		if strings.Contains(low, sw) {
			return true
		}
	}
	return false
}

func containsDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// cleanValue trims a value and strips trailing colons.
func cleanValue(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimRight(v, ":")
	return strings.TrimSpace(v)
}

// cleanAll applies cleanValue to every entry and drops values left empty.
func cleanAll(fields map[string]string) {
	for k, v := range fields {
		v = cleanValue(v)
		if v == "" {
			delete(fields, k)
			continue
		}
		fields[k] = v
	}
}
