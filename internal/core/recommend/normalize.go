package recommend

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/kirillkom/insurance-onboarding/internal/core/domain"
)

var firstIntRe = regexp.MustCompile(`\d+`)

// NormalizePlace maps a noisy OCR issuing place onto Dubai or Abu Dhabi.
// Unrecognised text is returned title-cased; empty input yields false.
func NormalizePlace(raw string) (domain.Place, bool) {
	trimmed := strings.TrimSpace(raw)
	norm := strings.ToLower(trimmed)
	if norm == "" {
		return "", false
	}

	switch {
	case strings.Contains(norm, "abu") && !strings.Contains(norm, "dub"),
		containsAny(norm, "adhabi", "adabi", "abudhabi", "abud"):
		return domain.PlaceAbuDhabi, true
	case containsAny(norm, "duba", "dubai", "dubi"):
		return domain.PlaceDubai, true
	case strings.Contains(norm, "abu dhabi"):
		return domain.PlaceAbuDhabi, true
	case strings.Contains(norm, "dubai"):
		return domain.PlaceDubai, true
	default:
		return domain.Place(TitleCase(trimmed)), true
	}
}

// NormalizeSalary buckets a free-text salary answer into a band.
func NormalizeSalary(raw string) domain.SalaryBand {
	s := strings.ToLower(raw)
	trimmed := strings.TrimSpace(s)

	switch {
	case strings.Contains(s, "below") && strings.Contains(s, "4000"):
		return domain.SalaryBelow4000
	case strings.Contains(s, "4000") && strings.Contains(s, "5000"):
		return domain.Salary4000To5000
	case strings.Contains(s, "above") && strings.Contains(s, "5000"):
		return domain.SalaryAbove5000
	case strings.Contains(s, "below 4000"), trimmed == "below 4000 aed", trimmed == "below 4000":
		return domain.SalaryBelow4000
	case containsAny(s, "4000 - 5000", "4000-5000", "4000 to 5000"):
		return domain.Salary4000To5000
	case containsAny(s, "above 5000", "more than 5000", "5000+", "5000 ="):
		return domain.SalaryAbove5000
	}

	digits := firstIntRe.FindString(s)
	if digits == "" {
		return domain.SalaryUnknown
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		// Only overflow reaches here.
		return domain.SalaryAbove5000
	}
	switch {
	case n < 4000:
		return domain.SalaryBelow4000
	case n <= 5000:
		return domain.Salary4000To5000
	default:
		return domain.SalaryAbove5000
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// TitleCase upper-cases the first letter of every letter run and lower-cases the rest.
func TitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToTitle(r))
			}
			prevLetter = true
			continue
		}
		prevLetter = false
		b.WriteRune(r)
	}
	return b.String()
}
