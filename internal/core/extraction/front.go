package extraction

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kirillkom/insurance-onboarding/internal/core/domain"
)

const datePattern = `(\d{1,2}[/-]\d{1,2}[/-]\d{4})`

var (
	emiratesIDRe     = regexp.MustCompile(`\b\d{3}-\d{4}-\d{7}-\d\b`)
	nameLabelRe      = regexp.MustCompile(`(?i)(?:Name|NAME|الاسم|اسم)\s*[:\-]?\s*([^\n\r]{2,80})`)
	nameTrailRe      = regexp.MustCompile(`[:\-/|]+$`)
	anyDateRe        = regexp.MustCompile(datePattern)
	nationalityRe    = regexp.MustCompile(`(?i)(?:Nationality|الجنسية)\s*[:\-]?\s*([^\n\r]{2,80})`)
	addressLabelRe   = regexp.MustCompile(`(?i)(?:Address|العنوان)\s*[:\-]?\s*([^\n\r]{2,140})`)
	genderExplicitRe = regexp.MustCompile(`(?i)(?:Sex|Gender|الجنس)\s*[:\-]?\s*(Male|Female|M|F|ذكر|أنثى)`)
	genderLooseRe    = regexp.MustCompile(`(?i)(?:Sex|Gender|الجنس)\s*[:\-]?\s*([^\n]{1,20})`)
)

var (
	dobLabels     = labelDatePatterns("Date of Birth", "DOB", "Birth", "تاريخ الميلاد")
	issuingLabels = labelDatePatterns("Issuing Date", "Issue Date", "Issuing", "Date of Issue", "تاريخ الإصدار")
	expiryLabels  = labelDatePatterns("Expiry Date", "Expiry", "تاريخ الانتهاء")
)

var monthNames = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

func labelDatePatterns(labels ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(labels))
	for _, l := range labels {
		out = append(out, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(l)+`\s*[:\-]?\s*`+datePattern))
	}
	return out
}

// ExtractFront pulls front-side identity fields out of OCR text.
// Labelled matches are tried first, positional heuristics second.
func ExtractFront(text string) domain.FieldSet {
	data := domain.FieldSet{}
	lines := normalizeLines(text)

	if m := emiratesIDRe.FindString(text); m != "" {
		data[domain.FieldEmiratesID] = strings.TrimSpace(m)
	}

	if m := nameLabelRe.FindStringSubmatch(text); m != nil {
		name := strings.TrimSpace(m[1])
		data[domain.FieldName] = strings.TrimSpace(nameTrailRe.ReplaceAllString(name, ""))
	} else if name, ok := fallbackName(lines); ok {
		data[domain.FieldName] = name
	}

	extractDates(text, data)

	if m := nationalityRe.FindStringSubmatch(text); m != nil {
		data[domain.FieldNationality] = strings.TrimSpace(m[1])
	}

	if gender, ok := extractGender(text); ok {
		data[domain.FieldGender] = gender
		data[domain.FieldSex] = gender
	}

	nationality, hasNationality := data[domain.FieldNationality]
	if address, ok := extractAddress(text, lines, nationality, hasNationality); ok {
		data[domain.FieldAddress] = address
	}

	cleanAll(data)
	return data
}

// fallbackName picks the first line that looks like a person's name and
// joins a short follow-up line for names that wrap.
func fallbackName(lines []string) (string, bool) {
	for idx, line := range lines {
		if containsStopword(line) || containsDigit(line) {
			continue
		}
		if wordCount(line) < 2 || runeLen(line) <= 3 {
			continue
		}
		low := strings.ToLower(line)
		if strings.Contains(low, "united arab emirates") || strings.Contains(low, "arab emirates") {
			continue
		}
		candidate := line
		if idx+1 < len(lines) {
			next := lines[idx+1]
			if !containsStopword(next) && !containsDigit(next) && wordCount(next) <= 3 {
				candidate += " " + next
			}
		}
		return candidate, true
	}
	return "", false
}

func extractDates(text string, data domain.FieldSet) {
	all := anyDateRe.FindAllString(text, -1)

	dob := firstLabelledDate(text, dobLabels)
	issuing := firstLabelledDate(text, issuingLabels)
	expiry := firstLabelledDate(text, expiryLabels)

	if dob != "" {
		data[domain.FieldDOB] = FormatDate(dob)
	}
	if issuing != "" {
		data[domain.FieldIssuingDate] = FormatDate(issuing)
	}
	if expiry != "" {
		data[domain.FieldExpiryDate] = FormatDate(expiry)
	}
	if expiry == "" && len(all) > 0 {
		data[domain.FieldExpiryDate] = FormatDate(all[len(all)-1])
	}
	// Positional layout: birth, issue, expiry.
	if issuing == "" && len(all) >= 2 {
		data[domain.FieldIssuingDate] = FormatDate(all[1])
	}
}

func firstLabelledDate(text string, patterns []*regexp.Regexp) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}

// FormatDate rewrites D/M/YYYY or D-M-YYYY as D/Mon/YYYY. The day text is
// kept as written. Anything it cannot split into three parts is returned as is.
func FormatDate(s string) string {
	var parts []string
	switch {
	case strings.Contains(s, "/"):
		parts = strings.Split(s, "/")
	case strings.Contains(s, "-"):
		parts = strings.Split(s, "-")
	default:
		return s
	}
	if len(parts) != 3 {
		return s
	}
	day, month, year := parts[0], parts[1], parts[2]
	if n, err := strconv.Atoi(month); err == nil && n >= 1 && n <= 12 {
		month = monthNames[n-1]
	}
	return day + "/" + month + "/" + year
}

func extractGender(text string) (string, bool) {
	var value string
	for _, re := range []*regexp.Regexp{genderExplicitRe, genderLooseRe} {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v := strings.TrimSpace(m[1])
		if v == "" || strings.Contains(strings.ToUpper(v), "SCAN") {
			continue
		}
		value = v
		break
	}
	if value == "" {
		return "", false
	}
	return CanonicalGender(value), true
}

// CanonicalGender maps recognised tokens to Male or Female and returns
// anything else unchanged.
func CanonicalGender(v string) string {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "M", "MALE", "ذكر":
		return "Male"
	case "F", "FEMALE", "أنثى":
		return "Female"
	default:
		return v
	}
}

func extractAddress(text string, lines []string, nationality string, hasNationality bool) (string, bool) {
	if m := addressLabelRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1]), true
	}

	if hasNationality {
		needle := strings.ToLower(nationality)
		for idx, line := range lines {
			if !strings.Contains(strings.ToLower(line), needle) || idx+1 >= len(lines) {
				continue
			}
			cand := lines[idx+1]
			if runeLen(cand) > 4 && !containsDigit(cand) {
				return cand, true
			}
		}
	}

	for i := len(lines) - 1; i >= 0; i-- {
		line := lines[i]
		if containsStopword(line) || containsDigit(line) {
			continue
		}
		if wordCount(line) >= 2 {
			return line, true
		}
	}
	return "", false
}
