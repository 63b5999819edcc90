package extraction

import (
	"regexp"
	"strings"

	"github.com/kirillkom/insurance-onboarding/internal/core/domain"
)

// labelledField tries an inline label match first and then a match that
// allows up to 100 characters of noise between the label and the value.
type labelledField struct {
	name     string
	patterns []*regexp.Regexp
}

func newLabelledField(name, labels string) labelledField {
	return labelledField{
		name: name,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(?:` + labels + `)\s*[:\-]?\s*([^\n\r]{2,80})`),
			// The capture must run to the end of its line.
			regexp.MustCompile(`(?i)(?:` + labels + `)[\s\S]{1,100}?([^\n\r]{2,80})(?:\n|$)`),
		},
	}
}

var backFields = []labelledField{
	newLabelledField(domain.FieldOccupation, `Occupation|المهنة|Profession|الوظيفة`),
	newLabelledField(domain.FieldEmployer, `Employer|صاحب العمل|Company|الشركة|جهة العمل`),
	newLabelledField(domain.FieldIssuingPlace, `Issuing Place|مكان الإصدار|Place of Issue|جهة الإصدار`),
}

const sponsorLabels = `Family Sponsor|كفالة عائلية|Sponsor|كفالة|الکفالة`

const (
	sponsorTokens = `Yes|No|نعم|لا|Y|N`
	tokenEnd      = `(?:[^\p{L}\p{N}_]|$)`
)

var (
	// Tokens must stand alone: "N" in "Name" is not an answer. \b is ASCII-only
	// in RE2, so the boundary is spelled out to cover the Arabic tokens too.
	sponsorPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:` + sponsorLabels + `)\s*[:\-]?\s*(` + sponsorTokens + `)` + tokenEnd),
		regexp.MustCompile(`(?i)(?:` + sponsorLabels + `)[\s\S]{0,49}?[^\p{L}\p{N}_](` + sponsorTokens + `)` + tokenEnd),
	}
	sponsorNameRe = regexp.MustCompile(`(?i)(?:family sponsor name|اسم الكفيل|كفيل)\s*[:\-]?\s*([^\n\r]{2,80})`)

	// OCR artefacts: anything but letters, digits, underscore, spaces and hyphens.
	artefactRe = regexp.MustCompile(`[^\p{L}\p{N}_\s\p{Zs}\-]`)
)

// ExtractBack pulls occupation, employer, issuing place and family sponsor
// fields out of back-side OCR text.
func ExtractBack(text string) domain.FieldSet {
	data := domain.FieldSet{}

	for _, f := range backFields {
		for _, re := range f.patterns {
			m := re.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			value := artefactRe.ReplaceAllString(strings.TrimSpace(m[1]), "")
			if runeLen(value) > 1 {
				data[f.name] = value
				break
			}
		}
	}

	for _, re := range sponsorPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(m[1])) {
		case "yes", "y", "نعم":
			data[domain.FieldFamilySponsor] = "Yes"
		case "no", "n", "لا":
			data[domain.FieldFamilySponsor] = "No"
		}
		break
	}

	if data.Get(domain.FieldFamilySponsor) == "Yes" {
		if m := sponsorNameRe.FindStringSubmatch(text); m != nil {
			data[domain.FieldFamilySponsorName] = strings.TrimSpace(m[1])
		}
	}

	cleanAll(data)
	return data
}
