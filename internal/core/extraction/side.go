package extraction

import (
	"strings"

	"github.com/kirillkom/insurance-onboarding/internal/core/domain"
)

// Keyword lists are counted entry by entry, so a repeated entry counts twice.
var (
	backKeywords = []string{
		"الكفالة", "employer", "صاحب العمل", "occupation", "المهنة",
		"occupation", "employer", "issuing place", "مكان الإصدار",
		"family sponsor", "كفالة عائلية",
	}
	frontKeywords = []string{
		"emirates id", "identity card", "بطاقة الهوية", "name", "الاسم",
		"nationality", "الجنسية", "date of birth", "تاريخ الميلاد",
	}
)

// ScoreSide returns how many front and back keywords occur in text.
func ScoreSide(text string) (front, back int) {
	low := strings.ToLower(text)
	for _, kw := range frontKeywords {
		if strings.Contains(low, kw) {
			front++
		}
	}
	for _, kw := range backKeywords {
		if strings.Contains(low, kw) {
			back++
		}
	}
	return front, back
}

// DetectSide classifies text as front or back by keyword score. Ties are unknown.
func DetectSide(text string) domain.Side {
	front, back := ScoreSide(text)
	switch {
	case back > front:
		return domain.SideBack
	case front > back:
		return domain.SideFront
	default:
		return domain.SideUnknown
	}
}
