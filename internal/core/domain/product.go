package domain

// Place is a normalised issuing emirate. Values other than the two known
// emirates carry the title-cased raw text.
type Place string

const (
	PlaceDubai    Place = "Dubai"
	PlaceAbuDhabi Place = "Abu Dhabi"
)

type SalaryBand string

const (
	SalaryBelow4000  SalaryBand = "below_4000"
	Salary4000To5000 SalaryBand = "4000_5000"
	SalaryAbove5000  SalaryBand = "above_5000"
	SalaryUnknown    SalaryBand = "unknown"
)

type Product struct {
	Name  string `json:"name"`
	Price string `json:"price"`
	Plan  string `json:"plan"`
	URL   string `json:"url"`
}

// Recommendation carries either products or an advisory message, never both.
type Recommendation struct {
	Products []Product `json:"products"`
	Message  *string   `json:"message"`
}
