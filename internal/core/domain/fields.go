package domain

import "strings"

// Identity field names as produced by the extractors and stored on IdentityRecord.
const (
	FieldEmiratesID        = "emirates_id"
	FieldName              = "name"
	FieldDOB               = "dob"
	FieldIssuingDate       = "issuing_date"
	FieldExpiryDate        = "expiry_date"
	FieldNationality       = "nationality"
	FieldGender            = "gender"
	FieldSex               = "sex"
	FieldAddress           = "address"
	FieldOccupation        = "occupation"
	FieldEmployer          = "employer"
	FieldIssuingPlace      = "issuing_place"
	FieldFamilySponsor     = "family_sponsor"
	FieldFamilySponsorName = "family_sponsor_name"
)

// ExpectedFrontFields are reported as missing when absent after an upload.
var ExpectedFrontFields = []string{
	FieldEmiratesID,
	FieldName,
	FieldDOB,
	FieldNationality,
	FieldGender,
	FieldAddress,
	FieldIssuingDate,
	FieldExpiryDate,
}

// ExpectedBackFields are reported as missing when absent after an upload.
var ExpectedBackFields = []string{
	FieldOccupation,
	FieldEmployer,
	FieldIssuingPlace,
}

// FieldSet maps field names to extracted values. A missing key means the
// field was not found; it is never an error.
type FieldSet map[string]string

func (f FieldSet) Get(name string) string {
	if f == nil {
		return ""
	}
	return f[name]
}

// Has reports whether the field is present with a non-blank value.
func (f FieldSet) Has(name string) bool {
	return strings.TrimSpace(f.Get(name)) != ""
}

// Merge copies every non-blank value from other, overwriting existing keys.
func (f FieldSet) Merge(other FieldSet) {
	for k, v := range other {
		if strings.TrimSpace(v) == "" {
			continue
		}
		f[k] = v
	}
}

func (f FieldSet) Clone() FieldSet {
	out := make(FieldSet, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}
