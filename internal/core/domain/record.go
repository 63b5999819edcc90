package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type RecordStatus string

const (
	RecordPending    RecordStatus = "pending"
	RecordIncomplete RecordStatus = "incomplete"
	RecordComplete   RecordStatus = "complete"
)

// RawResponse is the audit payload kept alongside an identity record.
type RawResponse struct {
	FrontText string          `json:"front_text"`
	BackText  string          `json:"back_text"`
	Files     []ProcessedFile `json:"files"`
}

// IdentityRecord accumulates extracted Emirates ID fields for one chat session.
type IdentityRecord struct {
	ID                int64        `json:"id"`
	UUID              string       `json:"uuid"`
	SessionID         string       `json:"session_id"`
	EmiratesID        string       `json:"emirates_id"`
	Name              string       `json:"name"`
	DOB               string       `json:"dob"`
	IssuingDate       string       `json:"issuing_date"`
	ExpiryDate        string       `json:"expiry_date"`
	Nationality       string       `json:"nationality"`
	Gender            string       `json:"gender"`
	Sex               string       `json:"sex"`
	Address           string       `json:"address"`
	Occupation        string       `json:"occupation"`
	Employer          string       `json:"employer"`
	IssuingPlace      string       `json:"issuing_place"`
	FamilySponsor     string       `json:"family_sponsor"`
	FamilySponsorName string       `json:"family_sponsor_name"`
	RawResponse       RawResponse  `json:"raw_response"`
	Status            RecordStatus `json:"status"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// recordFields is the allow-list of editable fields and their accessors.
var recordFields = map[string]func(*IdentityRecord) *string{
	FieldEmiratesID:        func(r *IdentityRecord) *string { return &r.EmiratesID },
	FieldName:              func(r *IdentityRecord) *string { return &r.Name },
	FieldDOB:               func(r *IdentityRecord) *string { return &r.DOB },
	FieldIssuingDate:       func(r *IdentityRecord) *string { return &r.IssuingDate },
	FieldExpiryDate:        func(r *IdentityRecord) *string { return &r.ExpiryDate },
	FieldNationality:       func(r *IdentityRecord) *string { return &r.Nationality },
	FieldGender:            func(r *IdentityRecord) *string { return &r.Gender },
	FieldSex:               func(r *IdentityRecord) *string { return &r.Sex },
	FieldAddress:           func(r *IdentityRecord) *string { return &r.Address },
	FieldOccupation:        func(r *IdentityRecord) *string { return &r.Occupation },
	FieldEmployer:          func(r *IdentityRecord) *string { return &r.Employer },
	FieldIssuingPlace:      func(r *IdentityRecord) *string { return &r.IssuingPlace },
	FieldFamilySponsor:     func(r *IdentityRecord) *string { return &r.FamilySponsor },
	FieldFamilySponsorName: func(r *IdentityRecord) *string { return &r.FamilySponsorName },
}

// EditableFields returns the allow-listed field names in sorted order.
func EditableFields() []string {
	out := make([]string, 0, len(recordFields))
	for name := range recordFields {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// NewIdentityRecord builds a pending record from an extracted field set.
func NewIdentityRecord(sessionID, uuid string, fields FieldSet, now time.Time) *IdentityRecord {
	rec := &IdentityRecord{
		UUID:      uuid,
		SessionID: sessionID,
		Status:    RecordPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for name, value := range fields {
		if ptr, ok := recordFields[name]; ok {
			*ptr(rec) = value
		}
	}
	return rec
}

// Field returns the value of an allow-listed field.
func (r *IdentityRecord) Field(name string) (string, bool) {
	ptr, ok := recordFields[name]
	if !ok {
		return "", false
	}
	return *ptr(r), true
}

// SetField assigns an allow-listed field. Unknown names are rejected.
func (r *IdentityRecord) SetField(name, value string) error {
	ptr, ok := recordFields[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return WrapError(ErrInvalidInput, "set record field", fmt.Errorf("field %q not allowed", name))
	}
	*ptr(r) = value
	return nil
}

// MergeFields overwrites stored values with every non-blank extracted value.
// It reports whether anything changed.
func (r *IdentityRecord) MergeFields(fields FieldSet) bool {
	changed := false
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			continue
		}
		ptr, ok := recordFields[name]
		if !ok {
			continue
		}
		if *ptr(r) != value {
			*ptr(r) = value
			changed = true
		}
	}
	return changed
}

// Fields returns every populated field as a FieldSet.
func (r *IdentityRecord) Fields() FieldSet {
	out := FieldSet{}
	for name, ptr := range recordFields {
		if v := *ptr(r); v != "" {
			out[name] = v
		}
	}
	return out
}

// MissingFields lists expected fields that are still empty, in a stable order.
// family_sponsor_name is required only when the record declares a family sponsor.
func (r *IdentityRecord) MissingFields() []string {
	return MissingFields(r.Fields())
}

// MissingFields is the field-set form of IdentityRecord.MissingFields.
func MissingFields(fields FieldSet) []string {
	missing := make([]string, 0)
	for _, name := range ExpectedFrontFields {
		if !fields.Has(name) {
			missing = append(missing, name)
		}
	}
	for _, name := range ExpectedBackFields {
		if !fields.Has(name) {
			missing = append(missing, name)
		}
	}
	if fields.Get(FieldFamilySponsor) == "Yes" && !fields.Has(FieldFamilySponsorName) {
		missing = append(missing, FieldFamilySponsorName)
	}
	return missing
}
