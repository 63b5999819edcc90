package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/kirillkom/insurance-onboarding/internal/core/domain"
)

func newEditFixture() (*RecordUseCase, *recordRepoFake, *queueFake) {
	rec := domain.NewIdentityRecord("sess-1", "r", domain.FieldSet{domain.FieldName: "Old"}, time.Now().UTC())
	rec.ID = 5
	records := newRecordRepoFake(rec)
	queue := &queueFake{}
	return NewRecordUseCase(records, queue, nil), records, queue
}

func TestUpdateFieldGender(t *testing.T) {
	cases := []struct {
		field string
		value string
		want  string
		msg   string
	}{
		{"sex", "m", "Male", "Thank you, gender saved as Male."},
		{"Gender", " FEMALE ", "Female", "Thank you, gender saved as Female."},
		{"gender", "ذكر", "Male", "Thank you, gender saved as Male."},
		{"sex", "non binary", "Non Binary", "Thank you, gender saved as Non Binary."},
		{"gender", "", "", "Gender information saved."},
	}
	for _, tc := range cases {
		uc, records, _ := newEditFixture()
		got, err := uc.UpdateField(context.Background(), 5, tc.field, tc.value)
		if err != nil {
			t.Fatalf("UpdateField(%q, %q) error = %v", tc.field, tc.value, err)
		}
		if got.Message != tc.msg || got.Fields[domain.FieldGender] != tc.want {
			t.Fatalf("UpdateField(%q, %q) = %#v", tc.field, tc.value, got)
		}
		stored := records.bySession["sess-1"]
		if stored.Gender != tc.want || stored.Sex != tc.want {
			t.Fatalf("stored gender/sex = %q/%q, want %q", stored.Gender, stored.Sex, tc.want)
		}
	}
}

func TestUpdateFieldAllowListed(t *testing.T) {
	uc, records, queue := newEditFixture()

	got, err := uc.UpdateField(context.Background(), 5, "family_sponsor_name", "  Ahmed  ")
	if err != nil {
		t.Fatalf("UpdateField() error = %v", err)
	}
	if got.Message != "Saved" || got.Fields["family_sponsor_name"] != "Ahmed" {
		t.Fatalf("unexpected update: %#v", got)
	}
	if records.bySession["sess-1"].FamilySponsorName != "Ahmed" {
		t.Fatalf("value not stored")
	}
	if len(queue.published) != 1 || queue.published[0] != 5 {
		t.Fatalf("published = %v", queue.published)
	}
}

func TestUpdateFieldEmptyValueIsAllowedForTargetedField(t *testing.T) {
	uc, records, _ := newEditFixture()

	if _, err := uc.UpdateField(context.Background(), 5, "name", ""); err != nil {
		t.Fatalf("UpdateField() error = %v", err)
	}
	if records.bySession["sess-1"].Name != "" {
		t.Fatalf("expected targeted field to be cleared")
	}
}

func TestUpdateFieldErrors(t *testing.T) {
	uc, records, _ := newEditFixture()

	if _, err := uc.UpdateField(context.Background(), 5, "raw_response", "x"); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown field, got %v", err)
	}
	if _, err := uc.UpdateField(context.Background(), 5, "", "x"); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty field, got %v", err)
	}
	if _, err := uc.UpdateField(context.Background(), 99, "name", "x"); !domain.IsKind(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
	if records.updated != 0 {
		t.Fatalf("rejected edits must not write, got %d updates", records.updated)
	}
}
