package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/insurance-onboarding/internal/core/domain"
	"github.com/kirillkom/insurance-onboarding/internal/core/extraction"
	"github.com/kirillkom/insurance-onboarding/internal/core/ports"
	"github.com/kirillkom/insurance-onboarding/internal/core/recommend"
)

type RecordUseCase struct {
	records ports.RecordRepository
	queue   ports.MessageQueue
	logger  *slog.Logger
}

func NewRecordUseCase(records ports.RecordRepository, queue ports.MessageQueue, logger *slog.Logger) *RecordUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordUseCase{records: records, queue: queue, logger: logger}
}

// UpdateField applies one edit. sex and gender are written together in
// canonical form; every other field must be on the record allow-list.
func (uc *RecordUseCase) UpdateField(ctx context.Context, recordID int64, field, value string) (*ports.FieldUpdate, error) {
	field = strings.ToLower(strings.TrimSpace(field))
	value = strings.TrimSpace(value)
	if recordID <= 0 || field == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "update record field", errors.New("id and field required"))
	}

	rec, err := uc.records.GetByID(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("fetch identity record: %w", err)
	}

	var out *ports.FieldUpdate
	if field == domain.FieldSex || field == domain.FieldGender {
		canon := canonicalSex(value)
		rec.Gender = canon
		rec.Sex = canon
		msg := "Gender information saved."
		if canon != "" {
			msg = fmt.Sprintf("Thank you, gender saved as %s.", canon)
		}
		out = &ports.FieldUpdate{Message: msg, Fields: map[string]string{domain.FieldGender: canon}}
	} else {
		if err := rec.SetField(field, value); err != nil {
			return nil, err
		}
		out = &ports.FieldUpdate{Message: "Saved", Fields: map[string]string{field: value}}
	}

	rec.UpdatedAt = time.Now().UTC()
	if err := uc.records.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("update identity record: %w", err)
	}

	if uc.queue != nil {
		if err := uc.queue.PublishRecordUpdated(context.WithoutCancel(ctx), rec.ID); err != nil {
			uc.logger.Error("publish record update failed", "record_id", rec.ID, "error", err)
		}
	}
	return out, nil
}

func canonicalSex(value string) string {
	if value == "" {
		return ""
	}
	switch canon := extraction.CanonicalGender(strings.ToLower(value)); canon {
	case "Male", "Female":
		return canon
	default:
		return recommend.TitleCase(value)
	}
}
