package usecase

import (
	"context"
	"fmt"

	"github.com/kirillkom/insurance-onboarding/internal/core/domain"
	"github.com/kirillkom/insurance-onboarding/internal/core/ports"
)

// ReviewRecordUseCase marks identity records complete or incomplete based on
// which expected fields are still missing.
type ReviewRecordUseCase struct {
	records ports.RecordRepository
}

func NewReviewRecordUseCase(records ports.RecordRepository) *ReviewRecordUseCase {
	return &ReviewRecordUseCase{records: records}
}

func (uc *ReviewRecordUseCase) ReviewByID(ctx context.Context, recordID int64) error {
	rec, err := uc.records.GetByID(ctx, recordID)
	if err != nil {
		return fmt.Errorf("fetch identity record: %w", err)
	}

	status := domain.RecordComplete
	if len(rec.MissingFields()) > 0 {
		status = domain.RecordIncomplete
	}
	if rec.Status == status {
		return nil
	}
	if err := uc.records.UpdateStatus(ctx, recordID, status); err != nil {
		return fmt.Errorf("set status=%s: %w", status, err)
	}
	return nil
}
