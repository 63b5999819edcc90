package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/insurance-onboarding/internal/core/domain"
	"github.com/kirillkom/insurance-onboarding/internal/core/extraction"
	"github.com/kirillkom/insurance-onboarding/internal/core/ports"
	"github.com/kirillkom/insurance-onboarding/internal/core/recommend"
)

// rawTextLimit caps the per-side text kept in a record's audit payload.
const rawTextLimit = 2000

// FileRecognizer produces text for one uploaded file.
type FileRecognizer interface {
	Recognize(ctx context.Context, file domain.UploadFile) domain.ProcessedFile
}

// Recommender evaluates the product table.
type Recommender interface {
	Recommend(place domain.Place, band domain.SalaryBand) domain.Recommendation
}

type UploadUseCase struct {
	sessions    ports.SessionRepository
	records     ports.RecordRepository
	storage     ports.ObjectStorage
	queue       ports.MessageQueue
	recognizer  FileRecognizer
	recommender Recommender
	logger      *slog.Logger
}

func NewUploadUseCase(
	sessions ports.SessionRepository,
	records ports.RecordRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
	recognizer FileRecognizer,
	recommender Recommender,
	logger *slog.Logger,
) *UploadUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadUseCase{
		sessions:    sessions,
		records:     records,
		storage:     storage,
		queue:       queue,
		recognizer:  recognizer,
		recommender: recommender,
		logger:      logger,
	}
}

// Upload runs OCR over every file of the batch, merges the extracted fields
// into the session's identity record and returns product recommendations.
// Any OCR failure aborts the batch before the record or session is touched.
func (uc *UploadUseCase) Upload(ctx context.Context, sessionID string, files []domain.UploadFile) (*domain.UploadResult, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload emirates id", errors.New("session_id is required"))
	}
	if len(files) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload emirates id", errors.New("no files uploaded"))
	}

	session, err := uc.sessions.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("fetch session: %w", err)
	}

	processed, err := uc.processFiles(ctx, sessionID, files)
	if err != nil {
		return nil, err
	}

	frontText, backText, sides := GroupBySide(processed)
	fields := extraction.ExtractFront(frontText)
	fields.Merge(extraction.ExtractBack(backText))

	raw := domain.RawResponse{
		FrontText: truncateRunes(frontText, rawTextLimit),
		BackText:  truncateRunes(backText, rawTextLimit),
		Files:     processed,
	}
	rec, err := uc.upsertRecord(ctx, sessionID, fields, raw)
	if err != nil {
		return nil, err
	}

	session.SyncFromRecord(rec)
	session.EmiratesIDUploaded = true
	if sides.Back && (session.Step == domain.StepAwaitingIDFrontside || session.Step == domain.StepAwaitingIDBackside) {
		session.Step = domain.StepComplete
	}
	session.UpdatedAt = time.Now().UTC()
	if err := uc.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	place, detected := recommendationFor(uc.recommender, session, rec)

	uc.publish(ctx, rec.ID)

	return &domain.UploadResult{
		OK:                   true,
		ID:                   rec.ID,
		Fields:               fields,
		MissingFields:        rec.MissingFields(),
		SidesDetected:        sides,
		NextStep:             domain.StepComplete,
		FilesProcessed:       len(processed),
		IssuingPlaceDetected: detected,
		Products:             place.Products,
		Message:              place.Message,
		AskMobile:            session.Mobile == "",
	}, nil
}

// processFiles recognizes the whole batch before archiving any of it, so a
// failed batch leaves nothing in storage.
func (uc *UploadUseCase) processFiles(ctx context.Context, sessionID string, files []domain.UploadFile) ([]domain.ProcessedFile, error) {
	processed := make([]domain.ProcessedFile, 0, len(files))
	for _, file := range files {
		pf := uc.recognizer.Recognize(ctx, file)
		if pf.Status != domain.OCRSuccess {
			uc.logger.Warn("ocr failed",
				"session_id", sessionID,
				"file", file.Name,
				"ocr_status", int(pf.Status),
				"error", pf.Message,
			)
			return nil, domain.WrapError(
				domain.ErrOCRFailed,
				"recognize upload",
				fmt.Errorf("OCR.space failed for %s: %s", file.Name, pf.Message),
			)
		}
		pf.Side = extraction.DetectSide(pf.Text)
		processed = append(processed, pf)

		uc.logger.Info("upload file recognized",
			"session_id", sessionID,
			"file", file.Name,
			"side", string(pf.Side),
			"language", pf.Language,
		)
	}

	for i, file := range files {
		key := storageKey(sessionID, file.Name)
		if err := uc.storage.Save(ctx, key, bytes.NewReader(file.Data)); err != nil {
			return nil, fmt.Errorf("archive upload %s: %w", file.Name, err)
		}
		processed[i].StorageKey = key
	}
	return processed, nil
}

func (uc *UploadUseCase) upsertRecord(ctx context.Context, sessionID string, fields domain.FieldSet, raw domain.RawResponse) (*domain.IdentityRecord, error) {
	now := time.Now().UTC()
	rec, err := uc.records.GetBySessionID(ctx, sessionID)
	switch {
	case err == nil:
		rec.MergeFields(fields)
		rec.RawResponse = raw
		rec.UpdatedAt = now
		if err := uc.records.Update(ctx, rec); err != nil {
			return nil, fmt.Errorf("update identity record: %w", err)
		}
		return rec, nil
	case domain.IsKind(err, domain.ErrRecordNotFound):
		rec = domain.NewIdentityRecord(sessionID, uuid.NewString(), fields, now)
		rec.RawResponse = raw
		if err := uc.records.Create(ctx, rec); err != nil {
			return nil, fmt.Errorf("create identity record: %w", err)
		}
		return rec, nil
	default:
		return nil, fmt.Errorf("fetch identity record: %w", err)
	}
}

func (uc *UploadUseCase) publish(ctx context.Context, recordID int64) {
	if uc.queue == nil {
		return
	}
	if err := uc.queue.PublishRecordUpdated(context.WithoutCancel(ctx), recordID); err != nil {
		uc.logger.Error("publish record update failed", "record_id", recordID, "error", err)
	}
}

// recommendationFor runs the product table for the record's issuing place and
// the session's salary answer. The second value is the detected place, if any.
func recommendationFor(r Recommender, session *domain.ChatSession, rec *domain.IdentityRecord) (domain.Recommendation, *string) {
	issuing := ""
	if rec != nil {
		issuing = rec.IssuingPlace
	}
	place, ok := recommend.NormalizePlace(issuing)
	band := recommend.NormalizeSalary(session.Salary)

	var detected *string
	if ok {
		s := string(place)
		detected = &s
	}
	return r.Recommend(place, band), detected
}

func storageKey(sessionID, filename string) string {
	return fmt.Sprintf("%s/%s_%s", sanitizeSegment(sessionID, "session"), uuid.NewString(), sanitizeSegment(filepath.Base(filename), "upload.bin"))
}

func sanitizeSegment(name, fallback string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if strings.Trim(name, "._") == "" {
		return fallback
	}
	return name
}

func truncateRunes(s string, limit int) string {
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}
