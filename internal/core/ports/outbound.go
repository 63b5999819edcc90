package ports

import (
	"context"
	"io"

	"github.com/kirillkom/insurance-onboarding/internal/core/domain"
)

// SessionRepository persists chat sessions keyed by their client-visible id.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.ChatSession) error
	GetBySessionID(ctx context.Context, sessionID string) (*domain.ChatSession, error)
	Update(ctx context.Context, session *domain.ChatSession) error
}

// RecordRepository persists the identity record attached to a session.
type RecordRepository interface {
	Create(ctx context.Context, rec *domain.IdentityRecord) error
	GetByID(ctx context.Context, id int64) (*domain.IdentityRecord, error)
	GetBySessionID(ctx context.Context, sessionID string) (*domain.IdentityRecord, error)
	Update(ctx context.Context, rec *domain.IdentityRecord) error
	UpdateStatus(ctx context.Context, id int64, status domain.RecordStatus) error
}

// MessageRepository stores the chat transcript.
type MessageRepository interface {
	Append(ctx context.Context, msg domain.ChatMessage) error
	ListBySession(ctx context.Context, sessionID string) ([]domain.ChatMessage, error)
}

// OCRRequest is one recognition call for one file in one language.
type OCRRequest struct {
	File     domain.UploadFile
	Language domain.OCRLanguage
}

// TextRecognizer calls the remote OCR service. Transport and provider
// failures are reported through OCRResult.Status, not as errors.
type TextRecognizer interface {
	Recognize(ctx context.Context, req OCRRequest) domain.OCRResult
}

// SpreadsheetReader reads cell text out of workbook uploads.
type SpreadsheetReader interface {
	ReadText(ctx context.Context, data []byte) (string, error)
}

// PDFInspector reports document metadata without rendering.
type PDFInspector interface {
	PageCount(data []byte) (int, error)
}

// ReplyGenerator produces structured onboarding replies and free chat text.
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, req domain.ReplyRequest) (*domain.GeneratedReply, error)
	GenerateText(ctx context.Context, userText string) (string, error)
}

// ObjectStorage archives uploaded source files.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes and consumes identity-record update events.
type MessageQueue interface {
	PublishRecordUpdated(ctx context.Context, recordID int64) error
	SubscribeRecordUpdated(ctx context.Context, handler func(context.Context, int64) error) error
}
