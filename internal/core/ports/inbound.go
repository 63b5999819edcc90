package ports

import (
	"context"

	"github.com/kirillkom/insurance-onboarding/internal/core/domain"
)

// IdentityUploader is the inbound contract for Emirates ID upload batches.
type IdentityUploader interface {
	Upload(ctx context.Context, sessionID string, files []domain.UploadFile) (*domain.UploadResult, error)
}

// ChatService drives one onboarding chat turn and serves the transcript.
type ChatService interface {
	Reply(ctx context.Context, sessionID, userText string) (*domain.ChatReply, error)
	History(ctx context.Context, sessionID string) ([]domain.ChatMessage, error)
}

// RecordEditor applies a single allow-listed field edit to an identity record.
type RecordEditor interface {
	UpdateField(ctx context.Context, recordID int64, field, value string) (*FieldUpdate, error)
}

// FieldUpdate is the outcome of a record edit.
type FieldUpdate struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}

// SessionService serves session reads and contact updates.
type SessionService interface {
	Get(ctx context.Context, sessionID string) (*SessionView, error)
	Status(ctx context.Context, sessionID string) (*SessionStatus, error)
	SaveMobile(ctx context.Context, sessionID, mobile string) (*MobileUpdate, error)
}

// SessionView is a session with its identity record, if any.
type SessionView struct {
	Session *domain.ChatSession    `json:"chat_session"`
	Record  *domain.IdentityRecord `json:"emirates_record,omitempty"`
}

type SessionStatus struct {
	NeedsBackside bool        `json:"needs_backside"`
	Step          domain.Step `json:"step"`
}

type MobileUpdate struct {
	Message     string           `json:"message"`
	Products    []domain.Product `json:"products"`
	InfoMessage *string          `json:"info_message"`
}

// RecordReviewer is the inbound contract for asynchronous record review.
type RecordReviewer interface {
	ReviewByID(ctx context.Context, recordID int64) error
}
