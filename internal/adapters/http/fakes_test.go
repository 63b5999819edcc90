package httpadapter

import (
	"context"
	"net/http"

	"github.com/kirillkom/insurance-onboarding/internal/config"
	"github.com/kirillkom/insurance-onboarding/internal/core/domain"
	"github.com/kirillkom/insurance-onboarding/internal/core/ports"
	"github.com/kirillkom/insurance-onboarding/internal/observability/metrics"
)

type uploaderFake struct {
	sessionID string
	files     []domain.UploadFile
	result    *domain.UploadResult
	err       error
}

func (f *uploaderFake) Upload(_ context.Context, sessionID string, files []domain.UploadFile) (*domain.UploadResult, error) {
	f.sessionID = sessionID
	f.files = files
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &domain.UploadResult{OK: true, ID: 7, NextStep: domain.StepComplete, FilesProcessed: len(files)}, nil
}

type chatFake struct {
	reply    *domain.ChatReply
	messages []domain.ChatMessage
	err      error
}

func (f *chatFake) Reply(_ context.Context, sessionID, _ string) (*domain.ChatReply, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.reply != nil {
		return f.reply, nil
	}
	return &domain.ChatReply{Reply: "Are you looking for medical insurance?", SessionID: sessionID, Step: domain.StepQ1, Source: domain.ReplySourceFSM}, nil
}

func (f *chatFake) History(context.Context, string) ([]domain.ChatMessage, error) {
	return f.messages, f.err
}

type recordsFake struct {
	recordID int64
	field    string
	value    string
	err      error
}

func (f *recordsFake) UpdateField(_ context.Context, recordID int64, field, value string) (*ports.FieldUpdate, error) {
	f.recordID, f.field, f.value = recordID, field, value
	if f.err != nil {
		return nil, f.err
	}
	return &ports.FieldUpdate{Message: "Saved", Fields: map[string]string{field: value}}, nil
}

type sessionsFake struct {
	mobile string
	err    error
}

func (f *sessionsFake) Get(_ context.Context, sessionID string) (*ports.SessionView, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &ports.SessionView{Session: &domain.ChatSession{SessionID: sessionID, Step: domain.StepQ2}}, nil
}

func (f *sessionsFake) Status(context.Context, string) (*ports.SessionStatus, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &ports.SessionStatus{NeedsBackside: true, Step: domain.StepAwaitingIDBackside}, nil
}

func (f *sessionsFake) SaveMobile(_ context.Context, _ string, mobile string) (*ports.MobileUpdate, error) {
	f.mobile = mobile
	if f.err != nil {
		return nil, f.err
	}
	return &ports.MobileUpdate{Message: "Mobile number saved."}, nil
}

func newServices() Services {
	return Services{
		Uploads:  &uploaderFake{},
		Chat:     &chatFake{},
		Records:  &recordsFake{},
		Sessions: &sessionsFake{},
	}
}

func newTestHandler(cfg config.Config) http.Handler {
	return NewRouter(cfg, newServices(), metrics.NewHTTPServerMetrics("api-test")).Handler()
}
