package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kirillkom/insurance-onboarding/internal/core/domain"
	"github.com/kirillkom/insurance-onboarding/internal/core/ports"
)

type SessionUseCase struct {
	sessions    ports.SessionRepository
	records     ports.RecordRepository
	recommender Recommender
}

func NewSessionUseCase(sessions ports.SessionRepository, records ports.RecordRepository, recommender Recommender) *SessionUseCase {
	return &SessionUseCase{sessions: sessions, records: records, recommender: recommender}
}

func (uc *SessionUseCase) Get(ctx context.Context, sessionID string) (*ports.SessionView, error) {
	session, err := uc.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	rec, err := uc.optionalRecord(ctx, session.SessionID)
	if err != nil {
		return nil, err
	}
	return &ports.SessionView{Session: session, Record: rec}, nil
}

// Status reports whether the session is waiting for the back side of the card.
func (uc *SessionUseCase) Status(ctx context.Context, sessionID string) (*ports.SessionStatus, error) {
	session, err := uc.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &ports.SessionStatus{
		NeedsBackside: session.Step == domain.StepAwaitingIDBackside,
		Step:          session.Step,
	}, nil
}

// SaveMobile stores the contact number and re-evaluates recommendations.
func (uc *SessionUseCase) SaveMobile(ctx context.Context, sessionID, mobile string) (*ports.MobileUpdate, error) {
	mobile = strings.TrimSpace(mobile)
	if strings.TrimSpace(sessionID) == "" || mobile == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "save mobile", errors.New("session_id and mobile required"))
	}
	session, err := uc.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	session.Mobile = mobile
	session.UpdatedAt = time.Now().UTC()
	if err := uc.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	rec, err := uc.optionalRecord(ctx, session.SessionID)
	if err != nil {
		return nil, err
	}
	result, _ := recommendationFor(uc.recommender, session, rec)
	return &ports.MobileUpdate{
		Message:     fmt.Sprintf("Thanks! I've updated your mobile number to %s.", mobile),
		Products:    result.Products,
		InfoMessage: result.Message,
	}, nil
}

func (uc *SessionUseCase) session(ctx context.Context, sessionID string) (*domain.ChatSession, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "fetch session", errors.New("session_id required"))
	}
	session, err := uc.sessions.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("fetch session: %w", err)
	}
	return session, nil
}

func (uc *SessionUseCase) optionalRecord(ctx context.Context, sessionID string) (*domain.IdentityRecord, error) {
	rec, err := uc.records.GetBySessionID(ctx, sessionID)
	if err == nil {
		return rec, nil
	}
	if domain.IsKind(err, domain.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, fmt.Errorf("fetch identity record: %w", err)
}
