package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/insurance-onboarding/internal/core/domain"
	"github.com/kirillkom/insurance-onboarding/internal/core/ports"
)

type ChatUseCase struct {
	sessions  ports.SessionRepository
	records   ports.RecordRepository
	messages  ports.MessageRepository
	generator ports.ReplyGenerator
	logger    *slog.Logger
}

// NewChatUseCase wires the chat flow. A nil generator keeps every turn on the
// scripted flow.
func NewChatUseCase(
	sessions ports.SessionRepository,
	records ports.RecordRepository,
	messages ports.MessageRepository,
	generator ports.ReplyGenerator,
	logger *slog.Logger,
) *ChatUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatUseCase{
		sessions:  sessions,
		records:   records,
		messages:  messages,
		generator: generator,
		logger:    logger,
	}
}

func (uc *ChatUseCase) Reply(ctx context.Context, sessionID, userText string) (*domain.ChatReply, error) {
	userText = strings.TrimSpace(userText)
	session, err := uc.loadOrCreateSession(ctx, strings.TrimSpace(sessionID))
	if err != nil {
		return nil, err
	}

	reply, err := uc.generatedReply(ctx, session, userText)
	if err != nil {
		uc.logger.Warn("reply generator unavailable, using scripted flow",
			"session_id", session.SessionID,
			"error", err,
		)
		reply = uc.scriptedReply(ctx, session, userText)
	}

	session.UpdatedAt = time.Now().UTC()
	if err := uc.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	if err := uc.saveTurn(ctx, session.SessionID, userText, reply.Reply); err != nil {
		return nil, err
	}

	reply.SessionID = session.SessionID
	reply.Step = session.Step
	return reply, nil
}

func (uc *ChatUseCase) History(ctx context.Context, sessionID string) ([]domain.ChatMessage, error) {
	if _, err := uc.sessions.GetBySessionID(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("fetch session: %w", err)
	}
	msgs, err := uc.messages.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	return msgs, nil
}

func (uc *ChatUseCase) loadOrCreateSession(ctx context.Context, sessionID string) (*domain.ChatSession, error) {
	if sessionID != "" {
		session, err := uc.sessions.GetBySessionID(ctx, sessionID)
		if err == nil {
			return session, nil
		}
		if !domain.IsKind(err, domain.ErrSessionNotFound) {
			return nil, fmt.Errorf("fetch session: %w", err)
		}
	} else {
		sessionID = uuid.NewString()
	}

	session := domain.NewChatSession(sessionID, uuid.NewString(), time.Now().UTC())
	if err := uc.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

// generatedReply asks the generator for a structured reply and applies its
// session updates. Any error means the caller should fall back.
func (uc *ChatUseCase) generatedReply(ctx context.Context, session *domain.ChatSession, userText string) (*domain.ChatReply, error) {
	if uc.generator == nil {
		return nil, fmt.Errorf("no reply generator configured")
	}
	replyCtx, err := uc.replyContext(ctx, session)
	if err != nil {
		return nil, err
	}

	out, err := uc.generator.GenerateReply(ctx, domain.ReplyRequest{Context: replyCtx, LastUserMessage: userText})
	if err != nil {
		return nil, fmt.Errorf("generate reply: %w", err)
	}

	applySessionUpdates(session, out.SessionUpdates)
	if out.Complete {
		session.IsCompleted = true
		session.Step = domain.StepComplete
	}
	options := out.Options
	if options == nil {
		options = []string{}
	}
	return &domain.ChatReply{Reply: out.Reply, Options: options, Source: domain.ReplySourceAI}, nil
}

func (uc *ChatUseCase) scriptedReply(ctx context.Context, session *domain.ChatSession, userText string) *domain.ChatReply {
	turn := fsmStep(session, userText)
	if turn.FreeChat {
		turn.Reply = uc.freeChat(ctx, session.SessionID, userText)
	}
	return &domain.ChatReply{Reply: turn.Reply, Options: turn.Options, Source: domain.ReplySourceFSM}
}

func (uc *ChatUseCase) freeChat(ctx context.Context, sessionID, userText string) string {
	if uc.generator == nil {
		return replyTrouble
	}
	text, err := uc.generator.GenerateText(ctx, userText)
	if err != nil {
		uc.logger.Warn("free chat generation failed", "session_id", sessionID, "error", err)
		return replyTrouble
	}
	return strings.TrimSpace(text)
}

func (uc *ChatUseCase) replyContext(ctx context.Context, session *domain.ChatSession) (domain.ReplyContext, error) {
	step := session.Step
	if step == "" {
		step = domain.StepStart
	}
	out := domain.ReplyContext{
		Step:                step,
		LookingForInsurance: session.LookingForInsurance,
		Role:                session.Role,
		Salary:              session.Salary,
		DependerType:        session.DependerType,
		IsCompleted:         session.IsCompleted,
		EmiratesIDData:      &domain.EmiratesIDSummary{},
	}

	rec, err := uc.records.GetBySessionID(ctx, session.SessionID)
	switch {
	case err == nil:
		out.EmiratesIDData = &domain.EmiratesIDSummary{
			FullName:         rec.Name,
			EmiratesIDNumber: rec.EmiratesID,
			DOB:              rec.DOB,
			Expiry:           rec.ExpiryDate,
			Nationality:      rec.Nationality,
			Occupation:       rec.Occupation,
			Gender:           rec.Gender,
			Address:          rec.Address,
			Employer:         rec.Employer,
			IssuingPlace:     rec.IssuingPlace,
			FamilySponsor:    rec.FamilySponsor,
		}
	case domain.IsKind(err, domain.ErrRecordNotFound):
	default:
		return domain.ReplyContext{}, fmt.Errorf("fetch identity record: %w", err)
	}
	return out, nil
}

func (uc *ChatUseCase) saveTurn(ctx context.Context, sessionID, userText, botText string) error {
	now := time.Now().UTC()
	if userText != "" {
		if err := uc.messages.Append(ctx, domain.ChatMessage{SessionID: sessionID, Role: domain.RoleUser, Content: userText, CreatedAt: now}); err != nil {
			return fmt.Errorf("save user message: %w", err)
		}
	}
	if botText != "" {
		if err := uc.messages.Append(ctx, domain.ChatMessage{SessionID: sessionID, Role: domain.RoleBot, Content: botText, CreatedAt: now}); err != nil {
			return fmt.Errorf("save bot message: %w", err)
		}
	}
	return nil
}

// sessionStringSetters lists the free-text session fields a generator may set.
var sessionStringSetters = map[string]func(*domain.ChatSession, string){
	"looking_for_insurance": func(s *domain.ChatSession, v string) { s.LookingForInsurance = v },
	"role":                  func(s *domain.ChatSession, v string) { s.Role = v },
	"depender_type":         func(s *domain.ChatSession, v string) { s.DependerType = v },
	"salary":                func(s *domain.ChatSession, v string) { s.Salary = v },
	"full_name":             func(s *domain.ChatSession, v string) { s.FullName = v },
	"emirates_id_number":    func(s *domain.ChatSession, v string) { s.EmiratesIDNumber = v },
	"dob":                   func(s *domain.ChatSession, v string) { s.DOB = v },
	"expiry":                func(s *domain.ChatSession, v string) { s.Expiry = v },
	"nationality":           func(s *domain.ChatSession, v string) { s.Nationality = v },
	"occupation":            func(s *domain.ChatSession, v string) { s.Occupation = v },
}

// applySessionUpdates copies allow-listed keys onto the session. Unknown keys
// and unknown step values are ignored.
func applySessionUpdates(s *domain.ChatSession, updates map[string]any) {
	for key, value := range updates {
		switch key {
		case "step":
			step := domain.Step(stringInput(updates, key, ""))
			if domain.KnownSteps[step] {
				s.Step = step
			}
		case "emirates_id_uploaded":
			s.EmiratesIDUploaded = boolInput(updates, key, s.EmiratesIDUploaded)
		case "is_completed":
			s.IsCompleted = boolInput(updates, key, s.IsCompleted)
		default:
			set, ok := sessionStringSetters[key]
			if !ok {
				continue
			}
			if value == nil {
				set(s, "")
				continue
			}
			set(s, stringInput(updates, key, ""))
		}
	}
}

func stringInput(input map[string]any, key, fallback string) string {
	if input == nil {
		return fallback
	}
	value, ok := input[key]
	if !ok || value == nil {
		return fallback
	}
	switch typed := value.(type) {
	case string:
		return typed
	default:
		return fmt.Sprint(typed)
	}
}

func boolInput(input map[string]any, key string, fallback bool) bool {
	if input == nil {
		return fallback
	}
	value, ok := input[key]
	if !ok || value == nil {
		return fallback
	}
	switch typed := value.(type) {
	case bool:
		return typed
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(typed))
		if err != nil {
			return fallback
		}
		return parsed
	default:
		return fallback
	}
}
