package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/kirillkom/insurance-onboarding/internal/core/domain"
)

func TestReplyCreatesSessionAndUsesGenerator(t *testing.T) {
	sessions := newSessionRepoFake()
	messages := &messageRepoFake{}
	gen := &generatorFake{reply: &domain.GeneratedReply{
		Reply:   "Are you looking for medical insurance?",
		Options: []string{"Yes", "No"},
		SessionUpdates: map[string]any{
			"step":      "q1",
			"role":      "Employee",
			"salary":    5500.0,
			"mobile":    "+971500000000",
			"unknown_x": "ignored",
		},
	}}
	uc := NewChatUseCase(sessions, newRecordRepoFake(), messages, gen, nil)

	got, err := uc.Reply(context.Background(), "", "hello")
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}
	if got.SessionID == "" || got.Step != domain.StepQ1 || got.Source != domain.ReplySourceAI {
		t.Fatalf("unexpected reply: %#v", got)
	}

	session := sessions.byID[got.SessionID]
	if session == nil || sessions.created != 1 {
		t.Fatalf("expected a created session")
	}
	if session.Role != "Employee" || session.Salary != "5500" {
		t.Fatalf("allow-listed updates not applied: %#v", session)
	}
	if session.Mobile != "" {
		t.Fatalf("mobile is not generator-writable, got %q", session.Mobile)
	}
	if len(messages.msgs) != 2 || messages.msgs[0].Role != domain.RoleUser || messages.msgs[1].Role != domain.RoleBot {
		t.Fatalf("unexpected transcript: %#v", messages.msgs)
	}

	req := gen.requests[0]
	if req.Context.Step != domain.StepStart || req.LastUserMessage != "hello" || req.Context.EmiratesIDData == nil {
		t.Fatalf("unexpected generator request: %#v", req)
	}
}

func TestReplyIgnoresUnknownStepValue(t *testing.T) {
	sessions := newSessionRepoFake(testSession(domain.StepQ2, ""))
	gen := &generatorFake{reply: &domain.GeneratedReply{Reply: "ok", SessionUpdates: map[string]any{"step": "teleport"}}}
	uc := NewChatUseCase(sessions, newRecordRepoFake(), &messageRepoFake{}, gen, nil)

	got, err := uc.Reply(context.Background(), "sess-1", "x")
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}
	if got.Step != domain.StepQ2 {
		t.Fatalf("step = %q, want q2", got.Step)
	}
	if got.Options == nil {
		t.Fatalf("options must never be null")
	}
}

func TestReplyCompleteForcesCompletion(t *testing.T) {
	sessions := newSessionRepoFake(testSession(domain.StepSponsorQ, ""))
	gen := &generatorFake{reply: &domain.GeneratedReply{Reply: "All done", Complete: true}}
	uc := NewChatUseCase(sessions, newRecordRepoFake(), &messageRepoFake{}, gen, nil)

	got, err := uc.Reply(context.Background(), "sess-1", "no")
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}
	if got.Step != domain.StepComplete || !sessions.byID["sess-1"].IsCompleted {
		t.Fatalf("expected completed session, got %#v", sessions.byID["sess-1"])
	}
}

func TestReplyPassesIdentityRecordToGenerator(t *testing.T) {
	rec := domain.NewIdentityRecord("sess-1", "r", domain.FieldSet{domain.FieldName: "Aisha", domain.FieldIssuingPlace: "Dubai"}, time.Now().UTC())
	rec.ID = 3
	gen := &generatorFake{reply: &domain.GeneratedReply{Reply: "hi"}}
	uc := NewChatUseCase(newSessionRepoFake(testSession(domain.StepComplete, "")), newRecordRepoFake(rec), &messageRepoFake{}, gen, nil)

	if _, err := uc.Reply(context.Background(), "sess-1", "hi"); err != nil {
		t.Fatalf("Reply() error = %v", err)
	}
	data := gen.requests[0].Context.EmiratesIDData
	if data.FullName != "Aisha" || data.IssuingPlace != "Dubai" {
		t.Fatalf("unexpected identity summary: %#v", data)
	}
}

func TestReplyFallsBackToScriptedFlow(t *testing.T) {
	sessions := newSessionRepoFake(testSession(domain.StepQ2, ""))
	gen := &generatorFake{replyErr: errors.New("llm: unparseable reply")}
	uc := NewChatUseCase(sessions, newRecordRepoFake(), &messageRepoFake{}, gen, nil)

	got, err := uc.Reply(context.Background(), "sess-1", "Employee")
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}
	if got.Source != domain.ReplySourceFSM || got.Reply != replyMonthlySalary || got.Step != domain.StepQ3 {
		t.Fatalf("unexpected fallback reply: %#v", got)
	}
	if !reflect.DeepEqual(got.Options, salaryOptions) {
		t.Fatalf("options = %v", got.Options)
	}
}

func TestReplyFreeChatWhenComplete(t *testing.T) {
	cases := []struct {
		name string
		gen  *generatorFake
		want string
	}{
		{
			name: "generator text",
			gen:  &generatorFake{replyErr: errors.New("down"), text: " We cover outpatient visits. "},
			want: "We cover outpatient visits.",
		},
		{
			name: "generator failure",
			gen:  &generatorFake{replyErr: errors.New("down"), textErr: errors.New("down")},
			want: replyTrouble,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc := NewChatUseCase(newSessionRepoFake(testSession(domain.StepComplete, "")), newRecordRepoFake(), &messageRepoFake{}, tc.gen, nil)
			got, err := uc.Reply(context.Background(), "sess-1", "what is covered?")
			if err != nil {
				t.Fatalf("Reply() error = %v", err)
			}
			if got.Reply != tc.want {
				t.Fatalf("reply = %q, want %q", got.Reply, tc.want)
			}
		})
	}
}

func TestReplyWithoutGeneratorUsesScriptedFlow(t *testing.T) {
	uc := NewChatUseCase(newSessionRepoFake(testSession(domain.StepComplete, "")), newRecordRepoFake(), &messageRepoFake{}, nil, nil)

	got, err := uc.Reply(context.Background(), "sess-1", "hi")
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}
	if got.Reply != replyTrouble {
		t.Fatalf("reply = %q", got.Reply)
	}
}

func TestHistory(t *testing.T) {
	messages := &messageRepoFake{msgs: []domain.ChatMessage{
		{SessionID: "sess-1", Role: domain.RoleUser, Content: "hi"},
		{SessionID: "other", Role: domain.RoleUser, Content: "x"},
	}}
	uc := NewChatUseCase(newSessionRepoFake(testSession(domain.StepStart, "")), newRecordRepoFake(), messages, nil, nil)

	got, err := uc.History(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(got) != 1 || got[0].Content != "hi" {
		t.Fatalf("unexpected history: %#v", got)
	}
	if _, err := uc.History(context.Background(), "missing"); !domain.IsKind(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestApplySessionUpdates(t *testing.T) {
	s := &domain.ChatSession{Step: domain.StepStart, Occupation: "Clerk"}
	applySessionUpdates(s, map[string]any{
		"step":                 "awaiting_id_frontside",
		"is_completed":         "true",
		"emirates_id_uploaded": true,
		"occupation":           nil,
		"nationality":          "India",
		"id":                   99,
	})
	if s.Step != domain.StepAwaitingIDFrontside || !s.IsCompleted || !s.EmiratesIDUploaded {
		t.Fatalf("unexpected session: %#v", s)
	}
	if s.Occupation != "" || s.Nationality != "India" || s.ID != 0 {
		t.Fatalf("unexpected field values: %#v", s)
	}
}
