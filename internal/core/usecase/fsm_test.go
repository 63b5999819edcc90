package usecase

import (
	"reflect"
	"testing"

	"github.com/kirillkom/insurance-onboarding/internal/core/domain"
)

func TestFSMStep(t *testing.T) {
	cases := []struct {
		name     string
		step     domain.Step
		text     string
		reply    string
		options  []string
		nextStep domain.Step
	}{
		{"start", domain.StepStart, "", replyLookingForInsurance, []string{"Yes", "No"}, domain.StepQ1},
		{"empty step starts over", "", "", replyLookingForInsurance, []string{"Yes", "No"}, domain.StepQ1},
		{"q1 yes", domain.StepQ1, "yes please", replyEmployeeOrDepender, []string{"Employee", "Depender"}, domain.StepQ2},
		{"q1 no", domain.StepQ1, "no", replyNoHelpNeeded, []string{}, domain.StepQ1},
		{"q2 employee", domain.StepQ2, "E", replyMonthlySalary, salaryOptions, domain.StepQ3},
		{"q2 depender", domain.StepQ2, "depender", replyDependerType, []string{"Spouse", "Child"}, domain.StepQ2a},
		{"q2 invalid", domain.StepQ2, "maybe", replySelectRole, []string{"Employee", "Depender"}, domain.StepQ2},
		{"q2a spouse", domain.StepQ2a, "spouse", replySponsorSalary, salaryOptions, domain.StepQ3},
		{"q2a child", domain.StepQ2a, "c", replySponsorSalary, salaryOptions, domain.StepQ3},
		{"q2a invalid", domain.StepQ2a, "cousin", replySelectDepender, []string{"Spouse", "Child"}, domain.StepQ2a},
		{"q3 salary", domain.StepQ3, "4000 - 5000 AED", replyUploadID, []string{}, domain.StepAwaitingIDFrontside},
		{"awaiting front", domain.StepAwaitingIDFrontside, "done", replyUploadFront, []string{}, domain.StepAwaitingIDFrontside},
		{"awaiting back", domain.StepAwaitingIDBackside, "done", replyUploadBack, []string{}, domain.StepAwaitingIDBackside},
		{"salary_q resumes as q3", domain.StepSalaryQ, "above 5000 AED", replyUploadID, []string{}, domain.StepAwaitingIDFrontside},
		{"sponsor_q completes", domain.StepSponsorQ, "No", replyOnboardingComplete, []string{}, domain.StepComplete},
		{"unknown step", domain.Step("bogus"), "x", replyLostTrack, []string{"Yes", "No"}, domain.StepStart},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := &domain.ChatSession{Step: tc.step}
			turn := fsmStep(s, tc.text)
			if turn.Reply != tc.reply {
				t.Fatalf("reply = %q, want %q", turn.Reply, tc.reply)
			}
			if !reflect.DeepEqual(turn.Options, tc.options) {
				t.Fatalf("options = %v, want %v", turn.Options, tc.options)
			}
			if s.Step != tc.nextStep {
				t.Fatalf("step = %q, want %q", s.Step, tc.nextStep)
			}
		})
	}
}

func TestFSMStepSessionSideEffects(t *testing.T) {
	s := &domain.ChatSession{Step: domain.StepQ1}
	fsmStep(s, "No thanks")
	if s.LookingForInsurance != "No" || !s.IsCompleted {
		t.Fatalf("unexpected session: %#v", s)
	}

	s = &domain.ChatSession{Step: domain.StepSalaryQ}
	fsmStep(s, "above 5000 AED")
	if s.Salary != "above 5000 AED" {
		t.Fatalf("salary_q must store the salary, got %q", s.Salary)
	}

	s = &domain.ChatSession{Step: domain.StepSponsorQ}
	fsmStep(s, "No")
	if !s.IsCompleted {
		t.Fatalf("sponsor_q must complete the session: %#v", s)
	}

	s = &domain.ChatSession{Step: domain.StepQ2a}
	fsmStep(s, "Child")
	if s.DependerType != "Child" {
		t.Fatalf("depender_type = %q", s.DependerType)
	}

	s = &domain.ChatSession{Step: domain.StepQ3}
	fsmStep(s, "above 5000 AED")
	if s.Salary != "above 5000 AED" {
		t.Fatalf("salary = %q", s.Salary)
	}
}

func TestFSMStepCompleteRequestsFreeChat(t *testing.T) {
	s := &domain.ChatSession{Step: domain.StepComplete}
	if turn := fsmStep(s, "hello"); !turn.FreeChat {
		t.Fatalf("expected free chat turn, got %#v", turn)
	}
}
