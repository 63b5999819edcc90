package usecase

import (
	"strings"

	"github.com/kirillkom/insurance-onboarding/internal/core/domain"
)

const (
	replyLookingForInsurance = "Are you looking for medical insurance?"
	replyEmployeeOrDepender  = "Are you an employee or a depender?"
	replyNoHelpNeeded        = "Okay. Let me know if you need help later."
	replyMonthlySalary       = "What is your current monthly salary?"
	replyDependerType        = "What type of depender are you?"
	replySelectRole          = "Please select Employee or Depender."
	replySponsorSalary       = "What is your sponsor's current monthly salary?"
	replySelectDepender      = "Please select Spouse or Child."
	replyUploadID            = "Please upload the insured person's valid Emirates ID."
	replyUploadFront         = "I see you're trying to upload an Emirates ID. Please use the file upload button to submit the front side of your Emirates ID."
	replyUploadBack          = "I see you're trying to upload an Emirates ID. Please use the file upload button to submit the back side of your Emirates ID."
	replyTrouble             = "Sorry, I'm having trouble right now."
	replyOnboardingComplete  = "Thank you. Your onboarding is now complete."
	replyLostTrack           = "I seem to have lost track. Let's start over. Are you looking for medical insurance?"
)

var salaryOptions = []string{"below 4000 AED", "4000 - 5000 AED", "above 5000 AED"}

// fsmTurn is one deterministic reply. FreeChat asks the caller to answer with
// the text generator instead.
type fsmTurn struct {
	Reply    string
	Options  []string
	FreeChat bool
}

// fsmStep advances the scripted onboarding flow by one user message.
func fsmStep(s *domain.ChatSession, userText string) fsmTurn {
	step := s.Step
	if step == "" {
		step = domain.StepStart
	}
	text := strings.ToLower(strings.TrimSpace(userText))

	switch step {
	case domain.StepStart:
		s.Step = domain.StepQ1
		return fsmTurn{Reply: replyLookingForInsurance, Options: []string{"Yes", "No"}}

	case domain.StepQ1:
		if strings.HasPrefix(text, "y") {
			s.LookingForInsurance = "Yes"
			s.Step = domain.StepQ2
			return fsmTurn{Reply: replyEmployeeOrDepender, Options: []string{"Employee", "Depender"}}
		}
		s.LookingForInsurance = "No"
		s.IsCompleted = true
		return fsmTurn{Reply: replyNoHelpNeeded, Options: []string{}}

	case domain.StepQ2:
		switch text {
		case "e", "employee":
			s.Role = "Employee"
			s.Step = domain.StepQ3
			return fsmTurn{Reply: replyMonthlySalary, Options: cloneOptions(salaryOptions)}
		case "d", "depender":
			s.Role = "Depender"
			s.Step = domain.StepQ2a
			return fsmTurn{Reply: replyDependerType, Options: []string{"Spouse", "Child"}}
		default:
			return fsmTurn{Reply: replySelectRole, Options: []string{"Employee", "Depender"}}
		}

	case domain.StepQ2a:
		switch text {
		case "s", "spouse":
			s.DependerType = "Spouse"
		case "c", "child":
			s.DependerType = "Child"
		default:
			return fsmTurn{Reply: replySelectDepender, Options: []string{"Spouse", "Child"}}
		}
		s.Step = domain.StepQ3
		return fsmTurn{Reply: replySponsorSalary, Options: cloneOptions(salaryOptions)}

	// salary_q and sponsor_q are only set by generated replies; they resume
	// here when the generator is unavailable.
	case domain.StepQ3, domain.StepSalaryQ:
		s.Salary = userText
		s.Step = domain.StepAwaitingIDFrontside
		return fsmTurn{Reply: replyUploadID, Options: []string{}}

	case domain.StepSponsorQ:
		s.Step = domain.StepComplete
		s.IsCompleted = true
		return fsmTurn{Reply: replyOnboardingComplete, Options: []string{}}

	case domain.StepAwaitingIDFrontside:
		return fsmTurn{Reply: replyUploadFront, Options: []string{}}

	case domain.StepAwaitingIDBackside:
		return fsmTurn{Reply: replyUploadBack, Options: []string{}}

	case domain.StepComplete:
		return fsmTurn{Options: []string{}, FreeChat: true}

	default:
		s.Step = domain.StepStart
		return fsmTurn{Reply: replyLostTrack, Options: []string{"Yes", "No"}}
	}
}

func cloneOptions(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
