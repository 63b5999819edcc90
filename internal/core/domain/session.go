package domain

import "time"

type Step string

const (
	StepStart               Step = "start"
	StepQ1                  Step = "q1"
	StepQ2                  Step = "q2"
	StepQ2a                 Step = "q2a"
	StepQ3                  Step = "q3"
	StepSalaryQ             Step = "salary_q"
	StepSponsorQ            Step = "sponsor_q"
	StepAwaitingIDFrontside Step = "awaiting_id_frontside"
	StepAwaitingIDBackside  Step = "awaiting_id_backside"
	StepComplete            Step = "complete"
)

// KnownSteps lists the step values a reply generator may move the session to.
var KnownSteps = map[Step]bool{
	StepStart:               true,
	StepQ1:                  true,
	StepQ2:                  true,
	StepQ2a:                 true,
	StepQ3:                  true,
	StepSalaryQ:             true,
	StepSponsorQ:            true,
	StepAwaitingIDFrontside: true,
	StepAwaitingIDBackside:  true,
	StepComplete:            true,
}

// ChatSession is the dialogue state anchored on a client-visible session id.
type ChatSession struct {
	ID                  int64     `json:"id"`
	UUID                string    `json:"uuid"`
	SessionID           string    `json:"session_id"`
	Step                Step      `json:"step"`
	IsCompleted         bool      `json:"is_completed"`
	LookingForInsurance string    `json:"looking_for_insurance"`
	Role                string    `json:"role"`
	Salary              string    `json:"salary"`
	DependerType        string    `json:"depender_type"`
	FullName            string    `json:"full_name"`
	EmiratesIDNumber    string    `json:"emirates_id_number"`
	DOB                 string    `json:"dob"`
	Expiry              string    `json:"expiry"`
	Nationality         string    `json:"nationality"`
	Occupation          string    `json:"occupation"`
	EmiratesIDUploaded  bool      `json:"emirates_id_uploaded"`
	Mobile              string    `json:"mobile"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// NewChatSession returns a session at the start step.
func NewChatSession(sessionID, uuid string, now time.Time) *ChatSession {
	return &ChatSession{
		UUID:      uuid,
		SessionID: sessionID,
		Step:      StepStart,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SyncFromRecord copies identity values into empty session fields only.
func (s *ChatSession) SyncFromRecord(rec *IdentityRecord) {
	if rec == nil {
		return
	}
	fillEmpty(&s.FullName, rec.Name)
	fillEmpty(&s.EmiratesIDNumber, rec.EmiratesID)
	fillEmpty(&s.DOB, rec.DOB)
	fillEmpty(&s.Expiry, rec.ExpiryDate)
	fillEmpty(&s.Nationality, rec.Nationality)
	fillEmpty(&s.Occupation, rec.Occupation)
}

func fillEmpty(dst *string, value string) {
	if *dst == "" && value != "" {
		*dst = value
	}
}

type MessageRole string

const (
	RoleUser MessageRole = "user"
	RoleBot  MessageRole = "bot"
)

type ChatMessage struct {
	ID        int64       `json:"-"`
	SessionID string      `json:"-"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
}
