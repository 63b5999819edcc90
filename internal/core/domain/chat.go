package domain

// EmiratesIDSummary is the identity data shown to the reply generator.
type EmiratesIDSummary struct {
	FullName         string `json:"full_name,omitempty"`
	EmiratesIDNumber string `json:"emirates_id_number,omitempty"`
	DOB              string `json:"dob,omitempty"`
	Expiry           string `json:"expiry,omitempty"`
	Nationality      string `json:"nationality,omitempty"`
	Occupation       string `json:"occupation,omitempty"`
	Gender           string `json:"gender,omitempty"`
	Address          string `json:"address,omitempty"`
	Employer         string `json:"employer,omitempty"`
	IssuingPlace     string `json:"issuing_place,omitempty"`
	FamilySponsor    string `json:"family_sponsor,omitempty"`
}

// ReplyContext is the session snapshot sent with every generation request.
type ReplyContext struct {
	Step                Step               `json:"step"`
	LookingForInsurance string             `json:"looking_for_insurance"`
	Role                string             `json:"role"`
	Salary              string             `json:"salary"`
	DependerType        string             `json:"depender_type"`
	IsCompleted         bool               `json:"is_completed"`
	EmiratesIDData      *EmiratesIDSummary `json:"emirates_id_data"`
}

type ReplyRequest struct {
	Context         ReplyContext `json:"context"`
	LastUserMessage string       `json:"last_user_message"`
}

// GeneratedReply is the structured object a reply generator must return.
type GeneratedReply struct {
	Reply          string         `json:"reply"`
	Options        []string       `json:"options"`
	SessionUpdates map[string]any `json:"session_updates"`
	Complete       bool           `json:"complete"`
}

// ReplySource tells whether a chat reply came from the generator or the FSM.
type ReplySource string

const (
	ReplySourceAI  ReplySource = "ai"
	ReplySourceFSM ReplySource = "fsm"
)

// ChatReply is returned to the client for one chat turn.
type ChatReply struct {
	Reply     string      `json:"reply"`
	Options   []string    `json:"options"`
	SessionID string      `json:"session_id"`
	Step      Step        `json:"step"`
	Source    ReplySource `json:"-"`
}

// SidesDetected reports which document sides a batch contained.
type SidesDetected struct {
	Front bool `json:"front"`
	Back  bool `json:"back"`
}

// UploadResult is the response of one Emirates ID upload batch.
type UploadResult struct {
	OK                   bool          `json:"ok"`
	ID                   int64         `json:"id"`
	Fields               FieldSet      `json:"fields"`
	MissingFields        []string      `json:"missing_fields"`
	SidesDetected        SidesDetected `json:"sides_detected"`
	NextStep             Step          `json:"next_step"`
	FilesProcessed       int           `json:"files_processed"`
	IssuingPlaceDetected *string       `json:"issuing_place_detected"`
	Products             []Product     `json:"products"`
	Message              *string       `json:"message"`
	AskMobile            bool          `json:"ask_mobile"`
}
