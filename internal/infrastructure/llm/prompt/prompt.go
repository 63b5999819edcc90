// Package prompt holds the onboarding instruction and the reply wire format
// shared by every reply generator backend.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kirillkom/insurance-onboarding/internal/core/domain"
)

const SystemInstruction = `You help collect the data needed for medical insurance onboarding.
Output exactly one JSON object and nothing else. No markdown, no commentary.
The object has these keys:
  reply (string): the message shown to the user
  options (array of strings): button labels, [] when free text is expected
  session_updates (object): session fields to change, such as step or role
  complete (boolean): true only when onboarding is finished

Rules:
 - Ask exactly one question per reply and keep it short.
 - To request the Emirates ID, set session_updates.step to awaiting_id_frontside or awaiting_id_backside and tell the user to upload it.
 - When onboarding is finished, set complete=true and session_updates.step=complete.
 - Required fields: full_name, emirates_id_number, dob, expiry, nationality, occupation, salary.
   If one is missing in the context, ask for it on its own and store the answer in session_updates.
 - After the required fields, ask about the sponsor before completing.

Allowed step values: start, q1, q2, q2a, q3, salary_q, sponsor_q, awaiting_id_frontside, awaiting_id_backside, complete.
Session fields you may update: step, looking_for_insurance, role, depender_type, salary, emirates_id_uploaded, is_completed, full_name, emirates_id_number, dob, expiry, nationality, occupation.

Example input:
{"context":{"step":"start"},"last_user_message":""}
Example output:
{"reply":"Are you looking for medical insurance?","options":["Yes","No"],"session_updates":{"step":"q1"},"complete":false}

Example input:
{"context":{"step":"q2"},"last_user_message":"Employee"}
Example output:
{"reply":"What is your monthly salary?","options":["below 4000 AED","4000 - 5000 AED","above 5000 AED"],"session_updates":{"role":"Employee","step":"salary_q"},"complete":false}

Example input:
{"context":{"step":"salary_q"},"last_user_message":"4000 - 5000 AED"}
Example output:
{"reply":"Please upload your valid Emirates ID.","options":[],"session_updates":{"salary":"4000 - 5000 AED","step":"awaiting_id_frontside"},"complete":false}

Example input:
{"context":{"step":"sponsor_q"},"last_user_message":"No"}
Example output:
{"reply":"Thank you. Your onboarding is now complete.","options":[],"session_updates":{"step":"complete","is_completed":true},"complete":true}

Continue in the same format for every step.`

// BuildUserMessage encodes the generation request as the user turn.
func BuildUserMessage(req domain.ReplyRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal reply request: %w", err)
	}
	return string(body), nil
}

// ParseReply decodes the model output into a structured reply. Text around
// the outermost JSON object is ignored.
func ParseReply(raw string) (*domain.GeneratedReply, error) {
	object := extractJSONObject(strings.TrimSpace(raw))
	if !strings.HasPrefix(object, "{") {
		return nil, fmt.Errorf("reply is not a json object")
	}

	var out domain.GeneratedReply
	if err := json.Unmarshal([]byte(object), &out); err != nil {
		return nil, fmt.Errorf("parse reply json: %w", err)
	}
	return &out, nil
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
