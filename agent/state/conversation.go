package state

import (
	"strconv"
	"strings"
	"time"

	contractx "github.com/sirinut/regibot/agent/contract"
)

// Field identifies one collectable registration field. The set is closed:
// every switch over Field in this repo enumerates all cases so the compiler
// flags a missing arm when a field is added.
type Field string

const (
	FieldFullName    Field = "full_name"
	FieldEmail       Field = "email"
	FieldPhoneNumber Field = "phone_number"
	FieldDateOfBirth Field = "date_of_birth"
	FieldAddress     Field = "address"

	// FieldUpdateSelection is the transient selector collected during the
	// update flow, before it is resolved to one of the real fields above.
	FieldUpdateSelection Field = "update_field_selection"
)

// KeyUpdateTarget is the UserData bookkeeping key holding the resolved
// update target field during an update flow.
const KeyUpdateTarget Field = "update_field_key"

// requiredFields is the fixed collection order for the create flow.
var requiredFields = [...]Field{
	FieldFullName,
	FieldEmail,
	FieldPhoneNumber,
	FieldDateOfBirth,
	FieldAddress,
}

// RequiredFields returns the five registration fields in collection order.
func RequiredFields() []Field {
	out := make([]Field, len(requiredFields))
	copy(out, requiredFields[:])
	return out
}

// UpdateableFields returns the fields a user may change via the update flow.
// Same set and order as RequiredFields; selection indexes are 1-based into
// this list.
func UpdateableFields() []Field {
	return RequiredFields()
}

// Label is the display name used in update-field lists and confirmations.
func (f Field) Label() string {
	switch f {
	case FieldFullName:
		return "Full Name"
	case FieldEmail:
		return "Email Address"
	case FieldPhoneNumber:
		return "Phone Number"
	case FieldDateOfBirth:
		return "Date of Birth"
	case FieldAddress:
		return "Address"
	case FieldUpdateSelection, KeyUpdateTarget:
		return "Field Selection"
	default:
		return string(f)
	}
}

// PromptLabel is the name used when asking the user for a value. It matches
// Label except for date of birth, where the expected format is spelled out.
func (f Field) PromptLabel() string {
	switch f {
	case FieldDateOfBirth:
		return "Date of Birth (YYYY-MM-DD)"
	case FieldAddress:
		return "Full Address"
	default:
		return f.Label()
	}
}

// NextRequiredField returns the field after current in the fixed create
// order, or false when current is the last (or not a required field).
func NextRequiredField(current Field) (Field, bool) {
	for i, f := range requiredFields {
		if f == current && i+1 < len(requiredFields) {
			return requiredFields[i+1], true
		}
	}
	return "", false
}

// ResolveUpdateField maps free text from the update-field selection prompt
// to a concrete field: a 1-based list index, or the first field whose
// snake-case name (underscores as spaces) or display label appears in the
// text. First match in declaration order wins, even for ambiguous input.
func ResolveUpdateField(input string) (Field, bool) {
	lower := strings.ToLower(strings.TrimSpace(input))
	if lower == "" {
		return "", false
	}

	if idx, err := strconv.Atoi(lower); err == nil {
		fields := UpdateableFields()
		if idx >= 1 && idx <= len(fields) {
			return fields[idx-1], true
		}
		return "", false
	}

	for _, f := range UpdateableFields() {
		name := strings.ReplaceAll(string(f), "_", " ")
		if strings.Contains(lower, name) || strings.Contains(lower, strings.ToLower(f.Label())) {
			return f, true
		}
	}
	return "", false
}

// ConversationState is the per-session dialogue state. It is owned by the
// caller (session store); the engine receives it, mutates it for one turn
// and hands it back. Access for a given session id must be serialized by
// the caller.
type ConversationState struct {
	Messages      []contractx.Message `json:"messages"`
	CurrentIntent contractx.Intent    `json:"current_intent,omitempty"`

	// UserEmail identifies the subject record once known. Always the
	// normalized (lower-cased, trimmed) form.
	UserEmail string `json:"user_email,omitempty"`

	// CollectingField, when set, means the next user message is a raw value
	// for that field and is never re-classified as an intent.
	CollectingField Field `json:"collecting_field,omitempty"`

	// UserData holds validated values keyed by field, plus the update-flow
	// bookkeeping entries (KeyUpdateTarget and the raw selection text).
	UserData map[Field]string `json:"user_data"`

	OperationComplete bool   `json:"operation_complete"`
	ErrorMessage      string `json:"error_message,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// New returns an empty conversation state.
func New() *ConversationState {
	return &ConversationState{
		UserData: make(map[Field]string, 8),
	}
}

func (s *ConversationState) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

// EnsureUserData makes sure s.UserData is initialized, e.g. after a decode.
func (s *ConversationState) EnsureUserData() {
	if s.UserData == nil {
		s.UserData = make(map[Field]string, 8)
	}
}

func (s *ConversationState) AppendUser(content string) {
	s.Messages = append(s.Messages, contractx.Message{Role: contractx.RoleUser, Content: content})
}

func (s *ConversationState) AppendAssistant(content string) {
	s.Messages = append(s.Messages, contractx.Message{Role: contractx.RoleAssistant, Content: content})
}

// LastMessage returns the most recent message, if any.
func (s *ConversationState) LastMessage() (contractx.Message, bool) {
	if s == nil || len(s.Messages) == 0 {
		return contractx.Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// Collecting reports whether a field collection is in progress.
func (s *ConversationState) Collecting() bool {
	return s != nil && s.CollectingField != ""
}

// SetValue stores a validated value and mirrors email into UserEmail.
func (s *ConversationState) SetValue(f Field, value string) {
	s.EnsureUserData()
	s.UserData[f] = value
	if f == FieldEmail {
		s.UserEmail = value
	}
}

// UpdateTarget returns the resolved update-flow target field, if chosen.
func (s *ConversationState) UpdateTarget() (Field, bool) {
	if s == nil || s.UserData == nil {
		return "", false
	}
	v, ok := s.UserData[KeyUpdateTarget]
	if !ok || v == "" {
		return "", false
	}
	return Field(v), true
}

// ClearOperation resets the per-operation flags after execution so the next
// turn re-enters intent classification. Collected values and UserEmail are
// kept; only the transient update bookkeeping is dropped.
func (s *ConversationState) ClearOperation() {
	s.OperationComplete = false
	s.CollectingField = ""
	if s.UserData != nil {
		delete(s.UserData, KeyUpdateTarget)
		delete(s.UserData, FieldUpdateSelection)
	}
}
