package contract

// Intent is the top-level operation a user message is classified into.
type Intent string

const (
	IntentCreate Intent = "create"
	IntentRead   Intent = "read"
	IntentUpdate Intent = "update"
	IntentDelete Intent = "delete"
	IntentHelp   Intent = "help"
	IntentExit   Intent = "exit"
)

// Valid reports whether i is one of the six known intents.
func (i Intent) Valid() bool {
	switch i {
	case IntentCreate, IntentRead, IntentUpdate, IntentDelete, IntentHelp, IntentExit:
		return true
	default:
		return false
	}
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single conversation turn entry.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
