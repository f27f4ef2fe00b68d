// Package enginenode holds the per-turn pipeline nodes as pure functions
// over a GraphState carrier, so every transition is testable without the
// graph runtime that composes them.
package enginenode

import (
	"errors"
	"fmt"
	"strings"
	"time"

	contractx "github.com/sirinut/regibot/agent/contract"
	statex "github.com/sirinut/regibot/agent/state"
)

var ErrInvalidMessage = errors.New("message is empty")

// Node names used by the routing branch.
const (
	NodeCollectField = "collect_field"
	NodeHandleCreate = "handle_create"
	NodeHandleRead   = "handle_read"
	NodeHandleUpdate = "handle_update"
	NodeHandleDelete = "handle_delete"
	NodeHandleHelp   = "handle_help"
	NodeHandleExit   = "handle_exit"
)

type GraphInput struct {
	Text  string
	State *statex.ConversationState
}

type GraphOutput struct {
	Reply string
	State *statex.ConversationState
}

type GraphState struct {
	Text  string
	Now   time.Time
	State *statex.ConversationState
}

// ValidateRequest opens the turn: it rejects blank input, creates a fresh
// conversation state when the caller has none, and appends the inbound user
// message to the history.
func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidMessage
	}

	st := in.State
	if st == nil {
		st = statex.New()
	}
	st.EnsureUserData()
	st.AppendUser(in.Text)

	return &GraphState{
		Text:  text,
		Now:   nowFn().UTC(),
		State: st,
	}, nil
}

// Route picks the node for this turn. A collection in progress always wins
// over the classified intent; otherwise unknown intents fall back to help.
func Route(st *statex.ConversationState) string {
	if st.Collecting() {
		return NodeCollectField
	}
	switch st.CurrentIntent {
	case contractx.IntentCreate:
		return NodeHandleCreate
	case contractx.IntentRead:
		return NodeHandleRead
	case contractx.IntentUpdate:
		return NodeHandleUpdate
	case contractx.IntentDelete:
		return NodeHandleDelete
	case contractx.IntentExit:
		return NodeHandleExit
	default:
		return NodeHandleHelp
	}
}

func requireState(in *GraphState) error {
	if in == nil || in.State == nil {
		return fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	return nil
}
