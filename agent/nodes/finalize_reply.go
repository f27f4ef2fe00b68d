package enginenode

import (
	contractx "github.com/sirinut/regibot/agent/contract"
)

// FinalizeReply closes the turn. Every turn answers with something: when no
// node produced an assistant message, the fallback line is appended so the
// history and the returned reply stay consistent.
func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if err := requireState(in); err != nil {
		return GraphOutput{}, err
	}

	st := in.State
	st.Touch(in.Now)

	last, ok := st.LastMessage()
	if !ok || last.Role != contractx.RoleAssistant {
		st.AppendAssistant(FallbackReply)
		return GraphOutput{Reply: FallbackReply, State: st}, nil
	}
	return GraphOutput{Reply: last.Content, State: st}, nil
}
