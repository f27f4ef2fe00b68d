package enginenode

import (
	statex "github.com/sirinut/regibot/agent/state"
)

// HandleRead needs only the email to look up a registration. With the email
// already known the turn goes straight to execution.
func HandleRead(in *GraphState) (*GraphState, error) {
	if err := requireState(in); err != nil {
		return nil, err
	}

	st := in.State
	if st.UserEmail == "" {
		st.CollectingField = statex.FieldEmail
		st.AppendAssistant(msgReadAskEmail)
		return in, nil
	}
	st.OperationComplete = true
	return in, nil
}
