package enginenode

import (
	statex "github.com/sirinut/regibot/agent/state"
)

// HandleDelete mirrors read: the email identifies the registration, then the
// executor performs the removal.
func HandleDelete(in *GraphState) (*GraphState, error) {
	if err := requireState(in); err != nil {
		return nil, err
	}

	st := in.State
	if st.UserEmail == "" {
		st.CollectingField = statex.FieldEmail
		st.AppendAssistant(msgDeleteAskEmail)
		return in, nil
	}
	st.OperationComplete = true
	return in, nil
}
