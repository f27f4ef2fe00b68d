package enginenode

import (
	statex "github.com/sirinut/regibot/agent/state"
)

// HandleUpdate walks the three-phase update: identify the registration by
// email, pick the field to change, then collect the new value. Each call
// advances to whichever phase is still missing.
func HandleUpdate(in *GraphState) (*GraphState, error) {
	if err := requireState(in); err != nil {
		return nil, err
	}

	st := in.State
	if st.UserEmail == "" {
		st.CollectingField = statex.FieldEmail
		st.AppendAssistant(msgUpdateAskEmail)
		return in, nil
	}
	if _, ok := st.UpdateTarget(); !ok {
		st.CollectingField = statex.FieldUpdateSelection
		st.AppendAssistant(msgUpdateSelection())
		return in, nil
	}
	st.OperationComplete = true
	return in, nil
}
