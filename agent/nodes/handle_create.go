package enginenode

import (
	statex "github.com/sirinut/regibot/agent/state"
)

// HandleCreate opens the registration flow: on a fresh request it starts
// collecting the first required field. When collection already produced a
// full data set upstream the operation is left to the executor.
func HandleCreate(in *GraphState) (*GraphState, error) {
	if err := requireState(in); err != nil {
		return nil, err
	}

	st := in.State
	if len(st.UserData) == 0 {
		st.CollectingField = statex.RequiredFields()[0]
		st.AppendAssistant(msgCreateIntro)
	}
	return in, nil
}
