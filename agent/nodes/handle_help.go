package enginenode

// HandleHelp answers with the capability overview. It also serves as the
// landing node for anything the classifier could not place.
func HandleHelp(in *GraphState) (*GraphState, error) {
	if err := requireState(in); err != nil {
		return nil, err
	}
	in.State.AppendAssistant(msgHelp)
	return in, nil
}

// HandleExit says goodbye. Session state is left intact so a follow-up
// message resumes where the user left off.
func HandleExit(in *GraphState) (*GraphState, error) {
	if err := requireState(in); err != nil {
		return nil, err
	}
	in.State.AppendAssistant(msgExit)
	return in, nil
}
