package enginenode

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/sirinut/regibot/agent/contract"
	"github.com/sirinut/regibot/agent/record"
	statex "github.com/sirinut/regibot/agent/state"
	validatex "github.com/sirinut/regibot/agent/validate"
)

// CollectField consumes the turn's message as the value for the field being
// collected. Invalid values re-prompt without advancing; valid values are
// stored normalized and the flow moves to the next field or to execution,
// depending on the intent that started the collection.
func CollectField(ctx context.Context, in *GraphState, records record.Store) (*GraphState, error) {
	if err := requireState(in); err != nil {
		return nil, err
	}

	st := in.State
	field := st.CollectingField
	if field == "" {
		return in, nil
	}

	if field == statex.FieldUpdateSelection {
		return resolveSelection(in)
	}

	value, err := validatex.Value(field, in.Text, in.Now)
	if err != nil {
		st.AppendAssistant(msgValidationRetry(field, err))
		return in, nil
	}

	// A create must not proceed with an email that is already taken; the
	// store enforces uniqueness anyway, but catching it here keeps the
	// user in the collection loop instead of failing at the end.
	if st.CurrentIntent == contractx.IntentCreate && field == statex.FieldEmail {
		if _, err := records.FindByEmail(ctx, value); err == nil {
			st.ErrorMessage = "email already registered"
			st.AppendAssistant(msgDuplicateEmail(value))
			return in, nil
		} else if !errors.Is(err, contractx.ErrNotFound) {
			log.Error().Err(err).Msg("email availability check failed")
			st.AppendAssistant(msgStoreError)
			return in, nil
		}
	}

	st.SetValue(field, value)
	return advance(in, field)
}

// resolveSelection maps the user's reply to one of the updateable fields,
// by 1-based position or by name.
func resolveSelection(in *GraphState) (*GraphState, error) {
	st := in.State
	st.UserData[statex.FieldUpdateSelection] = in.Text
	target, ok := statex.ResolveUpdateField(in.Text)
	if !ok {
		st.AppendAssistant(msgUnknownSelection(in.Text))
		return in, nil
	}
	st.UserData[statex.KeyUpdateTarget] = string(target)
	st.CollectingField = target
	st.AppendAssistant(fmt.Sprintf("Got it. What should the new %s be?", target.Label()))
	return in, nil
}

// advance decides what follows a successfully collected field.
func advance(in *GraphState, field statex.Field) (*GraphState, error) {
	st := in.State
	switch st.CurrentIntent {
	case contractx.IntentCreate:
		if next, ok := statex.NextRequiredField(field); ok {
			st.CollectingField = next
			st.AppendAssistant(msgNextField(next))
			return in, nil
		}
		st.CollectingField = ""
		st.OperationComplete = true

	case contractx.IntentUpdate:
		if target, ok := st.UpdateTarget(); ok && field == target {
			st.CollectingField = ""
			st.OperationComplete = true
			return in, nil
		}
		// Email just identified the registration; move to field selection.
		st.CollectingField = statex.FieldUpdateSelection
		st.AppendAssistant(msgUpdateSelection())

	case contractx.IntentRead, contractx.IntentDelete:
		st.CollectingField = ""
		st.OperationComplete = true

	default:
		st.CollectingField = ""
	}
	return in, nil
}
