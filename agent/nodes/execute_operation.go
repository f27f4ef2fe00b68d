package enginenode

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/sirinut/regibot/agent/contract"
	"github.com/sirinut/regibot/agent/record"
	statex "github.com/sirinut/regibot/agent/state"
	validatex "github.com/sirinut/regibot/agent/validate"
)

// ExecuteOperation runs the completed intent against the record store and
// reports the outcome to the user. Store failures never escape as turn
// errors; they become messages. Whatever happens, the operation flags are
// cleared so the session is ready for the next request.
func ExecuteOperation(ctx context.Context, in *GraphState, records record.Store) (*GraphState, error) {
	if err := requireState(in); err != nil {
		return nil, err
	}

	st := in.State
	if !st.OperationComplete {
		return in, nil
	}

	var msg string
	switch st.CurrentIntent {
	case contractx.IntentCreate:
		msg = executeCreate(ctx, st, records)
	case contractx.IntentRead:
		msg = executeRead(ctx, st, records)
	case contractx.IntentUpdate:
		msg = executeUpdate(ctx, st, records)
	case contractx.IntentDelete:
		msg = executeDelete(ctx, st, records)
	default:
		msg = msgGenericError
	}

	st.AppendAssistant(msg)
	st.ClearOperation()
	return in, nil
}

func executeCreate(ctx context.Context, st *statex.ConversationState, records record.Store) string {
	dob, err := time.Parse(validatex.DateLayout, st.UserData[statex.FieldDateOfBirth])
	if err != nil {
		log.Error().Err(err).Msg("collected date of birth is not normalized")
		return msgGenericError
	}

	created, err := records.Create(ctx, &record.Record{
		FullName:    st.UserData[statex.FieldFullName],
		Email:       st.UserData[statex.FieldEmail],
		PhoneNumber: st.UserData[statex.FieldPhoneNumber],
		DateOfBirth: dob,
		Address:     st.UserData[statex.FieldAddress],
	})
	switch {
	case errors.Is(err, contractx.ErrConflict):
		return fmt.Sprintf("❌ The email %s is already registered.", st.UserData[statex.FieldEmail])
	case err != nil:
		log.Error().Err(err).Msg("create registration failed")
		return msgGenericError
	}

	return fmt.Sprintf("✅ Registration created successfully!\n\n🆔 Registration ID: %d\n%s\n\nIs there anything else I can help you with?",
		created.ID, recordDetails(created))
}

func executeRead(ctx context.Context, st *statex.ConversationState, records record.Store) string {
	rec, err := records.FindByEmail(ctx, st.UserEmail)
	switch {
	case errors.Is(err, contractx.ErrNotFound):
		return msgNotFound(st.UserEmail)
	case err != nil:
		log.Error().Err(err).Msg("read registration failed")
		return msgGenericError
	}

	return fmt.Sprintf("📋 Your Registration Details:\n\n%s\n\n📅 Registered: %s\n🔄 Last Updated: %s\n\nWhat else can I help you with?",
		recordDetails(rec),
		rec.CreatedAt.Format("2006-01-02 15:04"),
		rec.UpdatedAt.Format("2006-01-02 15:04"))
}

func executeUpdate(ctx context.Context, st *statex.ConversationState, records record.Store) string {
	target, ok := st.UpdateTarget()
	if !ok {
		log.Error().Err(contractx.ErrUnresolvedSelection).Msg("update executed without a target")
		return msgGenericError
	}
	value, ok := st.UserData[target]
	if !ok || value == "" {
		log.Error().Str("target", string(target)).Msg("update executed without a new value")
		return msgGenericError
	}

	updated, err := records.Update(ctx, st.UserEmail, map[statex.Field]string{target: value})
	switch {
	case errors.Is(err, contractx.ErrNotFound):
		return msgNotFound(st.UserEmail)
	case errors.Is(err, contractx.ErrConflict):
		return fmt.Sprintf("❌ The email %s is already registered.", value)
	case err != nil:
		log.Error().Err(err).Msg("update registration failed")
		return msgGenericError
	}

	return fmt.Sprintf("✅ Successfully updated %s!\n\n📋 Updated Registration:\n\n%s\n\nWhat else can I help you with?",
		target.Label(), recordDetails(updated))
}

func executeDelete(ctx context.Context, st *statex.ConversationState, records record.Store) string {
	deleted, err := records.Delete(ctx, st.UserEmail)
	if err != nil {
		log.Error().Err(err).Msg("delete registration failed")
		return msgGenericError
	}
	if !deleted {
		return msgNotFound(st.UserEmail)
	}
	return fmt.Sprintf("✅ Registration for %s has been successfully deleted.\n\nAll your data has been removed from our system.\n\nIf you need to register again, just let me know!",
		st.UserEmail)
}
