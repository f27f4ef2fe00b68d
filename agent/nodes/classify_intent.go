package enginenode

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/sirinut/regibot/agent/classify"
	contractx "github.com/sirinut/regibot/agent/contract"
)

// ClassifyIntent resolves the intent for the turn. While a field collection
// is in progress the message is data, not an intent, so the stored intent is
// left untouched. Keyword rules run first; only unmatched text reaches the
// fallback classifier, and any fallback failure resolves to help rather than
// failing the turn.
func ClassifyIntent(ctx context.Context, in *GraphState, fallback contractx.Classifier) (*GraphState, error) {
	if err := requireState(in); err != nil {
		return nil, err
	}
	if in.State.Collecting() {
		return in, nil
	}

	if intent, ok := classify.Keyword(in.Text); ok {
		in.State.CurrentIntent = intent
		return in, nil
	}

	intent := contractx.IntentHelp
	if fallback != nil {
		got, err := fallback.Classify(ctx, in.Text)
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("fallback classifier failed, defaulting to help")
		case got.Valid():
			intent = got
		default:
			log.Warn().Str("intent", string(got)).Msg("fallback classifier returned unknown intent")
		}
	}
	in.State.CurrentIntent = intent
	return in, nil
}
