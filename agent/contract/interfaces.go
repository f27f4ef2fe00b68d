package contract

import "context"

// Classifier is the fallback intent classifier consulted when keyword
// matching produces nothing. Implementations call out to a language model;
// the engine treats any error, or any label outside the six known intents,
// as IntentHelp.
type Classifier interface {
	Classify(ctx context.Context, text string) (Intent, error)
}
