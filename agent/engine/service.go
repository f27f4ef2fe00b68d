// Package engine wires the per-turn nodes into a compiled pipeline and
// exposes the single ProcessTurn entry point used by every transport.
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/sirinut/regibot/agent/contract"
	enginenode "github.com/sirinut/regibot/agent/nodes"
	"github.com/sirinut/regibot/agent/record"
	statex "github.com/sirinut/regibot/agent/state"
)

var ErrInvalidMessage = enginenode.ErrInvalidMessage

type Engine struct {
	records  record.Store
	fallback contractx.Classifier

	runner compose.Runnable[enginenode.GraphInput, enginenode.GraphOutput]

	now func() time.Time
}

// New compiles the turn pipeline. fallback may be nil, in which case
// unmatched messages resolve to help without a model call.
func New(records record.Store, fallback contractx.Classifier) (*Engine, error) {
	if records == nil {
		return nil, errors.New("record store is required")
	}
	if fallback == nil {
		fallback = noopClassifier{}
	}

	e := &Engine{
		records:  records,
		fallback: fallback,
		now:      time.Now,
	}

	runner, err := e.compileProcessTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	e.runner = runner

	return e, nil
}

// ProcessTurn runs one user message through the pipeline. st may be nil for
// the first turn of a session; the returned state carries the full history
// and must be passed back on the next turn.
func (e *Engine) ProcessTurn(ctx context.Context, text string, st *statex.ConversationState) (string, *statex.ConversationState, error) {
	out, err := e.runner.Invoke(ctx, enginenode.GraphInput{
		Text:  text,
		State: st,
	})
	if err != nil {
		return "", nil, err
	}
	return out.Reply, out.State, nil
}

type noopClassifier struct{}

func (noopClassifier) Classify(context.Context, string) (contractx.Intent, error) {
	return contractx.IntentHelp, nil
}
