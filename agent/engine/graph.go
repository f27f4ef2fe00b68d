package engine

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/sirinut/regibot/agent/contract"
	enginenode "github.com/sirinut/regibot/agent/nodes"
)

func (e *Engine) compileProcessTurnGraph(
	ctx context.Context,
) (compose.Runnable[enginenode.GraphInput, enginenode.GraphOutput], error) {
	graph := compose.NewGraph[enginenode.GraphInput, enginenode.GraphOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in enginenode.GraphInput) (*enginenode.GraphState, error) {
			return enginenode.ValidateRequest(in, e.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("classify_intent",
		compose.InvokableLambda(func(ctx context.Context, in *enginenode.GraphState) (*enginenode.GraphState, error) {
			return enginenode.ClassifyIntent(ctx, in, e.fallback)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node classify_intent: %w", err)
	}

	handlers := map[string]func(*enginenode.GraphState) (*enginenode.GraphState, error){
		enginenode.NodeHandleCreate: enginenode.HandleCreate,
		enginenode.NodeHandleRead:   enginenode.HandleRead,
		enginenode.NodeHandleUpdate: enginenode.HandleUpdate,
		enginenode.NodeHandleDelete: enginenode.HandleDelete,
		enginenode.NodeHandleHelp:   enginenode.HandleHelp,
		enginenode.NodeHandleExit:   enginenode.HandleExit,
	}
	for name, fn := range handlers {
		if err := graph.AddLambdaNode(name,
			compose.InvokableLambda(func(ctx context.Context, in *enginenode.GraphState) (*enginenode.GraphState, error) {
				return fn(in)
			}),
		); err != nil {
			return nil, fmt.Errorf("add node %s: %w", name, err)
		}
	}

	if err := graph.AddLambdaNode(enginenode.NodeCollectField,
		compose.InvokableLambda(func(ctx context.Context, in *enginenode.GraphState) (*enginenode.GraphState, error) {
			return enginenode.CollectField(ctx, in, e.records)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node collect_field: %w", err)
	}

	if err := graph.AddLambdaNode("execute_operation",
		compose.InvokableLambda(func(ctx context.Context, in *enginenode.GraphState) (*enginenode.GraphState, error) {
			return enginenode.ExecuteOperation(ctx, in, e.records)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node execute_operation: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_reply",
		compose.InvokableLambda(func(ctx context.Context, in *enginenode.GraphState) (enginenode.GraphOutput, error) {
			return enginenode.FinalizeReply(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_reply: %w", err)
	}

	branch := compose.NewGraphBranch(
		func(ctx context.Context, in *enginenode.GraphState) (string, error) {
			if in == nil || in.State == nil {
				return "", fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
			}
			return enginenode.Route(in.State), nil
		},
		map[string]bool{
			enginenode.NodeCollectField: true,
			enginenode.NodeHandleCreate: true,
			enginenode.NodeHandleRead:   true,
			enginenode.NodeHandleUpdate: true,
			enginenode.NodeHandleDelete: true,
			enginenode.NodeHandleHelp:   true,
			enginenode.NodeHandleExit:   true,
		},
	)
	if err := graph.AddBranch("classify_intent", branch); err != nil {
		return nil, fmt.Errorf("add intent branch: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "classify_intent"},
		{enginenode.NodeCollectField, "execute_operation"},
		{enginenode.NodeHandleCreate, "execute_operation"},
		{enginenode.NodeHandleRead, "execute_operation"},
		{enginenode.NodeHandleUpdate, "execute_operation"},
		{enginenode.NodeHandleDelete, "execute_operation"},
		{enginenode.NodeHandleHelp, "execute_operation"},
		{enginenode.NodeHandleExit, "execute_operation"},
		{"execute_operation", "finalize_reply"},
		{"finalize_reply", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("engine.process_turn"))
	if err != nil {
		return nil, fmt.Errorf("compile engine graph: %w", err)
	}
	return runner, nil
}
