package classify

import (
	"context"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go"

	contractx "github.com/sirinut/regibot/agent/contract"
	promptx "github.com/sirinut/regibot/agent/prompt"
)

// LLMClassifier classifies messages via a chat-completion call against an
// OpenRouter-compatible endpoint. It implements contract.Classifier.
type LLMClassifier struct {
	client       *openaisdk.Client
	model        string
	systemPrompt string
}

func NewLLMClassifier(client *openaisdk.Client, model string) (*LLMClassifier, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: openrouter client is required", contractx.ErrValidation)
	}
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, fmt.Errorf("%w: classifier model is required", contractx.ErrValidation)
	}
	return &LLMClassifier{
		client:       client,
		model:        model,
		systemPrompt: promptx.LoadPromptSet().Classifier,
	}, nil
}

// Classify asks the model for a single intent label. A transport failure
// maps to ErrModelInvoke, an unknown label to ErrSchemaViolation; the
// engine degrades either to the help intent.
func (c *LLMClassifier) Classify(ctx context.Context, text string) (contractx.Intent, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model: openaisdk.ChatModel(c.model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(c.systemPrompt),
			openaisdk.UserMessage(text),
		},
		Temperature: openaisdk.Float(0),
	})
	if err != nil {
		return "", fmt.Errorf("%w: classifier completion: %v", contractx.ErrModelInvoke, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: classifier returned no choices", contractx.ErrModelInvoke)
	}

	label := contractx.Intent(strings.ToLower(strings.TrimSpace(resp.Choices[0].Message.Content)))
	if !label.Valid() {
		return "", fmt.Errorf("%w: unknown intent label %q", contractx.ErrSchemaViolation, resp.Choices[0].Message.Content)
	}
	return label, nil
}
