package llm

import (
	"context"
	"log"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/inward-app/inward-backend/internal/config"
)

// Completer is the single call the generation endpoints need from the
// completion service: one system message, one user message, raw response
// text back. Tests substitute a stub.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Client is the process-wide completion client. It is constructed once at
// startup and reused across requests; handlers never build their own.
var Client Completer

type openAIClient struct {
	client openai.Client
	model  string
}

// Init builds the shared OpenAI-backed client from configuration.
func Init(cfg *config.Config) {
	c := openai.NewClient(option.WithAPIKey(cfg.OpenAIAPIKey))
	Client = &openAIClient{client: c, model: cfg.OpenAIModel}
	log.Printf("✅ Completion client initialized (model %s)", cfg.OpenAIModel)
}

func (c *openAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		// Every generation call runs in JSON-only response mode
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "[]", nil
	}
	return resp.Choices[0].Message.Content, nil
}
