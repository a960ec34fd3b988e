package adapter

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"github.com/scribewise/scribewise/pkg/artifact"
)

// OpenAIAdapter implements the Adapter interface for OpenAI models.
type OpenAIAdapter struct {
	client openai.Client
}

// NewOpenAIAdapter creates a new OpenAI adapter.
func NewOpenAIAdapter(apiKey string) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIAdapter{client: client}, nil
}

// Name returns the adapter identifier.
func (a *OpenAIAdapter) Name() string {
	return "openai"
}

// Models returns the list of supported OpenAI models.
func (a *OpenAIAdapter) Models() []string {
	return []string{
		"gpt-5.2-instant",
		"gpt-5.2-thinking",
		"gpt-5.2-pro",
	}
}

// Generate sends a request to OpenAI and returns the response as an artifact.
func (a *OpenAIAdapter) Generate(ctx context.Context, model string, req Request) (*artifact.Artifact, error) {
	resp, err := a.client.Chat.Completions.New(ctx, a.params(model, req))
	if err != nil {
		return nil, wrapOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, &AdapterError{Message: "openai returned no choices"}
	}

	content := resp.Choices[0].Message.Content
	return artifact.New(content, a.Name(), model, req.Prompt), nil
}

// Stream sends a request to OpenAI and yields response deltas as they arrive.
func (a *OpenAIAdapter) Stream(ctx context.Context, model string, req Request) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		stream := a.client.Chat.Completions.NewStreaming(ctx, a.params(model, req))
		defer stream.Close()

		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 {
				continue
			}
			delta := chunk.Choices[0].Delta.Content
			if delta == "" {
				continue
			}
			if !yield(delta, nil) {
				return
			}
		}
		if err := stream.Err(); err != nil {
			yield("", wrapOpenAIError(err))
		}
	}
}

func (a *OpenAIAdapter) params(model string, req Request) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt),
		},
		MaxCompletionTokens: openai.Int(4096),
	}
	if req.WantJSON {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}
	return params
}

func wrapOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr != nil {
		return &AdapterError{
			Status:  apiErr.StatusCode,
			Code:    apiErr.Code,
			Message: fmt.Sprintf("openai API error: %s", apiErr.Message),
			Err:     err,
		}
	}
	return fmt.Errorf("openai API error: %w", err)
}
