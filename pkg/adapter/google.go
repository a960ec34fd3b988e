package adapter

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/scribewise/scribewise/pkg/artifact"
	"google.golang.org/genai"
)

// Narrated speech comes back as 16-bit mono PCM at 24kHz; the request asks
// for exactly that, so the clip reports it.
const (
	narrationSampleRate = 24000
	narrationChannels   = 1
)

// GoogleAdapter implements the Adapter interface for Gemini models.
type GoogleAdapter struct {
	client *genai.Client
}

// NewGoogleAdapter creates a new Google Gemini adapter.
func NewGoogleAdapter(apiKey string) (*GoogleAdapter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("google API key is required")
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create google client: %w", err)
	}

	return &GoogleAdapter{
		client: client,
	}, nil
}

// Name returns the adapter identifier.
func (a *GoogleAdapter) Name() string {
	return "google"
}

// Models returns the list of supported Gemini models.
func (a *GoogleAdapter) Models() []string {
	return []string{
		"gemini-2.0-pro",
		"gemini-2.0-flash",
	}
}

// Generate sends a request to Gemini and returns the response as an artifact.
func (a *GoogleAdapter) Generate(ctx context.Context, model string, req Request) (*artifact.Artifact, error) {
	resp, err := a.client.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), generateConfig(req))
	if err != nil {
		return nil, wrapGoogleError(err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return nil, &AdapterError{Message: "google returned no candidates"}
	}

	var content string
	if resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if part.Text != "" {
				content += part.Text
			}
		}
	}

	return artifact.New(content, a.Name(), model, req.Prompt), nil
}

// Stream sends a request to Gemini and yields the response text chunk by
// chunk. The sequence ends after the first error, including cancellation.
func (a *GoogleAdapter) Stream(ctx context.Context, model string, req Request) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for resp, err := range a.client.Models.GenerateContentStream(ctx, model, genai.Text(req.Prompt), generateConfig(req)) {
			if err != nil {
				yield("", wrapGoogleError(err))
				return
			}
			if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
				continue
			}
			for _, part := range resp.Candidates[0].Content.Parts {
				if part.Text == "" {
					continue
				}
				if !yield(part.Text, nil) {
					return
				}
			}
		}
	}
}

// Narrate renders text to speech with a prebuilt voice and returns the raw
// decoded bytes. Container formatting is the caller's job.
func (a *GoogleAdapter) Narrate(ctx context.Context, model, text, voice string) (*AudioClip, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voice},
			},
		},
	}

	resp, err := a.client.Models.GenerateContent(ctx, model, genai.Text(text), cfg)
	if err != nil {
		return nil, wrapGoogleError(err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, &AdapterError{Message: "google returned no audio candidates"}
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return &AudioClip{
				PCM:        part.InlineData.Data,
				SampleRate: narrationSampleRate,
				Channels:   narrationChannels,
			}, nil
		}
	}

	return nil, &AdapterError{Message: "google response carried no audio data"}
}

func generateConfig(req Request) *genai.GenerateContentConfig {
	if !req.WantJSON {
		return nil
	}
	return &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
}

func wrapGoogleError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &AdapterError{
			Status:  apiErr.Code,
			Code:    apiErr.Status,
			Message: fmt.Sprintf("google API error: %s", apiErr.Message),
			Err:     err,
		}
	}
	return fmt.Errorf("google API error: %w", err)
}
