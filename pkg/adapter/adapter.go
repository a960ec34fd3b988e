package adapter

import (
	"context"
	"iter"

	"github.com/scribewise/scribewise/pkg/artifact"
)

// Request describes one generation call.
type Request struct {
	// Prompt is the full text sent to the model.
	Prompt string

	// WantJSON asks the provider to constrain output to JSON where the
	// provider supports an output-shape constraint. Extraction still runs on
	// the response; the constraint only reduces formatting drift.
	WantJSON bool
}

// Adapter defines the interface for generative model provider adapters.
type Adapter interface {
	// Generate sends a request to the model and returns an artifact.
	Generate(ctx context.Context, model string, req Request) (*artifact.Artifact, error)

	// Name returns the adapter's identifier.
	Name() string

	// Models returns the list of supported models.
	Models() []string
}

// Streamer is implemented by adapters that can deliver text incrementally.
// The sequence is finite, single-pass, and not restartable; it stops yielding
// after the first non-nil error, which includes ctx.Err() on cancellation.
type Streamer interface {
	Stream(ctx context.Context, model string, req Request) iter.Seq2[string, error]
}

// AudioClip carries decoded speech bytes. Container formatting (WAV headers
// and the like) is the consumer's job; the clip only records what was asked
// of the provider.
type AudioClip struct {
	PCM        []byte
	SampleRate int
	Channels   int
}

// Narrator is implemented by adapters that can render text to speech.
type Narrator interface {
	Narrate(ctx context.Context, model, text, voice string) (*AudioClip, error)
}
