package adapter

import (
	"context"
	"iter"
	"sync"

	"github.com/scribewise/scribewise/pkg/artifact"
)

// MockAdapter returns scripted responses for local runs and tests. Replies
// are consumed in order; the last one repeats once the script runs out.
type MockAdapter struct {
	mu     sync.Mutex
	script []mockReply
	next   int
	calls  []MockCall
}

type mockReply struct {
	content string
	err     error
}

// MockCall records one invocation of the mock.
type MockCall struct {
	Model  string
	Prompt string
}

// NewMockAdapter creates a mock adapter with a single default reply.
func NewMockAdapter() *MockAdapter {
	return &MockAdapter{script: []mockReply{{content: "mock response"}}}
}

// NewScriptedAdapter creates a mock adapter with no replies yet; queue them
// with Reply and Fail.
func NewScriptedAdapter() *MockAdapter {
	return &MockAdapter{}
}

// Reply queues a successful response.
func (a *MockAdapter) Reply(content string) *MockAdapter {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.script = append(a.script, mockReply{content: content})
	return a
}

// Fail queues a failing response.
func (a *MockAdapter) Fail(err error) *MockAdapter {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.script = append(a.script, mockReply{err: err})
	return a
}

// Calls returns a copy of the recorded invocations.
func (a *MockAdapter) Calls() []MockCall {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]MockCall, len(a.calls))
	copy(out, a.calls)
	return out
}

// Name returns the adapter identifier.
func (a *MockAdapter) Name() string {
	return "mock"
}

// Models returns the list of supported mock models.
func (a *MockAdapter) Models() []string {
	return []string{"mock-1"}
}

// Generate returns the next scripted reply.
func (a *MockAdapter) Generate(ctx context.Context, model string, req Request) (*artifact.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := a.take(model, req.Prompt)
	if err != nil {
		return nil, err
	}
	return artifact.New(content, a.Name(), model, req.Prompt), nil
}

// Stream yields the next scripted reply one rune-safe chunk at a time.
func (a *MockAdapter) Stream(ctx context.Context, model string, req Request) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		content, err := a.take(model, req.Prompt)
		if err != nil {
			yield("", err)
			return
		}
		for _, word := range splitChunks(content) {
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}
			if !yield(word, nil) {
				return
			}
		}
	}
}

// Narrate returns the text bytes as a fake clip with the standard narration
// parameters.
func (a *MockAdapter) Narrate(ctx context.Context, model, text, voice string) (*AudioClip, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := a.take(model, text); err != nil {
		return nil, err
	}
	return &AudioClip{
		PCM:        []byte(text),
		SampleRate: narrationSampleRate,
		Channels:   narrationChannels,
	}, nil
}

func (a *MockAdapter) take(model, prompt string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.calls = append(a.calls, MockCall{Model: model, Prompt: prompt})
	if len(a.script) == 0 {
		return "mock response", nil
	}
	reply := a.script[a.next]
	if a.next < len(a.script)-1 {
		a.next++
	}
	return reply.content, reply.err
}

func splitChunks(s string) []string {
	const size = 16
	runes := []rune(s)
	var out []string
	for len(runes) > 0 {
		n := size
		if n > len(runes) {
			n = len(runes)
		}
		out = append(out, string(runes[:n]))
		runes = runes[n:]
	}
	return out
}
