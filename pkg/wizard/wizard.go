// Package wizard composes the resilient invocation stack into the named
// operations the content wizard's steps call. Each operation binds a prompt
// to a model tier, routes it through retry and fallback, and coerces the raw
// response into typed records before handing it back.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"github.com/scribewise/scribewise/pkg/adapter"
	"github.com/scribewise/scribewise/pkg/artifact"
	"github.com/scribewise/scribewise/pkg/config"
	"github.com/scribewise/scribewise/pkg/extract"
	"github.com/scribewise/scribewise/pkg/normalize"
	"github.com/scribewise/scribewise/pkg/router"
	"github.com/scribewise/scribewise/pkg/webhook"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"
)

// Task names, as keyed in the tier configuration.
const (
	TaskTopicIdeas    = "topic_ideas"
	TaskCompetitors   = "competitor_summaries"
	TaskKeywordAngles = "keyword_angles"
	TaskReview        = "review"
	TaskDraft         = "draft_article"
	TaskNarrate       = "narrate"
)

// ErrMalformedResponse marks output that yielded nothing parseable and had
// no safe default.
var ErrMalformedResponse = errors.New("model response held no usable output")

const defaultVoice = "Kore"

// Wizard is the invocation facade. It owns no mutable state beyond its
// collaborators, so concurrent calls are independent.
type Wizard struct {
	adapters map[string]adapter.Adapter
	tiers    *config.TierConfig
	hook     *webhook.Client
	log      *slog.Logger
}

// New builds a wizard over the given adapters. The webhook client may be nil
// when no research endpoint is configured; webhook-backed operations then
// fail with a labeled error instead of panicking.
func New(adapters map[string]adapter.Adapter, tiers *config.TierConfig, hook *webhook.Client, log *slog.Logger) *Wizard {
	if log == nil {
		log = slog.Default()
	}
	return &Wizard{adapters: adapters, tiers: tiers, hook: hook, log: log}
}

// TopicIdeas asks the model for content topics for a niche and audience.
func (w *Wizard) TopicIdeas(ctx context.Context, niche, audience string) ([]normalize.TopicIdea, error) {
	const label = "failed to generate topic ideas"

	v, err := w.structured(ctx, TaskTopicIdeas, topicIdeasPrompt(niche, audience))
	if err != nil {
		return nil, w.fail(label, TaskTopicIdeas, err)
	}
	return normalize.TopicIdeas(v, w.log), nil
}

// CompetitorSummaries asks the model to summarize the pages competing for a
// keyword.
func (w *Wizard) CompetitorSummaries(ctx context.Context, keyword string) ([]normalize.CompetitorSummary, error) {
	const label = "failed to summarize competitors"

	v, err := w.structured(ctx, TaskCompetitors, competitorPrompt(keyword))
	if err != nil {
		return nil, w.fail(label, TaskCompetitors, err)
	}
	return normalize.CompetitorSummaries(v, w.log), nil
}

// KeywordPlan bundles the parallel research behind one keyword strategy.
type KeywordPlan struct {
	Seed        string
	Ranked      []normalize.RankedKeyword
	Suggestions []string
	Angles      []normalize.TopicIdea
}

// KeywordStrategy fans out the webhook research calls and a model call in
// parallel and joins them into one plan. All branches must finish before the
// plan returns; the first failure cancels the rest.
func (w *Wizard) KeywordStrategy(ctx context.Context, siteURL, seed, country, language string) (*KeywordPlan, error) {
	const label = "failed to build keyword strategy"

	if w.hook == nil {
		return nil, w.fail(label, TaskKeywordAngles, errors.New("no webhook endpoint configured"))
	}

	plan := &KeywordPlan{Seed: seed}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ranked, err := w.hook.RankedKeywords(gctx, siteURL, country, language)
		if err != nil {
			return err
		}
		plan.Ranked = ranked
		return nil
	})
	g.Go(func() error {
		suggestions, err := w.hook.KeywordSuggestions(gctx, seed, country, language)
		if err != nil {
			return err
		}
		plan.Suggestions = suggestions
		return nil
	})
	g.Go(func() error {
		v, err := w.structured(gctx, TaskKeywordAngles, keywordAnglesPrompt(seed))
		if err != nil {
			return err
		}
		plan.Angles = normalize.TopicIdeas(v, w.log)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, w.fail(label, TaskKeywordAngles, err)
	}
	return plan, nil
}

// InternalLinks fetches linkable pages for the user's site.
func (w *Wizard) InternalLinks(ctx context.Context, siteURL string) ([]normalize.InternalLink, error) {
	const label = "failed to fetch internal links"

	if w.hook == nil {
		return nil, w.fail(label, webhookTask, errors.New("no webhook endpoint configured"))
	}
	links, err := w.hook.InternalLinks(ctx, siteURL)
	if err != nil {
		return nil, w.fail(label, webhookTask, err)
	}
	return links, nil
}

// ReviewDraft asks the model for a prose review of a draft. The raw text
// comes back trimmed; literally empty output is an error, since free text
// has no safe default.
func (w *Wizard) ReviewDraft(ctx context.Context, draft string) (string, error) {
	const label = "failed to review the draft"

	art, err := w.generate(ctx, TaskReview, adapter.Request{Prompt: reviewPrompt(draft)})
	if err != nil {
		return "", w.fail(label, TaskReview, err)
	}
	review := strings.TrimSpace(art.Content)
	if review == "" {
		return "", w.fail(label, TaskReview, fmt.Errorf("%w: empty review", ErrMalformedResponse))
	}
	return review, nil
}

// ArticleBrief parameterizes a draft.
type ArticleBrief struct {
	Title    string
	Keywords []string
	Audience string
	Tone     string
}

// DraftArticle streams an article draft chunk by chunk. The sequence is
// finite and single-pass; the consumer folds chunks into its own buffer and
// may stop at any chunk boundary, which cancels the remainder. If the
// primary model fails before the first chunk with a transient error, the
// stream restarts once on the fallback model; after the first chunk there is
// nothing safe to splice, so mid-stream failures surface as-is.
func (w *Wizard) DraftArticle(ctx context.Context, brief ArticleBrief) iter.Seq2[string, error] {
	const label = "failed to draft the article"

	return func(yield func(string, error) bool) {
		ad, tier, err := w.pick(TaskDraft)
		if err != nil {
			yield("", w.fail(label, TaskDraft, err))
			return
		}

		req := adapter.Request{Prompt: draftPrompt(brief)}
		streamer, ok := ad.(adapter.Streamer)
		if !ok {
			// Buffered path for adapters without streaming: the whole
			// draft arrives as one chunk, with full retry and fallback.
			art, err := w.generate(ctx, TaskDraft, req)
			if err != nil {
				yield("", w.fail(label, TaskDraft, err))
				return
			}
			yield(art.Content, nil)
			return
		}

		retryable, done := w.relay(streamer.Stream(ctx, tier.Primary, req), label, yield)
		if done || !retryable {
			return
		}
		w.relay(streamer.Stream(ctx, tier.Fallback, req), label, yield)
	}
}

// relay forwards a stream to yield. It reports retryable=true only when the
// stream failed transiently before emitting anything, so the caller can
// restart it on the fallback model exactly once.
func (w *Wizard) relay(stream iter.Seq2[string, error], label string, yield func(string, error) bool) (retryable, done bool) {
	emitted := false
	for chunk, err := range stream {
		if err != nil {
			if !emitted && adapter.IsTransient(err) {
				w.log.Warn("stream failed before first chunk, descending to fallback", "err", err)
				return true, false
			}
			yield("", w.fail(label, TaskDraft, err))
			return false, true
		}
		emitted = true
		if !yield(chunk, nil) {
			return false, true
		}
	}
	return false, true
}

// Narrate renders text to speech and returns the decoded bytes along with
// the sample rate and channel count that were requested. Assembling a
// playable container out of them is the audio collaborator's job.
func (w *Wizard) Narrate(ctx context.Context, text string) (*adapter.AudioClip, error) {
	const label = "failed to narrate the article"

	ad, tier, err := w.pick(TaskNarrate)
	if err != nil {
		return nil, w.fail(label, TaskNarrate, err)
	}
	narrator, ok := ad.(adapter.Narrator)
	if !ok {
		return nil, w.fail(label, TaskNarrate, fmt.Errorf("adapter %s cannot narrate", ad.Name()))
	}

	clip, err := router.Route(ctx, tier, func(ctx context.Context, model string) (*adapter.AudioClip, error) {
		return narrator.Narrate(ctx, model, text, defaultVoice)
	}, nil)
	if err != nil {
		return nil, w.fail(label, TaskNarrate, err)
	}
	return clip, nil
}

// structured runs a model task expected to answer in JSON and returns the
// parsed value. Extraction narrows the response; the parse check here is
// what actually decides whether anything usable came back.
func (w *Wizard) structured(ctx context.Context, task, prompt string) (gjson.Result, error) {
	art, err := w.generate(ctx, task, adapter.Request{Prompt: prompt, WantJSON: true})
	if err != nil {
		return gjson.Result{}, err
	}

	candidate := extract.JSON(art.Content)
	if !gjson.Valid(candidate) {
		w.log.Error("model response failed JSON parse", "task", task, "candidate", truncate(candidate, 200))
		return gjson.Result{}, fmt.Errorf("%w: unparseable JSON", ErrMalformedResponse)
	}
	return gjson.Parse(candidate), nil
}

// generate routes one buffered model call through retry and fallback.
func (w *Wizard) generate(ctx context.Context, task string, req adapter.Request) (*artifact.Artifact, error) {
	ad, tier, err := w.pick(task)
	if err != nil {
		return nil, err
	}

	art, err := router.Route(ctx, tier, func(ctx context.Context, model string) (*artifact.Artifact, error) {
		return ad.Generate(ctx, model, req)
	}, nil)
	if err != nil {
		return nil, err
	}
	return art.WithTask(task), nil
}

func (w *Wizard) pick(task string) (adapter.Adapter, router.Tier, error) {
	entry := w.tiers.Task(task)
	ad, ok := w.adapters[entry.Adapter]
	if !ok {
		return nil, router.Tier{}, fmt.Errorf("adapter %s not configured", entry.Adapter)
	}
	return ad, entry.Tier(), nil
}

// fail logs the raw diagnostic detail and returns the task-facing label in
// its place. Callers display the label; transport internals stay in the log.
func (w *Wizard) fail(label, task string, err error) error {
	w.log.Error("wizard task failed",
		"task", task,
		"kind", adapter.Classify(err).Kind.String(),
		"err", err,
	)
	return fmt.Errorf("%s: %w", label, err)
}

const webhookTask = "webhook"

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
