package config

import (
	"os"
	"time"

	"github.com/scribewise/scribewise/pkg/retry"
	"github.com/scribewise/scribewise/pkg/router"
	"gopkg.in/yaml.v3"
)

// TierConfig holds per-task model tiers and the webhook retry policy.
type TierConfig struct {
	Tasks   map[string]TaskTier `yaml:"tasks"`
	Default TaskTier            `yaml:"default"`
	Webhook RetrySettings       `yaml:"webhook_retry,omitempty"`
}

// TaskTier pins one logical task to an adapter and a primary/fallback model
// pair with independent retry budgets.
type TaskTier struct {
	Adapter       string        `yaml:"adapter"`
	Primary       string        `yaml:"primary"`
	Fallback      string        `yaml:"fallback"`
	PrimaryRetry  RetrySettings `yaml:"primary_retry,omitempty"`
	FallbackRetry RetrySettings `yaml:"fallback_retry,omitempty"`
}

// RetrySettings is the YAML shape of a retry policy.
type RetrySettings struct {
	MaxAttempts int     `yaml:"max_attempts"`
	BaseDelayMs int     `yaml:"base_delay_ms,omitempty"`
	Factor      float64 `yaml:"factor,omitempty"`
}

// Policy converts the settings into an executable retry policy.
func (s RetrySettings) Policy() retry.Policy {
	base := s.BaseDelayMs
	if base <= 0 {
		base = 2000
	}
	factor := s.Factor
	if factor <= 1 {
		factor = 2
	}
	return retry.Policy{
		MaxAttempts: s.MaxAttempts,
		BaseDelay:   time.Duration(base) * time.Millisecond,
		Factor:      factor,
	}
}

// Tier converts the task entry into a router tier.
func (t TaskTier) Tier() router.Tier {
	return router.Tier{
		Primary:        t.Primary,
		Fallback:       t.Fallback,
		PrimaryPolicy:  t.PrimaryRetry.Policy(),
		FallbackPolicy: t.FallbackRetry.Policy(),
	}
}

// Task returns the tier for a task, falling back to the default entry.
func (c *TierConfig) Task(name string) TaskTier {
	if t, ok := c.Tasks[name]; ok {
		return t
	}
	return c.Default
}

// LoadTierConfig reads tier configuration from a YAML file.
func LoadTierConfig(path string) (*TierConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg TierConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyTierDefaults(&cfg)
	return &cfg, nil
}

// DefaultTierConfig returns the compiled-in tiers. The primary budget is
// shallow on purpose: when a model is globally degraded the call should fail
// fast into the fallback tier instead of exhausting retries against it.
func DefaultTierConfig() *TierConfig {
	cfg := &TierConfig{
		Tasks: map[string]TaskTier{
			"topic_ideas": {
				Adapter:  "google",
				Primary:  "gemini-2.0-pro",
				Fallback: "gemini-2.0-flash",
			},
			"competitor_summaries": {
				Adapter:  "google",
				Primary:  "gemini-2.0-pro",
				Fallback: "gemini-2.0-flash",
			},
			"keyword_angles": {
				Adapter:  "google",
				Primary:  "gemini-2.0-flash",
				Fallback: "gemini-2.0-flash",
			},
			"review": {
				Adapter:  "anthropic",
				Primary:  "claude-opus-4-20250514",
				Fallback: "claude-sonnet-4-20250514",
			},
			"draft_article": {
				Adapter:  "openai",
				Primary:  "gpt-5.2-thinking",
				Fallback: "gpt-5.2-instant",
			},
			"narrate": {
				Adapter:  "google",
				Primary:  "gemini-2.0-flash",
				Fallback: "gemini-2.0-flash",
			},
		},
		Default: TaskTier{
			Adapter:  "google",
			Primary:  "gemini-2.0-pro",
			Fallback: "gemini-2.0-flash",
		},
	}
	applyTierDefaults(cfg)
	return cfg
}

func applyTierDefaults(cfg *TierConfig) {
	for name, task := range cfg.Tasks {
		cfg.Tasks[name] = fillTier(task)
	}
	cfg.Default = fillTier(cfg.Default)
	if cfg.Webhook.MaxAttempts == 0 {
		cfg.Webhook = RetrySettings{MaxAttempts: 2, BaseDelayMs: 1000, Factor: 2}
	}
}

func fillTier(t TaskTier) TaskTier {
	if t.Fallback == "" {
		t.Fallback = t.Primary
	}
	if t.PrimaryRetry.MaxAttempts == 0 {
		t.PrimaryRetry = RetrySettings{MaxAttempts: 1, BaseDelayMs: 2000, Factor: 2}
	}
	if t.FallbackRetry.MaxAttempts == 0 {
		t.FallbackRetry = RetrySettings{MaxAttempts: 3, BaseDelayMs: 2000, Factor: 2}
	}
	return t
}
