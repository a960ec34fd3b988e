package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func setHomeEnv(t *testing.T, home string) {
	t.Helper()
	t.Setenv("HOME", home)
	if runtime.GOOS == "windows" {
		t.Setenv("USERPROFILE", home)
	}
}

func clearKeyEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("SCRIBEWISE_WEBHOOK_URL", "")
}

func TestConfigUsesEnvAPIKeys(t *testing.T) {
	setHomeEnv(t, t.TempDir())

	t.Setenv("ANTHROPIC_API_KEY", "env-ant")
	t.Setenv("OPENAI_API_KEY", "env-openai")
	t.Setenv("GOOGLE_API_KEY", "env-google")
	t.Setenv("SCRIBEWISE_WEBHOOK_URL", "https://hooks.example.com/research")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AnthropicAPIKey != "env-ant" || cfg.OpenAIAPIKey != "env-openai" || cfg.GoogleAPIKey != "env-google" {
		t.Fatalf("expected env API keys to be used")
	}
	if cfg.WebhookURL != "https://hooks.example.com/research" {
		t.Fatalf("WebhookURL = %q", cfg.WebhookURL)
	}
}

func TestConfigEnvOverridesFile(t *testing.T) {
	home := t.TempDir()
	setHomeEnv(t, home)
	clearKeyEnv(t)

	configDir := filepath.Join(home, ".scribewise")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	data := []byte("api_keys:\n  google: file-google\nwebhook:\n  url: https://file.example.com\n")
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), data, 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("GOOGLE_API_KEY", "env-google")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.GoogleAPIKey != "env-google" {
		t.Fatalf("GoogleAPIKey = %q, want the env value", cfg.GoogleAPIKey)
	}
	if cfg.WebhookURL != "https://file.example.com" {
		t.Fatalf("WebhookURL = %q, want the file value", cfg.WebhookURL)
	}
}

func TestConfigDefaultTiersWhenNoFile(t *testing.T) {
	setHomeEnv(t, t.TempDir())
	clearKeyEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Tiers == nil {
		t.Fatal("expected default tiers")
	}
	task := cfg.Tiers.Task("topic_ideas")
	if task.Adapter == "" || task.Primary == "" || task.Fallback == "" {
		t.Fatalf("default topic_ideas tier incomplete: %+v", task)
	}
	if task.FallbackRetry.MaxAttempts < 1 {
		t.Fatalf("fallback retry budget = %d, want >= 1", task.FallbackRetry.MaxAttempts)
	}
}

func TestLoadTierConfigFromFile(t *testing.T) {
	setHomeEnv(t, t.TempDir())
	clearKeyEnv(t)

	path := filepath.Join(t.TempDir(), "tiers.yaml")
	data := []byte(`tasks:
  review:
    adapter: openai
    primary: gpt-5.2-pro
    primary_retry:
      max_attempts: 1
      base_delay_ms: 500
      factor: 3
default:
  adapter: google
  primary: gemini-2.0-pro
`)
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("write tiers: %v", err)
	}

	tiers, err := LoadTierConfig(path)
	if err != nil {
		t.Fatalf("load tiers: %v", err)
	}

	review := tiers.Task("review")
	if review.Adapter != "openai" || review.Primary != "gpt-5.2-pro" {
		t.Fatalf("review tier = %+v", review)
	}
	if review.Fallback != "gpt-5.2-pro" {
		t.Fatalf("Fallback = %q, want primary mirrored when unset", review.Fallback)
	}

	policy := review.PrimaryRetry.Policy()
	if policy.MaxAttempts != 1 || policy.BaseDelay != 500*time.Millisecond || policy.Factor != 3 {
		t.Fatalf("policy = %+v", policy)
	}

	// Unknown tasks fall back to the default entry.
	other := tiers.Task("draft_article")
	if other.Adapter != "google" || other.Primary != "gemini-2.0-pro" {
		t.Fatalf("default tier = %+v", other)
	}
}

func TestTierConversion(t *testing.T) {
	task := TaskTier{
		Adapter:       "google",
		Primary:       "gemini-2.0-pro",
		Fallback:      "gemini-2.0-flash",
		PrimaryRetry:  RetrySettings{MaxAttempts: 1, BaseDelayMs: 2000, Factor: 2},
		FallbackRetry: RetrySettings{MaxAttempts: 3, BaseDelayMs: 2000, Factor: 2},
	}
	tier := task.Tier()
	if tier.Primary != "gemini-2.0-pro" || tier.Fallback != "gemini-2.0-flash" {
		t.Fatalf("tier models = %+v", tier)
	}
	if tier.PrimaryPolicy.MaxAttempts >= tier.FallbackPolicy.MaxAttempts {
		t.Fatalf("primary budget should be shallower than fallback: %+v", tier)
	}
}

func TestHasAdapter(t *testing.T) {
	cfg := &Config{GoogleAPIKey: "k"}
	if !cfg.HasAdapter("google") || cfg.HasAdapter("openai") || cfg.HasAdapter("nonsense") {
		t.Fatal("HasAdapter misreports configured adapters")
	}
	if !cfg.HasAdapter("mock") {
		t.Fatal("mock adapter needs no key")
	}
}
