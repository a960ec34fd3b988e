package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/scribewise/scribewise/pkg/adapter"
	"github.com/scribewise/scribewise/pkg/config"
	"github.com/scribewise/scribewise/pkg/webhook"
	"github.com/scribewise/scribewise/pkg/wizard"
)

var (
	tierFile string
	verbose  bool

	// The core bounds retry count, not wall clock; the CLI is where a human
	// is waiting, so it puts a ceiling on each command.
	commandTimeout = 5 * time.Minute
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "scribewise",
		Short: "Content-generation wizard over resilient model invocation",
		Long: `Scribewise generates content plans, drafts, and research for a site by
	calling generative models and a webhook research tool, with retry and
	model fallback on transient upstream failures.`,
	}

	rootCmd.PersistentFlags().StringVar(&tierFile, "tiers", "", "path to tier config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug detail")

	rootCmd.AddCommand(ideasCmd())
	rootCmd.AddCommand(competitorsCmd())
	rootCmd.AddCommand(keywordsCmd())
	rootCmd.AddCommand(linksCmd())
	rootCmd.AddCommand(reviewCmd())
	rootCmd.AddCommand(draftCmd())
	rootCmd.AddCommand(narrateCmd())
	rootCmd.AddCommand(modelsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func ideasCmd() *cobra.Command {
	var audience string

	cmd := &cobra.Command{
		Use:   "ideas [niche]",
		Short: "Suggest article topics for a niche",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, ctx, cancel, err := setup()
			if err != nil {
				return err
			}
			defer cancel()

			ideas, err := w.TopicIdeas(ctx, args[0], audience)
			if err != nil {
				return err
			}
			return printJSON(ideas)
		},
	}

	cmd.Flags().StringVar(&audience, "audience", "a general audience", "target audience")
	return cmd
}

func competitorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "competitors [keyword]",
		Short: "Summarize the pages competing for a keyword",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, ctx, cancel, err := setup()
			if err != nil {
				return err
			}
			defer cancel()

			summaries, err := w.CompetitorSummaries(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(summaries)
		},
	}
}

func keywordsCmd() *cobra.Command {
	var siteURL, country, language string

	cmd := &cobra.Command{
		Use:   "keywords [seed]",
		Short: "Build a keyword strategy around a seed keyword",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, ctx, cancel, err := setup()
			if err != nil {
				return err
			}
			defer cancel()

			plan, err := w.KeywordStrategy(ctx, siteURL, args[0], country, language)
			if err != nil {
				return err
			}
			return printJSON(plan)
		},
	}

	cmd.Flags().StringVar(&siteURL, "site", "", "site URL for ranked-keyword research")
	cmd.Flags().StringVar(&country, "country", "us", "target country code")
	cmd.Flags().StringVar(&language, "language", "en", "target language code")
	return cmd
}

func linksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "links [site-url]",
		Short: "Fetch linkable pages for a site",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, ctx, cancel, err := setup()
			if err != nil {
				return err
			}
			defer cancel()

			links, err := w.InternalLinks(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(links)
		},
	}
}

func reviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "review [draft-file]",
		Short: "Get an editorial review of a draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read draft: %w", err)
			}

			w, ctx, cancel, err := setup()
			if err != nil {
				return err
			}
			defer cancel()

			review, err := w.ReviewDraft(ctx, string(draft))
			if err != nil {
				return err
			}
			fmt.Println(review)
			return nil
		},
	}
}

func draftCmd() *cobra.Command {
	var keywords, audience, tone string

	cmd := &cobra.Command{
		Use:   "draft [title]",
		Short: "Stream an article draft to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, ctx, cancel, err := setup()
			if err != nil {
				return err
			}
			defer cancel()

			brief := wizard.ArticleBrief{
				Title:    args[0],
				Audience: audience,
				Tone:     tone,
			}
			if keywords != "" {
				brief.Keywords = strings.Split(keywords, ",")
			}

			for chunk, err := range w.DraftArticle(ctx, brief) {
				if err != nil {
					return err
				}
				fmt.Print(chunk)
			}
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().StringVar(&keywords, "keywords", "", "comma-separated keywords to work in")
	cmd.Flags().StringVar(&audience, "audience", "", "target audience")
	cmd.Flags().StringVar(&tone, "tone", "", "writing tone")
	return cmd
}

func narrateCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "narrate [text-file]",
		Short: "Render text to speech and write the raw PCM bytes",
		Long: `Renders text to speech and writes the decoded bytes as-is. Wrapping them
	in a playable container is left to audio tooling; the command prints the
	sample rate and channel count needed to do that.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read text: %w", err)
			}

			w, ctx, cancel, err := setup()
			if err != nil {
				return err
			}
			defer cancel()

			clip, err := w.Narrate(ctx, string(text))
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, clip.PCM, 0644); err != nil {
				return fmt.Errorf("write audio: %w", err)
			}
			fmt.Printf("wrote %d bytes to %s (%d Hz, %d channel(s), 16-bit PCM)\n",
				len(clip.PCM), out, clip.SampleRate, clip.Channels)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "narration.pcm", "output file")
	return cmd
}

func modelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List configured adapters and their models",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			adapters, err := buildAdapters(cfg)
			if err != nil {
				return err
			}
			for name, ad := range adapters {
				fmt.Println(name + ":")
				for _, model := range ad.Models() {
					fmt.Println("  " + model)
				}
			}
			return nil
		},
	}
}

func setup() (*wizard.Wizard, context.Context, context.CancelFunc, error) {
	log := newLogger()
	slog.SetDefault(log)

	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	adapters, err := buildAdapters(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(adapters) == 0 {
		return nil, nil, nil, fmt.Errorf("no adapters configured: set at least one provider API key")
	}

	var hook *webhook.Client
	if cfg.WebhookURL != "" {
		hook = webhook.NewClient(cfg.WebhookURL, cfg.Tiers.Webhook.Policy(), log)
	}

	w := wizard.New(adapters, cfg.Tiers, hook, log)
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	return w, ctx, cancel, nil
}

func loadConfig() (*config.Config, error) {
	if tierFile != "" {
		return config.LoadWithTierFile(tierFile)
	}
	return config.Load()
}

func buildAdapters(cfg *config.Config) (map[string]adapter.Adapter, error) {
	adapters := make(map[string]adapter.Adapter)

	if cfg.GoogleAPIKey != "" {
		google, err := adapter.NewGoogleAdapter(cfg.GoogleAPIKey)
		if err != nil {
			return nil, fmt.Errorf("google adapter: %w", err)
		}
		adapters["google"] = google
	}
	if cfg.OpenAIAPIKey != "" {
		oa, err := adapter.NewOpenAIAdapter(cfg.OpenAIAPIKey)
		if err != nil {
			return nil, fmt.Errorf("openai adapter: %w", err)
		}
		adapters["openai"] = oa
	}
	if cfg.AnthropicAPIKey != "" {
		ant, err := adapter.NewAnthropicAdapter(cfg.AnthropicAPIKey)
		if err != nil {
			return nil, fmt.Errorf("anthropic adapter: %w", err)
		}
		adapters["anthropic"] = ant
	}
	if os.Getenv("SCRIBEWISE_MOCK") != "" {
		adapters["mock"] = adapter.NewMockAdapter()
	}

	return adapters, nil
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
