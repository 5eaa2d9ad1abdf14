package handlers

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"satirewire/internal/blob"
	"satirewire/internal/config"
	"satirewire/internal/editorial"
	"satirewire/internal/feeds"
	"satirewire/internal/llm"
	"satirewire/internal/logger"
	"satirewire/internal/notify"
	"satirewire/internal/publish"
	"satirewire/internal/review"
	"satirewire/internal/store"
)

// NewPublishCmd creates the publish command: one full generation pass
// over the current trends.
func NewPublishCmd() *cobra.Command {
	var (
		limit         int
		newsPerTrend  int
		force         bool
		dryRun        bool
		investigation bool
		noReview      bool
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Run one generation pass over the current trends",
		Long: `Fetch the trending topics, write satirical articles for them through
the staged editorial chain, and route each result to the published set
or the human review queue.

Examples:
  # Default run (limit from config)
  satirewire publish

  # Preview the trends without touching AI backends or storage
  satirewire publish --dry-run

  # Force one long-form investigation piece
  satirewire publish --limit 1 --investigation`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(cmd.Context(), publish.Options{
				Limit:              limit,
				NewsPerTrend:       newsPerTrend,
				Force:              force,
				DryRun:             dryRun,
				ForceInvestigation: investigation,
				SkipReview:         noReview,
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Max articles this run (default from config)")
	cmd.Flags().IntVar(&newsPerTrend, "news-per-trend", 0, "News items fetched per trend (default from config)")
	cmd.Flags().BoolVar(&force, "force", false, "Ignore slug and source dedup")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Walk the pipeline without persisting anything")
	cmd.Flags().BoolVar(&investigation, "investigation", false, "Force the investigation article type")
	cmd.Flags().BoolVar(&noReview, "no-review", false, "Skip the quality gate")

	return cmd
}

func runPublish(ctx context.Context, opts publish.Options) error {
	cfg := config.Get()
	if err := cfg.ValidatePublish(opts.DryRun); err != nil {
		return err
	}

	dir, err := blob.NewDir(cfg.App.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open data dir: %w", err)
	}
	st := store.New(dir, cfg.Publish.PublishedCap, cfg.Publish.PendingCap)
	fetcher := feeds.NewClient(cfg.Feeds.UserAgent, cfg.Feeds.Timeout)

	orchestrator, err := buildOrchestrator(ctx, cfg, st, fetcher)
	if err != nil {
		return err
	}

	summary, err := orchestrator.Run(ctx, opts)
	if err != nil {
		return err
	}

	if opts.DryRun {
		fmt.Printf("Dry run: %d trends seen\n", summary.TrendsSeen)
		for i, line := range summary.Preview {
			fmt.Printf("%d) %s\n", i, line)
		}
		return nil
	}

	fmt.Printf("Done: %d written (%d published, %d pending review)\n",
		summary.Written, summary.PublishedNew, summary.Queued)
	return nil
}

// buildOrchestrator assembles the full pipeline. In an AI-disabled dry
// run the LLM backends are left nil; the orchestrator only previews
// trends in that mode.
func buildOrchestrator(ctx context.Context, cfg *config.Config, st *store.Store, fetcher *feeds.Client) (*publish.Orchestrator, error) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	notifier := notify.New(cfg.Review.WebhookURL, cfg.Review.DashboardURL, 45*time.Second)

	if !cfg.AI.Enabled {
		return publish.New(cfg, st, fetcher, nil, nil, nil, notifier, rng, nil), nil
	}

	writer, err := llm.NewWriter(ctx, cfg.AI.Gemini.APIKey, cfg.AI.Gemini.WriteModel, cfg.AI.Gemini.Temperature)
	if err != nil {
		return nil, fmt.Errorf("failed to build write backend: %w", err)
	}
	filter, err := llm.NewFilter(cfg.AI.OpenAI.APIKey, cfg.AI.OpenAI.FilterModel)
	if err != nil {
		return nil, fmt.Errorf("failed to build filter backend: %w", err)
	}

	engine := editorial.NewEngine(editorial.Config{
		Write:                   writer,
		Filter:                  filter,
		Codec:                   llm.NewCodec(filter),
		ClassifyModel:           cfg.AI.OpenAI.ClassifyModel,
		WriteTemperature:        cfg.AI.Gemini.Temperature,
		SourceSummaryMaxBullets: cfg.Publish.SourceSummaryMaxBullets,
		SourceTextMaxChars:      cfg.Publish.SourceTextMaxChars,
		Rng:                     rng,
	})

	reviewer := review.NewReviewer(filter, cfg.AI.OpenAI.ReviewModel, st, cfg.Review.ApproveThreshold)

	logger.Info("Pipeline assembled",
		"write_model", cfg.AI.Gemini.WriteModel,
		"filter_model", cfg.AI.OpenAI.FilterModel,
		"review_model", cfg.AI.OpenAI.ReviewModel,
	)

	return publish.New(cfg, st, fetcher, engine, reviewer, nil, notifier, rng, nil), nil
}
