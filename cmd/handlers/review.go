package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"satirewire/internal/blob"
	"satirewire/internal/config"
	"satirewire/internal/core"
	"satirewire/internal/store"
)

const reviewListMax = 20

// NewReviewCmd creates the review command group: a terminal workflow
// over the pending queue, addressing items by list index.
func NewReviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Work through the pending queue from the terminal",
		Long: `Review the human-review queue without the dashboard.

Examples:
  satirewire review list
  satirewire review show 0
  satirewire review approve 0
  satirewire review reject 0 "Grap landt niet, te dicht op het nieuws"`,
	}

	cmd.AddCommand(newReviewListCmd())
	cmd.AddCommand(newReviewShowCmd())
	cmd.AddCommand(newReviewApproveCmd())
	cmd.AddCommand(newReviewRejectCmd())

	return cmd
}

func openStore() (*store.Store, error) {
	cfg := config.Get()
	dir, err := blob.NewDir(cfg.App.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open data dir: %w", err)
	}
	return store.New(dir, cfg.Publish.PublishedCap, cfg.Publish.PendingCap), nil
}

// pendingItem resolves a positional index against the current queue.
func pendingItem(ctx context.Context, st *store.Store, raw string) ([]core.Article, int, error) {
	pending, err := st.Pending(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load pending queue: %w", err)
	}
	idx, err := strconv.Atoi(raw)
	if err != nil || idx < 0 || idx >= len(pending) {
		return nil, 0, fmt.Errorf("invalid index %q: use list / show <i> / approve <i> / reject <i> \"feedback\"", raw)
	}
	return pending, idx, nil
}

func newReviewListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the pending queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			pending, err := st.Pending(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load pending queue: %w", err)
			}
			if len(pending) == 0 {
				fmt.Println("Pending queue is empty.")
				return nil
			}
			if len(pending) > reviewListMax {
				pending = pending[:reviewListMax]
			}
			for i, a := range pending {
				fmt.Printf("%d) [%d] %s | %s (%s)\n", i, a.ReviewScore, a.Category, a.Title, a.Slug)
			}
			return nil
		},
	}
}

func newReviewShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <i>",
		Short: "Show one pending article in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			pending, idx, err := pendingItem(cmd.Context(), st, args[0])
			if err != nil {
				return err
			}
			a := pending[idx]
			fmt.Printf("\nTITLE: %s\n", a.Title)
			fmt.Printf("SUB:   %s\n", a.Subtitle)
			fmt.Printf("CAT:   %s\n", a.Category)
			fmt.Printf("SCORE: %d\n", a.ReviewScore)
			fmt.Printf("NOTES: %s\n", strings.Join(a.ReviewNotes, " | "))
			fmt.Printf("\nCONTENT:\n\n%s\n\n", a.Content)
			return nil
		},
	}
}

func newReviewApproveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve <i>",
		Short: "Approve a pending article and publish it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			pending, idx, err := pendingItem(ctx, st, args[0])
			if err != nil {
				return err
			}

			item := pending[idx]
			item.ReviewStatus = core.ReviewStatusApprovedByHuman
			item.ReviewedAt = time.Now().UTC().Format(time.RFC3339)

			published, err := st.Published(ctx)
			if err != nil {
				return fmt.Errorf("failed to load published set: %w", err)
			}
			// Published first: a crash in between duplicates, never loses.
			next := []core.Article{item}
			for _, a := range published {
				if a.ID == item.ID || (item.Slug != "" && a.Slug == item.Slug) {
					continue
				}
				next = append(next, a)
			}
			if err := st.SavePublished(ctx, next); err != nil {
				return fmt.Errorf("failed to save published set: %w", err)
			}

			pending = append(pending[:idx], pending[idx+1:]...)
			if err := st.SavePending(ctx, pending); err != nil {
				return fmt.Errorf("failed to save pending queue: %w", err)
			}

			fmt.Printf("Approved & published: %s\n", item.Slug)
			return nil
		},
	}
}

func newReviewRejectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reject <i> \"feedback\"",
		Short: "Reject a pending article with feedback",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			pending, idx, err := pendingItem(ctx, st, args[0])
			if err != nil {
				return err
			}

			item := pending[idx]
			feedback := strings.TrimSpace(strings.Join(args[1:], " "))

			pending = append(pending[:idx], pending[idx+1:]...)
			if err := st.SavePending(ctx, pending); err != nil {
				return fmt.Errorf("failed to save pending queue: %w", err)
			}

			rec := core.FeedbackRecord{
				At:             core.NowISO(),
				Action:         core.ActionReject,
				ID:             item.ID,
				Slug:           item.Slug,
				Title:          item.Title,
				SourceHeadline: item.SourceHeadline,
				Category:       item.Category,
				EditorID:       item.EditorID,
				EditorName:     item.EditorName,
				EditorRole:     item.EditorRole,
				AIScore:        item.ReviewScore,
				AINotes:        item.ReviewNotes,
				Feedback:       feedback,
			}
			if err := st.AppendFeedback(ctx, rec); err != nil {
				return fmt.Errorf("failed to append feedback record: %w", err)
			}

			fmt.Println("Rejected. Feedback saved to the journal.")
			return nil
		},
	}
}
