package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/MKhiriev/go-fin-keeper/internal/client"
	"github.com/MKhiriev/go-fin-keeper/internal/service"
	"github.com/MKhiriev/go-fin-keeper/models"
	"github.com/spf13/cobra"
)

const drainPollInterval = 100 * time.Millisecond

func newSyncCmd(opts *rootOptions) *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Replay queued changes against the server now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, false, func(ctx context.Context, app *client.App) error {
				result, err := manualSync(ctx, app.Manager())
				if err != nil {
					return fmt.Errorf("sync: %w", err)
				}
				printDrain(cmd.OutOrStdout(), result)

				if !full {
					return nil
				}
				record, err := app.Reconciler().FullSync(ctx)
				if err != nil {
					return fmt.Errorf("full sync: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Full sync done: %s\n", describeRecord(record))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "also reconcile the whole local record with the server")
	return cmd
}

// manualSync waits out a drain started by the connectivity edge, then runs
// its own.
func manualSync(ctx context.Context, m service.SyncQueueManager) (service.DrainResult, error) {
	for {
		result, err := m.ManualSync(ctx)
		if !errors.Is(err, service.ErrDrainInProgress) {
			return result, err
		}

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(drainPollInterval):
		}
	}
}

func printDrain(w io.Writer, r service.DrainResult) {
	if !r.Started {
		fmt.Fprintln(w, "Nothing to sync")
		return
	}
	fmt.Fprintf(w, "Applied %d, retried %d, dropped %d, deferred %d; %d pending\n",
		r.Applied, r.Retried, r.Dropped, r.Deferred, r.Remaining)
	if r.Aborted {
		fmt.Fprintln(w, "Sync stopped early: connection lost")
	}
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the sync queue and recent failures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, false, func(ctx context.Context, app *client.App) error {
				snapshot := app.Manager().Snapshot()
				pending := app.Manager().Pending()

				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(statusReport{Snapshot: snapshot, Pending: pending})
				}

				printStatus(cmd.OutOrStdout(), snapshot, pending)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print machine-readable output")
	return cmd
}

type statusReport struct {
	Snapshot models.SyncSnapshot     `json:"snapshot"`
	Pending  []models.SyncOperation `json:"pending"`
}

func printStatus(w io.Writer, s models.SyncSnapshot, pending []models.SyncOperation) {
	fmt.Fprintf(w, "Connection:   %s\n", connectionLabel(s.Connected))
	fmt.Fprintf(w, "Pending:      %d\n", s.PendingCount)
	fmt.Fprintf(w, "Last attempt: %s\n", formatTime(s.LastAttemptAt))
	fmt.Fprintf(w, "Last success: %s\n", formatTime(s.LastSuccessAt))

	for _, op := range pending {
		fmt.Fprintf(w, "  %s %s %s (attempt %d, queued %s)\n",
			op.ID, op.Action, op.EntityType, op.Attempt, formatTime(op.EnqueuedAt))
	}

	if len(s.RecentErrors) > 0 {
		fmt.Fprintf(w, "Recent errors (%d):\n", len(s.RecentErrors))
		for _, e := range s.RecentErrors {
			fmt.Fprintf(w, "  [%s/%s] %s after %d attempt(s): %s\n", e.EntityType, e.Action, e.OperationID, e.Attempts, e.Reason)
		}
	}
}

func newMergeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "merge",
		Short: "Merge the local record with the server copy and write the result to both",
		Long: `merge unions the local and server records: transactions from both sides are
kept, categories are deduplicated by name, budgets come from the local side
when it has any. Use it to recover after the two copies diverged.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, false, func(ctx context.Context, app *client.App) error {
				record, err := app.Reconciler().ForceMerge(ctx)
				if err != nil {
					return fmt.Errorf("merge: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Merged: %s\n", describeRecord(record))
				return nil
			})
		},
	}
}

func describeRecord(r models.AggregateRecord) string {
	return fmt.Sprintf("%d expenses, %d incomes, %d budgets, %d categories",
		len(r.Expenses), len(r.Incomes), len(r.Budgets), len(r.Categories))
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format(time.DateTime)
}
