package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/light-bringer/inventory-service/internal/app/inventory/contracts"
	"github.com/light-bringer/inventory-service/internal/app/inventory/queries/list_events"
	"github.com/light-bringer/inventory-service/internal/services"
)

var (
	completedRetention int
	failedRetention    int
	cleanupDryRun      bool

	eventsStatus string
	eventsType   string
	eventsLimit  int64
)

var outboxRelayCmd = &cobra.Command{
	Use:   "outbox:relay",
	Short: "Publish one batch of pending outbox events",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *services.ServiceOptions, out io.Writer) error {
			stats, err := svc.Relay.RunOnce(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Published %d events, %d failed\n", stats.Published, stats.Failed)
			return nil
		})
	},
}

var outboxCleanupCmd = &cobra.Command{
	Use:   "outbox:cleanup",
	Short: "Delete processed outbox events past their retention",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *services.ServiceOptions, out io.Writer) error {
			fmt.Fprintf(out, "Completed retention: %d days, failed retention: %d days\n", completedRetention, failedRetention)
			if cleanupDryRun {
				return dryRunCleanup(ctx, svc, out)
			}
			deleted, err := svc.Relay.Cleanup(ctx, completedRetention, failedRetention)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Deleted %d events\n", deleted)
			return nil
		})
	},
}

var outboxEventsCmd = &cobra.Command{
	Use:   "outbox:events",
	Short: "List recent outbox events",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *services.ServiceOptions, out io.Writer) error {
			req := &list_events.Request{Limit: eventsLimit}
			if eventsStatus != "" {
				req.Status = &eventsStatus
			}
			if eventsType != "" {
				req.EventType = &eventsType
			}
			events, err := svc.ListEvents.Execute(ctx, req)
			if err != nil {
				return err
			}
			if len(events) == 0 {
				fmt.Fprintln(out, "No events found")
				return nil
			}
			for i, ev := range events {
				fmt.Fprintf(out, "%d. %s - %s (aggregate: %s, status: %s, retries: %d)\n",
					i+1, ev.EventType, ev.EventID, ev.AggregateID, ev.Status, ev.RetryCount)
			}
			fmt.Fprintf(out, "\nTotal: %d events\n", len(events))
			return nil
		})
	},
}

func init() {
	outboxCleanupCmd.Flags().IntVar(&completedRetention, "completed-retention", 30, "Retention days for completed events")
	outboxCleanupCmd.Flags().IntVar(&failedRetention, "failed-retention", 90, "Retention days for failed events")
	outboxCleanupCmd.Flags().BoolVar(&cleanupDryRun, "dry-run", false, "Show what would be deleted without deleting")

	outboxEventsCmd.Flags().StringVar(&eventsStatus, "status", "", "Filter by status (pending, completed, failed)")
	outboxEventsCmd.Flags().StringVar(&eventsType, "type", "", "Filter by event type")
	outboxEventsCmd.Flags().Int64Var(&eventsLimit, "limit", 10, "Maximum number of events")

	rootCmd.AddCommand(outboxRelayCmd, outboxCleanupCmd, outboxEventsCmd)
}

func dryRunCleanup(ctx context.Context, svc *services.ServiceOptions, out io.Writer) error {
	now := time.Now().UTC()
	cutoffs := map[string]time.Time{
		contracts.OutboxCompleted: now.AddDate(0, 0, -completedRetention),
		contracts.OutboxFailed:    now.AddDate(0, 0, -failedRetention),
	}

	var total int
	for status, cutoff := range cutoffs {
		events, err := svc.Stores.Outbox.List(ctx, contracts.EventFilter{Status: &status})
		if err != nil {
			return fmt.Errorf("failed to list %s events: %w", status, err)
		}
		n := countExpired(events, cutoff)
		fmt.Fprintf(out, "  Would delete %d %s events\n", n, status)
		total += n
	}
	fmt.Fprintf(out, "DRY RUN: Would delete %d total events\n", total)
	return nil
}

// countExpired mirrors the store cleanup: completed events age from processing,
// failed events from creation.
func countExpired(events []*contracts.OutboxEvent, cutoff time.Time) int {
	var n int
	for _, ev := range events {
		switch ev.Status {
		case contracts.OutboxCompleted:
			if ev.ProcessedAt != nil && ev.ProcessedAt.Before(cutoff) {
				n++
			}
		case contracts.OutboxFailed:
			if ev.CreatedAt.Before(cutoff) {
				n++
			}
		}
	}
	return n
}
