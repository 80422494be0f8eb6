package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/ytpl/internal/formatter"
	"github.com/desertthunder/ytpl/internal/shared"
)

// BatchStatus shows the persisted journal state.
func (r *Runner) BatchStatus(ctx context.Context, cmd *cli.Command) error {
	if r.store == nil {
		return fmt.Errorf("%w: journal store not initialized", shared.ErrServiceUnavailable)
	}

	return r.writePlain("%s", formatter.FormatJournal(r.store.Journal()))
}

// BatchClear discards the persisted journal.
func (r *Runner) BatchClear(ctx context.Context, cmd *cli.Command) error {
	if r.store == nil {
		return fmt.Errorf("%w: journal store not initialized", shared.ErrServiceUnavailable)
	}

	journal := r.store.Journal()
	if journal == nil {
		return r.writePlain("No batch in progress.\n")
	}

	pending := len(r.store.PendingTasks())
	if err := r.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear journal: %w", err)
	}

	r.logger.Info("journal cleared", "batch", journal.BatchID, "pending", pending)
	if pending > 0 {
		r.writePlain("⚠ Discarded journal %s with %d unfinished task(s)\n", journal.BatchID, pending)
	} else {
		r.writePlain("✓ Journal %s cleared\n", journal.BatchID)
	}
	return nil
}
