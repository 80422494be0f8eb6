package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/ytpl/internal/formatter"
	"github.com/desertthunder/ytpl/internal/models"
	"github.com/desertthunder/ytpl/internal/tasks"
)

// Copy copies one source playlist onto the user's channel.
func (r *Runner) Copy(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireEngine(); err != nil {
		return err
	}

	sourceID := cmd.String("source")
	r.logger.Info("copying playlist", "source", sourceID)

	source, err := r.source.ExtractPlaylist(ctx, sourceID)
	if err != nil {
		return fmt.Errorf("failed to extract source playlist: %w", err)
	}

	desired, err := tasks.CopyPlan(source, cmd.String("title"))
	if err != nil {
		return err
	}

	return r.reconcileOne(ctx, desired, cmd.Bool("dry-run"))
}

// Merge merges several source playlists into one channel playlist.
func (r *Runner) Merge(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireEngine(); err != nil {
		return err
	}

	sourceIDs := cmd.StringSlice("source")
	r.logger.Info("merging playlists", "sources", len(sourceIDs))

	sources := make([]*models.Playlist, 0, len(sourceIDs))
	for _, id := range sourceIDs {
		source, err := r.source.ExtractPlaylist(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to extract source playlist %s: %w", id, err)
		}
		sources = append(sources, source)
	}

	desired, err := tasks.MergePlan(sources, cmd.String("title"))
	if err != nil {
		return err
	}

	return r.reconcileOne(ctx, desired, cmd.Bool("dry-run"))
}

// Split splits a source playlist into fixed-size parts on the channel.
func (r *Runner) Split(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireEngine(); err != nil {
		return err
	}

	sourceID := cmd.String("source")
	chunkSize := cmd.Int("chunk-size")
	r.logger.Info("splitting playlist", "source", sourceID, "chunk_size", chunkSize)

	source, err := r.source.ExtractPlaylist(ctx, sourceID)
	if err != nil {
		return fmt.Errorf("failed to extract source playlist: %w", err)
	}

	parts, err := tasks.SplitPlan(source, chunkSize)
	if err != nil {
		return err
	}

	r.writePlain("Splitting %q into %d parts\n\n", source.Title, len(parts))

	for _, part := range parts {
		if err := r.reconcileOne(ctx, part, cmd.Bool("dry-run")); err != nil {
			return err
		}
	}
	return nil
}

// Apply reconciles a YAML playlist spec onto the channel.
func (r *Runner) Apply(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireEngine(); err != nil {
		return err
	}

	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("spec file path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read spec file: %w", err)
	}

	spec, err := models.ParsePlaylistSpec(data)
	if err != nil {
		return err
	}

	desired, err := tasks.ApplyPlan(spec)
	if err != nil {
		return err
	}

	r.logger.Info("applying playlist spec", "path", path, "title", desired.Title)
	return r.reconcileOne(ctx, desired, cmd.Bool("dry-run"))
}

// reconcileOne brings one desired playlist state onto the channel and prints
// the outcome (or, on a dry run, the plan).
func (r *Runner) reconcileOne(ctx context.Context, desired *models.Playlist, dryRun bool) error {
	targets, err := r.fetchTargets(ctx)
	if err != nil {
		return err
	}

	result, err := r.engine.Reconcile(ctx, nil, desired, targets, dryRun)
	if err != nil {
		return err
	}

	r.writePlain("%s\n", formatter.FormatMatch(desired.Title, result.Match))

	switch result.Outcome {
	case tasks.OutcomePlanned:
		r.writePlain("\n%s", formatter.FormatDiff(desired.Title, result.Diff))
		r.writePlain("\nDry run: nothing written.\n")
	case tasks.OutcomeSkipped:
		r.writePlain("✓ Already up to date (%s)\n", result.TargetID)
	case tasks.OutcomeUpdated:
		r.writePlain("✓ Updated %s: +%d -%d videos, %d moved\n",
			result.TargetID, result.Report.Added, result.Report.Removed, result.Report.Moved)
		r.reportSkipped(result.Report)
	case tasks.OutcomeCreated:
		r.writePlain("✓ Created %s with %d videos\n", result.TargetID, result.Report.Added)
		r.reportSkipped(result.Report)
	}

	return nil
}

func (r *Runner) reportSkipped(report *tasks.ExecReport) {
	if report == nil || len(report.SkippedItems) == 0 {
		return
	}
	r.writePlain("⚠ Skipped %d item(s):\n", len(report.SkippedItems))
	for _, item := range report.SkippedItems {
		r.writePlain("  • %s %s: %s\n", item.Op, item.VideoID, item.Reason)
	}
}
