package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/ytpl/internal/diffs"
	"github.com/desertthunder/ytpl/internal/formatter"
	"github.com/desertthunder/ytpl/internal/match"
	"github.com/desertthunder/ytpl/internal/models"
	"github.com/desertthunder/ytpl/internal/tasks"
)

// Sync reconciles every playlist of a source channel onto the user's channel,
// journaled so an interrupted run resumes with --resume.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireEngine(); err != nil {
		return err
	}

	return r.runSync(ctx, cmd.String("channel"), cmd.Int("workers"), cmd.Bool("resume"))
}

// BatchResume continues an interrupted batch from its journal.
func (r *Runner) BatchResume(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireEngine(); err != nil {
		return err
	}
	return r.runSync(ctx, "", 0, true)
}

func (r *Runner) runSync(ctx context.Context, channelID string, workers int, resume bool) error {
	if channelID == "" && !resume {
		return fmt.Errorf("either --channel or --resume is required")
	}

	var sources []*models.Playlist
	if channelID != "" {
		r.logger.Info("fetching source channel", "channel", channelID)
		var err error
		sources, err = r.engine.FetchChannelPlaylists(ctx, nil, channelID, tasks.FetchOpts{
			NumWorkers: workers,
		})
		if err != nil {
			return fmt.Errorf("failed to fetch channel playlists: %w", err)
		}
		r.writePlain("Fetched %d playlists from channel %s\n", len(sources), channelID)
	}

	targets, err := r.fetchTargets(ctx)
	if err != nil {
		return err
	}

	result, runErr := r.engine.RunBatch(ctx, nil, tasks.BatchOpts{
		Sources: sources,
		Targets: targets,
		Resume:  resume,
	})

	if result != nil {
		r.writePlainHeader(fmt.Sprintf("Batch %s", result.BatchID))
		r.writePlain("Completed: %d\n", result.Completed)
		r.writePlain("Skipped:   %d (already on your channel)\n", result.Skipped)
		r.writePlain("Failed:    %d\n", result.Failed)
	}

	if runErr != nil {
		return runErr
	}

	r.writePlain("\n✓ Sync complete\n")
	return nil
}

// Match prints the dedup verdict for each source playlist without writing.
func (r *Runner) Match(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireEngine(); err != nil {
		return err
	}

	channelID := cmd.String("channel")
	sourceIDs := cmd.StringSlice("source")

	if channelID == "" && len(sourceIDs) == 0 {
		return fmt.Errorf("either --channel or --source is required")
	}

	var sources []*models.Playlist
	var err error

	if channelID != "" {
		sources, err = r.engine.FetchChannelPlaylists(ctx, nil, channelID, tasks.FetchOpts{})
		if err != nil {
			return fmt.Errorf("failed to fetch channel playlists: %w", err)
		}
	} else {
		for _, id := range sourceIDs {
			source, err := r.source.ExtractPlaylist(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to extract source playlist %s: %w", id, err)
			}
			sources = append(sources, source)
		}
	}

	targets, err := r.fetchTargets(ctx)
	if err != nil {
		return err
	}

	threshold := r.config.Batch.MatchThreshold
	results := match.AnalyzeBatch(sources, targets, threshold)

	if cmd.Bool("json") {
		return r.writeJSON(results, true)
	}

	for _, source := range sources {
		result := results[source.ID]
		r.writePlain("%s\n", formatter.FormatMatch(source.Title, result))

		if result.TargetPlaylist != nil {
			if fields := diffs.Fields(result.TargetPlaylist, source); fields.HasChanges() {
				r.writePlain("%s", formatter.FormatFieldDiff(fields))
			}
		}
	}
	return nil
}
