package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/ytpl/internal/diffs"
	"github.com/desertthunder/ytpl/internal/formatter"
	"github.com/desertthunder/ytpl/internal/match"
	"github.com/desertthunder/ytpl/internal/models"
	"github.com/desertthunder/ytpl/internal/quota"
	"github.com/desertthunder/ytpl/internal/tasks"
)

// QuotaEstimate prices a full channel sync without writing anything.
func (r *Runner) QuotaEstimate(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireEngine(); err != nil {
		return err
	}

	channelID := cmd.String("channel")
	r.logger.Info("estimating sync cost", "channel", channelID)

	sources, err := r.engine.FetchChannelPlaylists(ctx, nil, channelID, tasks.FetchOpts{})
	if err != nil {
		return fmt.Errorf("failed to fetch channel playlists: %w", err)
	}

	targets, err := r.fetchTargets(ctx)
	if err != nil {
		return err
	}

	results := match.AnalyzeBatch(sources, targets, r.config.Batch.MatchThreshold)

	var total quota.Estimate
	skipped := 0
	for _, source := range sources {
		matched := results[source.ID]

		switch matched.MatchType {
		case models.MatchExact:
			skipped++
		case models.MatchPartial:
			diff := diffs.Calculate(matched.TargetPlaylist, source)
			est := quota.Estimate{
				Inserts: len(diff.VideosToAdd),
				Deletes: len(diff.VideosToRemove),
				Updates: len(diff.VideosToMove),
			}
			if !diff.UpdateMetadata.Empty() {
				est.MetadataUpdates = 1
			}
			total.Add(est)
		default:
			// Create plus one insert per video.
			total.Add(quota.Estimate{Inserts: len(source.Videos) + 1})
		}
	}

	r.writePlain("Channel %s: %d playlists, %d already on your channel\n\n",
		channelID, len(sources), skipped)
	return r.writePlain("%s", formatter.FormatEstimate(total, r.config.Quota.DailyLimit))
}

// QuotaStatus reports per-project usage and rotation state.
func (r *Runner) QuotaStatus(ctx context.Context, cmd *cli.Command) error {
	if r.rotation == nil {
		return r.writePlain("No quota projects configured.\n")
	}

	current := r.rotation.Current()
	r.writePlainHeader("Quota projects")

	for _, project := range r.rotation.Projects() {
		marker := " "
		if current != nil && project.Name == current.Name {
			marker = "*"
		}

		line := fmt.Sprintf("%s %s: %d/%d units used", marker, project.Name,
			project.QuotaUsed, r.config.Quota.DailyLimit)
		if project.IsExhausted {
			line += " (exhausted)"
		}
		r.writePlain("%s\n", line)

		if project.LastError != "" {
			r.writePlain("    last error: %s\n", project.LastError)
		}
	}

	return nil
}
