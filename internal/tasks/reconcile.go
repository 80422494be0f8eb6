package tasks

import (
	"context"

	"github.com/desertthunder/ytpl/internal/diffs"
	"github.com/desertthunder/ytpl/internal/match"
	"github.com/desertthunder/ytpl/internal/models"
)

// Outcome of a single-playlist reconciliation.
type Outcome string

const (
	OutcomeSkipped Outcome = "skipped" // exact match already on the channel
	OutcomeUpdated Outcome = "updated" // partial match brought in line
	OutcomeCreated Outcome = "created" // no match, playlist created
	OutcomePlanned Outcome = "planned" // dry run, nothing written
)

// ReconcileResult reports what a single-playlist reconciliation did or, on a
// dry run, would do.
type ReconcileResult struct {
	Outcome  Outcome
	TargetID string
	Match    models.MatchResult
	Diff     *models.PlaylistDiff
	Report   *ExecReport
}

// Reconcile brings one desired playlist state onto the channel: exact matches
// are left alone, partial matches are updated in place, everything else is
// created from scratch. With dryRun the computed plan is returned without
// performing any write.
//
// Unlike RunBatch this path keeps no journal; it serves the one-shot copy,
// merge, split, and apply commands.
func (e *BatchEngine) Reconcile(ctx context.Context, progress chan<- ProgressUpdate, desired *models.Playlist, targets []*models.Playlist, dryRun bool) (*ReconcileResult, error) {
	e.consecutive = 0

	result := &ReconcileResult{
		Match: match.FindMatchingPlaylist(desired, targets, e.threshold),
	}

	switch result.Match.MatchType {
	case models.MatchExact:
		result.Outcome = OutcomeSkipped
		result.TargetID = result.Match.TargetPlaylist.ID
		e.sendProgress(progress, taskSkippedUpdate(1, 1, desired.Title, result.TargetID))
		return result, nil

	case models.MatchPartial:
		target := result.Match.TargetPlaylist
		result.Diff = diffs.Calculate(target, desired)
		result.TargetID = target.ID

		if dryRun {
			result.Outcome = OutcomePlanned
			return result, nil
		}

		e.sendProgress(progress, applyChangesUpdate(1, 1, result.Diff))
		report, err := e.ExecuteDiff(ctx, target.ID, target, result.Diff)
		result.Report = report
		if err != nil {
			return result, err
		}

		result.Outcome = OutcomeUpdated
		e.sendProgress(progress, taskCompletedUpdate(1, 1, desired.Title, report.Added))
		return result, nil
	}

	// No match: plan against an empty playlist.
	empty := models.NewPlaylist("", desired.Title, desired.Description)
	empty.Privacy = desired.Privacy
	result.Diff = diffs.Calculate(empty, desired)

	if dryRun {
		result.Outcome = OutcomePlanned
		return result, nil
	}

	targetID, report, err := e.createFromDesired(ctx, progress, desired, 1, 1)
	result.TargetID = targetID
	result.Report = report
	if err != nil {
		return result, err
	}

	result.Outcome = OutcomeCreated
	e.sendProgress(progress, taskCompletedUpdate(1, 1, desired.Title, report.Added))
	return result, nil
}
