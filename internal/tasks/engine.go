// package tasks implements the batch playlist reconciliation engine.
//
// The core abstraction is BatchEngine, which turns desired playlist states
// into quota-priced write sequences: dedup matching first, then per-playlist
// create-or-update with journal write-through so interrupted batches resume.
// Operations emit progress updates via channels for non-blocking status
// reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/ytpl/internal/diffs"
	"github.com/desertthunder/ytpl/internal/journal"
	"github.com/desertthunder/ytpl/internal/match"
	"github.com/desertthunder/ytpl/internal/models"
	"github.com/desertthunder/ytpl/internal/quota"
	"github.com/desertthunder/ytpl/internal/services"
	"github.com/desertthunder/ytpl/internal/shared"
	"github.com/desertthunder/ytpl/internal/throttle"
)

// EngineOpts carries the tunable batch policy knobs.
type EngineOpts struct {
	MatchThreshold         float64 // dedup overlap threshold (default 0.75)
	MaxConsecutiveFailures int     // item failures in a row before aborting (default 3)
}

// BatchEngine orchestrates playlist reconciliation: dedup analysis, diff
// execution, and journal bookkeeping. One engine serves one process; the
// write path is strictly sequential.
type BatchEngine struct {
	api       services.PlaylistAPI
	source    services.MetadataSource
	store     *journal.Store
	throttler *throttle.Throttler
	rotation  *quota.Rotation
	logger    *log.Logger

	threshold      float64
	maxConsecutive int
	consecutive    int
}

// NewBatchEngine creates an engine. rotation may be nil when no project
// rotation is configured.
func NewBatchEngine(
	api services.PlaylistAPI,
	source services.MetadataSource,
	store *journal.Store,
	throttler *throttle.Throttler,
	rotation *quota.Rotation,
	logger *log.Logger,
	opts EngineOpts,
) *BatchEngine {
	if opts.MatchThreshold <= 0 {
		opts.MatchThreshold = match.DefaultThreshold
	}
	if opts.MaxConsecutiveFailures <= 0 {
		opts.MaxConsecutiveFailures = 3
	}

	return &BatchEngine{
		api:            api,
		source:         source,
		store:          store,
		throttler:      throttler,
		rotation:       rotation,
		logger:         logger,
		threshold:      opts.MatchThreshold,
		maxConsecutive: opts.MaxConsecutiveFailures,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *BatchEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// BatchOpts configures one batch run.
type BatchOpts struct {
	// Sources are the playlists to reconcile onto the user's channel, one
	// journal task each. On resume, sources missing here are re-extracted
	// for pending tasks only.
	Sources []*models.Playlist

	// Targets are the channel's existing playlists with videos, the dedup
	// candidates and update targets.
	Targets []*models.Playlist

	// Resume continues a persisted journal instead of starting fresh.
	Resume bool
}

// BatchResult summarizes a batch run.
type BatchResult struct {
	BatchID   string
	Completed int
	Skipped   int
	Failed    int
}

// RunBatch reconciles every pending source playlist onto the channel.
//
// Order of operations per task: dedup match (EXACT targets are skipped before
// any write), then either an in-place update of the matched partial target or
// a create-and-fill. Every task outcome is journaled synchronously; abort
// paths leave the journal resumable. A fully settled journal is cleared at
// the end.
func (e *BatchEngine) RunBatch(ctx context.Context, progress chan<- ProgressUpdate, opts BatchOpts) (*BatchResult, error) {
	if e.api == nil {
		return nil, fmt.Errorf("%w: playlist API not initialized", shared.ErrServiceUnavailable)
	}

	e.consecutive = 0

	if err := e.prepareJournal(opts); err != nil {
		return nil, err
	}

	result := &BatchResult{BatchID: e.store.Journal().BatchID}

	sourceByID := make(map[string]*models.Playlist, len(opts.Sources))
	for _, source := range opts.Sources {
		sourceByID[source.ID] = source
	}

	pending := e.store.PendingTasks()
	e.sendProgress(progress, analyzeDedupUpdate(len(pending)))

	for i, task := range pending {
		step, total := i+1, len(pending)

		source, err := e.taskSource(ctx, progress, task, sourceByID, step, total)
		if err != nil {
			e.failTask(task, err)
			result.Failed++
			e.sendProgress(progress, taskFailedUpdate(step, total, task.SourceTitle, err))
			continue
		}

		matched := match.FindMatchingPlaylist(source, opts.Targets, e.threshold)

		if matched.MatchType == models.MatchExact && task.Status == models.TaskPending {
			if err := e.store.UpdateTask(task.SourcePlaylistID, journal.TaskPatch{
				Status:          statusPtr(models.TaskSkipped),
				MatchType:       matchPtr(matched.MatchType),
				MatchPlaylistID: strPtr(matched.TargetPlaylist.ID),
			}); err != nil {
				e.logger.Error("failed to journal task skip", "task", task.SourcePlaylistID, "error", err)
			}
			result.Skipped++
			e.sendProgress(progress, taskSkippedUpdate(step, total, source.Title, matched.TargetPlaylist.ID))
			continue
		}

		patch := journal.TaskPatch{Status: statusPtr(models.TaskInProgress)}
		if matched.MatchType != models.MatchNone {
			patch.MatchType = matchPtr(matched.MatchType)
			patch.MatchPlaylistID = strPtr(matched.TargetPlaylist.ID)
		}
		if err := e.store.UpdateTask(task.SourcePlaylistID, patch); err != nil {
			return result, err
		}

		targetID, report, err := e.reconcileTask(ctx, progress, source, matched, step, total)
		if err != nil {
			e.failTask(task, err)
			result.Failed++
			e.sendProgress(progress, taskFailedUpdate(step, total, source.Title, err))

			if abortErr := e.checkAbort(err); abortErr != nil {
				return result, abortErr
			}
			continue
		}

		if err := e.store.UpdateTask(task.SourcePlaylistID, journal.TaskPatch{
			Status:           statusPtr(models.TaskCompleted),
			TargetPlaylistID: strPtr(targetID),
			VideosAdded:      intPtr(report.Added),
		}); err != nil {
			e.logger.Error("failed to journal task completion", "task", task.SourcePlaylistID, "error", err)
		}
		result.Completed++
		e.sendProgress(progress, taskCompletedUpdate(step, total, source.Title, report.Added))
	}

	if err := e.store.GC(); err != nil {
		e.logger.Warn("failed to clear settled journal", "error", err)
	}

	e.sendProgress(progress, batchSettledUpdate(result))
	return result, nil
}

// prepareJournal loads the persisted journal on resume or creates a fresh one.
func (e *BatchEngine) prepareJournal(opts BatchOpts) error {
	if opts.Resume && e.store.Journal() != nil {
		e.logger.Info("resuming batch", "batch", e.store.Journal().BatchID,
			"pending", len(e.store.PendingTasks()))
		return nil
	}

	if len(opts.Sources) == 0 {
		return fmt.Errorf("batch requires at least one source playlist")
	}

	if _, err := e.store.Create(opts.Sources); err != nil {
		return err
	}
	return nil
}

// taskSource resolves the source playlist for a task, re-extracting it when a
// resumed run did not supply it.
func (e *BatchEngine) taskSource(ctx context.Context, progress chan<- ProgressUpdate, task models.Task, sourceByID map[string]*models.Playlist, step, total int) (*models.Playlist, error) {
	if source, ok := sourceByID[task.SourcePlaylistID]; ok {
		return source, nil
	}

	e.sendProgress(progress, fetchSourceUpdate(step, total, task.SourceTitle))
	source, err := e.source.ExtractPlaylist(ctx, task.SourcePlaylistID)
	if err != nil {
		return nil, fmt.Errorf("failed to re-extract source playlist: %w", err)
	}
	return source, nil
}

// reconcileTask performs the write path of one task: update the matched
// partial target in place, or create a fresh playlist and fill it.
func (e *BatchEngine) reconcileTask(ctx context.Context, progress chan<- ProgressUpdate, source *models.Playlist, matched models.MatchResult, step, total int) (string, *ExecReport, error) {
	desired, err := CopyPlan(source, "")
	if err != nil {
		return "", nil, err
	}

	// A resumed FAILED task can match exactly if an earlier attempt already
	// copied everything; completing it avoids a duplicate create.
	if matched.MatchType == models.MatchExact {
		return matched.TargetPlaylist.ID, &ExecReport{}, nil
	}

	if matched.MatchType == models.MatchPartial {
		diff := diffs.Calculate(matched.TargetPlaylist, desired)
		e.sendProgress(progress, applyChangesUpdate(step, total, diff))

		report, err := e.ExecuteDiff(ctx, matched.TargetPlaylist.ID, matched.TargetPlaylist, diff)
		return matched.TargetPlaylist.ID, report, err
	}

	return e.createFromDesired(ctx, progress, desired, step, total)
}

// createFromDesired creates an empty playlist and fills it by diffing against
// the empty state.
func (e *BatchEngine) createFromDesired(ctx context.Context, progress chan<- ProgressUpdate, desired *models.Playlist, step, total int) (string, *ExecReport, error) {
	e.sendProgress(progress, createTargetUpdate(step, total, desired.Title))

	var targetID string
	err := throttle.Do(ctx, e.throttler, func() error {
		var createErr error
		targetID, createErr = e.api.CreatePlaylist(ctx, desired.Title, desired.Description, desired.Privacy)
		return createErr
	})
	if err != nil {
		return "", nil, e.taskFailure(err, fmt.Sprintf("failed to create playlist %q", desired.Title))
	}

	empty := models.NewPlaylist(targetID, desired.Title, desired.Description)
	empty.Privacy = desired.Privacy

	diff := diffs.Calculate(empty, desired)
	e.sendProgress(progress, applyChangesUpdate(step, total, diff))

	report, err := e.ExecuteDiff(ctx, targetID, empty, diff)
	return targetID, report, err
}

// failTask records the failure on the journal, bumping the retry count. A
// task that never left PENDING is moved through IN_PROGRESS first so the
// transition stays legal.
func (e *BatchEngine) failTask(task models.Task, taskErr error) {
	if task.Status == models.TaskPending {
		if err := e.store.UpdateTask(task.SourcePlaylistID, journal.TaskPatch{
			Status: statusPtr(models.TaskInProgress),
		}); err != nil {
			e.logger.Error("failed to journal task start", "task", task.SourcePlaylistID, "error", err)
			return
		}
	}

	retries := task.RetryCount + 1
	if err := e.store.UpdateTask(task.SourcePlaylistID, journal.TaskPatch{
		Status:     statusPtr(models.TaskFailed),
		Error:      strPtr(taskErr.Error()),
		RetryCount: &retries,
	}); err != nil {
		e.logger.Error("failed to journal task failure", "task", task.SourcePlaylistID, "error", err)
	}
}

// taskFailure translates a task-level API failure (create, list) into the
// batch policy so it aborts or counts toward the consecutive-failure ceiling
// the same way an item write does.
func (e *BatchEngine) taskFailure(err error, msg string) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", msg, err)
	}

	class := throttle.Classify(err)
	var classified *throttle.ClassifiedError
	if errors.As(err, &classified) {
		class = classified.Classification
	}
	if class.Category == throttle.QuotaExceeded {
		return fmt.Errorf("%w: %s", shared.ErrQuotaExhausted, msg)
	}
	if action := throttle.Decide(class); action.Kind == throttle.Abort {
		return fmt.Errorf("%w: %s: %s", shared.ErrBatchAborted, msg, action.Reason)
	}

	if class.Retryable {
		e.consecutive++
		if e.consecutive >= e.maxConsecutive {
			return fmt.Errorf("%w: %d consecutive item failures, stopping; retry later",
				shared.ErrBatchAborted, e.consecutive)
		}
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// checkAbort decides whether a task failure stops the whole batch. Quota
// exhaustion additionally records the project state and attempts rotation so
// the remediation message can say whether a resume will have budget.
func (e *BatchEngine) checkAbort(err error) error {
	switch {
	case errors.Is(err, shared.ErrQuotaExhausted):
		if e.rotation != nil {
			e.rotation.MarkExhausted(err.Error())
			if e.rotation.Advance() {
				return fmt.Errorf("%w: rotated to project %q; run again with --resume to continue",
					err, e.rotation.Current().Name)
			}
			return fmt.Errorf("%w: all configured projects exhausted; resume after the daily quota reset", err)
		}
		return fmt.Errorf("%w: resume after the daily quota reset", err)

	case errors.Is(err, shared.ErrBatchAborted):
		return err
	}

	// Item-level failure already journaled; the batch continues.
	return nil
}

func statusPtr(s models.TaskStatus) *models.TaskStatus { return &s }
func matchPtr(m models.MatchType) *models.MatchType    { return &m }
func strPtr(s string) *string                          { return &s }
func intPtr(n int) *int                                { return &n }
