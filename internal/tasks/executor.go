package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/ytpl/internal/models"
	"github.com/desertthunder/ytpl/internal/shared"
	"github.com/desertthunder/ytpl/internal/throttle"
)

// SkippedItem records one item-level failure the batch chose to step over.
type SkippedItem struct {
	Op      string // "remove", "add", "move", "metadata"
	VideoID string
	Reason  string
}

// ExecReport summarizes what applying one diff actually did.
type ExecReport struct {
	MetadataUpdated bool
	Added           int
	Removed         int
	Moved           int
	SkippedItems    []SkippedItem
}

// ExecuteDiff applies a computed diff to the target playlist. Every write is
// paced by the shared throttler and wrapped in the retry policy; item-level
// failures are skipped and reported, batch-level failures abort with an error
// that states the remediation.
//
// current is the playlist state the diff was computed against; its metadata
// fills the unchanged fields of a partial metadata update.
func (e *BatchEngine) ExecuteDiff(ctx context.Context, playlistID string, current *models.Playlist, diff *models.PlaylistDiff) (*ExecReport, error) {
	report := &ExecReport{}

	if !diff.HasChanges() {
		return report, nil
	}

	itemIDs := make(map[string]string)
	items, err := e.api.ListItems(ctx, playlistID)
	if err != nil {
		return report, e.taskFailure(err, "failed to list current items")
	}
	for _, item := range items {
		if _, dup := itemIDs[item.VideoID]; !dup {
			itemIDs[item.VideoID] = item.ItemID
		}
	}

	if !diff.UpdateMetadata.Empty() {
		title, description, privacy := mergeMetadata(current, diff.UpdateMetadata)

		skip, err := e.runWrite(ctx, report, "metadata", "", func() error {
			return e.api.UpdatePlaylist(ctx, playlistID, title, description, privacy)
		})
		if err != nil {
			return report, err
		}
		report.MetadataUpdated = !skip
	}

	for _, videoID := range diff.VideosToRemove {
		itemID, ok := itemIDs[videoID]
		if !ok {
			// Already gone remotely, nothing to do.
			continue
		}

		skip, err := e.runWrite(ctx, report, "remove", videoID, func() error {
			return e.api.RemoveItem(ctx, itemID)
		})
		if err != nil {
			return report, err
		}
		if !skip {
			delete(itemIDs, videoID)
			report.Removed++
		}
	}

	for _, add := range diff.VideosToAdd {
		videoID := add.VideoID
		position := add.Position

		var itemID string
		skip, err := e.runWrite(ctx, report, "add", videoID, func() error {
			var insertErr error
			itemID, insertErr = e.api.InsertVideo(ctx, playlistID, videoID, position)
			return insertErr
		})
		if err != nil {
			return report, err
		}
		if !skip {
			itemIDs[videoID] = itemID
			report.Added++
		}
	}

	for _, move := range diff.VideosToMove {
		videoID := move.VideoID
		position := move.Position

		itemID, ok := itemIDs[videoID]
		if !ok {
			report.SkippedItems = append(report.SkippedItems, SkippedItem{
				Op: "move", VideoID: videoID, Reason: "item not present in playlist",
			})
			continue
		}

		skip, err := e.runWrite(ctx, report, "move", videoID, func() error {
			return e.api.MoveItem(ctx, playlistID, itemID, videoID, position)
		})
		if err != nil {
			return report, err
		}
		if !skip {
			report.Moved++
		}
	}

	return report, nil
}

// runWrite performs one throttled, retried write and translates its failure
// into the batch-level policy. The bool result reports whether the item was
// skipped. A returned error aborts the batch.
func (e *BatchEngine) runWrite(ctx context.Context, report *ExecReport, op, videoID string, fn func() error) (bool, error) {
	err := throttle.Do(ctx, e.throttler, fn)
	if err == nil {
		e.consecutive = 0
		return false, nil
	}

	var classified *throttle.ClassifiedError
	if !errors.As(err, &classified) {
		// Context cancellation or another non-API failure.
		return false, err
	}

	return e.applyPolicy(classified.Classification, report, op, videoID)
}

// applyPolicy maps a classified item failure onto the batch policy, tracking
// the consecutive-failure ceiling for exhausted retryable categories.
func (e *BatchEngine) applyPolicy(class throttle.Classification, report *ExecReport, op, videoID string) (bool, error) {
	action := throttle.Decide(class)

	switch action.Kind {
	case throttle.Abort:
		if class.Category == throttle.QuotaExceeded {
			return false, fmt.Errorf("%w: %s", shared.ErrQuotaExhausted, action.Reason)
		}
		return false, fmt.Errorf("%w: %s", shared.ErrBatchAborted, action.Reason)

	case throttle.Skip:
		e.logger.Warn("skipping item", "op", op, "video", videoID, "category", class.Category, "reason", action.Reason)
		report.SkippedItems = append(report.SkippedItems, SkippedItem{
			Op: op, VideoID: videoID, Reason: action.Reason,
		})

		if class.Category == throttle.RateLimited && e.rotation != nil {
			e.rotation.RecordRateLimit()
		}

		// Retryable categories reaching here have exhausted their retries.
		// A run of those in a row usually means a systemic outage.
		if class.Retryable {
			e.consecutive++
			if e.consecutive >= e.maxConsecutive {
				return true, fmt.Errorf("%w: %d consecutive item failures, stopping; retry later",
					shared.ErrBatchAborted, e.consecutive)
			}
		}
		return true, nil
	}

	return false, fmt.Errorf("%w: %s", shared.ErrBatchAborted, action.Reason)
}

// mergeMetadata fills the provider's full-snippet update from the current
// state plus the changed fields.
func mergeMetadata(current *models.Playlist, update *models.MetadataUpdate) (string, string, models.Privacy) {
	title := current.Title
	description := current.Description
	privacy := current.Privacy

	if update.Title != nil {
		title = *update.Title
	}
	if update.Description != nil {
		description = *update.Description
	}
	if update.Privacy != nil {
		privacy = *update.Privacy
	}

	return title, description, privacy
}
