package formatter

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/desertthunder/ytpl/internal/diffs"
	"github.com/desertthunder/ytpl/internal/models"
	"github.com/desertthunder/ytpl/internal/quota"
)

// FormatDiff renders a human-readable preview of a planned diff, one line per
// operation, suffixed with the quota price.
func FormatDiff(title string, diff *models.PlaylistDiff) string {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Changes for %q:\n", title))

	if !diff.HasChanges() {
		buf.WriteString("  (no changes)\n")
		return buf.String()
	}

	if !diff.UpdateMetadata.Empty() {
		if diff.UpdateMetadata.Title != nil {
			buf.WriteString(fmt.Sprintf("  ~ title: %q\n", *diff.UpdateMetadata.Title))
		}
		if diff.UpdateMetadata.Description != nil {
			buf.WriteString("  ~ description\n")
		}
		if diff.UpdateMetadata.Privacy != nil {
			buf.WriteString(fmt.Sprintf("  ~ privacy: %s\n", *diff.UpdateMetadata.Privacy))
		}
	}

	for _, id := range diff.VideosToRemove {
		buf.WriteString(fmt.Sprintf("  - remove %s\n", id))
	}
	for _, add := range diff.VideosToAdd {
		buf.WriteString(fmt.Sprintf("  + add %s at %d\n", add.VideoID, add.Position))
	}
	for _, move := range diff.VideosToMove {
		buf.WriteString(fmt.Sprintf("  > move %s to %d\n", move.VideoID, move.Position))
	}

	buf.WriteString(fmt.Sprintf("\nEstimated quota: %d units\n", diff.EstimatedQuota))
	return buf.String()
}

// FormatMatch renders a dedup match verdict for one source playlist.
func FormatMatch(sourceTitle string, result models.MatchResult) string {
	switch result.MatchType {
	case models.MatchExact:
		return fmt.Sprintf("%s: exact match with %q (%s), nothing to do",
			sourceTitle, result.TargetPlaylist.Title, result.TargetPlaylist.ID)
	case models.MatchPartial:
		return fmt.Sprintf("%s: partial match with %q (%s), %.0f%% covered, %d video(s) missing",
			sourceTitle, result.TargetPlaylist.Title, result.TargetPlaylist.ID,
			result.OverlapPercent*100, len(result.MissingVideos))
	default:
		return fmt.Sprintf("%s: no match, will be created", sourceTitle)
	}
}

// FormatFieldDiff renders the metadata-level differences behind a match
// verdict, one indented line per field. Empty when nothing differs.
func FormatFieldDiff(diff *diffs.FieldDiff) string {
	if !diff.HasChanges() {
		return ""
	}

	names := make([]string, 0, len(diff.Changes))
	for name := range diff.Changes {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	for _, name := range names {
		change := diff.Changes[name]
		buf.WriteString(fmt.Sprintf("  %s: %v -> %v\n", name, change.Old, change.New))
	}
	if diff.VideosReordered {
		buf.WriteString("  videos: same set, different order\n")
	}
	return buf.String()
}

// FormatEstimate renders a quota estimate with the day count it implies.
func FormatEstimate(est quota.Estimate, dailyLimit int) string {
	var buf bytes.Buffer

	buf.WriteString("Quota estimate:\n")
	if est.Lists > 0 {
		buf.WriteString(fmt.Sprintf("  lists:            %4d × %d = %d\n", est.Lists, quota.CostList, est.Lists*quota.CostList))
	}
	if est.Inserts > 0 {
		buf.WriteString(fmt.Sprintf("  inserts:          %4d × %d = %d\n", est.Inserts, quota.CostInsert, est.Inserts*quota.CostInsert))
	}
	if est.Deletes > 0 {
		buf.WriteString(fmt.Sprintf("  deletes:          %4d × %d = %d\n", est.Deletes, quota.CostDelete, est.Deletes*quota.CostDelete))
	}
	if est.Updates > 0 {
		buf.WriteString(fmt.Sprintf("  updates:          %4d × %d = %d\n", est.Updates, quota.CostUpdate, est.Updates*quota.CostUpdate))
	}
	if est.MetadataUpdates > 0 {
		buf.WriteString(fmt.Sprintf("  metadata updates: %4d × %d = %d\n", est.MetadataUpdates, quota.CostMetadataUpdate, est.MetadataUpdates*quota.CostMetadataUpdate))
	}

	if dailyLimit <= 0 {
		dailyLimit = quota.DailyLimit
	}
	total := est.Total()
	buf.WriteString(fmt.Sprintf("  total:            %d units (daily limit %d)\n", total, dailyLimit))

	if days := est.DaysRequired(dailyLimit); days > 1 {
		buf.WriteString(fmt.Sprintf("\nWarning: this plan needs roughly %d daily quota windows.\n", days))
		buf.WriteString("Interrupted runs resume from the journal with --resume.\n")
	}

	return buf.String()
}

// FormatJournal renders the state of a persisted batch journal, one line per
// task.
func FormatJournal(journal *models.Journal) string {
	if journal == nil {
		return "No batch in progress.\n"
	}

	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("Batch %s (created %s)\n\n",
		journal.BatchID, journal.CreatedAt.Format("2006-01-02 15:04")))

	counts := make(map[models.TaskStatus]int)
	for _, task := range journal.Tasks {
		counts[task.Status]++

		line := fmt.Sprintf("  [%s] %s", statusGlyph(task.Status), task.SourceTitle)
		switch {
		case task.Status == models.TaskCompleted && task.VideosAdded > 0:
			line += fmt.Sprintf(" (+%d videos)", task.VideosAdded)
		case task.Status == models.TaskSkipped && task.MatchPlaylistID != "":
			line += fmt.Sprintf(" (duplicate of %s)", task.MatchPlaylistID)
		case task.Status == models.TaskFailed:
			line += fmt.Sprintf(" (attempt %d: %s)", task.RetryCount, task.Error)
		}
		buf.WriteString(line + "\n")
	}

	buf.WriteString(fmt.Sprintf("\n%d completed, %d skipped, %d failed, %d pending\n",
		counts[models.TaskCompleted], counts[models.TaskSkipped],
		counts[models.TaskFailed], counts[models.TaskPending]+counts[models.TaskInProgress]))

	return buf.String()
}

func statusGlyph(status models.TaskStatus) string {
	switch status {
	case models.TaskCompleted:
		return "✓"
	case models.TaskSkipped:
		return "~"
	case models.TaskFailed:
		return "✗"
	case models.TaskInProgress:
		return "»"
	default:
		return " "
	}
}
