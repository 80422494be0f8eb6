package tasks

import (
	"fmt"

	"github.com/desertthunder/ytpl/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchTargets Phase = iota
	AnalyzeDedup
	FetchSource
	CreateTarget
	ApplyChanges
	TaskSettled
	BatchSettled
)

func (p Phase) String() string {
	switch p {
	case FetchTargets:
		return "fetch_targets"
	case AnalyzeDedup:
		return "analyze_dedup"
	case FetchSource:
		return "fetch_source"
	case CreateTarget:
		return "create_target"
	case ApplyChanges:
		return "apply_changes"
	case TaskSettled:
		return "task_settled"
	case BatchSettled:
		return "batch_settled"
	default:
		return ""
	}
}

func fetchTargetsUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTargets,
		Step:    step,
		Total:   total,
		Message: "Fetching channel playlists...",
	}
}

func analyzeDedupUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AnalyzeDedup,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Checking %d playlists for duplicates...", total),
	}
}

func fetchSourceUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSource,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching: %s...", step, total, title),
	}
}

func createTargetUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreateTarget,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Creating playlist: %s", step, total, title),
	}
}

func applyChangesUpdate(step, total int, diff *models.PlaylistDiff) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ApplyChanges,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Applying %d changes (~%d quota units)...", step, total, diff.OperationCount(), diff.EstimatedQuota),
		Data:    diff,
	}
}

func taskCompletedUpdate(step, total int, title string, added int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   TaskSettled,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d videos added)", step, total, title, added),
	}
}

func taskSkippedUpdate(step, total int, title, targetID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   TaskSettled,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ~ %s already exists as %s, skipped", step, total, title, targetID),
	}
}

func taskFailedUpdate(step, total int, title string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   TaskSettled,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, title, err),
	}
}

func batchSettledUpdate(result *BatchResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   BatchSettled,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Batch finished: %d completed, %d skipped, %d failed", result.Completed, result.Skipped, result.Failed),
		Data:    result,
	}
}
