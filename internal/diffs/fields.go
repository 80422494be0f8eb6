package diffs

import (
	"github.com/desertthunder/ytpl/internal/models"
)

// FieldChange holds the before/after values of one changed field.
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// FieldDiff is the human-facing field comparison used for previews. It is
// display-only and never drives write operations.
type FieldDiff struct {
	Changes         map[string]FieldChange `json:"changes"`
	VideosReordered bool                   `json:"videos_reordered"`
}

// HasChanges reports whether any field differs or the order changed.
func (d *FieldDiff) HasChanges() bool {
	return len(d.Changes) > 0 || d.VideosReordered
}

// Fields compares two playlists field by field for display. VideosReordered
// is set when the two video-ID sets are identical but their order differs
// (nothing added, nothing removed).
func Fields(old, new *models.Playlist) *FieldDiff {
	diff := &FieldDiff{Changes: make(map[string]FieldChange)}

	if old.Title != new.Title {
		diff.Changes["title"] = FieldChange{Old: old.Title, New: new.Title}
	}
	if old.Description != new.Description {
		diff.Changes["description"] = FieldChange{Old: old.Description, New: new.Description}
	}
	if old.Privacy != new.Privacy {
		diff.Changes["privacy"] = FieldChange{Old: old.Privacy, New: new.Privacy}
	}

	oldIDs, newIDs := old.VideoIDs(), new.VideoIDs()
	if len(oldIDs) != len(newIDs) {
		diff.Changes["video_count"] = FieldChange{Old: len(oldIDs), New: len(newIDs)}
		return diff
	}

	sameSet := true
	newSet := new.VideoIDSet()
	for _, id := range oldIDs {
		if _, ok := newSet[id]; !ok {
			sameSet = false
			break
		}
	}
	if !sameSet {
		diff.Changes["videos"] = FieldChange{Old: oldIDs, New: newIDs}
		return diff
	}

	for i := range oldIDs {
		if oldIDs[i] != newIDs[i] {
			diff.VideosReordered = true
			break
		}
	}
	return diff
}
