package models

// MetadataUpdate carries only the playlist fields that changed. Nil pointers
// mean "leave unchanged".
type MetadataUpdate struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Privacy     *Privacy `json:"privacy,omitempty"`
}

// Empty reports whether no metadata field changed.
func (m *MetadataUpdate) Empty() bool {
	return m == nil || (m.Title == nil && m.Description == nil && m.Privacy == nil)
}

// PositionedVideo pairs a video ID with its target index in the desired
// playlist order.
type PositionedVideo struct {
	VideoID  string `json:"video_id"`
	Position int    `json:"position"`
}

// PlaylistDiff is the computed set of operations that transforms a current
// playlist state into a desired one. It is a pure value derived from two
// playlist snapshots.
type PlaylistDiff struct {
	UpdateMetadata *MetadataUpdate   `json:"update_metadata,omitempty"`
	VideosToRemove []string          `json:"videos_to_remove"`
	VideosToAdd    []PositionedVideo `json:"videos_to_add"`
	VideosToMove   []PositionedVideo `json:"videos_to_move"`
	EstimatedQuota int               `json:"estimated_quota"`
}

// HasChanges reports whether applying the diff would perform any operation.
func (d *PlaylistDiff) HasChanges() bool {
	return !d.UpdateMetadata.Empty() ||
		len(d.VideosToRemove) > 0 ||
		len(d.VideosToAdd) > 0 ||
		len(d.VideosToMove) > 0
}

// OperationCount is the number of logically independent change-sets: one for
// the metadata update if present, plus one per add, remove, and move.
func (d *PlaylistDiff) OperationCount() int {
	n := len(d.VideosToAdd) + len(d.VideosToRemove) + len(d.VideosToMove)
	if !d.UpdateMetadata.Empty() {
		n++
	}
	return n
}
