package tasks

import (
	"fmt"

	"github.com/desertthunder/ytpl/internal/models"
)

// Desired-state builders. Each returns playlists with positions renumbered so
// they are valid diff inputs. The returned playlists have no ID; the engine
// assigns one when a matching target is found or created.

// CopyPlan derives the desired state for copying a single playlist. An empty
// title keeps the source title.
func CopyPlan(source *models.Playlist, title string) (*models.Playlist, error) {
	if source == nil {
		return nil, fmt.Errorf("copy requires a source playlist")
	}

	if title == "" {
		title = source.Title
	}

	desired := models.NewPlaylist("", title, source.Description)
	desired.Privacy = source.Privacy
	desired.Videos = append([]models.Video(nil), source.Videos...)
	desired.Renumber()

	return desired, nil
}

// MergePlan combines several playlists into one desired state. Videos keep
// the order of their first occurrence across the sources; later duplicates
// are dropped.
func MergePlan(sources []*models.Playlist, title string) (*models.Playlist, error) {
	if len(sources) < 2 {
		return nil, fmt.Errorf("merge requires at least two source playlists, got %d", len(sources))
	}
	if title == "" {
		return nil, fmt.Errorf("merge requires a title for the combined playlist")
	}

	desired := models.NewPlaylist("", title, mergeDescription(sources))

	seen := make(map[string]struct{})
	for _, source := range sources {
		for _, video := range source.Videos {
			if _, dup := seen[video.ID]; dup {
				continue
			}
			seen[video.ID] = struct{}{}
			desired.Videos = append(desired.Videos, video)
		}
	}
	desired.Renumber()

	return desired, nil
}

func mergeDescription(sources []*models.Playlist) string {
	if len(sources) == 0 {
		return ""
	}

	desc := "Merged from: " + sources[0].Title
	for _, source := range sources[1:] {
		desc += ", " + source.Title
	}
	return desc
}

// SplitPlan partitions a playlist into chunks of at most chunkSize videos,
// preserving order. Part numbering starts at 1.
func SplitPlan(source *models.Playlist, chunkSize int) ([]*models.Playlist, error) {
	if source == nil {
		return nil, fmt.Errorf("split requires a source playlist")
	}
	if chunkSize < 1 {
		return nil, fmt.Errorf("split chunk size must be at least 1, got %d", chunkSize)
	}
	if len(source.Videos) == 0 {
		return nil, fmt.Errorf("cannot split an empty playlist")
	}

	parts := (len(source.Videos) + chunkSize - 1) / chunkSize
	if parts == 1 {
		return nil, fmt.Errorf("playlist fits in a single chunk of %d, nothing to split", chunkSize)
	}

	var desired []*models.Playlist
	for i := 0; i < parts; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > len(source.Videos) {
			end = len(source.Videos)
		}

		part := models.NewPlaylist("", fmt.Sprintf("%s (Part %d/%d)", source.Title, i+1, parts), source.Description)
		part.Privacy = source.Privacy
		part.Videos = append([]models.Video(nil), source.Videos[start:end]...)
		part.Renumber()

		desired = append(desired, part)
	}

	return desired, nil
}

// ApplyPlan derives the desired state from a YAML playlist spec.
func ApplyPlan(spec *models.PlaylistSpec) (*models.Playlist, error) {
	if spec == nil {
		return nil, fmt.Errorf("apply requires a playlist spec")
	}

	return spec.Playlist(), nil
}
