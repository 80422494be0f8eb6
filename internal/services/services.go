// package services defines the two provider boundaries the engine works
// against: the quota-billed playlist write API and the zero-quota metadata
// extractor.
package services

import (
	"context"

	"github.com/desertthunder/ytpl/internal/models"
)

// PlaylistAPI is the write surface of the playlist provider. Every call is
// billed against the daily quota; implementations report their cost to the
// configured QuotaReporter.
type PlaylistAPI interface {
	// MyPlaylists retrieves the authenticated user's playlists without videos.
	MyPlaylists(ctx context.Context) ([]*models.Playlist, error)

	// GetPlaylist retrieves a playlist with its full video list.
	GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error)

	// ListItems retrieves the playlist's items in playlist order. Item IDs
	// are required for removal and reordering.
	ListItems(ctx context.Context, playlistID string) ([]PlaylistItem, error)

	// CreatePlaylist creates an empty playlist and returns its ID.
	CreatePlaylist(ctx context.Context, title, description string, privacy models.Privacy) (string, error)

	// UpdatePlaylist replaces the playlist's metadata. The provider requires
	// the full snippet, so callers pass the merged state rather than a delta.
	UpdatePlaylist(ctx context.Context, playlistID, title, description string, privacy models.Privacy) error

	// InsertVideo adds a video at the given position and returns the new
	// playlist item ID.
	InsertVideo(ctx context.Context, playlistID, videoID string, position int) (string, error)

	// RemoveItem deletes a playlist item by its item ID.
	RemoveItem(ctx context.Context, itemID string) error

	// MoveItem repositions an existing playlist item.
	MoveItem(ctx context.Context, playlistID, itemID, videoID string, position int) error
}

// MetadataSource reads playlist contents without spending API quota.
type MetadataSource interface {
	// ExtractPlaylist retrieves a playlist with its full video list.
	ExtractPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error)

	// ExtractChannelPlaylists lists the playlists of a channel without videos.
	ExtractChannelPlaylists(ctx context.Context, channelID string) ([]*models.Playlist, error)
}

// QuotaReporter receives the unit cost of each billed API call.
// *quota.Rotation satisfies it.
type QuotaReporter interface {
	RecordUsage(units int) error
}

// PlaylistItem is a single entry of a provider playlist. ItemID identifies
// the playlist membership, VideoID the video itself.
type PlaylistItem struct {
	ItemID   string
	VideoID  string
	Title    string
	Channel  string
	Position int
}
