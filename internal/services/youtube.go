// YouTube Data API v3 [PlaylistAPI] implementation.
//
// All calls here are billed: list pages cost 1 unit, every write costs 50.
// Costs are reported to the QuotaReporter so the project rotation state
// stays accurate.
package services

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/desertthunder/ytpl/internal/models"
	"github.com/desertthunder/ytpl/internal/quota"
)

const listPageSize = 50

// YouTubeService implements PlaylistAPI over the YouTube Data API v3.
type YouTubeService struct {
	svc      *youtube.Service
	reporter QuotaReporter
}

// NewYouTubeService creates an authenticated YouTube Data API client.
func NewYouTubeService(ctx context.Context, ts oauth2.TokenSource, reporter QuotaReporter) (*YouTubeService, error) {
	svc, err := youtube.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube client: %w", err)
	}

	return &YouTubeService{svc: svc, reporter: reporter}, nil
}

// NewYouTubeServiceWithOptions creates a client from raw client options.
// Used by tests to point the client at a local server.
func NewYouTubeServiceWithOptions(ctx context.Context, reporter QuotaReporter, opts ...option.ClientOption) (*YouTubeService, error) {
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube client: %w", err)
	}

	return &YouTubeService{svc: svc, reporter: reporter}, nil
}

func (y *YouTubeService) record(units int) {
	if y.reporter != nil {
		y.reporter.RecordUsage(units)
	}
}

// MyPlaylists retrieves all playlists owned by the authenticated user,
// metadata only, paginating until exhausted.
func (y *YouTubeService) MyPlaylists(ctx context.Context) ([]*models.Playlist, error) {
	var playlists []*models.Playlist

	pageToken := ""
	for {
		call := y.svc.Playlists.List([]string{"snippet", "status", "contentDetails"}).
			Mine(true).
			MaxResults(listPageSize).
			PageToken(pageToken).
			Context(ctx)

		resp, err := call.Do()
		y.record(quota.CostList)
		if err != nil {
			return nil, fmt.Errorf("failed to list playlists: %w", err)
		}

		for _, item := range resp.Items {
			playlists = append(playlists, playlistFromAPI(item))
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return playlists, nil
}

// GetPlaylist retrieves a playlist together with its ordered video list.
func (y *YouTubeService) GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	call := y.svc.Playlists.List([]string{"snippet", "status"}).
		Id(playlistID).
		Context(ctx)

	resp, err := call.Do()
	y.record(quota.CostList)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist %s: %w", playlistID, err)
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("playlist %s not found", playlistID)
	}

	playlist := playlistFromAPI(resp.Items[0])

	items, err := y.ListItems(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	playlist.Videos = make([]models.Video, len(items))
	for i, item := range items {
		playlist.Videos[i] = models.Video{
			ID:       item.VideoID,
			Title:    item.Title,
			Channel:  item.Channel,
			Position: i,
		}
	}

	return playlist, nil
}

// ListItems retrieves every item of a playlist in playlist order.
func (y *YouTubeService) ListItems(ctx context.Context, playlistID string) ([]PlaylistItem, error) {
	var items []PlaylistItem

	pageToken := ""
	for {
		call := y.svc.PlaylistItems.List([]string{"snippet", "contentDetails"}).
			PlaylistId(playlistID).
			MaxResults(listPageSize).
			PageToken(pageToken).
			Context(ctx)

		resp, err := call.Do()
		y.record(quota.CostList)
		if err != nil {
			return nil, fmt.Errorf("failed to list items of %s: %w", playlistID, err)
		}

		for _, item := range resp.Items {
			entry := PlaylistItem{
				ItemID:   item.Id,
				Position: len(items),
			}
			if item.ContentDetails != nil {
				entry.VideoID = item.ContentDetails.VideoId
			}
			if item.Snippet != nil {
				entry.Title = item.Snippet.Title
				entry.Channel = item.Snippet.VideoOwnerChannelTitle
				if entry.VideoID == "" && item.Snippet.ResourceId != nil {
					entry.VideoID = item.Snippet.ResourceId.VideoId
				}
			}
			items = append(items, entry)
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return items, nil
}

// CreatePlaylist creates an empty playlist and returns the new playlist ID.
func (y *YouTubeService) CreatePlaylist(ctx context.Context, title, description string, privacy models.Privacy) (string, error) {
	payload := &youtube.Playlist{
		Snippet: &youtube.PlaylistSnippet{
			Title:       title,
			Description: description,
		},
		Status: &youtube.PlaylistStatus{
			PrivacyStatus: string(privacy),
		},
	}

	call := y.svc.Playlists.Insert([]string{"snippet", "status"}, payload).Context(ctx)

	resp, err := call.Do()
	y.record(quota.CostInsert)
	if err != nil {
		return "", fmt.Errorf("failed to create playlist %q: %w", title, err)
	}

	return resp.Id, nil
}

// UpdatePlaylist replaces the playlist's metadata with the given merged state.
func (y *YouTubeService) UpdatePlaylist(ctx context.Context, playlistID, title, description string, privacy models.Privacy) error {
	payload := &youtube.Playlist{
		Id: playlistID,
		Snippet: &youtube.PlaylistSnippet{
			Title:       title,
			Description: description,
		},
		Status: &youtube.PlaylistStatus{
			PrivacyStatus: string(privacy),
		},
	}

	call := y.svc.Playlists.Update([]string{"snippet", "status"}, payload).Context(ctx)

	_, err := call.Do()
	y.record(quota.CostUpdate)
	if err != nil {
		return fmt.Errorf("failed to update playlist %s: %w", playlistID, err)
	}

	return nil
}

// InsertVideo adds a video to the playlist at the given position and returns
// the created item ID.
func (y *YouTubeService) InsertVideo(ctx context.Context, playlistID, videoID string, position int) (string, error) {
	payload := &youtube.PlaylistItem{
		Snippet: &youtube.PlaylistItemSnippet{
			PlaylistId: playlistID,
			Position:   int64(position),
			ResourceId: &youtube.ResourceId{
				Kind:    "youtube#video",
				VideoId: videoID,
			},
		},
	}
	// Position zero still has to reach the wire.
	payload.Snippet.ForceSendFields = []string{"Position"}

	call := y.svc.PlaylistItems.Insert([]string{"snippet"}, payload).Context(ctx)

	resp, err := call.Do()
	y.record(quota.CostInsert)
	if err != nil {
		return "", fmt.Errorf("failed to add video %s to %s: %w", videoID, playlistID, err)
	}

	return resp.Id, nil
}

// RemoveItem deletes a playlist item.
func (y *YouTubeService) RemoveItem(ctx context.Context, itemID string) error {
	err := y.svc.PlaylistItems.Delete(itemID).Context(ctx).Do()
	y.record(quota.CostDelete)
	if err != nil {
		return fmt.Errorf("failed to remove item %s: %w", itemID, err)
	}

	return nil
}

// MoveItem repositions an existing playlist item.
func (y *YouTubeService) MoveItem(ctx context.Context, playlistID, itemID, videoID string, position int) error {
	payload := &youtube.PlaylistItem{
		Id: itemID,
		Snippet: &youtube.PlaylistItemSnippet{
			PlaylistId: playlistID,
			Position:   int64(position),
			ResourceId: &youtube.ResourceId{
				Kind:    "youtube#video",
				VideoId: videoID,
			},
		},
	}
	payload.Snippet.ForceSendFields = []string{"Position"}

	call := y.svc.PlaylistItems.Update([]string{"snippet"}, payload).Context(ctx)

	_, err := call.Do()
	y.record(quota.CostUpdate)
	if err != nil {
		return fmt.Errorf("failed to move item %s: %w", itemID, err)
	}

	return nil
}

func playlistFromAPI(item *youtube.Playlist) *models.Playlist {
	playlist := &models.Playlist{
		ID:      item.Id,
		Privacy: models.PrivacyPrivate,
	}

	if item.Snippet != nil {
		playlist.Title = item.Snippet.Title
		playlist.Description = item.Snippet.Description
	}

	if item.Status != nil {
		privacy := models.Privacy(strings.ToLower(item.Status.PrivacyStatus))
		if privacy.Valid() {
			playlist.Privacy = privacy
		}
	}

	return playlist
}
