// Metadata extractor [MetadataSource] implementation.
//
// Talks to the local extractor daemon over HTTP. Reads are free of API quota
// but the upstream scrape endpoint rate limits aggressively, so every request
// goes through an adaptive throttler.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/desertthunder/ytpl/internal/models"
	"github.com/desertthunder/ytpl/internal/shared"
	"github.com/desertthunder/ytpl/internal/throttle"
)

const defaultExtractorBaseURL = "http://localhost:8090"

// extractorVideo is a video entry in extractor responses.
type extractorVideo struct {
	VideoID    string `json:"videoId"`
	Title      string `json:"title"`
	Channel    string `json:"channel"`
	UploadDate string `json:"upload_date,omitempty"`
}

// extractorPlaylist is a playlist in extractor responses.
type extractorPlaylist struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Privacy     string           `json:"privacy"`
	VideoCount  int              `json:"video_count"`
	Videos      []extractorVideo `json:"videos,omitempty"`
}

// ExtractorService implements MetadataSource against the extractor daemon.
type ExtractorService struct {
	baseURL    string
	headers    *shared.CurlHeaders
	httpClient *http.Client
	throttler  *throttle.AdaptiveThrottler
}

// NewExtractorService creates an extractor client. A nil throttler disables
// pacing, which only tests should do.
func NewExtractorService(baseURL string, throttler *throttle.AdaptiveThrottler) *ExtractorService {
	if baseURL == "" {
		baseURL = defaultExtractorBaseURL
	}

	return &ExtractorService{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		throttler:  throttler,
	}
}

// LoadHeaders parses a browser cURL capture and attaches its headers to
// subsequent requests. The extractor needs them for age-gated playlists.
func (e *ExtractorService) LoadHeaders(path string) error {
	headers, err := shared.ParseCurlFile(path)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrExtractorFailed, err)
	}

	e.headers = headers
	return nil
}

func (e *ExtractorService) doRequest(ctx context.Context, endpoint string, result any) error {
	if e.throttler != nil {
		e.throttler.Wait()
	}

	apiURL := e.baseURL + endpoint

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if e.headers != nil {
		for key, value := range e.headers.Headers {
			req.Header.Set(key, value)
		}
		if e.headers.Cookie != "" {
			req.Header.Set("Cookie", e.headers.Cookie)
		}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		e.onError(false)
		return fmt.Errorf("%w: request failed: %v", shared.ErrExtractorFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		e.onError(true)
		return fmt.Errorf("%w: extractor rate limited", shared.ErrExtractorFailed)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		e.onError(false)
		var errResp struct {
			Detail string `json:"detail"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Detail != "" {
			return fmt.Errorf("%w: status %d: %s", shared.ErrExtractorFailed, resp.StatusCode, errResp.Detail)
		}
		return fmt.Errorf("%w: status %d", shared.ErrExtractorFailed, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		e.onError(false)
		return fmt.Errorf("%w: failed to decode response: %v", shared.ErrExtractorFailed, err)
	}

	e.onSuccess()
	return nil
}

func (e *ExtractorService) onSuccess() {
	if e.throttler != nil {
		e.throttler.OnSuccess()
	}
}

func (e *ExtractorService) onError(isRateLimit bool) {
	if e.throttler != nil {
		e.throttler.OnError(isRateLimit)
	}
}

// ExtractPlaylist retrieves a playlist with its full video list.
//
// Calls GET /api/playlists/{id} on the extractor.
func (e *ExtractorService) ExtractPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	var payload extractorPlaylist

	endpoint := fmt.Sprintf("/api/playlists/%s", playlistID)
	if err := e.doRequest(ctx, endpoint, &payload); err != nil {
		return nil, err
	}

	return playlistFromExtractor(payload), nil
}

// ExtractChannelPlaylists lists a channel's playlists without videos.
//
// Calls GET /api/channels/{id}/playlists on the extractor.
func (e *ExtractorService) ExtractChannelPlaylists(ctx context.Context, channelID string) ([]*models.Playlist, error) {
	var payload []extractorPlaylist

	endpoint := fmt.Sprintf("/api/channels/%s/playlists", channelID)
	if err := e.doRequest(ctx, endpoint, &payload); err != nil {
		return nil, err
	}

	playlists := make([]*models.Playlist, len(payload))
	for i, p := range payload {
		playlists[i] = playlistFromExtractor(p)
	}

	return playlists, nil
}

func playlistFromExtractor(p extractorPlaylist) *models.Playlist {
	playlist := models.NewPlaylist(p.ID, p.Title, p.Description)

	if privacy := models.Privacy(p.Privacy); privacy.Valid() {
		playlist.Privacy = privacy
	}

	playlist.Videos = make([]models.Video, len(p.Videos))
	for i, v := range p.Videos {
		playlist.Videos[i] = models.Video{
			ID:         v.VideoID,
			Title:      v.Title,
			Channel:    v.Channel,
			Position:   i,
			UploadDate: v.UploadDate,
		}
	}

	return playlist
}
