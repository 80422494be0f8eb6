package repositories

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/ytpl/internal/models"
	"github.com/desertthunder/ytpl/internal/services"
)

// CachingSource wraps a MetadataSource with read-through caching. Playlist
// extractions younger than maxAge are served from SQLite; cache write
// failures are logged and never fail the extraction.
type CachingSource struct {
	source services.MetadataSource
	cache  *CacheRepository
	maxAge time.Duration
	logger *log.Logger
}

// NewCachingSource wraps source with the given cache. A maxAge of zero
// disables expiry.
func NewCachingSource(source services.MetadataSource, cache *CacheRepository, maxAge time.Duration, logger *log.Logger) *CachingSource {
	return &CachingSource{
		source: source,
		cache:  cache,
		maxAge: maxAge,
		logger: logger,
	}
}

// ExtractPlaylist serves from the cache when fresh, otherwise extracts and
// stores the result.
func (c *CachingSource) ExtractPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	cached, hit, err := c.cache.Get(playlistID, c.maxAge)
	if err != nil {
		c.logger.Warn("cache read failed", "playlist", playlistID, "error", err)
	} else if hit {
		c.logger.Debug("cache hit", "playlist", playlistID)
		return cached, nil
	}

	playlist, err := c.source.ExtractPlaylist(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Put(playlist, ""); err != nil {
		c.logger.Warn("cache write failed", "playlist", playlistID, "error", err)
	}

	return playlist, nil
}

// ExtractChannelPlaylists passes through. Channel listings carry no videos,
// so caching them would only mask new playlists.
func (c *CachingSource) ExtractChannelPlaylists(ctx context.Context, channelID string) ([]*models.Playlist, error) {
	return c.source.ExtractChannelPlaylists(ctx, channelID)
}
