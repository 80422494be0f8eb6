// package repositories provides the SQLite extraction cache.
//
// Batch runs read playlist snapshots through the cache so repeated syncs of
// the same channel do not re-hit the extractor for every playlist.
package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/ytpl/internal/models"
	"github.com/desertthunder/ytpl/internal/shared"
)

// CacheRepository stores extracted playlists and their ordered videos.
type CacheRepository struct {
	db *sql.DB
}

// NewCacheRepository creates a new CacheRepository with the given database connection
func NewCacheRepository(db *sql.DB) *CacheRepository {
	return &CacheRepository{db: db}
}

// CacheEntry summarizes one cached playlist for listings.
type CacheEntry struct {
	PlaylistID string
	Title      string
	Channel    string
	VideoCount int
	FetchedAt  time.Time
}

// Age returns how long ago the entry was fetched.
func (e CacheEntry) Age() time.Duration {
	return time.Since(e.FetchedAt)
}

// Put stores a playlist snapshot, replacing any previous snapshot of the same
// playlist. The playlist row and its videos are written in one transaction.
func (r *CacheRepository) Put(playlist *models.Playlist, channel string) error {
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM cached_videos WHERE playlist_id = ?`, playlist.ID); err != nil {
		return fmt.Errorf("failed to clear cached videos: %w", err)
	}

	query := `
		INSERT INTO cached_playlists (id, playlist_id, title, description, privacy, channel, video_count, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(playlist_id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			privacy = excluded.privacy,
			channel = excluded.channel,
			video_count = excluded.video_count,
			fetched_at = excluded.fetched_at
	`

	_, err = tx.Exec(query,
		shared.GenerateID(),
		playlist.ID,
		playlist.Title,
		playlist.Description,
		string(playlist.Privacy),
		channel,
		len(playlist.Videos),
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert cached playlist: %w", err)
	}

	for _, video := range playlist.Videos {
		_, err = tx.Exec(`
			INSERT INTO cached_videos (id, playlist_id, video_id, title, channel, position, upload_date)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			shared.GenerateID(),
			playlist.ID,
			video.ID,
			video.Title,
			video.Channel,
			video.Position,
			video.UploadDate,
		)
		if err != nil {
			return fmt.Errorf("failed to insert cached video: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cache write: %w", err)
	}

	return nil
}

// Get retrieves a cached playlist no older than maxAge. The second return
// value reports a usable hit; stale or missing entries are a miss, not an
// error.
func (r *CacheRepository) Get(playlistID string, maxAge time.Duration) (*models.Playlist, bool, error) {
	query := `
		SELECT title, description, privacy, fetched_at
		FROM cached_playlists
		WHERE playlist_id = ?
	`

	var (
		title       string
		description string
		privacy     string
		fetchedAt   time.Time
	)

	err := r.db.QueryRow(query, playlistID).Scan(&title, &description, &privacy, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to scan cached playlist: %w", err)
	}

	if maxAge > 0 && time.Since(fetchedAt) > maxAge {
		return nil, false, nil
	}

	playlist := models.NewPlaylist(playlistID, title, description)
	if p := models.Privacy(privacy); p.Valid() {
		playlist.Privacy = p
	}

	videos, err := r.videos(playlistID)
	if err != nil {
		return nil, false, err
	}
	playlist.Videos = videos

	return playlist, true, nil
}

func (r *CacheRepository) videos(playlistID string) ([]models.Video, error) {
	rows, err := r.db.Query(`
		SELECT video_id, title, channel, position, upload_date
		FROM cached_videos
		WHERE playlist_id = ?
		ORDER BY position ASC
	`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cached videos: %w", err)
	}
	defer rows.Close()

	var videos []models.Video
	for rows.Next() {
		var video models.Video
		if err := rows.Scan(&video.ID, &video.Title, &video.Channel, &video.Position, &video.UploadDate); err != nil {
			return nil, fmt.Errorf("failed to scan cached video: %w", err)
		}
		videos = append(videos, video)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return videos, nil
}

// List returns all cache entries, most recently fetched first.
func (r *CacheRepository) List() ([]CacheEntry, error) {
	rows, err := r.db.Query(`
		SELECT playlist_id, title, channel, video_count, fetched_at
		FROM cached_playlists
		ORDER BY fetched_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cache entries: %w", err)
	}
	defer rows.Close()

	var entries []CacheEntry
	for rows.Next() {
		var entry CacheEntry
		if err := rows.Scan(&entry.PlaylistID, &entry.Title, &entry.Channel, &entry.VideoCount, &entry.FetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cache entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}

// Delete removes one playlist from the cache.
func (r *CacheRepository) Delete(playlistID string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM cached_videos WHERE playlist_id = ?`, playlistID); err != nil {
		return fmt.Errorf("failed to delete cached videos: %w", err)
	}

	result, err := tx.Exec(`DELETE FROM cached_playlists WHERE playlist_id = ?`, playlistID)
	if err != nil {
		return fmt.Errorf("failed to delete cached playlist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("playlist not cached: %s", playlistID)
	}

	return tx.Commit()
}

// Clear empties the whole cache.
func (r *CacheRepository) Clear() error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM cached_videos`); err != nil {
		return fmt.Errorf("failed to clear cached videos: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM cached_playlists`); err != nil {
		return fmt.Errorf("failed to clear cached playlists: %w", err)
	}

	return tx.Commit()
}
