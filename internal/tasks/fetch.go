package tasks

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	"github.com/desertthunder/ytpl/internal/models"
)

// FetchOpts configures concurrent playlist extraction.
type FetchOpts struct {
	NumWorkers int     // Concurrent workers (default: 4)
	RateLimit  float64 // Requests per second (default: 2)
}

type fetchJob struct {
	index    int
	playlist *models.Playlist
}

// FetchPlaylistVideos loads the full video list for every given playlist stub
// through a bounded worker pool. Extraction is read-only and idempotent, so a
// failed fetch degrades to an empty video list for that playlist instead of
// failing the whole set.
func (e *BatchEngine) FetchPlaylistVideos(ctx context.Context, progress chan<- ProgressUpdate, stubs []*models.Playlist, opts FetchOpts) []*models.Playlist {
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 8 {
		opts.NumWorkers = 8
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 2.0
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan fetchJob, len(stubs))
	results := make([]*models.Playlist, len(stubs))

	var wg sync.WaitGroup
	var mu sync.Mutex
	fetched := 0

	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				if err := limiter.Wait(ctx); err != nil {
					results[job.index] = emptied(job.playlist)
					continue
				}

				playlist, err := e.source.ExtractPlaylist(ctx, job.playlist.ID)
				if err != nil {
					e.logger.Warn("playlist fetch failed, treating as empty",
						"playlist", job.playlist.ID, "error", err)
					playlist = emptied(job.playlist)
				}
				results[job.index] = playlist

				mu.Lock()
				fetched++
				step := fetched
				mu.Unlock()
				e.sendProgress(progress, fetchTargetsUpdate(step, len(stubs)))
			}
		}()
	}

	for i, stub := range stubs {
		jobs <- fetchJob{index: i, playlist: stub}
	}
	close(jobs)
	wg.Wait()

	return results
}

// emptied clones a playlist stub with no videos, the degraded form used when
// its extraction failed.
func emptied(stub *models.Playlist) *models.Playlist {
	clone := models.NewPlaylist(stub.ID, stub.Title, stub.Description)
	clone.Privacy = stub.Privacy
	return clone
}

// FetchChannelPlaylists lists a channel's playlists and loads each one's
// videos through the worker pool.
func (e *BatchEngine) FetchChannelPlaylists(ctx context.Context, progress chan<- ProgressUpdate, channelID string, opts FetchOpts) ([]*models.Playlist, error) {
	stubs, err := e.source.ExtractChannelPlaylists(ctx, channelID)
	if err != nil {
		return nil, err
	}

	return e.FetchPlaylistVideos(ctx, progress, stubs, opts), nil
}
