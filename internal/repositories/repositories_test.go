package repositories

import (
	"context"
	"database/sql"
	"io"
	"testing"
	"time"

	"github.com/desertthunder/ytpl/internal/models"
	"github.com/desertthunder/ytpl/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func testPlaylist(id string, videoIDs ...string) *models.Playlist {
	playlist := models.NewPlaylist(id, "Playlist "+id, "desc")
	for i, vid := range videoIDs {
		playlist.Videos = append(playlist.Videos, models.Video{
			ID:       vid,
			Title:    "Video " + vid,
			Position: i,
		})
	}
	return playlist
}

func TestCacheRepository(t *testing.T) {
	t.Run("PutGetRoundTrip", func(t *testing.T) {
		repo := NewCacheRepository(setupTestDB(t))

		if err := repo.Put(testPlaylist("PL1", "a", "b", "c"), "Some Channel"); err != nil {
			t.Fatalf("Put failed: %v", err)
		}

		got, hit, err := repo.Get("PL1", time.Hour)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !hit {
			t.Fatal("expected cache hit")
		}

		if got.Title != "Playlist PL1" {
			t.Errorf("title = %s", got.Title)
		}
		if len(got.Videos) != 3 {
			t.Fatalf("videos = %d, want 3", len(got.Videos))
		}
		for i, vid := range []string{"a", "b", "c"} {
			if got.Videos[i].ID != vid || got.Videos[i].Position != i {
				t.Errorf("videos[%d] = %+v", i, got.Videos[i])
			}
		}
	})

	t.Run("MissOnUnknownPlaylist", func(t *testing.T) {
		repo := NewCacheRepository(setupTestDB(t))

		_, hit, err := repo.Get("PLmissing", time.Hour)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if hit {
			t.Error("unknown playlist should miss")
		}
	})

	t.Run("MissWhenStale", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewCacheRepository(db)

		if err := repo.Put(testPlaylist("PL1", "a"), ""); err != nil {
			t.Fatal(err)
		}

		stale := time.Now().Add(-2 * time.Hour)
		if _, err := db.Exec(`UPDATE cached_playlists SET fetched_at = ? WHERE playlist_id = ?`, stale, "PL1"); err != nil {
			t.Fatal(err)
		}

		if _, hit, _ := repo.Get("PL1", time.Hour); hit {
			t.Error("stale entry should miss")
		}

		// Zero max age disables expiry.
		if _, hit, _ := repo.Get("PL1", 0); !hit {
			t.Error("zero max age should never expire")
		}
	})

	t.Run("PutReplacesSnapshot", func(t *testing.T) {
		repo := NewCacheRepository(setupTestDB(t))

		if err := repo.Put(testPlaylist("PL1", "a", "b"), ""); err != nil {
			t.Fatal(err)
		}
		if err := repo.Put(testPlaylist("PL1", "c"), ""); err != nil {
			t.Fatalf("second Put failed: %v", err)
		}

		got, hit, err := repo.Get("PL1", time.Hour)
		if err != nil || !hit {
			t.Fatalf("Get failed: hit=%v err=%v", hit, err)
		}
		if len(got.Videos) != 1 || got.Videos[0].ID != "c" {
			t.Errorf("videos = %+v, want just c", got.Videos)
		}
	})

	t.Run("List", func(t *testing.T) {
		repo := NewCacheRepository(setupTestDB(t))

		repo.Put(testPlaylist("PL1", "a"), "Channel One")
		repo.Put(testPlaylist("PL2", "b", "c"), "Channel Two")

		entries, err := repo.List()
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("entries = %d, want 2", len(entries))
		}

		for _, entry := range entries {
			if entry.PlaylistID == "PL2" {
				if entry.VideoCount != 2 || entry.Channel != "Channel Two" {
					t.Errorf("entry = %+v", entry)
				}
				if entry.FetchedAt.IsZero() {
					t.Error("FetchedAt should be set")
				}
			}
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := NewCacheRepository(setupTestDB(t))

		repo.Put(testPlaylist("PL1", "a"), "")
		if err := repo.Delete("PL1"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}

		if _, hit, _ := repo.Get("PL1", 0); hit {
			t.Error("deleted playlist should miss")
		}

		if err := repo.Delete("PL1"); err == nil {
			t.Error("deleting a missing entry should fail")
		}
	})

	t.Run("Clear", func(t *testing.T) {
		repo := NewCacheRepository(setupTestDB(t))

		repo.Put(testPlaylist("PL1", "a"), "")
		repo.Put(testPlaylist("PL2", "b"), "")

		if err := repo.Clear(); err != nil {
			t.Fatalf("Clear failed: %v", err)
		}

		entries, _ := repo.List()
		if len(entries) != 0 {
			t.Errorf("entries after clear = %d, want 0", len(entries))
		}
	})
}

type fakeSource struct {
	playlist *models.Playlist
	calls    int
}

func (f *fakeSource) ExtractPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	f.calls++
	return f.playlist, nil
}

func (f *fakeSource) ExtractChannelPlaylists(ctx context.Context, channelID string) ([]*models.Playlist, error) {
	f.calls++
	return []*models.Playlist{f.playlist}, nil
}

func TestCachingSource(t *testing.T) {
	newCachingSource := func(t *testing.T, source *fakeSource) *CachingSource {
		t.Helper()
		cache := NewCacheRepository(setupTestDB(t))
		return NewCachingSource(source, cache, time.Hour, shared.NewLogger(io.Discard))
	}

	t.Run("MissExtractsAndCaches", func(t *testing.T) {
		source := &fakeSource{playlist: testPlaylist("PL1", "a", "b")}
		caching := newCachingSource(t, source)

		first, err := caching.ExtractPlaylist(context.Background(), "PL1")
		if err != nil {
			t.Fatalf("ExtractPlaylist failed: %v", err)
		}
		if len(first.Videos) != 2 {
			t.Errorf("videos = %d", len(first.Videos))
		}
		if source.calls != 1 {
			t.Errorf("source calls = %d, want 1", source.calls)
		}

		// Second read comes from the cache.
		second, err := caching.ExtractPlaylist(context.Background(), "PL1")
		if err != nil {
			t.Fatal(err)
		}
		if source.calls != 1 {
			t.Errorf("source calls after cached read = %d, want 1", source.calls)
		}
		if len(second.Videos) != 2 {
			t.Errorf("cached videos = %d", len(second.Videos))
		}
	})

	t.Run("ChannelListingPassesThrough", func(t *testing.T) {
		source := &fakeSource{playlist: testPlaylist("PL1")}
		caching := newCachingSource(t, source)

		caching.ExtractChannelPlaylists(context.Background(), "UC1")
		caching.ExtractChannelPlaylists(context.Background(), "UC1")

		if source.calls != 2 {
			t.Errorf("source calls = %d, want 2 (no caching)", source.calls)
		}
	})
}
