package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/desertthunder/ytpl/internal/shared"
	"github.com/desertthunder/ytpl/internal/throttle"
)

func TestExtractorDefaults(t *testing.T) {
	svc := NewExtractorService("", nil)
	if svc.baseURL != defaultExtractorBaseURL {
		t.Errorf("baseURL = %s, want %s", svc.baseURL, defaultExtractorBaseURL)
	}
}

func TestExtractPlaylist(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/playlists/PL1" {
			t.Errorf("path = %s", r.URL.Path)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"id":          "PL1",
			"title":       "Lo-fi Mix",
			"description": "study beats",
			"privacy":     "unlisted",
			"video_count": 2,
			"videos": []map[string]any{
				{"videoId": "vidA", "title": "Track A", "channel": "Chill FM", "upload_date": "20250103"},
				{"videoId": "vidB", "title": "Track B"},
			},
		})
	}))
	defer server.Close()

	svc := NewExtractorService(server.URL, nil)

	playlist, err := svc.ExtractPlaylist(context.Background(), "PL1")
	if err != nil {
		t.Fatalf("ExtractPlaylist failed: %v", err)
	}

	if playlist.Title != "Lo-fi Mix" || playlist.Privacy != "unlisted" {
		t.Errorf("playlist = %+v", playlist)
	}
	if len(playlist.Videos) != 2 {
		t.Fatalf("videos = %d, want 2", len(playlist.Videos))
	}
	if playlist.Videos[0].ID != "vidA" || playlist.Videos[0].Position != 0 {
		t.Errorf("videos[0] = %+v", playlist.Videos[0])
	}
	if playlist.Videos[1].Position != 1 {
		t.Errorf("videos[1].Position = %d, want 1", playlist.Videos[1].Position)
	}
	if playlist.Videos[0].UploadDate != "20250103" {
		t.Errorf("upload date = %s", playlist.Videos[0].UploadDate)
	}
}

func TestExtractChannelPlaylists(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/channels/UC123/playlists" {
			t.Errorf("path = %s", r.URL.Path)
		}

		json.NewEncoder(w).Encode([]map[string]any{
			{"id": "PL1", "title": "First", "privacy": "public"},
			{"id": "PL2", "title": "Second", "privacy": "private"},
		})
	}))
	defer server.Close()

	svc := NewExtractorService(server.URL, nil)

	playlists, err := svc.ExtractChannelPlaylists(context.Background(), "UC123")
	if err != nil {
		t.Fatalf("ExtractChannelPlaylists failed: %v", err)
	}

	if len(playlists) != 2 || playlists[0].ID != "PL1" || playlists[1].ID != "PL2" {
		t.Errorf("playlists = %+v", playlists)
	}
}

func TestExtractorErrorDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"detail": "playlist does not exist"})
	}))
	defer server.Close()

	svc := NewExtractorService(server.URL, nil)

	_, err := svc.ExtractPlaylist(context.Background(), "PLmissing")
	if !errors.Is(err, shared.ErrExtractorFailed) {
		t.Fatalf("err = %v, want ErrExtractorFailed", err)
	}
}

func TestExtractorRateLimitGrowsThrottle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	throttler := throttle.NewAdaptiveThrottler(10*time.Millisecond, time.Second)
	svc := NewExtractorService(server.URL, throttler)

	before := throttler.Delay()
	if _, err := svc.ExtractPlaylist(context.Background(), "PL1"); err == nil {
		t.Fatal("expected rate limit error")
	}

	if throttler.Delay() <= before {
		t.Errorf("delay should grow after rate limit: before %v, after %v", before, throttler.Delay())
	}
}

func TestExtractorSuccessDecaysThrottle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": "PL1", "title": "Mix"})
	}))
	defer server.Close()

	throttler := throttle.NewAdaptiveThrottler(10*time.Millisecond, time.Second)
	throttler.SetDelay(100 * time.Millisecond)
	svc := NewExtractorService(server.URL, throttler)

	if _, err := svc.ExtractPlaylist(context.Background(), "PL1"); err != nil {
		t.Fatalf("ExtractPlaylist failed: %v", err)
	}

	if throttler.Delay() >= 100*time.Millisecond {
		t.Errorf("delay should decay after success, got %v", throttler.Delay())
	}
}

func TestLoadHeadersAttachesToRequests(t *testing.T) {
	curlFile := filepath.Join(t.TempDir(), "headers.sh")
	curl := `curl 'https://www.youtube.com/playlist' \
  -H 'User-Agent: Mozilla/5.0' \
  -H 'Accept-Language: en-US' \
  -b 'SESSION=abc123'`
	if err := os.WriteFile(curlFile, []byte(curl), 0644); err != nil {
		t.Fatal(err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "Mozilla/5.0" {
			t.Errorf("User-Agent = %s", r.Header.Get("User-Agent"))
		}
		if r.Header.Get("Cookie") != "SESSION=abc123" {
			t.Errorf("Cookie = %s", r.Header.Get("Cookie"))
		}
		json.NewEncoder(w).Encode(map[string]any{"id": "PL1"})
	}))
	defer server.Close()

	svc := NewExtractorService(server.URL, nil)
	if err := svc.LoadHeaders(curlFile); err != nil {
		t.Fatalf("LoadHeaders failed: %v", err)
	}

	if _, err := svc.ExtractPlaylist(context.Background(), "PL1"); err != nil {
		t.Fatalf("ExtractPlaylist failed: %v", err)
	}
}

func TestLoadHeadersMissingFile(t *testing.T) {
	svc := NewExtractorService("", nil)
	if err := svc.LoadHeaders("/nonexistent/headers.sh"); !errors.Is(err, shared.ErrExtractorFailed) {
		t.Errorf("err = %v, want ErrExtractorFailed", err)
	}
}
