package tasks

import (
	"strings"
	"testing"

	"github.com/desertthunder/ytpl/internal/models"
)

func playlistWith(id, title string, videoIDs ...string) *models.Playlist {
	playlist := models.NewPlaylist(id, title, "")
	for i, vid := range videoIDs {
		playlist.Videos = append(playlist.Videos, models.Video{ID: vid, Position: i})
	}
	return playlist
}

func videoIDs(playlist *models.Playlist) []string {
	return playlist.VideoIDs()
}

func assertOrder(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestCopyPlan(t *testing.T) {
	source := playlistWith("PL1", "Original", "a", "b", "c")
	source.Privacy = models.PrivacyUnlisted

	t.Run("keeps source title by default", func(t *testing.T) {
		desired, err := CopyPlan(source, "")
		if err != nil {
			t.Fatal(err)
		}
		if desired.Title != "Original" {
			t.Errorf("title = %s", desired.Title)
		}
		if desired.Privacy != models.PrivacyUnlisted {
			t.Errorf("privacy = %s", desired.Privacy)
		}
		assertOrder(t, videoIDs(desired), []string{"a", "b", "c"})
	})

	t.Run("title override", func(t *testing.T) {
		desired, _ := CopyPlan(source, "Renamed")
		if desired.Title != "Renamed" {
			t.Errorf("title = %s", desired.Title)
		}
	})

	t.Run("does not alias source videos", func(t *testing.T) {
		desired, _ := CopyPlan(source, "")
		desired.Videos[0].ID = "mutated"
		if source.Videos[0].ID != "a" {
			t.Error("copy must not share the source's video slice")
		}
	})

	t.Run("nil source", func(t *testing.T) {
		if _, err := CopyPlan(nil, ""); err == nil {
			t.Error("expected error for nil source")
		}
	})
}

func TestMergePlan(t *testing.T) {
	first := playlistWith("PL1", "First", "a", "b")
	second := playlistWith("PL2", "Second", "b", "c", "a", "d")

	t.Run("first occurrence wins", func(t *testing.T) {
		desired, err := MergePlan([]*models.Playlist{first, second}, "Combined")
		if err != nil {
			t.Fatal(err)
		}
		assertOrder(t, videoIDs(desired), []string{"a", "b", "c", "d"})
		for i, video := range desired.Videos {
			if video.Position != i {
				t.Errorf("position[%d] = %d", i, video.Position)
			}
		}
	})

	t.Run("description names the sources", func(t *testing.T) {
		desired, _ := MergePlan([]*models.Playlist{first, second}, "Combined")
		if !strings.Contains(desired.Description, "First") || !strings.Contains(desired.Description, "Second") {
			t.Errorf("description = %q", desired.Description)
		}
	})

	t.Run("requires two sources", func(t *testing.T) {
		if _, err := MergePlan([]*models.Playlist{first}, "Combined"); err == nil {
			t.Error("expected error for a single source")
		}
	})

	t.Run("requires a title", func(t *testing.T) {
		if _, err := MergePlan([]*models.Playlist{first, second}, ""); err == nil {
			t.Error("expected error for missing title")
		}
	})
}

func TestSplitPlan(t *testing.T) {
	source := playlistWith("PL1", "Big Mix", "a", "b", "c", "d", "e")

	t.Run("partitions in order", func(t *testing.T) {
		parts, err := SplitPlan(source, 2)
		if err != nil {
			t.Fatal(err)
		}
		if len(parts) != 3 {
			t.Fatalf("parts = %d, want 3", len(parts))
		}

		assertOrder(t, videoIDs(parts[0]), []string{"a", "b"})
		assertOrder(t, videoIDs(parts[1]), []string{"c", "d"})
		assertOrder(t, videoIDs(parts[2]), []string{"e"})

		if parts[0].Title != "Big Mix (Part 1/3)" {
			t.Errorf("title = %s", parts[0].Title)
		}
		if parts[2].Videos[0].Position != 0 {
			t.Error("each part must renumber from zero")
		}
	})

	t.Run("rejects chunk size below one", func(t *testing.T) {
		if _, err := SplitPlan(source, 0); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("rejects empty playlist", func(t *testing.T) {
		if _, err := SplitPlan(playlistWith("PL2", "Empty"), 2); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("rejects no-op split", func(t *testing.T) {
		if _, err := SplitPlan(source, 10); err == nil {
			t.Error("expected error when everything fits one chunk")
		}
	})
}

func TestApplyPlan(t *testing.T) {
	spec, err := models.ParsePlaylistSpec([]byte("title: From YAML\nvideos:\n  - id: a\n  - id: b\n"))
	if err != nil {
		t.Fatal(err)
	}

	desired, err := ApplyPlan(spec)
	if err != nil {
		t.Fatal(err)
	}
	if desired.Title != "From YAML" {
		t.Errorf("title = %s", desired.Title)
	}
	assertOrder(t, videoIDs(desired), []string{"a", "b"})

	if _, err := ApplyPlan(nil); err == nil {
		t.Error("expected error for nil spec")
	}
}
