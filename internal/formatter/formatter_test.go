package formatter

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/ytpl/internal/diffs"
	"github.com/desertthunder/ytpl/internal/models"
	"github.com/desertthunder/ytpl/internal/quota"
	th "github.com/desertthunder/ytpl/internal/testing"
)

func samplePlaylist() *models.Playlist {
	playlist := models.NewPlaylist("PL123", "Test Mix", "A test playlist")
	playlist.Videos = []models.Video{
		{ID: "vid1", Title: "First Video", Channel: "Channel One"},
		{ID: "vid2", Title: "Second Video", Channel: "Channel Two"},
	}
	playlist.Renumber()
	return playlist
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(samplePlaylist())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "Position,VideoID,Title,Channel") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "vid1") {
			t.Errorf("CSV missing video ID")
		}
		if !strings.Contains(output, "First Video") {
			t.Errorf("CSV missing video title")
		}
		if !strings.Contains(output, "Channel Two") {
			t.Errorf("CSV missing channel")
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(samplePlaylist())
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "# Test Mix") {
			t.Errorf("Markdown missing title heading")
		}
		if !strings.Contains(output, "**Videos**: 2") {
			t.Errorf("Markdown missing video count")
		}
		if !strings.Contains(output, "1. First Video — Channel One") {
			t.Errorf("Markdown missing numbered entry, got: %s", output)
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(samplePlaylist())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "Playlist: Test Mix") {
			t.Errorf("text missing playlist name")
		}
		if !strings.Contains(output, "2. Second Video") {
			t.Errorf("text missing numbered entry")
		}
	})

	t.Run("UntitledVideoFallsBackToID", func(t *testing.T) {
		playlist := models.NewPlaylist("PL1", "Mix", "")
		playlist.Videos = []models.Video{{ID: "vidX"}}

		data, err := ExportToText(playlist)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), "1. vidX") {
			t.Errorf("expected ID fallback, got: %s", data)
		}
	})
}

func TestWriteCSVExport(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "export")

	result, err := WriteCSVExport(samplePlaylist(), base)
	if err != nil {
		t.Fatalf("WriteCSVExport failed: %v", err)
	}

	th.AssertFileExists(t, result.VideosFile)
	th.AssertFileExists(t, result.MetadataFile)

	var meta struct {
		ID         string `json:"id"`
		VideoCount int    `json:"video_count"`
	}
	if err := json.Unmarshal([]byte(th.MustReadFile(t, result.MetadataFile)), &meta); err != nil {
		t.Fatalf("metadata is not valid JSON: %v", err)
	}
	if meta.ID != "PL123" || meta.VideoCount != 2 {
		t.Errorf("metadata = %+v", meta)
	}
}

func TestFormatDiff(t *testing.T) {
	title := "New Title"
	diff := &models.PlaylistDiff{
		UpdateMetadata: &models.MetadataUpdate{Title: &title},
		VideosToRemove: []string{"old1"},
		VideosToAdd:    []models.PositionedVideo{{VideoID: "new1", Position: 0}},
		VideosToMove:   []models.PositionedVideo{{VideoID: "vid2", Position: 3}},
		EstimatedQuota: 201,
	}

	output := FormatDiff("Mix", diff)

	for _, want := range []string{
		`~ title: "New Title"`,
		"- remove old1",
		"+ add new1 at 0",
		"> move vid2 to 3",
		"Estimated quota: 201 units",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("diff preview missing %q, got:\n%s", want, output)
		}
	}
}

func TestFormatDiffNoChanges(t *testing.T) {
	diff := &models.PlaylistDiff{}
	output := FormatDiff("Mix", diff)
	if !strings.Contains(output, "(no changes)") {
		t.Errorf("got: %s", output)
	}
}

func TestFormatMatch(t *testing.T) {
	target := models.NewPlaylist("PLt", "Existing", "")

	t.Run("Exact", func(t *testing.T) {
		out := FormatMatch("Mix", models.MatchResult{
			MatchType: models.MatchExact, TargetPlaylist: target, OverlapPercent: 1.0,
		})
		if !strings.Contains(out, "exact match") || !strings.Contains(out, "PLt") {
			t.Errorf("got: %s", out)
		}
	})

	t.Run("Partial", func(t *testing.T) {
		out := FormatMatch("Mix", models.MatchResult{
			MatchType: models.MatchPartial, TargetPlaylist: target,
			OverlapPercent: 0.8, MissingVideos: []string{"a", "b"},
		})
		if !strings.Contains(out, "80% covered") || !strings.Contains(out, "2 video(s) missing") {
			t.Errorf("got: %s", out)
		}
	})

	t.Run("None", func(t *testing.T) {
		out := FormatMatch("Mix", models.MatchResult{MatchType: models.MatchNone})
		if !strings.Contains(out, "will be created") {
			t.Errorf("got: %s", out)
		}
	})
}

func TestFormatFieldDiff(t *testing.T) {
	t.Run("ChangedFields", func(t *testing.T) {
		old := models.NewPlaylist("PLt", "Old Title", "")
		updated := models.NewPlaylist("PLs", "New Title", "now with notes")

		out := FormatFieldDiff(diffs.Fields(old, updated))
		if !strings.Contains(out, "title: Old Title -> New Title") {
			t.Errorf("got: %s", out)
		}
		if !strings.Contains(out, "description") {
			t.Errorf("got: %s", out)
		}
	})

	t.Run("ReorderOnly", func(t *testing.T) {
		old := models.NewPlaylist("PLt", "Mix", "")
		old.Videos = []models.Video{{ID: "a", Position: 0}, {ID: "b", Position: 1}}
		updated := models.NewPlaylist("PLs", "Mix", "")
		updated.Videos = []models.Video{{ID: "b", Position: 0}, {ID: "a", Position: 1}}

		out := FormatFieldDiff(diffs.Fields(old, updated))
		if !strings.Contains(out, "same set, different order") {
			t.Errorf("got: %s", out)
		}
	})

	t.Run("NoChanges", func(t *testing.T) {
		p := models.NewPlaylist("PL", "Mix", "")
		if out := FormatFieldDiff(diffs.Fields(p, p)); out != "" {
			t.Errorf("got: %s", out)
		}
	})
}

func TestFormatEstimate(t *testing.T) {
	est := quota.Estimate{Inserts: 300}

	output := FormatEstimate(est, 0)

	if !strings.Contains(output, "15000 units") {
		t.Errorf("estimate missing total, got:\n%s", output)
	}
	if !strings.Contains(output, "2 daily quota windows") {
		t.Errorf("estimate missing multi-day warning, got:\n%s", output)
	}
}

func TestFormatEstimateSingleDayNoWarning(t *testing.T) {
	output := FormatEstimate(quota.Estimate{Inserts: 10}, 0)
	if strings.Contains(output, "Warning") {
		t.Errorf("small plan should not warn, got:\n%s", output)
	}
}

func TestFormatJournal(t *testing.T) {
	t.Run("Nil", func(t *testing.T) {
		if out := FormatJournal(nil); !strings.Contains(out, "No batch in progress") {
			t.Errorf("got: %s", out)
		}
	})

	t.Run("MixedStatuses", func(t *testing.T) {
		journal := &models.Journal{
			BatchID:   "batch_abc",
			CreatedAt: time.Date(2026, 5, 1, 10, 30, 0, 0, time.UTC),
			Tasks: []models.Task{
				{SourceTitle: "Done Mix", Status: models.TaskCompleted, VideosAdded: 12},
				{SourceTitle: "Dupe Mix", Status: models.TaskSkipped, MatchPlaylistID: "PLdup"},
				{SourceTitle: "Broken Mix", Status: models.TaskFailed, RetryCount: 2, Error: "boom"},
				{SourceTitle: "Waiting Mix", Status: models.TaskPending},
			},
		}

		output := FormatJournal(journal)

		for _, want := range []string{
			"batch_abc",
			"(+12 videos)",
			"(duplicate of PLdup)",
			"(attempt 2: boom)",
			"1 completed, 1 skipped, 1 failed, 1 pending",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("journal status missing %q, got:\n%s", want, output)
			}
		}
	})
}
