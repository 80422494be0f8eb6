package match

import (
	"testing"

	"github.com/desertthunder/ytpl/internal/models"
)

func playlist(id string, videoIDs ...string) *models.Playlist {
	pl := models.NewPlaylist(id, "Playlist "+id, "")
	for _, vid := range videoIDs {
		pl.Videos = append(pl.Videos, models.Video{ID: vid})
	}
	pl.Renumber()
	return pl
}

func TestCalculateOverlap(t *testing.T) {
	tests := []struct {
		name    string
		source  []string
		target  []string
		overlap float64
	}{
		{"identical sets", []string{"a", "b", "c"}, []string{"a", "b", "c"}, 1.0},
		{"target superset", []string{"a", "b"}, []string{"a", "b", "c", "d"}, 1.0},
		{"target subset", []string{"a", "b", "c", "d"}, []string{"a", "b", "c"}, 0.75},
		{"disjoint", []string{"a", "b"}, []string{"x", "y"}, 0.0},
		{"half covered", []string{"a", "b"}, []string{"a", "x"}, 0.5},
		{"empty source empty target", nil, nil, 1.0},
		{"empty source nonempty target", nil, []string{"a"}, 0.0},
		{"nonempty source empty target", []string{"a"}, nil, 0.0},
		{"duplicate source ids", []string{"a", "a", "b", "b"}, []string{"a"}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateOverlap(tt.source, tt.target); got != tt.overlap {
				t.Errorf("CalculateOverlap = %v, want %v", got, tt.overlap)
			}
		})
	}
}

func TestFindMatchingPlaylistExact(t *testing.T) {
	source := playlist("src", "a", "b", "c")
	target := playlist("tgt", "a", "b", "c")

	result := FindMatchingPlaylist(source, []*models.Playlist{target}, 0.75)

	if result.MatchType != models.MatchExact {
		t.Fatalf("match type = %s, want exact", result.MatchType)
	}
	if result.OverlapPercent != 1.0 {
		t.Errorf("overlap = %v, want 1.0", result.OverlapPercent)
	}
	if len(result.MissingVideos) != 0 {
		t.Errorf("missing = %v, want empty", result.MissingVideos)
	}
	if result.TargetPlaylist == nil || result.TargetPlaylist.ID != "tgt" {
		t.Errorf("unexpected target: %+v", result.TargetPlaylist)
	}
}

func TestFindMatchingPlaylistExactWithExtraVideos(t *testing.T) {
	source := playlist("src", "a", "b")
	target := playlist("tgt", "a", "b", "z")

	result := FindMatchingPlaylist(source, []*models.Playlist{target}, 0.75)

	if result.MatchType != models.MatchExact {
		t.Fatalf("superset target should still be exact, got %s", result.MatchType)
	}
	if len(result.ExtraVideos) != 1 || result.ExtraVideos[0] != "z" {
		t.Errorf("extra = %v, want [z]", result.ExtraVideos)
	}
}

func TestFindMatchingPlaylistPartial(t *testing.T) {
	source := playlist("src", "a", "b", "c", "d")
	target := playlist("tgt", "a", "b", "c")

	result := FindMatchingPlaylist(source, []*models.Playlist{target}, 0.75)

	if result.MatchType != models.MatchPartial {
		t.Fatalf("match type = %s, want partial", result.MatchType)
	}
	if result.OverlapPercent != 0.75 {
		t.Errorf("overlap = %v, want 0.75", result.OverlapPercent)
	}
	if len(result.MissingVideos) != 1 || result.MissingVideos[0] != "d" {
		t.Errorf("missing = %v, want [d]", result.MissingVideos)
	}
}

func TestFindMatchingPlaylistBelowThreshold(t *testing.T) {
	source := playlist("src", "a", "b", "c", "d")
	target := playlist("tgt", "a", "b")

	result := FindMatchingPlaylist(source, []*models.Playlist{target}, 0.75)

	if result.MatchType != models.MatchNone {
		t.Errorf("match type = %s, want none", result.MatchType)
	}
	if result.TargetPlaylist != nil {
		t.Error("below-threshold candidate must not be recorded")
	}
}

func TestFindMatchingPlaylistEmptySource(t *testing.T) {
	source := playlist("src")
	target := playlist("tgt", "a", "b")

	result := FindMatchingPlaylist(source, []*models.Playlist{target}, 0.75)
	if result.MatchType != models.MatchNone {
		t.Errorf("empty source should be none, got %s", result.MatchType)
	}
}

func TestFindMatchingPlaylistNoCandidates(t *testing.T) {
	source := playlist("src", "a")

	result := FindMatchingPlaylist(source, nil, 0.75)
	if result.MatchType != models.MatchNone {
		t.Errorf("no candidates should be none, got %s", result.MatchType)
	}
}

func TestFindMatchingPlaylistPicksHighestOverlap(t *testing.T) {
	source := playlist("src", "a", "b", "c", "d")
	weaker := playlist("weaker", "a", "b", "c")
	stronger := playlist("stronger", "a", "b", "c", "d")

	result := FindMatchingPlaylist(source, []*models.Playlist{weaker, stronger}, 0.75)

	if result.TargetPlaylist == nil || result.TargetPlaylist.ID != "stronger" {
		t.Errorf("expected stronger candidate, got %+v", result.TargetPlaylist)
	}
}

func TestFindMatchingPlaylistFirstSeenWinsTies(t *testing.T) {
	source := playlist("src", "a", "b", "c", "d")
	first := playlist("first", "a", "b", "c")
	second := playlist("second", "b", "c", "d")

	result := FindMatchingPlaylist(source, []*models.Playlist{first, second}, 0.75)

	if result.TargetPlaylist == nil || result.TargetPlaylist.ID != "first" {
		t.Errorf("tie should keep first-seen candidate, got %+v", result.TargetPlaylist)
	}
}

func TestAnalyzeBatch(t *testing.T) {
	sources := []*models.Playlist{
		playlist("s1", "a", "b", "c"),
		playlist("s2", "x", "y"),
	}
	targets := []*models.Playlist{
		playlist("t1", "a", "b", "c"),
	}

	results := AnalyzeBatch(sources, targets, 0.75)

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results["s1"].MatchType != models.MatchExact {
		t.Errorf("s1 = %s, want exact", results["s1"].MatchType)
	}
	if results["s2"].MatchType != models.MatchNone {
		t.Errorf("s2 = %s, want none", results["s2"].MatchType)
	}
}

func TestAnalyzeBatchSharedTarget(t *testing.T) {
	// Two sources may independently match the same target.
	sources := []*models.Playlist{
		playlist("s1", "a", "b", "c"),
		playlist("s2", "a", "b", "c"),
	}
	targets := []*models.Playlist{playlist("t1", "a", "b", "c")}

	results := AnalyzeBatch(sources, targets, 0.75)
	for _, id := range []string{"s1", "s2"} {
		if results[id].TargetPlaylist == nil || results[id].TargetPlaylist.ID != "t1" {
			t.Errorf("%s should match t1 independently", id)
		}
	}
}
