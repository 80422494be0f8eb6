package models

// MatchType classifies how a source playlist relates to a candidate target.
type MatchType string

const (
	MatchExact   MatchType = "exact"   // every source video present in target
	MatchPartial MatchType = "partial" // overlap at or above threshold, below 1.0
	MatchNone    MatchType = "none"    // no candidate reached the threshold
)

// MatchResult is the outcome of matching one source playlist against a set of
// candidate targets. Produced fresh per matching call and never mutated.
type MatchResult struct {
	MatchType      MatchType `json:"match_type"`
	TargetPlaylist *Playlist `json:"target_playlist,omitempty"`
	OverlapPercent float64   `json:"overlap_percent"`
	MissingVideos  []string  `json:"missing_videos,omitempty"` // source − target
	ExtraVideos    []string  `json:"extra_videos,omitempty"`   // target − source
}
