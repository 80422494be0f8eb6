// package match decides whether a source playlist already exists on the
// target channel, via directional video-ID set overlap.
package match

import (
	"github.com/desertthunder/ytpl/internal/models"
)

// DefaultThreshold is the minimum overlap for a candidate to count as a
// partial match.
const DefaultThreshold = 0.75

// CalculateOverlap returns how much of the source ID set is covered by the
// target ID set: |source ∩ target| / |source|.
//
// The measure is directional, not symmetric: a target that is a strict
// superset of source scores 1.0, because it already contains everything
// wanted. An empty source is trivially contained only by an empty target.
func CalculateOverlap(sourceIDs, targetIDs []string) float64 {
	if len(sourceIDs) == 0 {
		if len(targetIDs) == 0 {
			return 1.0
		}
		return 0.0
	}

	target := make(map[string]struct{}, len(targetIDs))
	for _, id := range targetIDs {
		target[id] = struct{}{}
	}

	// Count distinct source IDs so duplicates do not inflate the score.
	source := make(map[string]struct{}, len(sourceIDs))
	shared := 0
	for _, id := range sourceIDs {
		if _, seen := source[id]; seen {
			continue
		}
		source[id] = struct{}{}
		if _, ok := target[id]; ok {
			shared++
		}
	}

	return float64(shared) / float64(len(source))
}

// FindMatchingPlaylist scores source against every candidate and classifies
// the best one:
//
//   - overlap == 1.0      → EXACT (target may carry extra videos)
//   - threshold ≤ overlap → PARTIAL, with the missing source videos listed
//   - otherwise           → NONE
//
// Candidates below the threshold are never recorded as best match. Ties keep
// the first-seen candidate (strict > comparison). An empty source always
// yields NONE: it cannot be meaningfully deduplicated.
func FindMatchingPlaylist(source *models.Playlist, candidates []*models.Playlist, threshold float64) models.MatchResult {
	none := models.MatchResult{MatchType: models.MatchNone}

	if source == nil || len(source.Videos) == 0 || len(candidates) == 0 {
		return none
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	sourceIDs := source.VideoIDs()
	var best *models.Playlist
	bestOverlap := 0.0

	for _, candidate := range candidates {
		if candidate == nil {
			continue
		}
		overlap := CalculateOverlap(sourceIDs, candidate.VideoIDs())
		if overlap < threshold {
			continue
		}
		if overlap > bestOverlap {
			bestOverlap = overlap
			best = candidate
		}
	}

	if best == nil {
		return none
	}

	result := models.MatchResult{
		TargetPlaylist: best,
		OverlapPercent: bestOverlap,
	}

	targetSet := best.VideoIDSet()
	sourceSet := source.VideoIDSet()

	if bestOverlap >= 1.0 {
		result.MatchType = models.MatchExact
		result.MissingVideos = []string{}
		result.ExtraVideos = diffIDs(best.VideoIDs(), sourceSet)
	} else {
		result.MatchType = models.MatchPartial
		result.MissingVideos = diffIDs(sourceIDs, targetSet)
		result.ExtraVideos = diffIDs(best.VideoIDs(), sourceSet)
	}

	return result
}

// AnalyzeBatch independently matches every source against the full target
// set. Two sources may match the same target; there is no cross-source
// interaction.
func AnalyzeBatch(sources, targets []*models.Playlist, threshold float64) map[string]models.MatchResult {
	results := make(map[string]models.MatchResult, len(sources))
	for _, source := range sources {
		if source == nil {
			continue
		}
		results[source.ID] = FindMatchingPlaylist(source, targets, threshold)
	}
	return results
}

// diffIDs returns the IDs (in order, deduplicated) not present in the set.
func diffIDs(ids []string, set map[string]struct{}) []string {
	out := []string{}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := set[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
