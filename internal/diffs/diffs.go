// package diffs computes the minimal operation set that reconciles a current
// playlist state with a desired one.
package diffs

import (
	"github.com/desertthunder/ytpl/internal/models"
	"github.com/desertthunder/ytpl/internal/quota"
)

// Calculate compares two playlist snapshots and returns the operations that
// transform current into desired: a combined metadata update, removals (in
// current order), additions (at their desired index), and the minimal move
// set for videos present in both.
//
// Moves are minimized with a longest-common-subsequence pass over the common
// videos: LCS members are already in mutually consistent relative order, so
// only the common videos outside the LCS need repositioning. A naive
// "position changed ⇒ move" rule would overcount.
func Calculate(current, desired *models.Playlist) *models.PlaylistDiff {
	diff := &models.PlaylistDiff{
		VideosToRemove: []string{},
		VideosToAdd:    []models.PositionedVideo{},
		VideosToMove:   []models.PositionedVideo{},
	}

	diff.UpdateMetadata = metadataDiff(current, desired)

	currentSet := current.VideoIDSet()
	desiredSet := desired.VideoIDSet()

	for _, v := range current.Videos {
		if _, ok := desiredSet[v.ID]; !ok {
			diff.VideosToRemove = append(diff.VideosToRemove, v.ID)
		}
	}

	desiredPos := make(map[string]int, len(desired.Videos))
	for i, v := range desired.Videos {
		desiredPos[v.ID] = i
		if _, ok := currentSet[v.ID]; !ok {
			diff.VideosToAdd = append(diff.VideosToAdd, models.PositionedVideo{VideoID: v.ID, Position: i})
		}
	}

	// Restrict both orders to the common videos; the LCS of the two
	// restricted sequences is the stable set.
	var currentCommon, desiredCommon []string
	for _, v := range current.Videos {
		if _, ok := desiredSet[v.ID]; ok {
			currentCommon = append(currentCommon, v.ID)
		}
	}
	for _, v := range desired.Videos {
		if _, ok := currentSet[v.ID]; ok {
			desiredCommon = append(desiredCommon, v.ID)
		}
	}

	stable := make(map[string]struct{})
	for _, id := range longestCommonSubsequence(currentCommon, desiredCommon) {
		stable[id] = struct{}{}
	}
	for _, id := range desiredCommon {
		if _, ok := stable[id]; !ok {
			diff.VideosToMove = append(diff.VideosToMove, models.PositionedVideo{VideoID: id, Position: desiredPos[id]})
		}
	}

	est := quota.Estimate{
		Inserts: len(diff.VideosToAdd),
		Deletes: len(diff.VideosToRemove),
		Updates: len(diff.VideosToMove),
	}
	if !diff.UpdateMetadata.Empty() {
		est.MetadataUpdates = 1
	}
	diff.EstimatedQuota = est.Total()

	return diff
}

// metadataDiff returns only the changed metadata fields, nil when nothing
// changed.
func metadataDiff(current, desired *models.Playlist) *models.MetadataUpdate {
	update := &models.MetadataUpdate{}

	if desired.Title != current.Title {
		title := desired.Title
		update.Title = &title
	}
	if desired.Description != current.Description {
		description := desired.Description
		update.Description = &description
	}
	if desired.Privacy != "" && desired.Privacy != current.Privacy {
		privacy := desired.Privacy
		update.Privacy = &privacy
	}

	if update.Empty() {
		return nil
	}
	return update
}

// longestCommonSubsequence returns one LCS of a and b using the standard
// O(n·m) dynamic-programming table. Playlists are bounded by the provider's
// practical size limits (low thousands), so the quadratic table is fine.
func longestCommonSubsequence(a, b []string) []string {
	n, m := len(a), len(b)
	if n == 0 || m == 0 {
		return nil
	}

	table := make([][]int, n+1)
	for i := range table {
		table[i] = make([]int, m+1)
	}
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			if a[i-1] == b[j-1] {
				table[i][j] = table[i-1][j-1] + 1
			} else if table[i-1][j] >= table[i][j-1] {
				table[i][j] = table[i-1][j]
			} else {
				table[i][j] = table[i][j-1]
			}
		}
	}

	lcs := make([]string, 0, table[n][m])
	for i, j := n, m; i > 0 && j > 0; {
		switch {
		case a[i-1] == b[j-1]:
			lcs = append(lcs, a[i-1])
			i--
			j--
		case table[i-1][j] >= table[i][j-1]:
			i--
		default:
			j--
		}
	}

	// Reverse into sequence order.
	for l, r := 0, len(lcs)-1; l < r; l, r = l+1, r-1 {
		lcs[l], lcs[r] = lcs[r], lcs[l]
	}
	return lcs
}
