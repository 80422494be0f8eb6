// package models defines the data model for playlist management
package models

import (
	"fmt"
)

// Privacy is the visibility of a playlist on the remote service.
type Privacy string

const (
	PrivacyPublic   Privacy = "public"
	PrivacyUnlisted Privacy = "unlisted"
	PrivacyPrivate  Privacy = "private"
)

// Valid reports whether p is one of the known privacy values.
func (p Privacy) Valid() bool {
	switch p {
	case PrivacyPublic, PrivacyUnlisted, PrivacyPrivate:
		return true
	}
	return false
}

// Video represents a single video inside a playlist context.
//
// Identity is the provider video ID. Position is the index of the video
// within the owning playlist, not a property of the video itself; the same
// video carries a different position in a different playlist.
type Video struct {
	ID         string `json:"id" yaml:"id"`
	Title      string `json:"title" yaml:"title,omitempty"`
	Channel    string `json:"channel" yaml:"channel,omitempty"`
	Position   int    `json:"position" yaml:"-"`
	UploadDate string `json:"upload_date,omitempty" yaml:"-"` // YYYYMMDD
}

// Playlist represents a playlist with an ordered video sequence.
//
// The list order is ground truth; each video's Position must agree with its
// index once the playlist is populated.
type Playlist struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Privacy     Privacy `json:"privacy"`
	Videos      []Video `json:"videos"`
}

// NewPlaylist creates a playlist with the default (public) privacy.
func NewPlaylist(id, title, description string) *Playlist {
	return &Playlist{
		ID:          id,
		Title:       title,
		Description: description,
		Privacy:     PrivacyPublic,
	}
}

// VideoIDs returns the playlist's video IDs in list order.
func (p *Playlist) VideoIDs() []string {
	ids := make([]string, len(p.Videos))
	for i, v := range p.Videos {
		ids[i] = v.ID
	}
	return ids
}

// VideoIDSet returns the playlist's video IDs as a membership set.
func (p *Playlist) VideoIDSet() map[string]struct{} {
	set := make(map[string]struct{}, len(p.Videos))
	for _, v := range p.Videos {
		set[v.ID] = struct{}{}
	}
	return set
}

// Renumber re-stamps each video's position with its list index.
func (p *Playlist) Renumber() {
	for i := range p.Videos {
		p.Videos[i].Position = i
	}
}

// Validate checks playlist invariants: a known privacy value and positions
// forming the permutation 0..n-1 matching list order.
func (p *Playlist) Validate() error {
	if p.Privacy != "" && !p.Privacy.Valid() {
		return fmt.Errorf("invalid privacy %q", p.Privacy)
	}
	for i, v := range p.Videos {
		if v.ID == "" {
			return fmt.Errorf("video at index %d has empty ID", i)
		}
		if v.Position != i {
			return fmt.Errorf("video %s has position %d, expected %d", v.ID, v.Position, i)
		}
	}
	return nil
}
