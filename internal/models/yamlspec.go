package models

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// PlaylistSpec is the YAML description of a desired playlist state, consumed
// by the apply command.
//
//	title: Workout Mix
//	description: Gym rotation
//	privacy: unlisted
//	videos:
//	  - id: dQw4w9WgXcQ
//	  - id: 9bZkp7q19f0
//	    title: optional display title
type PlaylistSpec struct {
	Title       string  `yaml:"title"`
	Description string  `yaml:"description"`
	Privacy     Privacy `yaml:"privacy"`
	Videos      []Video `yaml:"videos"`
}

// ParsePlaylistSpec decodes and validates a YAML playlist description.
func ParsePlaylistSpec(data []byte) (*PlaylistSpec, error) {
	var spec PlaylistSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse playlist spec: %w", err)
	}

	if spec.Title == "" {
		return nil, fmt.Errorf("playlist spec missing title")
	}
	if spec.Privacy == "" {
		spec.Privacy = PrivacyPublic
	}
	if !spec.Privacy.Valid() {
		return nil, fmt.Errorf("invalid privacy %q in playlist spec", spec.Privacy)
	}
	seen := make(map[string]struct{}, len(spec.Videos))
	for i, v := range spec.Videos {
		if v.ID == "" {
			return nil, fmt.Errorf("video entry %d missing id", i)
		}
		if _, dup := seen[v.ID]; dup {
			return nil, fmt.Errorf("duplicate video id %s in playlist spec", v.ID)
		}
		seen[v.ID] = struct{}{}
	}
	return &spec, nil
}

// Playlist converts the spec into a desired-state playlist with renumbered
// positions.
func (s *PlaylistSpec) Playlist() *Playlist {
	pl := &Playlist{
		Title:       s.Title,
		Description: s.Description,
		Privacy:     s.Privacy,
		Videos:      append([]Video(nil), s.Videos...),
	}
	pl.Renumber()
	return pl
}
