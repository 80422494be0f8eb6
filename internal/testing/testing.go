// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/desertthunder/ytpl/internal/models"
	"github.com/desertthunder/ytpl/internal/services"
)

// MockPlaylistAPI is an in-memory test double for [services.PlaylistAPI].
//
// It keeps real playlist state so executor tests can assert on the resulting
// item order, and injects failures per operation name ("create", "update",
// "insert", "remove", "move", "list").
type MockPlaylistAPI struct {
	Playlists map[string]*models.Playlist
	Items     map[string][]services.PlaylistItem
	FailOn    map[string]error
	Calls     []string

	nextID int
}

func NewMockPlaylistAPI() *MockPlaylistAPI {
	return &MockPlaylistAPI{
		Playlists: make(map[string]*models.Playlist),
		Items:     make(map[string][]services.PlaylistItem),
		FailOn:    make(map[string]error),
	}
}

// AddPlaylist seeds a remote playlist and its items from a model.
func (m *MockPlaylistAPI) AddPlaylist(playlist *models.Playlist) {
	m.Playlists[playlist.ID] = playlist

	items := make([]services.PlaylistItem, len(playlist.Videos))
	for i, video := range playlist.Videos {
		items[i] = services.PlaylistItem{
			ItemID:   fmt.Sprintf("item-%s-%s", playlist.ID, video.ID),
			VideoID:  video.ID,
			Title:    video.Title,
			Channel:  video.Channel,
			Position: i,
		}
	}
	m.Items[playlist.ID] = items
}

func (m *MockPlaylistAPI) fail(op string) error {
	m.Calls = append(m.Calls, op)
	return m.FailOn[op]
}

func (m *MockPlaylistAPI) MyPlaylists(ctx context.Context) ([]*models.Playlist, error) {
	if err := m.fail("list"); err != nil {
		return nil, err
	}

	var playlists []*models.Playlist
	for _, playlist := range m.Playlists {
		playlists = append(playlists, playlist)
	}
	return playlists, nil
}

func (m *MockPlaylistAPI) GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	if err := m.fail("list"); err != nil {
		return nil, err
	}

	playlist, ok := m.Playlists[playlistID]
	if !ok {
		return nil, fmt.Errorf("playlist %s not found", playlistID)
	}
	return playlist, nil
}

func (m *MockPlaylistAPI) ListItems(ctx context.Context, playlistID string) ([]services.PlaylistItem, error) {
	if err := m.fail("list"); err != nil {
		return nil, err
	}
	return append([]services.PlaylistItem(nil), m.Items[playlistID]...), nil
}

func (m *MockPlaylistAPI) CreatePlaylist(ctx context.Context, title, description string, privacy models.Privacy) (string, error) {
	if err := m.fail("create"); err != nil {
		return "", err
	}

	m.nextID++
	id := fmt.Sprintf("PLmock%d", m.nextID)

	playlist := models.NewPlaylist(id, title, description)
	playlist.Privacy = privacy
	m.Playlists[id] = playlist
	m.Items[id] = nil

	return id, nil
}

func (m *MockPlaylistAPI) UpdatePlaylist(ctx context.Context, playlistID, title, description string, privacy models.Privacy) error {
	if err := m.fail("update"); err != nil {
		return err
	}

	playlist, ok := m.Playlists[playlistID]
	if !ok {
		return fmt.Errorf("playlist %s not found", playlistID)
	}
	playlist.Title = title
	playlist.Description = description
	playlist.Privacy = privacy
	return nil
}

func (m *MockPlaylistAPI) InsertVideo(ctx context.Context, playlistID, videoID string, position int) (string, error) {
	if err := m.fail("insert"); err != nil {
		return "", err
	}

	m.nextID++
	item := services.PlaylistItem{
		ItemID:  fmt.Sprintf("item-mock%d", m.nextID),
		VideoID: videoID,
	}

	items := m.Items[playlistID]
	if position < 0 || position > len(items) {
		position = len(items)
	}
	items = append(items[:position], append([]services.PlaylistItem{item}, items[position:]...)...)
	m.Items[playlistID] = renumbered(items)

	return item.ItemID, nil
}

func (m *MockPlaylistAPI) RemoveItem(ctx context.Context, itemID string) error {
	if err := m.fail("remove"); err != nil {
		return err
	}

	for playlistID, items := range m.Items {
		for i, item := range items {
			if item.ItemID == itemID {
				m.Items[playlistID] = renumbered(append(items[:i], items[i+1:]...))
				return nil
			}
		}
	}
	return fmt.Errorf("item %s not found", itemID)
}

func (m *MockPlaylistAPI) MoveItem(ctx context.Context, playlistID, itemID, videoID string, position int) error {
	if err := m.fail("move"); err != nil {
		return err
	}

	items := m.Items[playlistID]
	for i, item := range items {
		if item.ItemID == itemID {
			items = append(items[:i], items[i+1:]...)
			if position < 0 || position > len(items) {
				position = len(items)
			}
			items = append(items[:position], append([]services.PlaylistItem{item}, items[position:]...)...)
			m.Items[playlistID] = renumbered(items)
			return nil
		}
	}
	return fmt.Errorf("item %s not found in %s", itemID, playlistID)
}

// VideoOrder returns the playlist's video IDs in item order, for assertions.
func (m *MockPlaylistAPI) VideoOrder(playlistID string) []string {
	var order []string
	for _, item := range m.Items[playlistID] {
		order = append(order, item.VideoID)
	}
	return order
}

func renumbered(items []services.PlaylistItem) []services.PlaylistItem {
	for i := range items {
		items[i].Position = i
	}
	return items
}

// MockMetadataSource is a test double for [services.MetadataSource].
type MockMetadataSource struct {
	Playlists map[string]*models.Playlist
	Channels  map[string][]*models.Playlist
	FailOn    map[string]error // keyed by playlist or channel ID
	Calls     int
}

func NewMockMetadataSource() *MockMetadataSource {
	return &MockMetadataSource{
		Playlists: make(map[string]*models.Playlist),
		Channels:  make(map[string][]*models.Playlist),
		FailOn:    make(map[string]error),
	}
}

func (m *MockMetadataSource) ExtractPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	m.Calls++
	if err := m.FailOn[playlistID]; err != nil {
		return nil, err
	}

	playlist, ok := m.Playlists[playlistID]
	if !ok {
		return nil, fmt.Errorf("playlist %s not found", playlistID)
	}
	return playlist, nil
}

func (m *MockMetadataSource) ExtractChannelPlaylists(ctx context.Context, channelID string) ([]*models.Playlist, error) {
	m.Calls++
	if err := m.FailOn[channelID]; err != nil {
		return nil, err
	}
	return m.Channels[channelID], nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

var _ io.Writer = (*FWriter)(nil)
var _ services.PlaylistAPI = (*MockPlaylistAPI)(nil)
var _ services.MetadataSource = (*MockMetadataSource)(nil)
