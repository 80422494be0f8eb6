package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/ytpl/internal/models"
	"github.com/desertthunder/ytpl/internal/quota"
	"github.com/desertthunder/ytpl/internal/services"
	"github.com/desertthunder/ytpl/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistListView ViewState = iota
	VideoListView
	ConfirmView
	SyncView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	view      ViewState
	source    services.MetadataSource
	api       services.PlaylistAPI
	engine    *tasks.BatchEngine
	channelID string

	width  int
	height int

	playlistList     list.Model
	playlists        []*models.Playlist
	videoList        list.Model
	selectedPlaylist *models.Playlist

	progressChan chan tasks.ProgressUpdate
	syncDone     chan syncCompleteMsg
	progress     tasks.ProgressUpdate
	result       *tasks.ReconcileResult
	err          error

	help help.Model
	keys keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, source services.MetadataSource, api services.PlaylistAPI, engine *tasks.BatchEngine, channelID string) *Model {
	return &Model{
		ctx:       ctx,
		view:      PlaylistListView,
		source:    source,
		api:       api,
		engine:    engine,
		channelID: channelID,
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Init initializes the TUI by fetching the source channel's playlists.
func (m *Model) Init() tea.Cmd {
	return m.fetchPlaylists()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.playlistList.Width() == 0 {
			m.playlistList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.videoList.Width() == 0 {
			m.videoList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case VideoListView:
			return m.handleVideoListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case playlistsFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.playlists = msg.playlists
		items := make([]list.Item, len(msg.playlists))
		for i, pl := range msg.playlists {
			items[i] = playlistItem{playlist: pl}
		}
		m.playlistList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.playlistList.Title = "Source Playlists"
		m.playlistList.SetSize(m.width-4, m.height-8)
		return m, nil

	case videosFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = PlaylistListView
			return m, nil
		}
		m.selectedPlaylist = msg.playlist
		items := make([]list.Item, len(msg.playlist.Videos))
		for i, video := range msg.playlist.Videos {
			items[i] = videoItem{video: video}
		}
		m.videoList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.videoList.Title = fmt.Sprintf("Videos in '%s'", msg.playlist.Title)
		m.videoList.SetSize(m.width-4, m.height-8)
		m.view = VideoListView
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case syncCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.view = ResultView
		m.progressChan = nil
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case PlaylistListView:
		return m.renderPlaylistList()
	case VideoListView:
		return m.renderVideoList()
	case ConfirmView:
		return m.renderConfirm()
	case SyncView:
		return m.renderSync()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		selected := m.playlistList.SelectedItem()
		if selected != nil {
			if pl, ok := selected.(playlistItem); ok {
				return m, m.fetchVideos(pl.playlist.ID)
			}
		}
	}

	var cmd tea.Cmd
	m.playlistList, cmd = m.playlistList.Update(msg)
	return m, cmd
}

func (m *Model) handleVideoListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = PlaylistListView
		return m, nil
	case "enter":
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	m.videoList, cmd = m.videoList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n":
		m.view = VideoListView
		return m, nil
	case "y":
		m.view = SyncView
		return m, m.startSync()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = PlaylistListView
		m.selectedPlaylist = nil
		m.result = nil
		m.err = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PlaylistListView:
		m.playlistList, cmd = m.playlistList.Update(msg)
	case VideoListView:
		m.videoList, cmd = m.videoList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchPlaylists() tea.Cmd {
	return func() tea.Msg {
		playlists, err := m.source.ExtractChannelPlaylists(m.ctx, m.channelID)
		return playlistsFetchedMsg{playlists: playlists, err: err}
	}
}

func (m *Model) fetchVideos(playlistID string) tea.Cmd {
	return func() tea.Msg {
		playlist, err := m.source.ExtractPlaylist(m.ctx, playlistID)
		return videosFetchedMsg{playlist: playlist, err: err}
	}
}

// startSync launches the reconciliation in a goroutine. The dedup targets are
// fetched there too: listing the channel with videos is cheap but slow, and
// must not block the Elm loop.
func (m *Model) startSync() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	progressChan := m.progressChan
	desired := m.selectedPlaylist

	done := make(chan syncCompleteMsg, 1)
	go func() {
		defer close(progressChan)

		targets, err := m.fetchTargets()
		if err != nil {
			done <- syncCompleteMsg{err: err}
			return
		}

		result, err := m.engine.Reconcile(m.ctx, progressChan, desired, targets, false)
		done <- syncCompleteMsg{result: result, err: err}
	}()
	m.syncDone = done

	return m.waitForProgress()
}

func (m *Model) fetchTargets() ([]*models.Playlist, error) {
	stubs, err := m.api.MyPlaylists(m.ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list channel playlists: %w", err)
	}

	targets := make([]*models.Playlist, 0, len(stubs))
	for _, stub := range stubs {
		full, err := m.api.GetPlaylist(m.ctx, stub.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch playlist %s: %w", stub.ID, err)
		}
		targets = append(targets, full)
	}
	return targets, nil
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return syncCompleteMsg{result: m.result, err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			return <-m.syncDone
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderPlaylistList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.playlistList.View(), helpView)
}

func (m *Model) renderVideoList() string {
	syncKey := key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "sync"),
	)
	helpKeys := []key.Binding{syncKey, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.videoList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Sync '%s' to your channel?", m.selectedPlaylist.Title))

	// Worst case: the playlist does not exist yet and every video is inserted.
	worstCase := quota.Estimate{Inserts: len(m.selectedPlaylist.Videos) + 1}
	info := fmt.Sprintf("\nPlaylist: %s\nVideos: %d\nQuota (worst case): %d units\n",
		m.selectedPlaylist.Title, len(m.selectedPlaylist.Videos), worstCase.Total())

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderSync() string {
	title := styles.title.Render("Syncing Playlist")

	var phase string
	switch m.progress.Phase {
	case tasks.FetchTargets:
		phase = "Fetching channel playlists..."
	case tasks.AnalyzeDedup:
		phase = "Checking for duplicates..."
	case tasks.FetchSource:
		phase = "Fetching source playlist..."
	case tasks.CreateTarget:
		phase = "Creating playlist..."
	case tasks.ApplyChanges:
		phase = fmt.Sprintf("Applying changes (%d/%d)", m.progress.Step, m.progress.Total)
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Sync failed: %v\n\nPress r to retry, q to quit", m.err))
	}

	if m.result == nil {
		return styles.err.Render("No result available\n\nPress r to retry, q to quit")
	}

	var title, info string
	switch m.result.Outcome {
	case tasks.OutcomeSkipped:
		title = styles.ok.Render("✓ Already on your channel")
		info = fmt.Sprintf("\nMatched playlist: %s", m.result.TargetID)
	case tasks.OutcomeUpdated:
		title = styles.ok.Render("✓ Playlist updated")
		info = fmt.Sprintf("\nTarget: %s\nAdded: %d\nRemoved: %d\nMoved: %d",
			m.result.TargetID, m.result.Report.Added, m.result.Report.Removed, m.result.Report.Moved)
	case tasks.OutcomeCreated:
		title = styles.ok.Render("✓ Playlist created")
		info = fmt.Sprintf("\nTarget: %s\nVideos added: %d", m.result.TargetID, m.result.Report.Added)
	default:
		title = styles.ok.Render("✓ Done")
	}

	var skipped string
	if m.result.Report != nil && len(m.result.Report.SkippedItems) > 0 {
		skipped = fmt.Sprintf("\n\n%s", styles.warn.Render(fmt.Sprintf("Skipped %d item(s):", len(m.result.Report.SkippedItems))))
		for _, item := range m.result.Report.SkippedItems {
			skipped += fmt.Sprintf("\n  • %s %s: %s", item.Op, item.VideoID, item.Reason)
		}
	}

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, skipped, helpView)
}
