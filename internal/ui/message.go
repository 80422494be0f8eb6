package ui

import (
	"github.com/desertthunder/ytpl/internal/models"
	"github.com/desertthunder/ytpl/internal/tasks"
)

// playlistsFetchedMsg delivers the source channel's playlist listing.
type playlistsFetchedMsg struct {
	playlists []*models.Playlist
	err       error
}

// videosFetchedMsg delivers the selected playlist with its full video list.
type videosFetchedMsg struct {
	playlist *models.Playlist
	err      error
}

// progressUpdateMsg carries one engine progress update into the Elm loop.
type progressUpdateMsg tasks.ProgressUpdate

// syncCompleteMsg delivers the terminal outcome of a reconciliation.
type syncCompleteMsg struct {
	result *tasks.ReconcileResult
	err    error
}
