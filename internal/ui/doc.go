// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for playlist synchronization:
//  1. [PlaylistListView] : Browse and select a source channel's playlists
//  2. [VideoListView] : Preview videos before syncing
//  3. [ConfirmView] : Review the dedup verdict and quota estimate
//  4. [SyncView] : Monitor real-time progress updates
//  5. [ResultView] : Display the reconciliation outcome
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the BatchEngine, providing non-blocking status reporting during syncs.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
