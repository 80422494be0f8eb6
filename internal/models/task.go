package models

import (
	"fmt"
	"time"
)

// TaskStatus is the lifecycle state of a single batch task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskFailed     TaskStatus = "failed"
	TaskSkipped    TaskStatus = "skipped"
)

// validTransitions enumerates the legal task status moves. FAILED may return
// to IN_PROGRESS on a resumed retry; COMPLETED and SKIPPED are terminal.
var validTransitions = map[TaskStatus][]TaskStatus{
	TaskPending:    {TaskInProgress, TaskSkipped},
	TaskInProgress: {TaskCompleted, TaskFailed},
	TaskFailed:     {TaskInProgress},
	TaskCompleted:  {},
	TaskSkipped:    {},
}

// CanTransition reports whether a task may move from one status to another.
func CanTransition(from, to TaskStatus) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition leaves the status.
func (s TaskStatus) Terminal() bool {
	return len(validTransitions[s]) == 0
}

// Task is the per-playlist unit of a batch job. Tasks are created once per
// source playlist when a journal is created and mutated only through the
// journal's update entry point.
type Task struct {
	SourcePlaylistID string     `json:"source_playlist_id"`
	SourceTitle      string     `json:"source_title"`
	TargetPlaylistID string     `json:"target_playlist_id,omitempty"`
	Status           TaskStatus `json:"status"`
	Error            string     `json:"error,omitempty"`
	RetryCount       int        `json:"retry_count"`
	VideosAdded      int        `json:"videos_added"`
	LastUpdated      time.Time  `json:"last_updated"`
	MatchType        MatchType  `json:"match_type,omitempty"`
	MatchPlaylistID  string     `json:"match_playlist_id,omitempty"`
}

// Journal is the durable root of a batch job: one task per source playlist,
// persisted after every task mutation so a killed process can resume.
type Journal struct {
	BatchID   string    `json:"batch_id"`
	CreatedAt time.Time `json:"created_at"`
	Tasks     []Task    `json:"tasks"`
}

// FindTask returns a pointer to the task keyed by source playlist ID.
func (j *Journal) FindTask(sourceID string) (*Task, error) {
	for i := range j.Tasks {
		if j.Tasks[i].SourcePlaylistID == sourceID {
			return &j.Tasks[i], nil
		}
	}
	return nil, fmt.Errorf("no task for source playlist %s", sourceID)
}
