// package journal persists per-task batch progress so quota-limited jobs can
// resume across process invocations.
//
// Every task mutation goes through a single entry point that synchronously
// rewrites the whole journal file. The design trades throughput for
// crash-resumability: a process killed mid-batch leaves a journal at most one
// task-mutation stale.
package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/desertthunder/ytpl/internal/models"
	"github.com/desertthunder/ytpl/internal/shared"
)

// MaxTaskRetries is the default ceiling on per-task retries. Tasks FAILED at
// the ceiling are excluded from resumes until the journal is cleared.
const MaxTaskRetries = 3

const lockTimeout = 5 * time.Second

// TaskPatch is a partial task update: nil fields are left untouched.
type TaskPatch struct {
	Status           *models.TaskStatus
	TargetPlaylistID *string
	Error            *string
	RetryCount       *int
	VideosAdded      *int
	MatchType        *models.MatchType
	MatchPlaylistID  *string
}

// Store owns the journal file: an exclusive advisory lock for the process
// lifetime plus write-through persistence on every mutation.
type Store struct {
	path       string
	lock       *FileLock
	journal    *models.Journal
	maxRetries int
}

// SetMaxRetries overrides the per-task retry ceiling. Values below one keep
// the default.
func (s *Store) SetMaxRetries(n int) {
	if n > 0 {
		s.maxRetries = n
	}
}

// Open acquires the journal lock and loads any existing journal at path. A
// missing or unparseable file leaves the store empty; callers start a fresh
// batch with Create.
func Open(path string) (*Store, error) {
	s := &Store{path: path, lock: NewFileLock(path), maxRetries: MaxTaskRetries}

	if err := s.lock.Lock(lockTimeout); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		s.lock.Unlock()
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}

	var journal models.Journal
	if err := json.Unmarshal(data, &journal); err != nil {
		// Corrupt journal: start fresh rather than refusing to run.
		return s, nil
	}
	s.journal = &journal
	return s, nil
}

// Close releases the journal lock.
func (s *Store) Close() error {
	return s.lock.Unlock()
}

// Journal returns the loaded journal, nil when none exists.
func (s *Store) Journal() *models.Journal {
	return s.journal
}

// Create starts a new journal with one PENDING task per source playlist and
// persists it immediately.
func (s *Store) Create(sources []*models.Playlist) (*models.Journal, error) {
	now := time.Now()
	journal := &models.Journal{
		BatchID:   shared.GenerateBatchID(),
		CreatedAt: now,
	}
	for _, src := range sources {
		journal.Tasks = append(journal.Tasks, models.Task{
			SourcePlaylistID: src.ID,
			SourceTitle:      src.Title,
			Status:           models.TaskPending,
			LastUpdated:      now,
		})
	}

	s.journal = journal
	if err := s.persist(); err != nil {
		return nil, err
	}
	return journal, nil
}

// UpdateTask is the sole mutation entry point: it applies the patch to the
// task keyed by source playlist ID, stamps LastUpdated, and persists the
// whole journal before returning.
func (s *Store) UpdateTask(sourceID string, patch TaskPatch) error {
	if s.journal == nil {
		return shared.ErrJournalNotFound
	}

	task, err := s.journal.FindTask(sourceID)
	if err != nil {
		return err
	}

	if patch.Status != nil && *patch.Status != task.Status {
		if !models.CanTransition(task.Status, *patch.Status) {
			return fmt.Errorf("invalid task transition %s → %s for %s", task.Status, *patch.Status, sourceID)
		}
		task.Status = *patch.Status
	}
	if patch.TargetPlaylistID != nil {
		task.TargetPlaylistID = *patch.TargetPlaylistID
	}
	if patch.Error != nil {
		task.Error = *patch.Error
	}
	if patch.RetryCount != nil {
		task.RetryCount = *patch.RetryCount
	}
	if patch.VideosAdded != nil {
		task.VideosAdded = *patch.VideosAdded
	}
	if patch.MatchType != nil {
		task.MatchType = *patch.MatchType
	}
	if patch.MatchPlaylistID != nil {
		task.MatchPlaylistID = *patch.MatchPlaylistID
	}
	task.LastUpdated = time.Now()

	return s.persist()
}

// PendingTasks returns the tasks that still need work: PENDING, or FAILED
// below the retry ceiling.
func (s *Store) PendingTasks() []models.Task {
	if s.journal == nil {
		return nil
	}
	var pending []models.Task
	for _, task := range s.journal.Tasks {
		switch task.Status {
		case models.TaskPending:
			pending = append(pending, task)
		case models.TaskFailed:
			if task.RetryCount < s.maxRetries {
				pending = append(pending, task)
			}
		}
	}
	return pending
}

// Done reports whether every task settled cleanly: nothing pending and no
// failures. A journal holding FAILED tasks, even at the retry ceiling, stays
// on disk so the user can inspect and clear it explicitly.
func (s *Store) Done() bool {
	if s.journal == nil {
		return false
	}
	for _, task := range s.journal.Tasks {
		switch task.Status {
		case models.TaskPending, models.TaskInProgress, models.TaskFailed:
			return false
		}
	}
	return true
}

// Clear deletes the journal file and drops the in-memory journal.
func (s *Store) Clear() error {
	s.journal = nil
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove journal: %w", err)
	}
	return nil
}

// GC clears the journal when the batch is fully settled, so an unrelated
// later batch does not accidentally resume stale state.
func (s *Store) GC() error {
	if s.Done() {
		return s.Clear()
	}
	return nil
}

func (s *Store) persist() error {
	data, err := json.MarshalIndent(s.journal, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal journal: %w", err)
	}
	return writeFileAtomic(s.path, data)
}
