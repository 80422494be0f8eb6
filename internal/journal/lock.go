package journal

import (
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/desertthunder/ytpl/internal/shared"
)

// FileLock is an advisory flock(2) guard around the journal file. The
// original single-writer assumption is otherwise unenforced; the lock turns a
// second concurrent batch invocation into an error instead of silent state
// corruption.
type FileLock struct {
	path string
	file *os.File
}

// NewFileLock creates a lock for the given journal path. The lock file lives
// at path + ".lock" and is not held until Lock is called.
func NewFileLock(path string) *FileLock {
	return &FileLock{path: path + ".lock"}
}

// Lock acquires the exclusive lock, polling until the timeout.
func (l *FileLock) Lock(timeout time.Duration) error {
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return fmt.Errorf("failed to open lock file: %w", err)
	}

	deadline := time.Now().Add(timeout)
	for {
		err = syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
		if err == nil {
			l.file = file
			return nil
		}
		if time.Now().After(deadline) {
			file.Close()
			return shared.ErrJournalLocked
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// Unlock releases the lock and removes the lock file.
func (l *FileLock) Unlock() error {
	if l.file == nil {
		return nil
	}
	syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
	l.file.Close()
	os.Remove(l.path)
	l.file = nil
	return nil
}
