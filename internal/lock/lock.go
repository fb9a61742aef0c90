package lock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gofrs/flock"
	"github.com/mitchellh/go-ps"

	"github.com/oshokin/ans-renamer/internal/config"
	"github.com/oshokin/ans-renamer/internal/logger"
)

// ErrLocked is returned when another process holds the lock.
var ErrLocked = errors.New("another run is in progress")

// HeldError describes the process holding the lock, when it can be identified.
type HeldError struct {
	Path string
	PID  int
	Name string
}

// Error implements error.
func (e *HeldError) Error() string {
	switch {
	case e.PID > 0 && e.Name != "":
		return fmt.Sprintf("%s: %s held by pid %d (%s)", ErrLocked, e.Path, e.PID, e.Name)
	case e.PID > 0:
		return fmt.Sprintf("%s: %s held by pid %d", ErrLocked, e.Path, e.PID)
	default:
		return fmt.Sprintf("%s: %s", ErrLocked, e.Path)
	}
}

// Is makes errors.Is(err, ErrLocked) match.
func (e *HeldError) Is(target error) bool {
	return target == ErrLocked
}

// Lock is an acquired run lock.
type Lock struct {
	fl *flock.Flock
}

// Acquire takes the lock at path without blocking. An empty path returns a
// no-op lock.
func Acquire(ctx context.Context, path string) (*Lock, error) {
	if path == "" {
		return new(Lock), nil
	}

	fl := flock.New(path)

	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}

	if !locked {
		return nil, holder(path)
	}

	pid := strconv.Itoa(os.Getpid())
	if err = os.WriteFile(path, []byte(pid+"\n"), config.DefaultFilePermissions); err != nil {
		// The lock itself is held; the PID is only informational.
		logger.DebugKV(ctx, "Unable to record lock holder", "path", path, "error", err)
	}

	logger.DebugKV(ctx, "Run lock acquired", "path", path, "pid", pid)

	return &Lock{fl: fl}, nil
}

// Release drops the lock. The lock file is left in place.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}

	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("unlock %s: %w", l.fl.Path(), err)
	}

	return nil
}

// holder builds a HeldError from the PID recorded in the lock file.
func holder(path string) error {
	held := &HeldError{Path: path}

	contents, err := os.ReadFile(path)
	if err != nil {
		return held
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(contents)))
	if err != nil || pid <= 0 {
		return held
	}

	held.PID = pid

	if process, err := ps.FindProcess(pid); err == nil && process != nil {
		held.Name = process.Executable()
	}

	return held
}
