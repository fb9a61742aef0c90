package fsys

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"github.com/dustin/go-humanize"
	cp "github.com/otiai10/copy"

	"github.com/oshokin/ans-renamer/internal/logger"
)

// Mover moves a directory entry from one path to another.
type Mover interface {
	Move(ctx context.Context, source, target string) error
}

// Lister lists the entries of a directory.
type Lister interface {
	ReadDir(dir string) ([]fs.DirEntry, error)
}

// OSMover is the Mover and Lister backed by the os package.
type OSMover struct {
	// crossDevice enables the copy fallback on EXDEV.
	crossDevice bool
	// rename is os.Rename; tests replace it to simulate EXDEV.
	rename func(oldpath, newpath string) error
}

// Option configures an OSMover.
type Option func(*OSMover)

// WithCrossDeviceCopy enables copy-then-remove when a rename crosses file systems.
func WithCrossDeviceCopy(enabled bool) Option {
	return func(m *OSMover) {
		m.crossDevice = enabled
	}
}

// NewOSMover returns a mover working on the real file system.
func NewOSMover(opts ...Option) *OSMover {
	m := &OSMover{
		rename: os.Rename,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Move renames source to target. It performs no existence checks of its own;
// whatever the operating system reports is returned unchanged.
func (m *OSMover) Move(ctx context.Context, source, target string) error {
	err := m.rename(source, target)
	if err == nil || !m.crossDevice || !errors.Is(err, syscall.EXDEV) {
		return err
	}

	return m.copyAndRemove(ctx, source, target)
}

// ReadDir lists dir.
func (m *OSMover) ReadDir(dir string) ([]fs.DirEntry, error) {
	return os.ReadDir(filepath.Clean(dir))
}

// copyAndRemove emulates a rename across devices. The target must not exist.
func (m *OSMover) copyAndRemove(ctx context.Context, source, target string) error {
	if _, err := os.Lstat(target); err == nil {
		return fmt.Errorf("copy %s: %w", target, fs.ErrExist)
	}

	size, err := treeSize(source)
	if err != nil {
		return fmt.Errorf("measure %s: %w", source, err)
	}

	logger.DebugKV(ctx, "Rename crosses devices, copying instead",
		"source", source, "target", target, "size", humanize.Bytes(size))

	if err = cp.Copy(source, target, cp.Options{Sync: true}); err != nil {
		// Leave the source untouched and drop the partial copy.
		_ = os.RemoveAll(target)

		return fmt.Errorf("copy %s: %w", source, err)
	}

	if err = os.RemoveAll(source); err != nil {
		return fmt.Errorf("remove %s after copy: %w", source, err)
	}

	return nil
}

// treeSize sums the sizes of regular files under root.
func treeSize(root string) (uint64, error) {
	var total uint64

	err := filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		total += uint64(info.Size()) //nolint:gosec // Sizes are never negative.

		return nil
	})

	return total, err
}
