package renamer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/oshokin/ans-renamer/internal/config"
	"github.com/oshokin/ans-renamer/internal/domain/rename"
	"github.com/oshokin/ans-renamer/internal/lock"
	"github.com/oshokin/ans-renamer/internal/logger"
	"github.com/oshokin/ans-renamer/internal/repository/fsys"
	"github.com/oshokin/ans-renamer/internal/repository/journal"
	"github.com/oshokin/ans-renamer/internal/slug"
)

// Options contains inputs for the renamer entry points.
type Options struct {
	// ConfigPath is an optional path to the settings YAML file.
	ConfigPath string
	// Root overrides the configured root directory.
	Root string
	// Recursive overrides the configured slug-mode recursion when set.
	Recursive *bool
	// Output receives the completion message and slug-mode progress lines.
	// Defaults to stdout.
	Output io.Writer
}

// runner holds the collaborators of a single run.
// It is unexported; callers use Run or RunSlug.
type runner struct {
	cfg     *config.Config
	mover   fsys.Mover
	lister  fsys.Lister
	journal journal.Repository
	out     io.Writer
	now     func() time.Time
}

// Run renames the fixed table under the root and prints the completion message.
// Rename failures are not returned. Only setup failures are: unreadable
// settings or a run lock held by another process. A lock that cannot be
// created at all is logged and the run goes ahead unlocked.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "renamer")

	r, err := newRunner(opts)
	if err != nil {
		return err
	}

	return r.locked(ctx, func(ctx context.Context) *rename.Report {
		return r.renameTable(ctx)
	})
}

// RunSlug renames every directory under the root to its slug.
func RunSlug(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "renamer.slug")

	r, err := newRunner(opts)
	if err != nil {
		return err
	}

	return r.locked(ctx, func(ctx context.Context) *rename.Report {
		return r.renameSlugs(ctx)
	})
}

// newRunner loads settings and applies option overrides.
func newRunner(opts *Options) (*runner, error) {
	if opts == nil {
		opts = new(Options)
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	if opts.Root != "" {
		cfg.Root = opts.Root
	}

	if opts.Recursive != nil {
		recursive := *opts.Recursive
		cfg.Recursive = &recursive
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	mover := fsys.NewOSMover(fsys.WithCrossDeviceCopy(cfg.CrossDeviceCopy))

	r := &runner{
		cfg:    cfg,
		mover:  mover,
		lister: mover,
		out:    out,
		now:    time.Now,
	}

	if path := cfg.JournalPath(); path != "" {
		r.journal = journal.NewFileRepository(path)
	}

	return r, nil
}

// locked runs work under the run lock, then prints the completion message and
// records the report.
func (r *runner) locked(ctx context.Context, work func(context.Context) *rename.Report) error {
	ctx = logger.WithKV(ctx, "root", r.cfg.Root)

	l, err := lock.Acquire(ctx, r.cfg.LockPath())
	switch {
	case errors.Is(err, lock.ErrLocked):
		return err
	case err != nil:
		// An unwritable lock location must not stop the run.
		logger.DebugKV(ctx, "Running without run lock", "error", err)
	}

	defer func() {
		if err := l.Release(); err != nil {
			logger.WarnKV(ctx, "Unable to release run lock", "error", err)
		}
	}()

	report := work(ctx)

	r.complete(ctx, report)

	return nil
}

// renameTable attempts every pair once, in order, and never stops on failure.
func (r *runner) renameTable(ctx context.Context) *rename.Report {
	report := r.newReport(rename.ModeTable)

	for _, pair := range r.cfg.Pairs {
		if ctx.Err() != nil {
			logger.DebugKV(ctx, "Run interrupted", "error", ctx.Err())

			break
		}

		source := filepath.Join(r.cfg.Root, pair.Source)
		target := filepath.Join(r.cfg.Root, pair.Target)

		err := r.mover.Move(ctx, source, target)
		if err != nil {
			logger.DebugKV(ctx, "Rename skipped", "source", source, "target", target, "error", err)
		} else {
			logger.DebugKV(ctx, "Renamed", "source", source, "target", target)
		}

		report.Outcomes = append(report.Outcomes, rename.Outcome{
			Pair:    pair,
			Renamed: err == nil,
			Err:     err,
		})
	}

	return report
}

// renameSlugs walks the root and renames directories whose slug differs.
func (r *runner) renameSlugs(ctx context.Context) *rename.Report {
	report := r.newReport(rename.ModeSlug)
	r.walk(ctx, r.cfg.Root, report)

	return report
}

func (r *runner) walk(ctx context.Context, dir string, report *rename.Report) {
	entries, err := r.lister.ReadDir(dir)
	if err != nil {
		r.printf("Error accessing %s: %v\n", dir, err)

		return
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return
		}

		// Symlinks are not followed, so the walk cannot loop.
		if !entry.IsDir() {
			continue
		}

		path := filepath.Join(dir, entry.Name())

		if target, ok := slug.Rename(entry.Name()); ok {
			newPath := filepath.Join(dir, target)

			err := r.mover.Move(ctx, path, newPath)
			if err != nil {
				r.printf("Error renaming %s: %v\n", path, err)
			} else {
				r.printf("Renamed: %s -> %s\n", path, newPath)
				path = newPath
			}

			report.Outcomes = append(report.Outcomes, rename.Outcome{
				Pair:    rename.Pair{Source: filepath.Join(dir, entry.Name()), Target: newPath},
				Renamed: err == nil,
				Err:     err,
			})
		}

		if r.cfg.IsRecursive() {
			r.walk(ctx, path, report)
		}
	}
}

func (r *runner) newReport(mode rename.Mode) *rename.Report {
	return &rename.Report{
		Mode:      mode,
		Root:      r.cfg.Root,
		StartedAt: r.now(),
	}
}

// complete prints the completion message once and records the report.
// Neither step can change the outcome of the run.
func (r *runner) complete(ctx context.Context, report *rename.Report) {
	report.FinishedAt = r.now()

	r.printf("%s\n", rename.CompletionMessage)

	logger.DebugKV(ctx, "Run finished",
		"mode", report.Mode,
		"attempted", len(report.Outcomes),
		"renamed", report.Renamed(),
		"failed", report.Failed(),
		"duration", report.Duration())

	if r.journal == nil {
		return
	}

	actor, err := rename.DetectActor()
	if err != nil {
		logger.DebugKV(ctx, "Unable to detect actor", "error", err)
	}

	report.Actor = actor

	if err = r.journal.Save(ctx, report); err != nil {
		logger.WarnKV(ctx, "Unable to write journal", "error", err)
	}
}

// printf writes to the run output. Write errors are dropped: the output is
// informational and must not change the result of a run.
func (r *runner) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}
