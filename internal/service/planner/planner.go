package planner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/cheynewallace/tabby"

	"github.com/oshokin/ans-renamer/internal/config"
	"github.com/oshokin/ans-renamer/internal/domain/rename"
	"github.com/oshokin/ans-renamer/internal/logger"
)

// Action is the predicted effect of one pair.
type Action string

const (
	// ActionRename means the source exists and the target does not.
	ActionRename Action = "rename"
	// ActionMissing means neither side exists; the pair will be skipped.
	ActionMissing Action = "missing"
	// ActionDone means only the target exists, as after a previous run.
	ActionDone Action = "done"
	// ActionConflict means both exist; the rename will most likely fail.
	ActionConflict Action = "conflict"
)

// Step is the prediction for one pair.
type Step struct {
	Pair   rename.Pair
	Action Action
}

// Options contains inputs for Run.
type Options struct {
	// ConfigPath is an optional path to the settings YAML file.
	ConfigPath string
	// Root overrides the configured root directory.
	Root string
	// Output receives the table. Defaults to stdout.
	Output io.Writer
}

// Run loads settings, builds the plan and renders it.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "planner")

	if opts == nil {
		opts = new(Options)
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if opts.Root != "" {
		cfg.Root = opts.Root
	}

	steps, err := Build(cfg.Root, cfg.Pairs)
	if err != nil {
		return err
	}

	logger.DebugKV(ctx, "Plan built", "root", cfg.Root, "steps", len(steps))

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	Render(out, cfg.Root, steps)

	return nil
}

// Build classifies every pair under root.
func Build(root string, pairs []rename.Pair) ([]Step, error) {
	steps := make([]Step, 0, len(pairs))

	for _, p := range pairs {
		sourceExists, err := exists(filepath.Join(root, p.Source))
		if err != nil {
			return nil, err
		}

		targetExists, err := exists(filepath.Join(root, p.Target))
		if err != nil {
			return nil, err
		}

		var action Action

		switch {
		case sourceExists && targetExists:
			action = ActionConflict
		case sourceExists:
			action = ActionRename
		case targetExists:
			action = ActionDone
		default:
			action = ActionMissing
		}

		steps = append(steps, Step{Pair: p, Action: action})
	}

	return steps, nil
}

// Render writes the plan as a table.
func Render(w io.Writer, root string, steps []Step) {
	t := tabby.NewCustom(tabwriter.NewWriter(w, 0, 0, 2, ' ', 0))
	t.AddHeader("#", "Source", "Target", "Action")

	for i, s := range steps {
		t.AddLine(i+1, filepath.Join(root, s.Pair.Source), filepath.Join(root, s.Pair.Target), s.Action)
	}

	t.Print()
}

func exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
}
