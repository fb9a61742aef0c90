package deps

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/cheynewallace/tabby"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/ans-renamer/internal/logger"
	"github.com/oshokin/ans-renamer/internal/manifest"
)

// DefaultManifestFilename is checked when no manifest path is given.
const DefaultManifestFilename = "requirements.txt"

// Options contains inputs for Check.
type Options struct {
	// ManifestPath is the requirements file. Defaults to requirements.txt.
	ManifestPath string
	// ResolvedPath is an optional pip freeze listing to check against.
	ResolvedPath string
	// IndexPath is an optional YAML map of project -> available versions to
	// select from.
	IndexPath string
	// Output receives the tables. Defaults to stdout.
	Output io.Writer
}

var (
	// ErrViolations is returned when the selection does not satisfy the manifest.
	ErrViolations = errors.New("manifest not satisfied")
	// errBothSources is returned when both a freeze list and an index are given.
	errBothSources = errors.New("use either a resolved list or an index, not both")
)

// Check parses the manifest and, when a resolved list or an index is given,
// verifies a selection against it.
func Check(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "deps")

	if opts == nil {
		opts = new(Options)
	}

	if opts.ResolvedPath != "" && opts.IndexPath != "" {
		return errBothSources
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	path := opts.ManifestPath
	if path == "" {
		path = DefaultManifestFilename
	}

	m, err := readManifest(path)
	if err != nil {
		return err
	}

	logger.DebugKV(ctx, "Manifest parsed", "path", path, "requirements", len(m.Requirements), "pins", len(m.Pins()))

	var resolved map[string]string

	switch {
	case opts.ResolvedPath != "":
		resolved, err = readFreeze(opts.ResolvedPath)
	case opts.IndexPath != "":
		resolved, err = selectFromIndex(m, opts.IndexPath)
	default:
		renderRequirements(out, m, nil)

		return nil
	}

	if err != nil {
		return err
	}

	renderRequirements(out, m, resolved)

	violations := manifest.Check(m, resolved)
	if len(violations) == 0 {
		_, _ = fmt.Fprintf(out, "\nAll %d requirements satisfied.\n", len(m.Requirements))

		return nil
	}

	_, _ = fmt.Fprintln(out)
	renderViolations(out, violations)

	return fmt.Errorf("%w: %d of %d requirements", ErrViolations, len(violations), len(m.Requirements))
}

func readManifest(path string) (*manifest.Manifest, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}

	defer f.Close()

	m, err := manifest.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return m, nil
}

func readFreeze(path string) (map[string]string, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open resolved list: %w", err)
	}

	defer f.Close()

	resolved, err := manifest.ParseFreeze(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return resolved, nil
}

func selectFromIndex(m *manifest.Manifest, path string) (map[string]string, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}

	var index map[string][]string
	if err = yaml.Unmarshal(contents, &index); err != nil {
		return nil, fmt.Errorf("unmarshal index: %w", err)
	}

	return manifest.Select(m, index)
}

func renderRequirements(w io.Writer, m *manifest.Manifest, resolved map[string]string) {
	t := tabby.NewCustom(tabwriter.NewWriter(w, 0, 0, 2, ' ', 0))

	if resolved == nil {
		t.AddHeader("Package", "Constraint")
	} else {
		t.AddHeader("Package", "Constraint", "Selected")
	}

	reqs := append([]*manifest.Requirement(nil), m.Requirements...)
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].Name < reqs[j].Name })

	for _, r := range reqs {
		constraint := string(r.Op) + r.Version
		if constraint == "" {
			constraint = "any"
		}

		if resolved == nil {
			t.AddLine(r.Name, constraint)

			continue
		}

		selected, ok := resolved[r.Name]
		if !ok {
			selected = "-"
		}

		t.AddLine(r.Name, constraint, selected)
	}

	t.Print()
}

func renderViolations(w io.Writer, violations []manifest.Violation) {
	t := tabby.NewCustom(tabwriter.NewWriter(w, 0, 0, 2, ' ', 0))
	t.AddHeader("Line", "Package", "Selected", "Problem")

	for _, v := range violations {
		selected := v.Resolved
		if selected == "" {
			selected = "-"
		}

		t.AddLine(v.Requirement.Line, v.Requirement.Name, selected, v.Reason)
	}

	t.Print()
}
