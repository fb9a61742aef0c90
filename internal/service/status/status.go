package status

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/cheynewallace/tabby"
	"github.com/dustin/go-humanize"

	"github.com/oshokin/ans-renamer/internal/config"
	"github.com/oshokin/ans-renamer/internal/domain/rename"
	"github.com/oshokin/ans-renamer/internal/logger"
	"github.com/oshokin/ans-renamer/internal/repository/journal"
)

// Options contains inputs for Run.
type Options struct {
	// ConfigPath is an optional path to the settings YAML file.
	ConfigPath string
	// Output receives the report. Defaults to stdout.
	Output io.Writer
	// Now is the reference time for relative timestamps. Defaults to time.Now.
	Now func() time.Time
}

// ErrJournalDisabled is returned when the settings turn the journal off.
var ErrJournalDisabled = errors.New("journal is disabled in settings")

// Run prints the last recorded report.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "status")

	if opts == nil {
		opts = new(Options)
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	path := cfg.JournalPath()
	if path == "" {
		return ErrJournalDisabled
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	report, err := journal.NewFileRepository(path).Load(ctx)
	if errors.Is(err, journal.ErrNotFound) {
		_, _ = fmt.Fprintln(out, "No runs recorded yet.")

		return nil
	}

	if err != nil {
		return err
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	Render(out, report, now())

	return nil
}

// Render writes a summary line followed by one row per attempt.
func Render(w io.Writer, report *rename.Report, now time.Time) {
	who := "unknown"
	if report.Actor != nil {
		who = report.Actor.Username + "@" + report.Actor.Hostname
	}

	_, _ = fmt.Fprintf(w, "Last %s run on %s by %s, %s (took %s): %d renamed, %d skipped\n\n",
		report.Mode,
		report.Root,
		who,
		humanize.RelTime(report.FinishedAt, now, "ago", "from now"),
		report.Duration().Round(time.Millisecond),
		report.Renamed(),
		report.Failed(),
	)

	t := tabby.NewCustom(tabwriter.NewWriter(w, 0, 0, 2, ' ', 0))
	t.AddHeader("Source", "Target", "Result")

	for _, o := range report.Outcomes {
		result := "renamed"
		if o.Err != nil {
			result = o.Err.Error()
		}

		t.AddLine(o.Pair.Source, o.Pair.Target, result)
	}

	t.Print()
}
