package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oshokin/ans-renamer/internal/config"
	"github.com/oshokin/ans-renamer/internal/domain/rename"
)

// Repository defines persistence operations for run reports.
type Repository interface {
	Load(ctx context.Context) (*rename.Report, error)
	Save(ctx context.Context, report *rename.Report) error
}

// FileRepository persists the last report to a JSON file on disk.
type FileRepository struct {
	// path is the filesystem location of the journal file.
	path string
	// mu serializes access to the journal file.
	mu sync.Mutex
}

// ErrNotFound is returned when no journal has been written yet.
var ErrNotFound = errors.New("journal not found")

// record is the on-disk shape of a report. Errors are kept as text.
type record struct {
	Mode       rename.Mode   `json:"mode"`
	Root       string        `json:"root"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Actor      *rename.Actor `json:"actor,omitempty"`
	Outcomes   []outcome     `json:"outcomes"`
}

type outcome struct {
	Source  string `json:"source"`
	Target  string `json:"target"`
	Renamed bool   `json:"renamed"`
	Error   string `json:"error,omitempty"`
}

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the last report from disk.
func (r *FileRepository) Load(_ context.Context) (*rename.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read journal file: %w", err)
	}

	var rec record
	if err = json.Unmarshal(contents, &rec); err != nil {
		return nil, fmt.Errorf("decode journal file: %w", err)
	}

	return fromRecord(&rec), nil
}

// Save overwrites the journal with report.
func (r *FileRepository) Save(_ context.Context, report *rename.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.MarshalIndent(toRecord(report), "", "  ")
	if err != nil {
		return fmt.Errorf("encode journal: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write journal file: %w", err)
	}

	return nil
}

func toRecord(report *rename.Report) *record {
	rec := &record{
		Mode:       report.Mode,
		Root:       report.Root,
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
		Actor:      report.Actor,
		Outcomes:   make([]outcome, 0, len(report.Outcomes)),
	}

	for _, o := range report.Outcomes {
		item := outcome{
			Source:  o.Pair.Source,
			Target:  o.Pair.Target,
			Renamed: o.Renamed,
		}

		if o.Err != nil {
			item.Error = o.Err.Error()
		}

		rec.Outcomes = append(rec.Outcomes, item)
	}

	return rec
}

func fromRecord(rec *record) *rename.Report {
	report := &rename.Report{
		Mode:       rec.Mode,
		Root:       rec.Root,
		StartedAt:  rec.StartedAt,
		FinishedAt: rec.FinishedAt,
		Actor:      rec.Actor,
		Outcomes:   make([]rename.Outcome, 0, len(rec.Outcomes)),
	}

	for _, item := range rec.Outcomes {
		o := rename.Outcome{
			Pair:    rename.Pair{Source: item.Source, Target: item.Target},
			Renamed: item.Renamed,
		}

		if item.Error != "" {
			o.Err = errors.New(item.Error) //nolint:err113 // Restored from text.
		}

		report.Outcomes = append(report.Outcomes, o)
	}

	return report
}
