package renamer

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/ans-renamer/internal/config"
	"github.com/oshokin/ans-renamer/internal/domain/rename"
	"github.com/oshokin/ans-renamer/internal/repository/fsys"
	"github.com/oshokin/ans-renamer/internal/repository/journal"
)

var errTestMove = errors.New("test move error")

// recordingMover records every Move and fails for the configured sources.
type recordingMover struct {
	// fail lists source base names whose move returns errTestMove.
	fail map[string]bool
	// moves holds every attempted source, in order.
	moves []string
}

// Move records the attempt and returns errTestMove for configured sources.
func (m *recordingMover) Move(_ context.Context, source, _ string) error {
	m.moves = append(m.moves, filepath.Base(source))
	if m.fail[filepath.Base(source)] {
		return errTestMove
	}

	return nil
}

// memoryJournal is a minimal in-memory Repository implementation for tests.
type memoryJournal struct {
	saved   *rename.Report
	saveErr error
}

func (j *memoryJournal) Load(context.Context) (*rename.Report, error) {
	if j.saved == nil {
		return nil, journal.ErrNotFound
	}

	return j.saved, nil
}

func (j *memoryJournal) Save(_ context.Context, r *rename.Report) error {
	j.saved = r

	return j.saveErr
}

func newTestRunner(t *testing.T, mover fsys.Mover, out *bytes.Buffer) *runner {
	t.Helper()

	cfg := &config.Config{Root: t.TempDir(), LockFile: config.Disabled}
	require.NoError(t, config.Validate(cfg))

	return &runner{
		cfg:   cfg,
		mover: mover,
		out:   out,
		now:   func() time.Time { return time.Unix(1700000000, 0) },
	}
}

// TestRenameTable_SkipsFailures verifies every pair is attempted once, in order,
// and that failures are recorded without stopping the run.
func TestRenameTable_SkipsFailures(t *testing.T) {
	t.Parallel()

	mover := &recordingMover{fail: map[string]bool{"SIP": true, "Beneficiários": true}}

	var out bytes.Buffer

	r := newTestRunner(t, mover, &out)
	j := new(memoryJournal)
	r.journal = j

	require.NoError(t, r.locked(context.Background(), r.renameTable))

	want := make([]string, 0, 8)
	for _, p := range rename.DefaultPairs() {
		want = append(want, p.Source)
	}

	require.Equal(t, want, mover.moves)
	require.Equal(t, rename.CompletionMessage+"\n", out.String())

	require.NotNil(t, j.saved)
	require.Equal(t, rename.ModeTable, j.saved.Mode)
	require.Equal(t, 6, j.saved.Renamed())
	require.Equal(t, 2, j.saved.Failed())
	require.ErrorIs(t, j.saved.Outcomes[4].Err, errTestMove)
}

// TestRenameTable_AllFail still prints the message exactly once.
func TestRenameTable_AllFail(t *testing.T) {
	t.Parallel()

	fail := make(map[string]bool)
	for _, p := range rename.DefaultPairs() {
		fail[p.Source] = true
	}

	var out bytes.Buffer

	r := newTestRunner(t, &recordingMover{fail: fail}, &out)
	r.journal = &memoryJournal{saveErr: errTestMove}

	require.NoError(t, r.locked(context.Background(), r.renameTable))
	require.Equal(t, 1, strings.Count(out.String(), rename.CompletionMessage))
}

// TestRenameTable_Canceled stops between attempts and still completes.
func TestRenameTable_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer

	mover := new(recordingMover)
	r := newTestRunner(t, mover, &out)

	require.NoError(t, r.locked(ctx, r.renameTable))
	require.Empty(t, mover.moves)
	require.Equal(t, rename.CompletionMessage+"\n", out.String())
}

func mkdirs(t *testing.T, root string, dirs ...string) {
	t.Helper()

	for _, d := range dirs {
		require.NoError(t, os.MkdirAll(filepath.Join(root, d), 0o755))
	}
}

func writeSettings(t *testing.T, dir string, cfg *config.Config) string {
	t.Helper()

	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)

	path := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	return path
}

// TestRun_RealTree renames the existing sources on disk and leaves the rest alone.
func TestRun_RealTree(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	root := filepath.Join(dir, "arquivos")
	mkdirs(t, root, "Cidades de Atuação/2024", "TUSS", "Outros")
	require.NoError(t, os.WriteFile(filepath.Join(root, "TUSS", "tabela.csv"), []byte("CD;DS\n"), 0o600))

	settings := writeSettings(t, dir, &config.Config{
		Root:        root,
		JournalFile: filepath.Join(dir, "journal.json"),
		LockFile:    filepath.Join(dir, "run.lock"),
	})

	var out bytes.Buffer

	require.NoError(t, Run(context.Background(), &Options{ConfigPath: settings, Output: &out}))
	require.Equal(t, rename.CompletionMessage+"\n", out.String())

	names := dirNames(t, root)
	require.ElementsMatch(t, []string{"cidades_de_atuacao", "tuss", "Outros"}, names)

	data, err := os.ReadFile(filepath.Join(root, "tuss", "tabela.csv"))
	require.NoError(t, err)
	require.Equal(t, "CD;DS\n", string(data))

	report, err := journal.NewFileRepository(filepath.Join(dir, "journal.json")).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Outcomes, 8)
	require.Equal(t, 2, report.Renamed())
}

// TestRun_MissingRoot completes without a visible error.
func TestRun_MissingRoot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	settings := writeSettings(t, dir, &config.Config{
		Root:        filepath.Join(dir, "nowhere"),
		JournalFile: config.Disabled,
		LockFile:    config.Disabled,
	})

	var out bytes.Buffer

	require.NoError(t, Run(context.Background(), &Options{ConfigPath: settings, Output: &out}))
	require.Equal(t, rename.CompletionMessage+"\n", out.String())
}

// TestRun_UnwritableLock renames without the lock when the lock file cannot be created.
func TestRun_UnwritableLock(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	root := filepath.Join(dir, "arquivos")
	mkdirs(t, root, "SIP")

	settings := writeSettings(t, dir, &config.Config{
		Root:        root,
		JournalFile: config.Disabled,
		LockFile:    filepath.Join(dir, "no", "such", "dir", "run.lock"),
	})

	var out bytes.Buffer

	require.NoError(t, Run(context.Background(), &Options{ConfigPath: settings, Output: &out}))
	require.Equal(t, rename.CompletionMessage+"\n", out.String())
	require.Equal(t, []string{"sip"}, dirNames(t, root))
	require.NoFileExists(t, filepath.Join(dir, "no", "such", "dir", "run.lock"))
}

// TestRun_BadSettings is a setup failure and prints nothing.
func TestRun_BadSettings(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	err := Run(context.Background(), &Options{ConfigPath: filepath.Join(t.TempDir(), "absent.yaml"), Output: &out})
	require.ErrorIs(t, err, fs.ErrNotExist)
	require.Empty(t, out.String())
}

func dirNames(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}

	return names
}
