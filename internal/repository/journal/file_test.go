package journal

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/ans-renamer/internal/domain/rename"
)

// TestFileRepository_NotFound verifies Load returns ErrNotFound for missing file.
func TestFileRepository_NotFound(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "missing.json"))
	r, err := repo.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
	require.Nil(t, r)
}

// TestFileRepository_SaveLoad_Roundtrip ensures Save followed by Load returns an equivalent report.
func TestFileRepository_SaveLoad_Roundtrip(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "journal.json")
	repo := NewFileRepository(file)

	started := time.Now().UTC().Truncate(time.Second)
	want := &rename.Report{
		Mode:       rename.ModeTable,
		Root:       "arquivos",
		StartedAt:  started,
		FinishedAt: started.Add(time.Second),
		Actor: &rename.Actor{
			Hostname: "ans-etl-01",
			Username: "importador",
		},
		Outcomes: []rename.Outcome{
			{Pair: rename.Pair{Source: "SIP", Target: "sip"}, Renamed: true},
			{Pair: rename.Pair{Source: "TUSS", Target: "tuss"}, Err: errors.New("rename arquivos/TUSS arquivos/tuss: no such file or directory")},
		},
	}

	require.NoError(t, repo.Save(context.Background(), want))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, want.Mode, got.Mode)
	require.Equal(t, want.Root, got.Root)
	require.True(t, want.StartedAt.Equal(got.StartedAt))
	require.True(t, want.FinishedAt.Equal(got.FinishedAt))
	require.Equal(t, want.Actor, got.Actor)
	require.Len(t, got.Outcomes, 2)
	require.True(t, got.Outcomes[0].Renamed)
	require.NoError(t, got.Outcomes[0].Err)
	require.EqualError(t, got.Outcomes[1].Err, want.Outcomes[1].Err.Error())

	_, err = os.Stat(file)
	require.NoError(t, err)
}

// TestFileRepository_Corrupt reports decode errors.
func TestFileRepository_Corrupt(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "journal.json")
	require.NoError(t, os.WriteFile(file, []byte("{"), 0o600))

	_, err := NewFileRepository(file).Load(context.Background())
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
}
