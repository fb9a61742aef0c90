package deps

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/ans-renamer/internal/manifest"
)

var (
	requirementsFile = filepath.Join("..", "..", "manifest", "testdata", "requirements.txt")
	freezeFile       = filepath.Join("..", "..", "manifest", "testdata", "freeze.txt")
	indexFile        = filepath.Join("..", "..", "manifest", "testdata", "index.yaml")
)

// TestCheck_ParseOnly lists requirements when nothing is resolved.
func TestCheck_ParseOnly(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	require.NoError(t, Check(context.Background(), &Options{ManifestPath: requirementsFile, Output: &out}))
	require.Contains(t, out.String(), "anthropic")
	require.Contains(t, out.String(), "==0.18.1")
	require.Contains(t, out.String(), ">=2.0.0")
}

// TestCheck_Freeze accepts a satisfying pip freeze list.
func TestCheck_Freeze(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	err := Check(context.Background(), &Options{ManifestPath: requirementsFile, ResolvedPath: freezeFile, Output: &out})
	require.NoError(t, err)
	require.Contains(t, out.String(), "All 12 requirements satisfied.")
}

// TestCheck_Index selects versions from an index.
func TestCheck_Index(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	err := Check(context.Background(), &Options{ManifestPath: requirementsFile, IndexPath: indexFile, Output: &out})
	require.NoError(t, err)
	require.Contains(t, out.String(), "2024.1")
}

// TestCheck_Violations reports unsatisfied requirements as an error.
func TestCheck_Violations(t *testing.T) {
	t.Parallel()

	freeze := filepath.Join(t.TempDir(), "freeze.txt")
	require.NoError(t, os.WriteFile(freeze, []byte("pandas==1.5.3\nanthropic==0.19.0\n"), 0o600))

	var out bytes.Buffer

	err := Check(context.Background(), &Options{ManifestPath: requirementsFile, ResolvedPath: freeze, Output: &out})
	require.ErrorIs(t, err, ErrViolations)
	require.Contains(t, out.String(), "does not satisfy ==0.18.1")
	require.Contains(t, out.String(), "not resolved")
}

// TestCheck_Errors covers bad inputs.
func TestCheck_Errors(t *testing.T) {
	t.Parallel()

	err := Check(context.Background(), &Options{ManifestPath: requirementsFile, ResolvedPath: freezeFile, IndexPath: indexFile})
	require.ErrorIs(t, err, errBothSources)

	bad := filepath.Join(t.TempDir(), "requirements.txt")
	require.NoError(t, os.WriteFile(bad, []byte("pandas<3\n"), 0o600))

	err = Check(context.Background(), &Options{ManifestPath: bad, Output: new(bytes.Buffer)})
	require.ErrorIs(t, err, manifest.ErrUnsupportedOperator)
}

// TestCheck_NilOptions validates requirements.txt in the working directory.
func TestCheck_NilOptions(t *testing.T) {
	data, err := os.ReadFile(requirementsFile)
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultManifestFilename), data, 0o600))
	testChdir(t, dir)

	require.NoError(t, Check(context.Background(), nil))
}

// testChdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent to testing.T.Chdir on Go 1.24+).
func testChdir(t *testing.T, dir string) {
	t.Helper()

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}

	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir %s: %v", dir, err)
	}

	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatalf("restore working directory %s: %v", wd, err)
		}
	})
}
