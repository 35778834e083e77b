package filex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestEnsureParentDir_CreatesDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()

	require.NoError(t, EnsureParentDir(fs, "a/b/progress.json"))

	ok, err := afero.DirExists(fs, "a/b")
	require.NoError(t, err)
	require.True(t, ok, "should create a directory")
}

func TestEnsureParentDir_CurrentDir(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	require.NoError(t, EnsureParentDir(fs, "progress.json"))
}

func TestWriteAtomic_ReplacesContent(t *testing.T) {
	fs := afero.NewMemMapFs()

	require.NoError(t, WriteAtomic(fs, "out/doc.json", []byte("old"), 0o644))
	require.NoError(t, WriteAtomic(fs, "out/doc.json", []byte("new"), 0o644))

	got, err := afero.ReadFile(fs, "out/doc.json")
	require.NoError(t, err)
	require.Equal(t, "new", string(got))

	exists, err := afero.Exists(fs, "out/doc.json.tmp")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestWriteAtomic_OsFs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "doc.json")

	require.NoError(t, WriteAtomic(afero.NewOsFs(), path, []byte("{}"), 0o600))

	fi, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
}

func TestWriteAtomic_ReadOnly(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	require.Error(t, WriteAtomic(fs, "doc.json", []byte("{}"), 0o644))
}
