package media

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLocalFile(t *testing.T) {
	f := NewLocalFile("/export", "abC123-image.png")

	assert.Equal(t, LocalFile{Name: "abC123-image.png", Stem: "abC123-image", Ext: ".png", Path: "/export/abC123-image.png"}, f)

	noExt := NewLocalFile("/export", "README")
	assert.Equal(t, "README", noExt.Stem)
	assert.Equal(t, "", noExt.Ext)

	double := NewLocalFile("/export", "archive.tar.gz")
	assert.Equal(t, "archive.tar", double.Stem)
	assert.Equal(t, ".gz", double.Ext)
}

func TestListDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/export/files/nested", 0o755))
	for _, name := range []string{"b.png", "a.pdf", ".DS_Store", "c d.jpg"} {
		require.NoError(t, afero.WriteFile(fs, "/export/files/"+name, []byte(name), 0o644))
	}

	files, err := ListDir(fs, "/export/files")
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"a.pdf", "b.png", "c d.jpg"}, names)
}

func TestListDir_Missing(t *testing.T) {
	_, err := ListDir(afero.NewMemMapFs(), "/nope")
	require.Error(t, err)
}
