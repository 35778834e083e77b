// Package media discovers the exported media files and maps opaque legacy
// identifiers back to them.
//
// The Roam exporter is inconsistent about names: a file referenced as
// "abC123.png" may sit on disk as "abC123.png", "abC123-image.png",
// "abC123-2.png" or "abC123-some-title.png". FileCache registers several
// lookup keys per file and Resolve tries them in a fixed order.
package media

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// LocalFile is a media file found in the export folder.
type LocalFile struct {
	Name string // base name, e.g. "abC123-image.png"
	Stem string // name without the last extension, e.g. "abC123-image"
	Ext  string // last extension with the dot, e.g. ".png"
	Path string // path on the filesystem
}

// NewLocalFile splits a file name the way the exporter names files.
func NewLocalFile(dir, name string) LocalFile {
	ext := filepath.Ext(name)
	return LocalFile{
		Name: name,
		Stem: strings.TrimSuffix(name, ext),
		Ext:  ext,
		Path: filepath.Join(dir, name),
	}
}

// ListDir returns the regular, non-hidden files of dir sorted by name.
// The sort pins the enumeration order that cache tie-breaks depend on.
func ListDir(fs afero.Fs, dir string) ([]LocalFile, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	files := make([]LocalFile, 0, len(entries))
	for _, e := range entries {
		if !e.Mode().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		files = append(files, NewLocalFile(dir, e.Name()))
	}
	return files, nil
}
