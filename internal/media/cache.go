package media

import (
	"regexp"
	"strings"

	"github.com/dmitrijs2005/roammigrate/internal/common"
)

// FileCache maps lookup keys to files. Keys keep their first-insertion
// order, so scans over the cache are deterministic.
type FileCache struct {
	files map[string]*LocalFile
	keys  []string
}

// BuildCache registers, for every file in order:
//   - its name and stem (a later file with the same key replaces the earlier one);
//   - the part of the stem before the first "-" (first file wins);
//   - the stem without a trailing "-image" (first file wins).
func BuildCache(files []LocalFile) *FileCache {
	c := &FileCache{files: make(map[string]*LocalFile, len(files)*2)}

	for i := range files {
		f := &files[i]
		if strings.HasPrefix(f.Name, ".") {
			continue
		}

		c.set(f.Name, f)
		c.set(f.Stem, f)

		if base, _, found := strings.Cut(f.Stem, "-"); found {
			c.setIfAbsent(base, f)

			if trimmed, ok := strings.CutSuffix(f.Stem, common.ImageSuffix); ok {
				c.setIfAbsent(trimmed, f)
			}
		}
	}
	return c
}

func (c *FileCache) set(key string, f *LocalFile) {
	if _, ok := c.files[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.files[key] = f
}

func (c *FileCache) setIfAbsent(key string, f *LocalFile) {
	if _, ok := c.files[key]; ok {
		return
	}
	c.keys = append(c.keys, key)
	c.files[key] = f
}

// Len is the number of lookup keys.
func (c *FileCache) Len() int { return len(c.keys) }

// Lookup returns the file registered under key.
func (c *FileCache) Lookup(key string) (*LocalFile, bool) {
	f, ok := c.files[key]
	return f, ok
}

// Resolve finds the local file for a legacy identifier and its expected
// extension (with the dot). First hit wins:
//
//  1. keys id, id-image, id+ext, id-image+ext whose file has extension ext;
//  2. a file named id-<digits>ext;
//  3. the first key starting with id whose file has extension ext.
//
// Extensions compare case-insensitively.
func (c *FileCache) Resolve(id, ext string) (*LocalFile, bool) {
	if c == nil || id == "" {
		return nil, false
	}

	candidates := []string{
		id,
		id + common.ImageSuffix,
		id + ext,
		id + common.ImageSuffix + ext,
	}
	for _, key := range candidates {
		if f, ok := c.files[key]; ok && strings.EqualFold(f.Ext, ext) {
			return f, true
		}
	}

	numbered := regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(id) + `-\d+` + regexp.QuoteMeta(ext) + `$`)
	for _, key := range c.keys {
		if f := c.files[key]; numbered.MatchString(f.Name) {
			return f, true
		}
	}

	for _, key := range c.keys {
		if f := c.files[key]; strings.HasPrefix(key, id) && strings.EqualFold(f.Ext, ext) {
			return f, true
		}
	}

	return nil, false
}
