package graph

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/roammigrate/internal/filex"
	"github.com/spf13/afero"
)

// Load reads a document tree: a JSON array of pages.
func Load(fs afero.Fs, path string) ([]*Node, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read graph %s: %w", path, err)
	}

	var pages []*Node
	if err := json.Unmarshal(data, &pages); err != nil {
		return nil, fmt.Errorf("decode graph %s: %w", path, err)
	}
	return pages, nil
}

// Save writes pages as indented JSON with non-ASCII text and HTML
// characters kept literal. The file is replaced by renaming a temporary
// sibling.
func Save(fs afero.Fs, path string, pages []*Node) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if pages == nil {
		pages = []*Node{}
	}
	if err := enc.Encode(pages); err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}

	if err := filex.WriteAtomic(fs, path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("save graph: %w", err)
	}
	return nil
}

// Walk calls fn for every node below the pages, depth first and in order.
// Pages themselves are not visited.
func Walk(pages []*Node, fn func(page, block *Node)) {
	for _, page := range pages {
		if page == nil {
			continue
		}
		walkChildren(page, page.Children, fn)
	}
}

func walkChildren(page *Node, children []*Node, fn func(page, block *Node)) {
	for _, child := range children {
		if child == nil {
			continue
		}
		fn(page, child)
		walkChildren(page, child.Children, fn)
	}
}
