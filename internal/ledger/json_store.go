package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/roammigrate/internal/filex"
	"github.com/spf13/afero"
)

// JSONStore keeps the ledger in a JSON file. Save writes a sibling
// temporary file and renames it over the target, so a reader sees either
// the previous or the new ledger.
type JSONStore struct {
	fs   afero.Fs
	path string
}

func NewJSONStore(fs afero.Fs, path string) *JSONStore {
	return &JSONStore{fs: fs, path: path}
}

func (s *JSONStore) Load(ctx context.Context) (*Ledger, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return New(), nil
		}
		return nil, fmt.Errorf("read ledger %s: %w", s.path, err)
	}

	l := &Ledger{}
	if err := json.Unmarshal(data, l); err != nil {
		return nil, fmt.Errorf("decode ledger %s: %w", s.path, err)
	}
	return l.ensure().relink(), nil
}

func (s *JSONStore) Save(ctx context.Context, l *Ledger) error {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	if err := filex.WriteAtomic(s.fs, s.path, data, 0o644); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	return nil
}

var _ Store = (*JSONStore)(nil)
