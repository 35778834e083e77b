// Package ledger persists upload progress so an interrupted migration can
// resume without uploading a file twice.
package ledger

import (
	"context"
	"maps"
	"slices"
	"strings"

	"github.com/dmitrijs2005/roammigrate/internal/common"
	"github.com/dmitrijs2005/roammigrate/internal/timex"
)

// UploadRecord describes one uploaded file.
type UploadRecord struct {
	OriginalName string          `json:"original_name"`
	TargetName   string          `json:"target_name"`
	PublicURL    string          `json:"public_url"`
	UploadedAt   timex.Timestamp `json:"uploaded_at"`
}

// Ledger is the persisted progress of a migration.
//
// UploadedFiles maps original file names to object keys. Mapping maps
// legacy identifiers to upload records; one file is reachable under several
// identifiers (see IdentifierKeys) and those keys share one record.
type Ledger struct {
	UploadedFiles map[string]string        `json:"uploaded_files"`
	Mapping       map[string]*UploadRecord `json:"mapping"`
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{
		UploadedFiles: make(map[string]string),
		Mapping:       make(map[string]*UploadRecord),
	}
}

// ensure initializes maps left nil by decoding.
func (l *Ledger) ensure() *Ledger {
	if l.UploadedFiles == nil {
		l.UploadedFiles = make(map[string]string)
	}
	if l.Mapping == nil {
		l.Mapping = make(map[string]*UploadRecord)
	}
	return l
}

// relink makes identifiers of the same file share one record again after
// decoding gave each key its own copy.
func (l *Ledger) relink() *Ledger {
	byOriginal := make(map[string]*UploadRecord, len(l.Mapping))
	for _, id := range slices.Sorted(maps.Keys(l.Mapping)) {
		rec := l.Mapping[id]
		if rec == nil || rec.OriginalName == "" {
			continue
		}
		if existing, ok := byOriginal[rec.OriginalName]; ok {
			l.Mapping[id] = existing
			continue
		}
		byOriginal[rec.OriginalName] = rec
	}
	return l
}

// OwnerOf returns the original name already uploaded under target.
func (l *Ledger) OwnerOf(target string) (string, bool) {
	for original, t := range l.UploadedFiles {
		if t == target {
			return original, true
		}
	}
	return "", false
}

// IsUploaded reports whether the file was uploaded by this or an earlier run.
func (l *Ledger) IsUploaded(originalName string) bool {
	_, ok := l.UploadedFiles[originalName]
	return ok
}

// Target returns the object key a file was uploaded under.
func (l *Ledger) Target(originalName string) (string, bool) {
	t, ok := l.UploadedFiles[originalName]
	return t, ok
}

// Lookup returns the record for a legacy identifier.
func (l *Ledger) Lookup(id string) (*UploadRecord, bool) {
	r, ok := l.Mapping[id]
	return r, ok
}

// Record marks rec as uploaded and stores it under every identifier key
// derived from stem. All keys point at the same record.
func (l *Ledger) Record(stem string, rec *UploadRecord) {
	for _, key := range IdentifierKeys(stem) {
		l.Mapping[key] = rec
	}
	l.UploadedFiles[rec.OriginalName] = rec.TargetName
}

// IdentifierKeys returns the identifiers a file stem is known by: the stem
// without a trailing "-image" and the full stem (one key when equal).
func IdentifierKeys(stem string) []string {
	base := strings.TrimSuffix(stem, common.ImageSuffix)
	if base == stem {
		return []string{stem}
	}
	return []string{base, stem}
}

// Store loads and saves a ledger.
type Store interface {
	// Load returns the saved ledger, or an empty one when nothing was saved yet.
	Load(ctx context.Context) (*Ledger, error)

	// Save replaces the saved ledger atomically.
	Save(ctx context.Context, l *Ledger) error
}

// ReadOnly wraps s so that Save does nothing. Dry runs use it to read the
// real progress without ever writing it.
func ReadOnly(s Store) Store {
	return readOnlyStore{Store: s}
}

type readOnlyStore struct {
	Store
}

func (readOnlyStore) Save(ctx context.Context, l *Ledger) error {
	return nil
}
