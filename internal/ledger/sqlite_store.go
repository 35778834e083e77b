package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/roammigrate/internal/dbx"
	"github.com/dmitrijs2005/roammigrate/internal/ledger/migrations"
	"github.com/dmitrijs2005/roammigrate/internal/timex"
)

// SQLiteStore keeps the ledger in two SQLite tables. Save replaces both in
// one transaction.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps an already migrated database.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// OpenSQLiteStore opens and migrates the database at dsn.
func OpenSQLiteStore(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := dbx.OpenSQLite(ctx, dsn, migrations.Migrations)
	if err != nil {
		return nil, err
	}
	return NewSQLiteStore(db), nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Load(ctx context.Context) (*Ledger, error) {
	l := New()

	if err := loadUploadedFiles(ctx, s.db, l); err != nil {
		return nil, err
	}
	if err := loadMapping(ctx, s.db, l); err != nil {
		return nil, err
	}
	return l, nil
}

func loadUploadedFiles(ctx context.Context, db dbx.DBTX, l *Ledger) error {
	rows, err := db.QueryContext(ctx, `SELECT original_name, target_name FROM uploaded_files`)
	if err != nil {
		return fmt.Errorf("failed to list uploaded files: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var original, target string
		if err := rows.Scan(&original, &target); err != nil {
			return fmt.Errorf("failed to scan uploaded file row: %w", err)
		}
		l.UploadedFiles[original] = target
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate uploaded file rows: %w", err)
	}
	return nil
}

func loadMapping(ctx context.Context, db dbx.DBTX, l *Ledger) error {
	rows, err := db.QueryContext(ctx, `
		SELECT identifier, original_name, target_name, public_url, uploaded_at
		FROM mapping ORDER BY identifier`)
	if err != nil {
		return fmt.Errorf("failed to list mapping: %w", err)
	}
	defer rows.Close()

	// identifiers of one file share a record
	byOriginal := make(map[string]*UploadRecord)
	for rows.Next() {
		var id, uploadedAt string
		var rec UploadRecord
		if err := rows.Scan(&id, &rec.OriginalName, &rec.TargetName, &rec.PublicURL, &uploadedAt); err != nil {
			return fmt.Errorf("failed to scan mapping row: %w", err)
		}
		if existing, ok := byOriginal[rec.OriginalName]; ok {
			l.Mapping[id] = existing
			continue
		}
		if uploadedAt != "" {
			ts, err := time.Parse(time.RFC3339Nano, uploadedAt)
			if err != nil {
				return fmt.Errorf("mapping[%s]: bad uploaded_at %q: %w", id, uploadedAt, err)
			}
			rec.UploadedAt = timex.Timestamp{Time: ts}
		}
		byOriginal[rec.OriginalName] = &rec
		l.Mapping[id] = &rec
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate mapping rows: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Save(ctx context.Context, l *Ledger) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM uploaded_files`); err != nil {
			return fmt.Errorf("failed to clear uploaded files: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM mapping`); err != nil {
			return fmt.Errorf("failed to clear mapping: %w", err)
		}

		for original, target := range l.UploadedFiles {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO uploaded_files (original_name, target_name) VALUES (?, ?)`,
				original, target); err != nil {
				return fmt.Errorf("failed to save uploaded file %s: %w", original, err)
			}
		}

		for id, rec := range l.Mapping {
			if rec == nil {
				continue
			}
			uploadedAt := ""
			if !rec.UploadedAt.IsZero() {
				uploadedAt = rec.UploadedAt.Format(time.RFC3339Nano)
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO mapping (identifier, original_name, target_name, public_url, uploaded_at)
				VALUES (?, ?, ?, ?, ?)`,
				id, rec.OriginalName, rec.TargetName, rec.PublicURL, uploadedAt); err != nil {
				return fmt.Errorf("failed to save mapping[%s]: %w", id, err)
			}
		}
		return nil
	})
}

var _ Store = (*SQLiteStore)(nil)
