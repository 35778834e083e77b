package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLiteStore(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_LoadEmpty(t *testing.T) {
	s := openStore(t)

	l, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, l.UploadedFiles)
	assert.Empty(t, l.Mapping)
}

func TestSQLiteStore_SaveLoad(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	in := sampleLedger()

	require.NoError(t, s.Save(ctx, in))

	out, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(in.UploadedFiles, out.UploadedFiles))
	require.Len(t, out.Mapping, 3)

	for id, want := range in.Mapping {
		got, ok := out.Mapping[id]
		require.True(t, ok, id)
		assert.Equal(t, want.OriginalName, got.OriginalName)
		assert.Equal(t, want.PublicURL, got.PublicURL)
		assert.True(t, want.UploadedAt.Equal(got.UploadedAt.Time))
	}
	assert.Same(t, out.Mapping["abc"], out.Mapping["abc-image"])
}

func TestSQLiteStore_SaveReplacesPrevious(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleLedger()))

	next := New()
	next.Record("z", &UploadRecord{OriginalName: "z.gif", TargetName: "z.gif", PublicURL: "https://pub.example/z.gif"})
	require.NoError(t, s.Save(ctx, next))

	out, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"z.gif": "z.gif"}, out.UploadedFiles)
	require.Len(t, out.Mapping, 1)
	assert.True(t, out.Mapping["z"].UploadedAt.IsZero())
}

func TestSQLiteStore_SaveRollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM uploaded_files").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM mapping").WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	err = NewSQLiteStore(db).Save(context.Background(), sampleLedger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to clear mapping")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStore_LoadQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT original_name, target_name FROM uploaded_files").
		WillReturnError(errors.New("no such table"))

	_, err = NewSQLiteStore(db).Load(context.Background())
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
