package migrator

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/roammigrate/internal/common"
	"github.com/dmitrijs2005/roammigrate/internal/config"
	"github.com/dmitrijs2005/roammigrate/internal/ledger"
	"github.com/dmitrijs2005/roammigrate/internal/objectstore"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	publicBase = "https://pub.example"
	document   = `[
  {"title": "Project", "children": [
    {"string": "![d](https://firebasestorage.googleapis.com/v0/b/x/o/imgs%2Fapp%2Fg%2Fabc123.png.enc?alt=media)"},
    {"string": "{{[[pdf]]: https://firebasestorage.x/o/imgs%2Fapp%2Fg%2Fdoc.pdf.enc}}"},
    {"string": "<https://firebasestorage.x/o/imgs%2Fapp%2Fg%2Fgone.zip.enc>"}
  ]}
]`
)

func setup(t *testing.T, names ...string) (afero.Fs, *config.Config) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("export/Files", 0o755))
	for _, name := range names {
		require.NoError(t, afero.WriteFile(fs, "export/Files/"+name, []byte(name), 0o644))
	}
	require.NoError(t, afero.WriteFile(fs, "export/backup.json", []byte(document), 0o644))

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.S3AccessKeyID = "key"
	cfg.S3SecretAccessKey = "secret"
	cfg.S3BaseEndpoint = "http://127.0.0.1:9000"
	cfg.Bucket = "media"
	cfg.PublicURL = publicBase
	cfg.FilesDir = "export/Files"
	cfg.RoamJSON = "export/backup.json"
	cfg.OutputJSON = "export/backup_migrated.json"
	cfg.ProgressFile = "export/migration_progress.json"
	cfg.RetryBaseDelay = 0
	return fs, cfg
}

func newTestApp(cfg *config.Config, fs afero.Fs, out *bytes.Buffer, store objectstore.Store) *App {
	app := NewApp(cfg, fs, out, nil)
	app.signals = false
	app.newStore = func(ctx context.Context, cfg *config.Config) (objectstore.Store, error) {
		return store, nil
	}
	return app
}

func TestRun_MigratesAndRewrites(t *testing.T) {
	fs, cfg := setup(t, "abc123-image.png", "doc.pdf")
	store := objectstore.NewMemoryStore(publicBase)
	var out bytes.Buffer

	code := newTestApp(cfg, fs, &out, store).Run(context.Background())
	require.Equal(t, common.ExitOK, code)

	data, err := afero.ReadFile(fs, cfg.OutputJSON)
	require.NoError(t, err)
	assert.Contains(t, string(data), "![d](https://pub.example/abc123-image.png)")
	assert.Contains(t, string(data), "{{[[pdf]]: https://pub.example/doc.pdf}}")
	assert.Contains(t, string(data), "gone.zip.enc", "unresolved link is kept")

	l, err := ledger.NewJSONStore(fs, cfg.ProgressFile).Load(context.Background())
	require.NoError(t, err)
	assert.True(t, l.IsUploaded("abc123-image.png"))
	assert.True(t, l.IsUploaded("doc.pdf"))

	summary := out.String()
	assert.Contains(t, summary, "Successfully uploaded:        2")
	assert.Contains(t, summary, "Links updated:                2")
	assert.Contains(t, summary, "Unresolved links:             1")
}

func TestRun_SecondRunUploadsNothing(t *testing.T) {
	fs, cfg := setup(t, "abc123-image.png", "doc.pdf")
	store := objectstore.NewMemoryStore(publicBase)

	require.Equal(t, common.ExitOK, newTestApp(cfg, fs, &bytes.Buffer{}, store).Run(context.Background()))
	require.Equal(t, 2, store.Puts())

	var out bytes.Buffer
	require.Equal(t, common.ExitOK, newTestApp(cfg, fs, &out, store).Run(context.Background()))
	assert.Equal(t, 2, store.Puts())
	assert.Contains(t, out.String(), "Skipped (already uploaded):   2")
	assert.Contains(t, out.String(), "Links updated:                2")
}

func TestRun_InvalidConfig(t *testing.T) {
	fs, cfg := setup(t, "doc.pdf")
	cfg.Bucket = ""
	cfg.BatchSize = 0

	app := newTestApp(cfg, fs, &bytes.Buffer{}, nil)
	app.newStore = func(ctx context.Context, cfg *config.Config) (objectstore.Store, error) {
		t.Fatal("store must not be built for an invalid config")
		return nil, nil
	}

	assert.Equal(t, common.ExitFailure, app.Run(context.Background()))
}

type unreachableStore struct{}

func (unreachableStore) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	return "", errors.New("unreachable")
}

func (unreachableStore) Ping(ctx context.Context) error {
	return errors.New("authentication failed")
}

func TestRun_ConnectionFailure(t *testing.T) {
	fs, cfg := setup(t, "doc.pdf")

	code := newTestApp(cfg, fs, &bytes.Buffer{}, unreachableStore{}).Run(context.Background())
	assert.Equal(t, common.ExitFailure, code)

	exists, err := afero.Exists(fs, cfg.ProgressFile)
	require.NoError(t, err)
	assert.False(t, exists, "nothing is written before the bucket is reachable")
}

func TestRun_StoreFactoryError(t *testing.T) {
	fs, cfg := setup(t, "doc.pdf")
	app := newTestApp(cfg, fs, &bytes.Buffer{}, nil)
	app.newStore = func(ctx context.Context, cfg *config.Config) (objectstore.Store, error) {
		return nil, errors.New("bad endpoint")
	}

	assert.Equal(t, common.ExitFailure, app.Run(context.Background()))
}

func TestRun_Interrupted(t *testing.T) {
	fs, cfg := setup(t, "a.png", "b.png", "c.png")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := objectstore.NewMemoryStore(publicBase)
	store.FailFor = func(key string, attempt int) error {
		if key == "b.png" {
			cancel()
		}
		return nil
	}

	code := newTestApp(cfg, fs, &bytes.Buffer{}, store).Run(ctx)
	require.Equal(t, common.ExitInterrupted, code)

	l, err := ledger.NewJSONStore(fs, cfg.ProgressFile).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a.png": "a.png"}, l.UploadedFiles)

	exists, err := afero.Exists(fs, cfg.OutputJSON)
	require.NoError(t, err)
	assert.False(t, exists)
}

type panickingStore struct{}

func (panickingStore) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	panic("boom")
}

func (panickingStore) Ping(ctx context.Context) error { return nil }

func TestRun_PanicIsRecovered(t *testing.T) {
	fs, cfg := setup(t, "doc.pdf")

	code := newTestApp(cfg, fs, &bytes.Buffer{}, panickingStore{}).Run(context.Background())
	assert.Equal(t, common.ExitFailure, code)
}

func TestRun_DryRunKeepsProgressUntouched(t *testing.T) {
	fs, cfg := setup(t, "abc123-image.png", "doc.pdf")
	cfg.DryRun = true
	cfg.S3AccessKeyID = ""
	cfg.S3SecretAccessKey = ""

	app := NewApp(cfg, fs, &bytes.Buffer{}, nil)
	app.signals = false

	require.Equal(t, common.ExitOK, app.Run(context.Background()))

	exists, err := afero.Exists(fs, cfg.ProgressFile)
	require.NoError(t, err)
	assert.False(t, exists)

	data, err := afero.ReadFile(fs, cfg.OutputJSON)
	require.NoError(t, err)
	assert.Contains(t, string(data), "https://pub.example/doc.pdf")
}

func TestRun_SQLiteLedger(t *testing.T) {
	fs, cfg := setup(t, "abc123-image.png", "doc.pdf")
	cfg.LedgerBackend = config.LedgerSQLite
	cfg.ProgressFile = ":memory:"
	store := objectstore.NewMemoryStore(publicBase)

	require.Equal(t, common.ExitOK, newTestApp(cfg, fs, &bytes.Buffer{}, store).Run(context.Background()))

	data, err := afero.ReadFile(fs, cfg.OutputJSON)
	require.NoError(t, err)
	assert.Contains(t, string(data), "https://pub.example/abc123-image.png")
}

func TestRun_NoFilesLeavesDocument(t *testing.T) {
	fs, cfg := setup(t)
	var out bytes.Buffer

	code := newTestApp(cfg, fs, &out, objectstore.NewMemoryStore(publicBase)).Run(context.Background())
	require.Equal(t, common.ExitOK, code)

	exists, err := afero.Exists(fs, cfg.OutputJSON)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Contains(t, out.String(), "Total files found:            0")
	assert.NotContains(t, out.String(), "Links updated")
}

func TestOpenLedger(t *testing.T) {
	fs, cfg := setup(t)
	ctx := context.Background()

	s, closeFn, err := openLedger(ctx, cfg, fs)
	require.NoError(t, err)
	require.NoError(t, closeFn())
	assert.IsType(t, &ledger.JSONStore{}, s)

	cfg.LedgerBackend = "etcd"
	_, closeFn, err = openLedger(ctx, cfg, fs)
	require.Error(t, err)
	require.NotNil(t, closeFn)
}

func TestNewObjectStore(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.PublicURL = publicBase

	cfg.DryRun = true
	s, err := newObjectStore(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &objectstore.MemoryStore{}, s)

	cfg.DryRun = false
	cfg.Backend = config.BackendR2API
	s, err = newObjectStore(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &objectstore.R2APIStore{}, s)

	cfg.Backend = "ftp"
	_, err = newObjectStore(context.Background(), cfg)
	require.Error(t, err)
}
