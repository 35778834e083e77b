package migrator

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/roammigrate/internal/config"
	"github.com/dmitrijs2005/roammigrate/internal/ledger"
	"github.com/dmitrijs2005/roammigrate/internal/objectstore"
	"github.com/spf13/afero"
)

// pingTimeout bounds the connectivity check.
const pingTimeout = 10 * time.Second

// newObjectStore builds the object store selected by cfg.
func newObjectStore(ctx context.Context, cfg *config.Config) (objectstore.Store, error) {
	if cfg.DryRun {
		return objectstore.NewMemoryStore(cfg.PublicURL), nil
	}

	switch cfg.Backend {
	case config.BackendS3:
		return objectstore.NewS3Store(ctx, objectstore.S3Options{
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Region:          cfg.S3Region,
			BaseEndpoint:    cfg.S3BaseEndpoint,
			Bucket:          cfg.Bucket,
			PublicBase:      cfg.PublicURL,
		})
	case config.BackendR2API:
		client := &http.Client{Timeout: cfg.UploadTimeout}
		return objectstore.NewR2APIStore(client, "", cfg.APIToken, cfg.AccountID, cfg.Bucket, cfg.PublicURL), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// openLedger opens the progress ledger selected by cfg. The returned close
// function is never nil.
func openLedger(ctx context.Context, cfg *config.Config, fs afero.Fs) (ledger.Store, func() error, error) {
	noop := func() error { return nil }

	var (
		store ledger.Store
		closeFn = noop
	)
	switch cfg.LedgerBackend {
	case config.LedgerSQLite:
		s, err := ledger.OpenSQLiteStore(ctx, cfg.ProgressFile)
		if err != nil {
			return nil, noop, err
		}
		store, closeFn = s, s.Close
	case config.LedgerJSON, "":
		store = ledger.NewJSONStore(fs, cfg.ProgressFile)
	default:
		return nil, noop, fmt.Errorf("unknown ledger backend %q", cfg.LedgerBackend)
	}

	if cfg.DryRun {
		store = ledger.ReadOnly(store)
	}
	return store, closeFn, nil
}
