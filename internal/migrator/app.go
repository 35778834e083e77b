// Package migrator runs a complete media migration: it checks the
// configuration and the bucket, uploads the media files, rewrites the
// document and prints a summary.
package migrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/roammigrate/internal/common"
	"github.com/dmitrijs2005/roammigrate/internal/config"
	"github.com/dmitrijs2005/roammigrate/internal/graph"
	"github.com/dmitrijs2005/roammigrate/internal/ledger"
	"github.com/dmitrijs2005/roammigrate/internal/logging"
	"github.com/dmitrijs2005/roammigrate/internal/media"
	"github.com/dmitrijs2005/roammigrate/internal/objectstore"
	"github.com/dmitrijs2005/roammigrate/internal/retryx"
	"github.com/dmitrijs2005/roammigrate/internal/rewrite"
	"github.com/dmitrijs2005/roammigrate/internal/upload"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// Report is what one run did.
type Report struct {
	Upload    upload.Stats
	Rewrite   rewrite.Result
	Rewritten bool
	Output    string
	Elapsed   time.Duration
}

type App struct {
	config *config.Config
	fs     afero.Fs
	out    io.Writer
	logger logging.Logger

	newStore   func(ctx context.Context, cfg *config.Config) (objectstore.Store, error)
	openLedger func(ctx context.Context, cfg *config.Config, fs afero.Fs) (ledger.Store, func() error, error)
	signals    bool
}

// NewApp builds an app over fs. The summary and secret prompts go to out.
func NewApp(cfg *config.Config, fs afero.Fs, out io.Writer, logger logging.Logger) *App {
	if logger == nil {
		logger = logging.Discard()
	}
	return &App{
		config:     cfg,
		fs:         fs,
		out:        out,
		logger:     logger,
		newStore:   newObjectStore,
		openLedger: openLedger,
		signals:    true,
	}
}

// initSignalHandler cancels the run on SIGINT or SIGTERM. The returned
// function stops listening.
func (app *App) initSignalHandler(cancelFunc context.CancelFunc) func() {
	if !app.signals {
		return func() {}
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		select {
		case <-sigs:
			cancelFunc()
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigs)
		close(done)
	}
}

// Run executes the migration and returns the process exit code:
// common.ExitOK, common.ExitFailure or common.ExitInterrupted.
func (app *App) Run(ctx context.Context) (code int) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	stop := app.initSignalHandler(cancelFunc)
	defer stop()

	log := app.logger.With("run_id", uuid.NewString())

	defer func() {
		if p := recover(); p != nil {
			log.Error(ctx, "unexpected failure", "panic", fmt.Sprint(p))
			code = common.ExitFailure
		}
	}()

	report, err := app.migrate(ctx, log)
	switch {
	case err == nil:
		app.printSummary(report)
		log.Info(ctx, "migration complete", "output", report.Output)
		return common.ExitOK
	case errors.Is(err, common.ErrInterrupted):
		app.printSummary(report)
		log.Warn(ctx, "migration interrupted, progress saved; run again to resume", "error", err)
		return common.ExitInterrupted
	default:
		log.Error(ctx, "migration failed", "error", err)
		return common.ExitFailure
	}
}

func (app *App) migrate(ctx context.Context, log logging.Logger) (Report, error) {
	var report Report
	start := time.Now()
	cfg := app.config

	if err := cfg.ResolveSecrets(app.out); err != nil {
		return report, fmt.Errorf("%w: %w", common.ErrConfigValidation, err)
	}
	if errs := cfg.Validate(app.fs); len(errs) > 0 {
		return report, fmt.Errorf("%w: %w", common.ErrConfigValidation, errors.Join(errs...))
	}
	if cfg.DryRun {
		log.Warn(ctx, "dry run: nothing is uploaded and progress is not saved")
	}

	store, err := app.newStore(ctx, cfg)
	if err != nil {
		return report, connectionError(err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	err = store.Ping(pingCtx)
	cancel()
	if err != nil {
		return report, connectionError(err)
	}
	log.Info(ctx, "storage reachable", "backend", cfg.Backend, "bucket", cfg.Bucket)

	ledgers, closeLedger, err := app.openLedger(ctx, cfg, app.fs)
	if err != nil {
		return report, fmt.Errorf("%w: open ledger: %w", common.ErrPersistence, err)
	}
	defer func() {
		if err := closeLedger(); err != nil {
			log.Warn(ctx, "close ledger", "error", err)
		}
	}()

	l, err := ledgers.Load(ctx)
	if err != nil {
		return report, fmt.Errorf("%w: load ledger: %w", common.ErrPersistence, err)
	}
	log.Info(ctx, "progress loaded", "uploaded_before", len(l.UploadedFiles), "path", cfg.ProgressFile)

	files, err := media.ListDir(app.fs, cfg.FilesDir)
	if err != nil {
		return report, err
	}
	cache := media.BuildCache(files)
	log.Info(ctx, "files indexed", "files", len(files), "keys", cache.Len())

	coordinator := upload.NewCoordinator(app.fs, store, ledgers, upload.Options{
		Naming: media.NamingPolicy{
			KeepOriginalNames: cfg.KeepOriginalNames,
			CleanFilenames:    cfg.CleanFilenames,
		},
		BatchSize: cfg.BatchSize,
		PublicURL: cfg.PublicURL,
		Retry: retryx.Policy{
			MaxAttempts:    cfg.MaxRetries,
			BaseDelay:      cfg.RetryBaseDelay,
			AttemptTimeout: cfg.UploadTimeout,
		},
	}, log)

	report.Upload, err = coordinator.UploadAll(ctx, files, l)
	report.Elapsed = time.Since(start)
	if err != nil {
		return report, err
	}
	if ctx.Err() != nil {
		return report, common.ErrInterrupted
	}

	if report.Upload.Uploaded == 0 && report.Upload.Skipped == 0 {
		log.Warn(ctx, "no files uploaded, document left unchanged")
		return report, nil
	}

	pages, err := graph.Load(app.fs, cfg.RoamJSON)
	if err != nil {
		return report, err
	}
	log.Info(ctx, "document loaded", "pages", len(pages))

	report.Rewrite = rewrite.New(cache, l, cfg.PublicURL, log).Rewrite(ctx, pages)

	if err := graph.Save(app.fs, cfg.OutputJSON, pages); err != nil {
		return report, fmt.Errorf("%w: %w", common.ErrPersistence, err)
	}
	report.Rewritten = true
	report.Output = cfg.OutputJSON
	report.Elapsed = time.Since(start)
	log.Info(ctx, "document saved",
		"links_updated", report.Rewrite.LinksUpdated,
		"pages_modified", report.Rewrite.PagesModified,
		"output", cfg.OutputJSON)

	return report, nil
}

func connectionError(err error) error {
	if errors.Is(err, common.ErrConnection) {
		return err
	}
	return fmt.Errorf("%w: %w", common.ErrConnection, err)
}
