// Package upload sends the exported media files to object storage and
// records every success in the progress ledger.
package upload

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/roammigrate/internal/common"
	"github.com/dmitrijs2005/roammigrate/internal/ledger"
	"github.com/dmitrijs2005/roammigrate/internal/logging"
	"github.com/dmitrijs2005/roammigrate/internal/media"
	"github.com/dmitrijs2005/roammigrate/internal/objectstore"
	"github.com/dmitrijs2005/roammigrate/internal/retryx"
	"github.com/dmitrijs2005/roammigrate/internal/timex"
	"github.com/spf13/afero"
)

// DefaultBatchSize is the number of files between ledger checkpoints.
const DefaultBatchSize = 50

// Options configure a Coordinator.
type Options struct {
	Naming    media.NamingPolicy
	BatchSize int
	// PublicURL is the base the uploaded objects are served from. It is
	// used when the store does not report a URL.
	PublicURL string
	Retry     retryx.Policy
}

// Stats summarizes one UploadAll call.
type Stats struct {
	Total    int
	Uploaded int
	Skipped  int
	Failed   int
}

// Coordinator uploads files one at a time, skipping those the ledger
// already lists, and checkpoints the ledger every BatchSize files.
type Coordinator struct {
	fs      afero.Fs
	store   objectstore.Store
	ledgers ledger.Store
	opts    Options
	logger  logging.Logger
	now     func() time.Time
}

func NewCoordinator(fs afero.Fs, store objectstore.Store, ledgers ledger.Store, opts Options, logger logging.Logger) *Coordinator {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Coordinator{
		fs:      fs,
		store:   store,
		ledgers: ledgers,
		opts:    opts,
		logger:  logger,
		now:     time.Now,
	}
}

// UploadAll processes files in order and updates l in place.
//
// A file that still fails after the retry policy is counted as failed and
// the run goes on. The ledger is saved when the 1-based file index is a
// multiple of BatchSize and once more at the end. When ctx is cancelled
// the loop stops before the next file, the ledger is saved and the error
// wraps common.ErrInterrupted. A failing save wraps common.ErrPersistence.
func (c *Coordinator) UploadAll(ctx context.Context, files []media.LocalFile, l *ledger.Ledger) (Stats, error) {
	stats := Stats{Total: len(files)}
	if len(files) == 0 {
		c.logger.Warn(ctx, "no files to process")
		return stats, nil
	}
	c.logger.Info(ctx, "starting upload", "files", len(files), "batch_size", c.opts.BatchSize)

	start := c.now()
	for i, f := range files {
		idx := i + 1

		if ctx.Err() != nil {
			return stats, c.interrupt(ctx, l, idx-1)
		}

		if l.IsUploaded(f.Name) {
			stats.Skipped++
			c.logger.Debug(ctx, "already uploaded", "index", idx, "file", f.Name)
		} else {
			err := c.uploadOne(ctx, idx, f, l)
			switch {
			case err == nil:
				stats.Uploaded++
			case ctx.Err() != nil:
				c.logger.Warn(ctx, "upload interrupted", "index", idx, "file", f.Name)
				return stats, c.interrupt(ctx, l, idx-1)
			default:
				stats.Failed++
				c.logger.Error(ctx, "upload failed", "index", idx, "file", f.Name, "error", err)
			}
		}

		if idx%c.opts.BatchSize == 0 {
			if err := c.save(ctx, l); err != nil {
				return stats, err
			}
			c.logger.Info(ctx, "progress saved", "done", idx, "total", len(files), "eta", eta(c.now().Sub(start), idx, len(files)))
		}
	}

	if err := c.save(ctx, l); err != nil {
		return stats, err
	}
	c.logger.Info(ctx, "upload complete",
		"uploaded", stats.Uploaded, "skipped", stats.Skipped, "failed", stats.Failed,
		"elapsed", c.now().Sub(start).Round(time.Second))
	return stats, nil
}

func (c *Coordinator) uploadOne(ctx context.Context, idx int, f media.LocalFile, l *ledger.Ledger) error {
	target := c.opts.Naming.TargetName(f.Name)
	log := c.logger.With("index", idx, "file", f.Name, "target", target)
	if target != f.Name {
		log.Debug(ctx, "renamed for upload")
	}
	if owner, ok := l.OwnerOf(target); ok && owner != f.Name {
		log.Warn(ctx, "object key already used by another file, overwriting", "other", owner)
	}

	body, err := afero.ReadFile(c.fs, f.Path)
	if err != nil {
		return fmt.Errorf("read %s: %w", f.Path, err)
	}
	contentType := media.ContentType(f.Ext)

	var url string
	err = retryx.Do(ctx, c.opts.Retry, func(ctx context.Context) error {
		u, err := c.store.Put(ctx, target, body, contentType)
		if err != nil {
			return err
		}
		url = u
		return nil
	}, func(attempt int, err error) {
		log.Warn(ctx, "upload attempt failed", "attempt", attempt, "error", err)
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %w", common.ErrUploadFailed, f.Name, err)
	}

	if url == "" {
		url = objectstore.PublicURL(c.opts.PublicURL, target)
	}
	l.Record(f.Stem, &ledger.UploadRecord{
		OriginalName: f.Name,
		TargetName:   target,
		PublicURL:    url,
		UploadedAt:   timex.Timestamp{Time: c.now()},
	})
	log.Info(ctx, "uploaded", "url", url)
	return nil
}

func (c *Coordinator) interrupt(ctx context.Context, l *ledger.Ledger, done int) error {
	if err := c.save(ctx, l); err != nil {
		return errors.Join(common.ErrInterrupted, err)
	}
	c.logger.Warn(ctx, "interrupted, progress saved", "done", done)
	return fmt.Errorf("%w after %d files", common.ErrInterrupted, done)
}

// save runs even when ctx is already cancelled.
func (c *Coordinator) save(ctx context.Context, l *ledger.Ledger) error {
	if err := c.ledgers.Save(context.WithoutCancel(ctx), l); err != nil {
		return fmt.Errorf("%w: save ledger: %w", common.ErrPersistence, err)
	}
	return nil
}

func eta(elapsed time.Duration, done, total int) time.Duration {
	if done <= 0 || elapsed <= 0 {
		return 0
	}
	perFile := elapsed / time.Duration(done)
	return (perFile * time.Duration(total-done)).Round(time.Second)
}
