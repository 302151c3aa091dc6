// Package indexer streams records from one store into another, turning a
// directory or zip bundle into a queryable SQL or Badger index.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dbsmedya/refdump/internal/logger"
	"github.com/dbsmedya/refdump/internal/store"
)

// DefaultBatchSize is used when the options leave the batch size unset.
const DefaultBatchSize = 100

// Options control one index run.
type Options struct {
	BatchSize    int
	Resume       bool    // skip records already present in the destination
	SleepSeconds float64 // pause between batches
}

// Stats summarizes one index run.
//
// RD-P4-F2-T4: Index run statistics
type Stats struct {
	RecordsCopied  int
	RecordsSkipped int
	RecordsFailed  int
	Batches        int
	Duration       time.Duration
}

// Indexer copies every record of a source store into a writable
// destination store, raw bytes preserved.
type Indexer struct {
	source store.RawStore
	dest   store.WriteStore
	opts   Options
	logger *logger.Logger
}

// New creates an indexer from source into dest.
func New(source store.RawStore, dest store.WriteStore, opts Options, log *logger.Logger) (*Indexer, error) {
	if source == nil {
		return nil, fmt.Errorf("source store is nil")
	}
	if dest == nil {
		return nil, fmt.Errorf("destination store is nil")
	}
	if log == nil {
		log = logger.NewDefault()
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	return &Indexer{
		source: source,
		dest:   dest,
		opts:   opts,
		logger: log,
	}, nil
}

// Run copies the full source record set in batches. A record that cannot
// be read from the source is logged and skipped; a destination write
// failure aborts the run, since it means the index is broken. On
// cancellation the stats gathered so far are returned with the context
// error.
//
// RD-P4-F2-T1: Batched store-to-store copy
func (ix *Indexer) Run(ctx context.Context) (*Stats, error) {
	startTime := time.Now()
	stats := &Stats{}

	paths, err := ix.source.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list source records: %w", err)
	}

	ix.logger.Infof("Indexing %d records in batches of %d", len(paths), ix.opts.BatchSize)

	for start := 0; start < len(paths); start += ix.opts.BatchSize {
		if err := ctx.Err(); err != nil {
			stats.Duration = time.Since(startTime)
			return stats, fmt.Errorf("index interrupted: %w", err)
		}

		end := start + ix.opts.BatchSize
		if end > len(paths) {
			end = len(paths)
		}

		if err := ix.copyBatch(ctx, paths[start:end], stats); err != nil {
			stats.Duration = time.Since(startTime)
			return stats, err
		}
		stats.Batches++

		ix.logger.Infof("Batch %d complete: %d copied, %d skipped, %d failed",
			stats.Batches, stats.RecordsCopied, stats.RecordsSkipped, stats.RecordsFailed)

		if start+ix.opts.BatchSize < len(paths) {
			if err := ix.sleepBetweenBatches(ctx); err != nil {
				stats.Duration = time.Since(startTime)
				return stats, fmt.Errorf("index interrupted: %w", err)
			}
		}
	}

	stats.Duration = time.Since(startTime)
	ix.logger.Infof("Index complete: %d copied, %d skipped, %d failed, %d batches, duration: %s",
		stats.RecordsCopied, stats.RecordsSkipped, stats.RecordsFailed, stats.Batches, stats.Duration)
	return stats, nil
}

func (ix *Indexer) copyBatch(ctx context.Context, paths []string, stats *Stats) error {
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("index interrupted: %w", err)
		}

		// RD-P4-F2-T2: Resume skips records already indexed
		if ix.opts.Resume {
			exists, err := ix.dest.Exists(ctx, path)
			if err != nil {
				return fmt.Errorf("check destination for %s: %w", path, err)
			}
			if exists {
				stats.RecordsSkipped++
				continue
			}
		}

		raw, err := ix.source.FetchRaw(ctx, path)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				// Listed but gone; the source changed under us.
				ix.logger.Warnf("Record %q vanished from source, skipping", path)
				stats.RecordsFailed++
				continue
			}
			ix.logger.Warnf("Failed to read %q from source: %v", path, err)
			stats.RecordsFailed++
			continue
		}

		if err := ix.dest.Put(ctx, path, raw); err != nil {
			return fmt.Errorf("store %s: %w", path, err)
		}
		stats.RecordsCopied++
	}
	return nil
}

// sleepBetweenBatches pauses between batches, honoring cancellation.
//
// RD-P4-F2-T3: Batch pacing
func (ix *Indexer) sleepBetweenBatches(ctx context.Context) error {
	if ix.opts.SleepSeconds <= 0 {
		return nil
	}
	sleepDuration := time.Duration(ix.opts.SleepSeconds * float64(time.Second))
	ix.logger.Debugf("Sleeping %.1fs before next batch", ix.opts.SleepSeconds)

	select {
	case <-time.After(sleepDuration):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
