package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/alpentrace/harvester/internal/listing"
	"github.com/alpentrace/harvester/internal/metrics"
)

// DefaultQuotaBytes is the document store size ceiling.
const DefaultQuotaBytes int64 = 512 << 20

// DocStore is the document store surface the bounded writer drives.
type DocStore interface {
	// StoredSize reports the store's total on-disk size in bytes.
	StoredSize(ctx context.Context) (int64, error)
	// OldestDate returns the smallest scrape date present, or ok=false
	// when the store is empty.
	OldestDate(ctx context.Context) (string, bool, error)
	// DeleteDate removes every record with the given scrape date and
	// reports how many were removed.
	DeleteDate(ctx context.Context, date string) (int64, error)
	// Clear drops every record of the collection.
	Clear(ctx context.Context, collection string) error
	// Insert stores the records under the collection.
	Insert(ctx context.Context, collection string, records []listing.Record) error
}

// BoundedWriter persists records to a DocStore while keeping the store
// under a byte quota. Before writing it evicts whole scrape dates,
// oldest first, until the store fits again.
type BoundedWriter struct {
	store  DocStore
	quota  int64
	logger *zap.Logger
}

// NewBoundedWriter constructs a BoundedWriter. A non-positive quota
// falls back to DefaultQuotaBytes.
func NewBoundedWriter(store DocStore, quota int64, logger *zap.Logger) *BoundedWriter {
	if quota <= 0 {
		quota = DefaultQuotaBytes
	}
	return &BoundedWriter{store: store, quota: quota, logger: logger}
}

// Persist evicts until the store plus the incoming batch fit the
// quota, applies the mode and inserts the run's records. Records
// already evicted are gone even if the insert later fails.
func (w *BoundedWriter) Persist(ctx context.Context, collection string, records []listing.Record, mode Mode) error {
	incoming, err := batchSize(records)
	if err != nil {
		return err
	}
	if err := w.evict(ctx, incoming); err != nil {
		return err
	}

	if mode == ModeReplace {
		if err := w.store.Clear(ctx, collection); err != nil {
			return fmt.Errorf("clear collection %s: %w", collection, err)
		}
	}

	if err := w.store.Insert(ctx, collection, records); err != nil {
		return fmt.Errorf("insert into %s: %w", collection, err)
	}
	metrics.RecordsPersisted("store", len(records))

	if size, err := w.store.StoredSize(ctx); err == nil {
		metrics.ObserveStoreBytes(size)
	}
	w.logger.Info("records stored",
		zap.String("collection", collection),
		zap.Int("records", len(records)),
	)
	return nil
}

// batchSize estimates the incoming batch's serialized weight.
func batchSize(records []listing.Record) (int64, error) {
	var total int64
	for _, rec := range records {
		doc, err := json.Marshal(rec)
		if err != nil {
			return 0, fmt.Errorf("marshal record: %w", err)
		}
		total += int64(len(doc))
	}
	return total, nil
}

// evict removes the oldest scrape date repeatedly until the store plus
// the incoming bytes fit the quota. An empty store or a date that
// deletes zero rows ends the loop so it always terminates.
func (w *BoundedWriter) evict(ctx context.Context, incoming int64) error {
	for {
		size, err := w.store.StoredSize(ctx)
		if err != nil {
			return fmt.Errorf("read store size: %w", err)
		}
		if size+incoming <= w.quota {
			return nil
		}

		date, ok, err := w.store.OldestDate(ctx)
		if err != nil {
			return fmt.Errorf("find oldest date: %w", err)
		}
		if !ok {
			w.logger.Warn("store over quota but empty, nothing to evict",
				zap.Int64("size", size), zap.Int64("quota", w.quota))
			return nil
		}

		deleted, err := w.store.DeleteDate(ctx, date)
		if err != nil {
			return fmt.Errorf("evict date %s: %w", date, err)
		}
		if deleted == 0 {
			w.logger.Warn("eviction made no progress, stopping", zap.String("date", date))
			return nil
		}
		metrics.Eviction()
		w.logger.Info("evicted oldest scrape date",
			zap.String("date", date),
			zap.Int64("records", deleted),
			zap.Int64("size", size),
		)
	}
}
