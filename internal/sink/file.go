package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/alpentrace/harvester/internal/listing"
	"github.com/alpentrace/harvester/internal/metrics"
)

// FileSink writes each collection to <dir>/<collection>.json as a
// single JSON array in schema field order.
type FileSink struct {
	dir    string
	logger *zap.Logger
}

// NewFileSink constructs a FileSink rooted at dir, creating it if
// needed.
func NewFileSink(dir string, logger *zap.Logger) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create sink directory %s: %w", dir, err)
	}
	return &FileSink{dir: dir, logger: logger}, nil
}

func (s *FileSink) path(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}

// Persist writes records to the collection file. In append mode the
// existing file's records are kept in front of the new ones; a missing,
// empty or unreadable file is treated as an empty collection so one
// corrupt artifact never blocks a run.
func (s *FileSink) Persist(_ context.Context, collection string, records []listing.Record, mode Mode) error {
	existing := []json.RawMessage{}
	if mode == ModeAppend {
		existing = s.load(collection)
	}

	merged := make([]json.RawMessage, 0, len(existing)+len(records))
	merged = append(merged, existing...)
	for _, rec := range records {
		var buf bytes.Buffer
		recEnc := json.NewEncoder(&buf)
		recEnc.SetEscapeHTML(false)
		if err := recEnc.Encode(rec); err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		merged = append(merged, bytes.TrimRight(buf.Bytes(), "\n"))
	}

	f, err := os.Create(s.path(collection))
	if err != nil {
		return fmt.Errorf("open %s: %w", s.path(collection), err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(merged); err != nil {
		return fmt.Errorf("write %s: %w", s.path(collection), err)
	}

	metrics.RecordsPersisted("file", len(records))
	s.logger.Info("collection written",
		zap.String("path", s.path(collection)),
		zap.Int("new", len(records)),
		zap.Int("total", len(merged)),
	)
	return nil
}

func (s *FileSink) load(collection string) []json.RawMessage {
	data, err := os.ReadFile(s.path(collection))
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("existing collection unreadable, starting empty",
				zap.String("path", s.path(collection)), zap.Error(err))
		}
		return nil
	}
	var existing []json.RawMessage
	if err := json.Unmarshal(data, &existing); err != nil {
		s.logger.Warn("existing collection is not a JSON array, starting empty",
			zap.String("path", s.path(collection)), zap.Error(err))
		return nil
	}
	return existing
}
