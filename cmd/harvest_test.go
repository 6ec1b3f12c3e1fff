package cmd

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/alpentrace/harvester/internal/config"
	"github.com/alpentrace/harvester/internal/listing"
)

func completeRecord() listing.Record {
	return listing.Record{
		listing.FieldDate:      "2026-08-23",
		listing.FieldPrice:     float64(250000),
		listing.FieldReference: "REF-1",
		listing.FieldSourceID:  "acmimmobilier_1",
		listing.FieldTitle:     "Studio Morzine",
		listing.FieldURL:       "https://www.acm-immobilier.fr/fr/bien/1",
	}
}

func TestPersistRunWritesFileSink(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Config{Sink: config.SinkConfig{Kind: "file", Path: dir, Append: true}}

	persistRun(context.Background(), cfg, "acmimmobilier", []listing.Record{completeRecord()}, zaptest.NewLogger(t))

	data, err := os.ReadFile(filepath.Join(dir, "acmimmobilier.json"))
	require.NoError(t, err)
	var out []map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	require.Len(t, out, 1)
}

func TestPersistRunSurvivesUnreachableStore(t *testing.T) {
	cfg := config.Config{
		Sink:  config.SinkConfig{Kind: "store"},
		Store: config.StoreConfig{DSN: "not a postgres dsn"},
	}

	// Sink construction fails; the run must still finish cleanly.
	persistRun(context.Background(), cfg, "acmimmobilier", []listing.Record{completeRecord()}, zaptest.NewLogger(t))
}

func TestPersistRunSurvivesUnknownSinkKind(t *testing.T) {
	cfg := config.Config{Sink: config.SinkConfig{Kind: "tape"}}
	persistRun(context.Background(), cfg, "acmimmobilier", nil, zaptest.NewLogger(t))
}
