package testsupport

import (
	"context"
	"testing"

	"artidicia/internal/config"
	"artidicia/internal/history"
)

// MustOpenHistory opens the history store for cfg and registers cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(context.Background(), cfg.HistoryPath())
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// SaveRecord stores a minimal record with the given mode and content.
func SaveRecord(t testing.TB, store *history.Store, mode, content string) *history.Record {
	t.Helper()

	rec, err := store.Save(context.Background(), history.Record{Mode: mode, Content: content, SourceLabel: "frame_001.png"})
	if err != nil {
		t.Fatalf("store.Save: %v", err)
	}
	return rec
}
