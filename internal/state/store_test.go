package state

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"CryptoNewsRelay/internal/domain"
)

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	store := NewFileStore(filepath.Join(t.TempDir(), "missing.json"), nil)

	history, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(history.Items) != 0 {
		t.Fatalf("expected empty history, got %d items", len(history.Items))
	}
}

func TestLoadCorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	store := NewFileStore(path, nil)
	history, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("corrupt state must not be fatal, got: %v", err)
	}
	if len(history.Items) != 0 {
		t.Fatalf("expected empty history, got %d items", len(history.Items))
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.json")
	store := NewFileStore(path, nil)
	store.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	saved := domain.RunHistory{
		Items: []domain.NewsItem{
			{
				Title:       "Bitcoin rises",
				SourceURL:   "https://a/1",
				PublishedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
				Publish: map[string]domain.PublishOutcome{
					"wordpress": domain.Posted(),
				},
			},
		},
	}

	if err := store.Save(context.Background(), saved); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded.Timestamp != "2026-03-01 12:00:00" {
		t.Fatalf("unexpected timestamp: %q", loaded.Timestamp)
	}
	if len(loaded.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(loaded.Items))
	}
	if loaded.Items[0].Title != "Bitcoin rises" {
		t.Fatalf("unexpected title: %q", loaded.Items[0].Title)
	}
	if loaded.Items[0].Publish["wordpress"].Status != domain.StatusPosted {
		t.Fatalf("publish outcome lost: %+v", loaded.Items[0].Publish)
	}
}

func TestSaveEmptyHistoryPreservesFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.json")
	store := NewFileStore(path, nil)

	if err := store.Save(context.Background(), domain.RunHistory{
		Items: []domain.NewsItem{{Title: "keep me", SourceURL: "https://a/1"}},
	}); err != nil {
		t.Fatalf("initial save: %v", err)
	}

	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read state: %v", err)
	}

	if err := store.Save(context.Background(), domain.RunHistory{}); err != nil {
		t.Fatalf("empty save must be a no-op, got: %v", err)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read state: %v", err)
	}
	if string(before) != string(after) {
		t.Fatalf("empty save modified the state file")
	}
}
