package notify

import (
	"context"
	"testing"

	"eilbot/internal/model"
	"eilbot/internal/storage"
)

func newTestStore(t *testing.T) *storage.SQLite {
	t.Helper()
	s, err := storage.NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("new sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestDedup(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	d := NewDedup(store)

	item := model.NewsItem{ID: "A1", Title: "T", URL: "http://x/y.json"}

	novel, err := d.IsNovel(ctx, item)
	if err != nil {
		t.Fatalf("is novel: %v", err)
	}
	if !novel {
		t.Error("expected item to be novel with no marker present")
	}

	if err := d.Commit(ctx, item); err != nil {
		t.Fatalf("commit: %v", err)
	}

	novel, err = d.IsNovel(ctx, item)
	if err != nil {
		t.Fatalf("is novel: %v", err)
	}
	if novel {
		t.Error("expected committed item to no longer be novel")
	}

	other := model.NewsItem{ID: "B2", Title: "T2", URL: "http://x/z.json"}
	novel, err = d.IsNovel(ctx, other)
	if err != nil {
		t.Fatalf("is novel: %v", err)
	}
	if !novel {
		t.Error("expected different ID to be novel")
	}
}

func TestDedupCommitOverwrites(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	d := NewDedup(store)

	first := model.NewsItem{ID: "A1"}
	second := model.NewsItem{ID: "B2"}

	if err := d.Commit(ctx, first); err != nil {
		t.Fatalf("commit first: %v", err)
	}
	if err := d.Commit(ctx, second); err != nil {
		t.Fatalf("commit second: %v", err)
	}

	// the marker is last-write-wins: the first item counts as novel again
	novel, err := d.IsNovel(ctx, first)
	if err != nil {
		t.Fatalf("is novel: %v", err)
	}
	if !novel {
		t.Error("expected superseded marker to make the first item novel again")
	}
}

func TestDedupStoreErrorPropagates(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	_ = store.Close()

	d := NewDedup(store)
	if _, err := d.IsNovel(ctx, model.NewsItem{ID: "A1"}); err == nil {
		t.Error("expected error from closed store, got nil")
	}
	if err := d.Commit(ctx, model.NewsItem{ID: "A1"}); err == nil {
		t.Error("expected error from closed store, got nil")
	}
}
