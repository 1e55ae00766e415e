package storage

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var sortIDs = cmpopts.SortSlices(func(a, b int64) bool { return a < b })

func newTestDB(t *testing.T) *SQLite {
	t.Helper()
	s, err := NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("new sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSubscriberSet(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	for _, id := range []int64{42, -100, 0} {
		if err := s.AddSubscriber(ctx, id); err != nil {
			t.Fatalf("add %d: %v", id, err)
		}
	}

	got, err := s.Subscribers(ctx)
	if err != nil {
		t.Fatalf("subscribers: %v", err)
	}
	if diff := cmp.Diff([]int64{-100, 0, 42}, got, sortIDs); diff != "" {
		t.Errorf("subscribers mismatch (-want +got):\n%s", diff)
	}

	ok, err := s.IsSubscriber(ctx, 42)
	if err != nil {
		t.Fatalf("is subscriber: %v", err)
	}
	if !ok {
		t.Error("expected 42 to be subscribed")
	}

	if err := s.RemoveSubscriber(ctx, 42); err != nil {
		t.Fatalf("remove: %v", err)
	}
	ok, err = s.IsSubscriber(ctx, 42)
	if err != nil {
		t.Fatalf("is subscriber: %v", err)
	}
	if ok {
		t.Error("expected 42 to be removed")
	}
}

func TestAddSubscriberIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	for range 3 {
		if err := s.AddSubscriber(ctx, 42); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	got, err := s.Subscribers(ctx)
	if err != nil {
		t.Fatalf("subscribers: %v", err)
	}
	if diff := cmp.Diff([]int64{42}, got); diff != "" {
		t.Errorf("subscribers mismatch (-want +got):\n%s", diff)
	}
}

func TestRemoveSubscriberAbsent(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	// removing an ID that was never added is a no-op
	if err := s.RemoveSubscriber(ctx, 7); err != nil {
		t.Fatalf("remove absent: %v", err)
	}
}

func TestReplaceSubscriber(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	tests := []struct {
		name    string
		seed    []int64
		oldID   int64
		newID   int64
		wantIDs []int64
	}{
		{
			name:    "plain migration",
			seed:    []int64{42, -100},
			oldID:   42,
			newID:   99,
			wantIDs: []int64{-100, 99},
		},
		{
			name:    "new id already present",
			seed:    []int64{42, 99},
			oldID:   42,
			newID:   99,
			wantIDs: []int64{99},
		},
		{
			name:    "old id absent",
			seed:    []int64{-100},
			oldID:   42,
			newID:   99,
			wantIDs: []int64{-100, 99},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.db.ExecContext(ctx, `DELETE FROM subscribers`); err != nil {
				t.Fatalf("reset: %v", err)
			}
			for _, id := range tt.seed {
				if err := s.AddSubscriber(ctx, id); err != nil {
					t.Fatalf("seed %d: %v", id, err)
				}
			}

			if err := s.ReplaceSubscriber(ctx, tt.oldID, tt.newID); err != nil {
				t.Fatalf("replace: %v", err)
			}

			got, err := s.Subscribers(ctx)
			if err != nil {
				t.Fatalf("subscribers: %v", err)
			}
			if diff := cmp.Diff(tt.wantIDs, got, sortIDs); diff != "" {
				t.Errorf("subscribers mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLastSeen(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	got, err := s.LastSeen(ctx)
	if err != nil {
		t.Fatalf("last seen: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty marker at cold start, got %q", got)
	}

	if err := s.SetLastSeen(ctx, "A1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.SetLastSeen(ctx, "B2"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	got, err = s.LastSeen(ctx)
	if err != nil {
		t.Fatalf("last seen: %v", err)
	}
	if got != "B2" {
		t.Errorf("marker = %q, want %q", got, "B2")
	}
}
