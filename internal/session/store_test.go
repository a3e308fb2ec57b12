package session

import (
	"strings"
	"testing"
	"time"
)

func TestNewKeyFormat(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		key := NewKey()
		if !strings.HasPrefix(key, "s_") {
			t.Fatalf("key %q missing prefix", key)
		}
		if len(key) != 2+16 {
			t.Fatalf("key %q has unexpected length %d", key, len(key))
		}
		if seen[key] {
			t.Fatalf("duplicate key generated: %q", key)
		}
		seen[key] = true
	}
}

func TestGetOrCreate(t *testing.T) {
	t.Parallel()

	store := NewStore()

	sess, created := store.GetOrCreate("s_abc")
	if !created {
		t.Fatal("expected creation on first access")
	}
	if sess.ID != "s_abc" {
		t.Errorf("session ID = %q, want s_abc", sess.ID)
	}
	if sess.CreatedAt.IsZero() || sess.LastActiveAt.IsZero() {
		t.Error("timestamps not initialized")
	}

	again, created := store.GetOrCreate("s_abc")
	if created {
		t.Fatal("expected existing session on second access")
	}
	if again != sess {
		t.Error("expected the same session object")
	}

	if store.Len() != 1 {
		t.Errorf("store length = %d, want 1", store.Len())
	}
}

func TestGetMissing(t *testing.T) {
	t.Parallel()

	store := NewStore()
	if _, ok := store.Get("s_missing"); ok {
		t.Fatal("expected miss for unknown key")
	}
}

func TestEvictIdle(t *testing.T) {
	t.Parallel()

	store := NewStore()
	stale, _ := store.GetOrCreate("s_stale")
	stale.LastActiveAt = time.Now().Add(-2 * time.Hour)
	fresh, _ := store.GetOrCreate("s_fresh")
	fresh.Touch()

	if n := store.evictIdle(time.Hour); n != 1 {
		t.Fatalf("evicted %d sessions, want 1", n)
	}
	if _, ok := store.Get("s_stale"); ok {
		t.Error("stale session survived eviction")
	}
	if _, ok := store.Get("s_fresh"); !ok {
		t.Error("fresh session was evicted")
	}
}

func TestHistoryAppendAndRecent(t *testing.T) {
	t.Parallel()

	store := NewStore()
	sess, _ := store.GetOrCreate("s_history")
	sess.AppendSystem("base prompt")
	for i := 0; i < 5; i++ {
		sess.AppendUser("question")
		sess.AppendAssistant("answer")
	}

	if len(sess.History) != 11 {
		t.Fatalf("history length = %d, want 11", len(sess.History))
	}
	if got := len(sess.RecentHistory(6)); got != 6 {
		t.Errorf("recent history length = %d, want 6", got)
	}
	if got := len(sess.RecentHistory(50)); got != 11 {
		t.Errorf("recent history over-cap length = %d, want 11", got)
	}
	if got := len(sess.RecentUserAnswers(3)); got != 3 {
		t.Errorf("recent answers length = %d, want 3", got)
	}
}
