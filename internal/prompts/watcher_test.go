package prompts

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/promptvault/promptvault/internal/vault"
)

func newTestWatcher(t *testing.T, debounce time.Duration) (*Watcher, *Manager, *memVault) {
	t.Helper()
	v := newMemVault()
	settings := newFakeSettings("system-prompts")
	logger := slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{Level: slog.LevelError}))
	m := NewManager(v, NewStore(), settings, logger)
	w := NewWatcher(v, m, settings, debounce, logger)
	t.Cleanup(w.Stop)
	return w, m, v
}

// waitForListCalls polls until the vault has seen want folder listings or the
// deadline passes.
func waitForListCalls(t *testing.T, v *memVault, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if v.ListCalls() >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d folder listings, got %d", want, v.ListCalls())
}

func TestWatcherCreateReloadsImmediately(t *testing.T) {
	ctx := context.Background()
	w, m, v := newTestWatcher(t, time.Minute)

	v.putFile("system-prompts/New.md", "hello")
	w.Handle(ctx, vault.Event{Type: vault.EventCreate, Path: "system-prompts/New.md"})

	// Create bypasses the debounce, so the long timer above never matters.
	if v.ListCalls() != 1 {
		t.Fatalf("expected immediate reload, got %d listings", v.ListCalls())
	}
	if _, ok := m.Get("New"); !ok {
		t.Error("created prompt not loaded")
	}
}

func TestWatcherDeleteReloadsImmediately(t *testing.T) {
	ctx := context.Background()
	w, m, v := newTestWatcher(t, time.Minute)

	v.putFile("system-prompts/Doomed.md", "x")
	if _, err := m.Reload(ctx); err != nil {
		t.Fatal(err)
	}
	before := v.ListCalls()

	v.Delete("system-prompts/Doomed.md")
	w.Handle(ctx, vault.Event{Type: vault.EventDelete, Path: "system-prompts/Doomed.md"})

	if v.ListCalls() != before+1 {
		t.Fatalf("expected immediate reload, got %d listings", v.ListCalls()-before)
	}
	if _, ok := m.Get("Doomed"); ok {
		t.Error("deleted prompt still cached")
	}
}

func TestWatcherModifyDebounces(t *testing.T) {
	ctx := context.Background()
	w, _, v := newTestWatcher(t, 30*time.Millisecond)

	v.putFile("system-prompts/A.md", "v1")
	v.putFile("system-prompts/B.md", "v1")

	// A burst of modify events across files collapses into one reload.
	for i := 0; i < 5; i++ {
		w.Handle(ctx, vault.Event{Type: vault.EventModify, Path: "system-prompts/A.md"})
		w.Handle(ctx, vault.Event{Type: vault.EventModify, Path: "system-prompts/B.md"})
	}
	if v.ListCalls() != 0 {
		t.Fatalf("reload ran before quiet period, %d listings", v.ListCalls())
	}

	waitForListCalls(t, v, 1)
	time.Sleep(100 * time.Millisecond)
	if v.ListCalls() != 1 {
		t.Errorf("burst should collapse to one reload, got %d", v.ListCalls())
	}
}

func TestWatcherSeparateBurstsReloadSeparately(t *testing.T) {
	ctx := context.Background()
	w, _, v := newTestWatcher(t, 20*time.Millisecond)
	v.putFile("system-prompts/A.md", "v1")

	w.Handle(ctx, vault.Event{Type: vault.EventModify, Path: "system-prompts/A.md"})
	waitForListCalls(t, v, 1)

	w.Handle(ctx, vault.Event{Type: vault.EventModify, Path: "system-prompts/A.md"})
	waitForListCalls(t, v, 2)
}

func TestWatcherIgnoresIrrelevantPaths(t *testing.T) {
	ctx := context.Background()
	w, _, v := newTestWatcher(t, 10*time.Millisecond)

	w.Handle(ctx, vault.Event{Type: vault.EventCreate, Path: "notes/Other.md"})
	w.Handle(ctx, vault.Event{Type: vault.EventCreate, Path: "system-prompts/readme.txt"})
	w.Handle(ctx, vault.Event{Type: vault.EventModify, Path: "system-prompts/sub/Nested.md"})

	time.Sleep(60 * time.Millisecond)
	if v.ListCalls() != 0 {
		t.Errorf("irrelevant events triggered %d reloads", v.ListCalls())
	}
}

func TestWatcherIgnoresOwnWrites(t *testing.T) {
	ctx := context.Background()
	w, m, v := newTestWatcher(t, 10*time.Millisecond)

	path := "system-prompts/Mine.md"
	v.putFile(path, "x")
	m.Store().MarkPendingWrite(path)

	w.Handle(ctx, vault.Event{Type: vault.EventModify, Path: path})
	w.Handle(ctx, vault.Event{Type: vault.EventCreate, Path: path})

	time.Sleep(60 * time.Millisecond)
	if v.ListCalls() != 0 {
		t.Errorf("own writes triggered %d reloads", v.ListCalls())
	}

	// Other files are unaffected by the marker.
	v.putFile("system-prompts/Other.md", "y")
	w.Handle(ctx, vault.Event{Type: vault.EventCreate, Path: "system-prompts/Other.md"})
	if v.ListCalls() != 1 {
		t.Errorf("unmarked path should reload, got %d listings", v.ListCalls())
	}
}

func TestWatcherRename(t *testing.T) {
	ctx := context.Background()

	t.Run("rename out of folder reloads", func(t *testing.T) {
		w, m, v := newTestWatcher(t, time.Minute)
		v.putFile("system-prompts/Gone.md", "x")
		if _, err := m.Reload(ctx); err != nil {
			t.Fatal(err)
		}
		before := v.ListCalls()

		v.Rename("system-prompts/Gone.md", "archive/Gone.md")
		w.Handle(ctx, vault.Event{
			Type:    vault.EventRename,
			Path:    "archive/Gone.md",
			OldPath: "system-prompts/Gone.md",
		})

		if v.ListCalls() != before+1 {
			t.Fatalf("expected reload, got %d listings", v.ListCalls()-before)
		}
		if _, ok := m.Get("Gone"); ok {
			t.Error("moved-out prompt still cached")
		}
	})

	t.Run("rename into folder reloads", func(t *testing.T) {
		w, m, v := newTestWatcher(t, time.Minute)
		v.putFile("system-prompts/Arrived.md", "x")

		w.Handle(ctx, vault.Event{
			Type:    vault.EventRename,
			Path:    "system-prompts/Arrived.md",
			OldPath: "elsewhere/Arrived.md",
		})

		if _, ok := m.Get("Arrived"); !ok {
			t.Error("moved-in prompt not loaded")
		}
	})

	t.Run("rename outside folder is ignored", func(t *testing.T) {
		w, _, v := newTestWatcher(t, time.Minute)
		w.Handle(ctx, vault.Event{
			Type:    vault.EventRename,
			Path:    "b/X.md",
			OldPath: "a/X.md",
		})
		if v.ListCalls() != 0 {
			t.Errorf("unrelated rename triggered %d reloads", v.ListCalls())
		}
	})
}

func TestWatcherStartStop(t *testing.T) {
	ctx := context.Background()
	v := newMemVault()
	settings := newFakeSettings("system-prompts")
	logger := slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{Level: slog.LevelError}))
	m := NewManager(v, NewStore(), settings, logger)
	w := NewWatcher(v, m, settings, time.Minute, logger)

	w.Start(ctx)

	v.putFile("system-prompts/New.md", "hello")
	v.events <- vault.Event{Type: vault.EventCreate, Path: "system-prompts/New.md"}

	waitForListCalls(t, v, 1)
	if _, ok := m.Get("New"); !ok {
		t.Error("event from stream not processed")
	}

	w.Stop()
	// Stop is idempotent.
	w.Stop()
}
