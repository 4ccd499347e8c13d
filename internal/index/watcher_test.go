package index

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// watchVault starts Watch on a fresh vault and records every change it reports.
func watchVault(t *testing.T) (string, func() []Change) {
	t.Helper()
	vaultDir := t.TempDir()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	var mu sync.Mutex
	var changes []Change
	go Watch(ctx, vaultDir, 50*time.Millisecond, logger, func(_ context.Context, batch []Change) {
		mu.Lock()
		changes = append(changes, batch...)
		mu.Unlock()
	})
	time.Sleep(100 * time.Millisecond)

	return vaultDir, func() []Change {
		mu.Lock()
		defer mu.Unlock()
		return append([]Change(nil), changes...)
	}
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func hasChange(changes []Change, kind, path string) bool {
	for _, c := range changes {
		if c.Kind == kind && c.Path == path {
			return true
		}
	}
	return false
}

func TestWatcher_NewFileReported(t *testing.T) {
	vaultDir, changes := watchVault(t)

	_ = os.WriteFile(filepath.Join(vaultDir, "2024-01-15.md"), []byte("#work\nx\n"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return hasChange(changes(), ChangeCreated, "2024-01-15.md")
	}, "expected created:2024-01-15.md")
}

func TestWatcher_IgnoresNonMarkdownAndHidden(t *testing.T) {
	vaultDir, changes := watchVault(t)

	_ = os.WriteFile(filepath.Join(vaultDir, "notes.txt"), []byte("x"), 0o644)
	_ = os.WriteFile(filepath.Join(vaultDir, ".draft.md"), []byte("x"), 0o644)
	_ = os.WriteFile(filepath.Join(vaultDir, "real.md"), []byte("x"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return hasChange(changes(), ChangeCreated, "real.md")
	}, "expected created:real.md")

	for _, c := range changes() {
		if c.Path != "real.md" {
			t.Errorf("unexpected change %+v", c)
		}
	}
}

func TestWatcher_NewDirWatched(t *testing.T) {
	vaultDir, changes := watchVault(t)

	subDir := filepath.Join(vaultDir, "daily")
	_ = os.MkdirAll(subDir, 0o755)
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(subDir, "2024-03-01.md"), []byte("#a\nb\n"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return hasChange(changes(), ChangeCreated, filepath.Join("daily", "2024-03-01.md"))
	}, "file in new subdir not reported by watcher")
}

func TestWatcher_DeleteReported(t *testing.T) {
	vaultDir := t.TempDir()
	path := filepath.Join(vaultDir, "del.md")
	_ = os.WriteFile(path, []byte("#a\nx\n"), 0o644)

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var got []Change
	go Watch(ctx, vaultDir, 50*time.Millisecond, logger, func(_ context.Context, batch []Change) {
		mu.Lock()
		got = append(got, batch...)
		mu.Unlock()
	})
	time.Sleep(100 * time.Millisecond)

	_ = os.Remove(path)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return hasChange(got, ChangeDeleted, "del.md")
	}, "expected deleted:del.md")
}

func TestWatcher_BurstIsCoalesced(t *testing.T) {
	vaultDir := t.TempDir()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	batches := 0
	var last []Change
	go Watch(ctx, vaultDir, 300*time.Millisecond, logger, func(_ context.Context, batch []Change) {
		mu.Lock()
		batches++
		last = batch
		mu.Unlock()
	})
	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(vaultDir, "burst.md")
	for i := 0; i < 5; i++ {
		_ = os.WriteFile(path, []byte{byte('a' + i)}, 0o644)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return batches > 0
	}, "no batch delivered")

	mu.Lock()
	defer mu.Unlock()
	if batches != 1 {
		t.Errorf("batches = %d, want 1", batches)
	}
	if len(last) != 1 || last[0].Path != "burst.md" || last[0].Kind != ChangeCreated {
		t.Errorf("batch = %+v, want a single created:burst.md", last)
	}
}

func TestDrain_SortsAndEmpties(t *testing.T) {
	pending := map[string]string{"b.md": ChangeUpdated, "a.md": ChangeDeleted}
	got := drain(pending)
	if len(got) != 2 || got[0].Path != "a.md" || got[1].Path != "b.md" {
		t.Errorf("drain = %+v", got)
	}
	if len(pending) != 0 {
		t.Errorf("pending not emptied: %v", pending)
	}
}
