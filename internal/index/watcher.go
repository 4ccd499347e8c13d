package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/tagvault/internal/storage"
)

// Change kinds reported by Watch.
const (
	ChangeCreated = "created"
	ChangeUpdated = "updated"
	ChangeDeleted = "deleted"
)

// Change is one vault document that changed on disk.
type Change struct {
	Kind string
	Path string // relative to the vault root
}

// ChangeFunc is called once per debounced burst of changes.
type ChangeFunc func(ctx context.Context, changes []Change)

// Watch starts an fsnotify watcher on the vault root and reports changes
// to .md files until ctx is cancelled. Bursts of events are coalesced:
// onChange runs once the vault has been quiet for debounce, with the last
// change per path.
//
// New directories created at runtime are added to the watch list, and
// files already inside them are reported as created. Renames surface as a
// delete of the old path; the new path arrives as its own create event.
func Watch(ctx context.Context, vaultRoot string, debounce time.Duration, logger *slog.Logger, onChange ChangeFunc) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, vaultRoot); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", vaultRoot))

	pending := make(map[string]string)
	var flushTimer *time.Timer
	var flushCh <-chan time.Time

	record := func(kind, rel string) {
		if prev, ok := pending[rel]; ok && prev == ChangeCreated && kind == ChangeUpdated {
			kind = ChangeCreated
		}
		pending[rel] = kind
		if flushTimer == nil {
			flushTimer = time.NewTimer(debounce)
			flushCh = flushTimer.C
		} else {
			flushTimer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if flushTimer != nil {
				flushTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-flushCh:
			changes := drain(pending)
			logger.Debug("watcher: flushing changes", slog.Int("count", len(changes)))
			onChange(ctx, changes)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			absPath := ev.Name
			rel, relErr := filepath.Rel(vaultRoot, absPath)
			if relErr != nil || hiddenPath(rel) {
				continue
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", absPath))
					}
					for _, p := range markdownUnder(vaultRoot, absPath) {
						record(ChangeCreated, p)
					}
					continue
				}
			}

			if !strings.HasSuffix(absPath, ".md") {
				continue
			}

			switch {
			case ev.Op&fsnotify.Create != 0:
				record(ChangeCreated, rel)
			case ev.Op&fsnotify.Write != 0:
				record(ChangeUpdated, rel)
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				record(ChangeDeleted, rel)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// drain empties pending into a path-sorted slice.
func drain(pending map[string]string) []Change {
	out := make([]Change, 0, len(pending))
	for p, kind := range pending {
		out = append(out, Change{Kind: kind, Path: p})
		delete(pending, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// hiddenPath reports whether any element of rel is hidden.
func hiddenPath(rel string) bool {
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if storage.IsHidden(part) {
			return true
		}
	}
	return false
}

// markdownUnder returns the vault-relative paths of .md files below dir.
func markdownUnder(vaultRoot, dir string) []string {
	var out []string
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if storage.IsHidden(d.Name()) && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".md") || storage.IsHidden(d.Name()) {
			return nil
		}
		if rel, relErr := filepath.Rel(vaultRoot, path); relErr == nil {
			out = append(out, rel)
		}
		return nil
	})
	return out
}

// addDirsRecursive adds root and all its non-hidden subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if storage.IsHidden(d.Name()) && path != root {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
