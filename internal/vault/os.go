package vault

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// OSVault implements Vault over a directory on the local filesystem,
// using fsnotify to observe out-of-band edits.
type OSVault struct {
	root    string
	watcher *fsnotify.Watcher
	events  chan Event
	logger  *slog.Logger

	mu     sync.Mutex
	closed bool
}

// NewOSVault opens the vault rooted at root, creating the directory if
// needed, and starts the change-notification pump.
func NewOSVault(root string, logger *slog.Logger) (*OSVault, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create vault root: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create vault watcher: %w", err)
	}
	if err := watcher.Add(root); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch vault root: %w", err)
	}

	v := &OSVault{
		root:    root,
		watcher: watcher,
		events:  make(chan Event, 128),
		logger:  logger,
	}
	go v.pump()

	return v, nil
}

// Root returns the absolute root directory of the vault.
func (v *OSVault) Root() string {
	return v.root
}

// abs converts a vault-relative slash path to an absolute OS path.
func (v *OSVault) abs(p string) string {
	return filepath.Join(v.root, filepath.FromSlash(p))
}

// rel converts an absolute OS path to a vault-relative slash path.
func (v *OSVault) rel(p string) string {
	r, err := filepath.Rel(v.root, p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(r)
}

func (v *OSVault) Read(p string) (string, error) {
	data, err := os.ReadFile(v.abs(p))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (v *OSVault) Write(p, content string) error {
	return os.WriteFile(v.abs(p), []byte(content), 0o644)
}

func (v *OSVault) Delete(p string) error {
	return os.Remove(v.abs(p))
}

func (v *OSVault) Rename(oldPath, newPath string) error {
	return os.Rename(v.abs(oldPath), v.abs(newPath))
}

func (v *OSVault) Exists(p string) bool {
	_, err := os.Stat(v.abs(p))
	return err == nil
}

func (v *OSVault) List(folder string) ([]string, error) {
	entries, err := os.ReadDir(v.abs(folder))
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		files = append(files, path.Join(folder, e.Name()))
	}
	return files, nil
}

// EnsureFolder creates the folder (with intermediate directories) and adds
// it to the watch set so events inside it are observed.
func (v *OSVault) EnsureFolder(folder string) error {
	abs := v.abs(folder)
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return err
	}
	if err := v.watcher.Add(abs); err != nil {
		return fmt.Errorf("failed to watch folder %s: %w", folder, err)
	}
	return nil
}

func (v *OSVault) Events() <-chan Event {
	return v.events
}

func (v *OSVault) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil
	}
	v.closed = true
	return v.watcher.Close()
}

// pump translates fsnotify events into vault events. It exits when the
// underlying watcher is closed, closing the event stream behind it.
func (v *OSVault) pump() {
	defer close(v.events)

	for {
		select {
		case ev, ok := <-v.watcher.Events:
			if !ok {
				return
			}
			v.handle(ev)
		case err, ok := <-v.watcher.Errors:
			if !ok {
				return
			}
			v.logger.Warn("vault watcher error", "error", err)
		}
	}
}

func (v *OSVault) handle(ev fsnotify.Event) {
	rel := v.rel(ev.Name)
	if strings.HasPrefix(rel, "..") {
		return
	}

	var out Event
	switch {
	case ev.Op.Has(fsnotify.Create):
		// New directories are added to the watch set so files created
		// inside them are observed.
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := v.watcher.Add(ev.Name); err != nil {
				v.logger.Warn("failed to watch new folder", "path", rel, "error", err)
			}
			return
		}
		out = Event{Type: EventCreate, Path: rel}
	case ev.Op.Has(fsnotify.Write):
		out = Event{Type: EventModify, Path: rel}
	case ev.Op.Has(fsnotify.Remove):
		out = Event{Type: EventDelete, Path: rel}
	case ev.Op.Has(fsnotify.Rename):
		// fsnotify reports only the old path; the destination surfaces
		// as a separate create event.
		out = Event{Type: EventRename, OldPath: rel}
	default:
		return
	}

	select {
	case v.events <- out:
	default:
		v.logger.Warn("vault event dropped, buffer full", "type", out.Type.String(), "path", out.Path)
	}
}
