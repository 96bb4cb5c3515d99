package prompts

import (
	"io/fs"
	"log/slog"
	"path"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/promptvault/promptvault/internal/vault"
)

// memVault is an in-memory vault.Vault for tests. It does not emit events;
// watcher tests drive Watcher.Handle directly.
type memVault struct {
	mu      sync.Mutex
	files   map[string]string
	folders map[string]bool
	events  chan vault.Event

	listCalls int
}

func newMemVault() *memVault {
	return &memVault{
		files:   make(map[string]string),
		folders: make(map[string]bool),
		events:  make(chan vault.Event, 16),
	}
}

func (v *memVault) Read(p string) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	content, ok := v.files[p]
	if !ok {
		return "", fs.ErrNotExist
	}
	return content, nil
}

func (v *memVault) Write(p, content string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.files[p] = content
	return nil
}

func (v *memVault) Delete(p string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.files[p]; !ok {
		return fs.ErrNotExist
	}
	delete(v.files, p)
	return nil
}

func (v *memVault) Rename(oldPath, newPath string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	content, ok := v.files[oldPath]
	if !ok {
		return fs.ErrNotExist
	}
	delete(v.files, oldPath)
	v.files[newPath] = content
	return nil
}

func (v *memVault) Exists(p string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.files[p]; ok {
		return true
	}
	return v.folders[p]
}

func (v *memVault) List(folder string) ([]string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.listCalls++

	if !v.folders[folder] {
		return nil, fs.ErrNotExist
	}

	var out []string
	for p := range v.files {
		if path.Dir(p) == folder {
			out = append(out, p)
		}
	}
	return out, nil
}

func (v *memVault) EnsureFolder(folder string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.folders[folder] = true
	return nil
}

func (v *memVault) Events() <-chan vault.Event {
	return v.events
}

func (v *memVault) Close() error {
	return nil
}

// ListCalls returns how many folder listings (= reload attempts) happened.
func (v *memVault) ListCalls() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.listCalls
}

// putFile inserts a file without going through the manager, simulating an
// external edit.
func (v *memVault) putFile(p, content string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.folders[path.Dir(p)] = true
	v.files[p] = content
}

func (v *memVault) rawFile(t *testing.T, p string) string {
	t.Helper()
	v.mu.Lock()
	defer v.mu.Unlock()
	content, ok := v.files[p]
	if !ok {
		t.Fatalf("expected file %s to exist", p)
	}
	return content
}

// fakeSettings is an in-memory Settings implementation.
type fakeSettings struct {
	mu           sync.Mutex
	folder       string
	defaultTitle string
	legacy       string
}

func newFakeSettings(folder string) *fakeSettings {
	return &fakeSettings{folder: folder}
}

func (s *fakeSettings) PromptsFolder() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.folder
}

func (s *fakeSettings) DefaultPromptTitle() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.defaultTitle
}

func (s *fakeSettings) SetDefaultPromptTitle(title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaultTitle = title
	return nil
}

func (s *fakeSettings) LegacySystemPrompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.legacy
}

func (s *fakeSettings) ClearLegacySystemPrompt() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.legacy = ""
	return nil
}

func (s *fakeSettings) setLegacy(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.legacy = v
}

// newTestManager builds a manager over a memVault with a quiet logger.
func newTestManager(t *testing.T) (*Manager, *memVault, *fakeSettings) {
	t.Helper()
	v := newMemVault()
	settings := newFakeSettings("system-prompts")
	store := NewStore()
	logger := slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewManager(v, store, settings, logger), v, settings
}

// advanceClock pins the manager's clock to a fixed time and returns a
// function that moves it forward.
func advanceClock(m *Manager, start time.Time) func(d time.Duration) {
	current := start
	m.now = func() time.Time { return current }
	return func(d time.Duration) {
		current = current.Add(d)
	}
}

type testWriter struct {
	t *testing.T
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
