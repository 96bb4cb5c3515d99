package prompts

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// pendingGrace is how long a pending-write marker remains in effect after
// the write completes. Filesystem notifications for our own writes can
// arrive after the write call returns, so markers expire instead of being
// removed immediately.
const pendingGrace = 2 * time.Second

// Store holds the in-memory prompt snapshot plus the pending-write markers
// the Watcher consults to ignore self-inflicted vault events. The snapshot
// is replaced wholesale on each reload; readers always see a full,
// consistent-at-some-point copy.
type Store struct {
	mu      sync.RWMutex
	prompts []UserPrompt

	// gen is the generation of the installed snapshot; nextGen hands out
	// reload tickets. A reload that finishes after a newer one is discarded.
	gen     uint64
	nextGen uint64

	pending map[string]time.Time // path -> marker expiry

	now func() time.Time
}

// NewStore creates an empty prompt store.
func NewStore() *Store {
	return &Store{
		pending: make(map[string]time.Time),
		now:     time.Now,
	}
}

// List returns a copy of the current snapshot, sorted by title.
func (s *Store) List() []UserPrompt {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]UserPrompt, len(s.prompts))
	copy(out, s.prompts)
	return out
}

// Get returns the prompt with the given title (case-insensitive).
func (s *Store) Get(title string) (UserPrompt, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.prompts {
		if strings.EqualFold(p.Title, title) {
			return p, true
		}
	}
	return UserPrompt{}, false
}

// Len returns the number of prompts in the snapshot.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.prompts)
}

// BeginReload allocates a reload generation ticket.
func (s *Store) BeginReload() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextGen++
	return s.nextGen
}

// CompleteReload installs prompts as the new snapshot if gen is newer than
// the installed generation. Returns false when the result is stale and was
// discarded.
func (s *Store) CompleteReload(gen uint64, prompts []UserPrompt) bool {
	sorted := make([]UserPrompt, len(prompts))
	copy(sorted, prompts)
	sort.Slice(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].Title) < strings.ToLower(sorted[j].Title)
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen <= s.gen {
		return false
	}
	s.gen = gen
	s.prompts = sorted
	return true
}

// MarkPendingWrite marks path as write-pending so the Watcher ignores the
// vault events our own write is about to cause.
func (s *Store) MarkPendingWrite(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Zero expiry means "pending until released".
	s.pending[path] = time.Time{}
}

// ReleasePendingWrite starts the marker's grace period. The marker keeps
// suppressing events for pendingGrace, then lapses.
func (s *Store) ReleasePendingWrite(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pending[path]; ok {
		s.pending[path] = s.now().Add(pendingGrace)
	}
}

// IsPendingWrite reports whether path currently has an active marker.
// Expired markers are dropped lazily.
func (s *Store) IsPendingWrite(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, ok := s.pending[path]
	if !ok {
		return false
	}
	if expiry.IsZero() {
		return true
	}
	if s.now().After(expiry) {
		delete(s.pending, path)
		return false
	}
	return true
}
