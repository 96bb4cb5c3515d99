package prompts

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/promptvault/promptvault/internal/vault"
)

// DefaultDebounce is the quiet period after the last modify event before a
// reload runs. External editors flush front-matter in bursts; waiting for
// the burst to settle avoids reading a half-written metadata block.
const DefaultDebounce = time.Second

// Watcher keeps the prompt cache correct in the presence of out-of-band
// vault edits. Create, delete, and rename events inside the prompts folder
// trigger an immediate reload; modify events are coalesced through a single
// shared trailing-edge debounce timer. Events for paths with an active
// pending-write marker are ignored so the Manager's own writes do not feed
// back into reloads. Reload failures are logged and swallowed, leaving the
// previous snapshot in place.
type Watcher struct {
	vault    vault.Vault
	manager  *Manager
	settings Settings
	logger   *slog.Logger
	debounce time.Duration

	mu    sync.Mutex
	timer *time.Timer

	done chan struct{}
	wg   sync.WaitGroup
}

// NewWatcher creates a watcher over the vault's change stream. A
// non-positive debounce falls back to DefaultDebounce.
func NewWatcher(v vault.Vault, manager *Manager, settings Settings, debounce time.Duration, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		vault:    v,
		manager:  manager,
		settings: settings,
		logger:   logger,
		debounce: debounce,
		done:     make(chan struct{}),
	}
}

// Start begins consuming vault events until the context is cancelled, the
// event stream closes, or Stop is called.
func (w *Watcher) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		events := w.vault.Events()
		for {
			select {
			case <-ctx.Done():
				return
			case <-w.done:
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				w.Handle(ctx, ev)
			}
		}
	}()
}

// Stop halts event processing and cancels any pending debounced reload.
func (w *Watcher) Stop() {
	select {
	case <-w.done:
	default:
		close(w.done)
	}

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	w.wg.Wait()
}

// Handle processes a single vault event. Exported so hosts that own their
// own event loop can drive the watcher directly.
func (w *Watcher) Handle(ctx context.Context, ev vault.Event) {
	switch ev.Type {
	case vault.EventRename:
		// A rename can move a file into or out of the prompts folder, so
		// it is relevant if either side is in scope.
		if !w.relevant(ev.Path) && !w.relevant(ev.OldPath) {
			return
		}
		if w.pending(ev.Path) || w.pending(ev.OldPath) {
			return
		}
		w.logger.Info("prompt file renamed", "from", ev.OldPath, "to", ev.Path)
		w.reload(ctx)

	case vault.EventCreate, vault.EventDelete:
		if !w.relevant(ev.Path) || w.pending(ev.Path) {
			return
		}
		w.logger.Info("prompt file changed", "type", ev.Type.String(), "path", ev.Path)
		w.reload(ctx)

	case vault.EventModify:
		if !w.relevant(ev.Path) || w.pending(ev.Path) {
			return
		}
		w.scheduleReload(ctx)
	}
}

// relevant reports whether path is a prompt file in the configured folder.
func (w *Watcher) relevant(path string) bool {
	return path != "" && IsPromptFile(w.settings.PromptsFolder(), path)
}

func (w *Watcher) pending(path string) bool {
	return path != "" && w.manager.Store().IsPendingWrite(path)
}

// scheduleReload arms (or re-arms) the shared debounce timer. Bursts of
// modify events collapse into a single reload after the quiet period. The
// timer is shared across files, not keyed per path: reload always re-reads
// the whole folder, so merging bursts from different files is harmless.
func (w *Watcher) scheduleReload(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer == nil {
		w.timer = time.AfterFunc(w.debounce, func() {
			select {
			case <-w.done:
				return
			default:
			}
			w.reload(ctx)
		})
		return
	}
	w.timer.Reset(w.debounce)
}

// reload refreshes the cache, logging and swallowing failures. A failed
// reload leaves the previous snapshot intact; the next event retries
// implicitly.
func (w *Watcher) reload(ctx context.Context) {
	if _, err := w.manager.Reload(ctx); err != nil {
		w.logger.Error("prompt reload failed", "error", err)
	}
}
