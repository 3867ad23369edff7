// Package history keeps a short navigation trail for the back action.
package history

import (
	"context"
	"fmt"
	"sync"

	"github.com/nhle/siteledger/internal/kv"
)

// MaxEntries is how many paths are kept.
const MaxEntries = 10

// History is a capped stack of visited paths persisted under nav_history.
type History struct {
	mu      sync.Mutex
	kv      kv.Store
	entries []string
}

// Load restores the trail from store.
func Load(ctx context.Context, store kv.Store) (*History, error) {
	h := &History{kv: store}
	if _, err := kv.GetJSON(ctx, store, kv.KeyNavHistory, &h.entries); err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	if len(h.entries) > MaxEntries {
		h.entries = h.entries[len(h.entries)-MaxEntries:]
	}
	return h, nil
}

// Push records a visit. Repeating the current path is ignored.
func (h *History) Push(ctx context.Context, path string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if n := len(h.entries); n > 0 && h.entries[n-1] == path {
		return nil
	}
	next := append(append([]string(nil), h.entries...), path)
	if len(next) > MaxEntries {
		next = next[len(next)-MaxEntries:]
	}
	return h.save(ctx, next)
}

// Back drops the current path and returns the one before it. ok is false
// when there is nowhere to go back to.
func (h *History) Back(ctx context.Context) (path string, ok bool, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.entries) < 2 {
		return "", false, nil
	}
	next := append([]string(nil), h.entries[:len(h.entries)-1]...)
	if err := h.save(ctx, next); err != nil {
		return "", false, err
	}
	return next[len(next)-1], true, nil
}

// Entries returns the trail, oldest first.
func (h *History) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.entries...)
}

func (h *History) save(ctx context.Context, next []string) error {
	if err := kv.SetJSON(ctx, h.kv, kv.KeyNavHistory, next); err != nil {
		return fmt.Errorf("saving history: %w", err)
	}
	h.entries = next
	return nil
}
