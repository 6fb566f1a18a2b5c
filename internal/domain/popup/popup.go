// Package popup tracks one-time popups already shown to the player.
package popup

import (
	"context"
	"sync"

	"github.com/okian/ghostrace/internal/domain/model"
)

// Tracker records shown popup types to ensure at-most-once display.
type Tracker interface {
	// SeenAndRecord atomically checks if p was shown and records it if not.
	// Returns true if p was already shown, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, p model.PopupType) bool

	// Unrecord forgets p so it can be shown again, e.g. for a new run.
	Unrecord(ctx context.Context, p model.PopupType)

	Seen(p model.PopupType) bool

	// IDs returns the recorded types in recording order, in the shape the
	// save record persists.
	IDs() []int

	Size() int
}

type inMemoryTracker struct {
	mu      sync.RWMutex
	seen    map[model.PopupType]struct{}
	order   []model.PopupType
	maxSize int
}

// NewTracker returns a tracker restored from persisted ids. Unknown or
// duplicate ids are ignored.
func NewTracker(ids []int, opts ...Option) Tracker {
	t := &inMemoryTracker{
		seen:    make(map[model.PopupType]struct{}),
		maxSize: 64,
	}
	for _, opt := range opts {
		opt(t)
	}
	for _, id := range ids {
		p := model.PopupType(id)
		if !Known(p) {
			continue
		}
		t.record(p)
	}
	return t
}

func (t *inMemoryTracker) SeenAndRecord(_ context.Context, p model.PopupType) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.seen[p]; ok {
		return true
	}
	t.record(p)
	return false
}

// record must be called with t.mu held or before t is shared.
func (t *inMemoryTracker) record(p model.PopupType) {
	if _, ok := t.seen[p]; ok {
		return
	}
	if t.maxSize > 0 && len(t.order) >= t.maxSize {
		oldest := t.order[0]
		t.order = t.order[1:]
		delete(t.seen, oldest)
	}
	t.seen[p] = struct{}{}
	t.order = append(t.order, p)
}

func (t *inMemoryTracker) Unrecord(_ context.Context, p model.PopupType) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.seen[p]; !ok {
		return
	}
	delete(t.seen, p)
	for i, q := range t.order {
		if q == p {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

func (t *inMemoryTracker) Seen(p model.PopupType) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.seen[p]
	return ok
}

func (t *inMemoryTracker) IDs() []int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]int, len(t.order))
	for i, p := range t.order {
		out[i] = int(p)
	}
	return out
}

func (t *inMemoryTracker) Size() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.order)
}

// Known reports whether p is a defined popup type.
func Known(p model.PopupType) bool {
	return p >= model.PopupIntro && p <= model.PopupClaimed
}

// Name returns a stable label for p.
func Name(p model.PopupType) string {
	switch p {
	case model.PopupIntro:
		return "intro"
	case model.PopupEntry:
		return "entry"
	case model.PopupSearching:
		return "searching"
	case model.PopupExtendOffer:
		return "extend_offer"
	case model.PopupResult:
		return "result"
	case model.PopupClaimed:
		return "claimed"
	default:
		return "unknown"
	}
}
