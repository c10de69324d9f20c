package widget

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Host owns the mounted widgets and guarantees each successful Activate is
// paired with exactly one Deactivate.
type Host struct {
	mu      sync.Mutex
	mounted []Widget
	log     zerolog.Logger
}

func NewHost(log zerolog.Logger) *Host {
	return &Host{log: log}
}

// Mount activates w. When activation fails, or panics, w is deactivated before
// Mount returns.
func (h *Host) Mount(ctx context.Context, w Widget) error {
	ok := false
	defer func() {
		if !ok {
			w.Deactivate()
		}
	}()

	if err := w.Activate(ctx); err != nil {
		h.log.Warn().Err(err).Str("widget", w.ID()).Msg("activation failed")
		return errors.Wrapf(err, "activate %s", w.ID())
	}
	ok = true

	h.mu.Lock()
	h.mounted = append(h.mounted, w)
	h.mu.Unlock()
	return nil
}

// Unmount deactivates w if it is mounted. It reports whether w was mounted.
func (h *Host) Unmount(w Widget) bool {
	h.mu.Lock()
	idx := -1
	for i, m := range h.mounted {
		if m == w {
			idx = i
			break
		}
	}
	if idx < 0 {
		h.mu.Unlock()
		return false
	}
	h.mounted = append(h.mounted[:idx:idx], h.mounted[idx+1:]...)
	h.mu.Unlock()

	w.Deactivate()
	return true
}

// UnmountAll deactivates every mounted widget, most recent first.
func (h *Host) UnmountAll() {
	h.mu.Lock()
	mounted := h.mounted
	h.mounted = nil
	h.mu.Unlock()

	for i := len(mounted) - 1; i >= 0; i-- {
		mounted[i].Deactivate()
	}
}

// Widgets returns the mounted widgets in mount order.
func (h *Host) Widgets() []Widget {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Widget(nil), h.mounted...)
}
