package widget

import (
	"sync"
	"time"
)

// DefaultRetryDelay is the pause before a control message is repeated.
const DefaultRetryDelay = 2 * time.Second

// SendWithRetry sends a control message now and exactly once more after
// delay. The feed may not be connected yet when a widget mounts, and it
// accepts duplicate subscriptions. The returned cancel turns the pending
// resend into a no-op. Send errors are logged only.
func SendWithRetry(deps Deps, kind string, msg map[string]any, delay time.Duration) (cancel func()) {
	if deps.Transport == nil {
		return func() {}
	}
	if delay <= 0 {
		delay = deps.RetryDelay
	}
	if delay <= 0 {
		delay = DefaultRetryDelay
	}

	send := func(attempt int) {
		if err := deps.Transport.Send(kind, msg); err != nil {
			deps.Logger.Warn().Err(err).Str("kind", kind).Int("attempt", attempt).Msg("control message not sent")
		}
	}
	send(1)

	var (
		mu        sync.Mutex
		cancelled bool
	)
	timer := deps.clock().AfterFunc(delay, func() {
		mu.Lock()
		defer mu.Unlock()
		if cancelled {
			return
		}
		cancelled = true
		send(2)
	})

	return func() {
		mu.Lock()
		defer mu.Unlock()
		if cancelled {
			return
		}
		cancelled = true
		timer.Stop()
	}
}
