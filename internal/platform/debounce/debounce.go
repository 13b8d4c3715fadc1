// Package debounce collapses bursts of calls per key into a single call
// that fires once the key has been quiet for a fixed period.
package debounce

import (
	"sync"
	"time"
)

type entry struct {
	timer *time.Timer
	gen   uint64
}

type Keyed struct {
	quiet time.Duration

	mu      sync.Mutex
	gen     uint64
	pending map[string]entry
	stopped bool
}

func New(quiet time.Duration) *Keyed {
	return &Keyed{quiet: quiet, pending: map[string]entry{}}
}

// Trigger (re)arms the timer for key. Only the fn passed on the last call
// before the quiet period elapses runs.
func (k *Keyed) Trigger(key string, fn func()) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.stopped {
		return
	}
	if current, ok := k.pending[key]; ok {
		current.timer.Stop()
	}
	k.gen++
	gen := k.gen
	timer := time.AfterFunc(k.quiet, func() {
		k.mu.Lock()
		current, ok := k.pending[key]
		if !ok || current.gen != gen {
			k.mu.Unlock()
			return
		}
		delete(k.pending, key)
		k.mu.Unlock()
		fn()
	})
	k.pending[key] = entry{timer: timer, gen: gen}
}

// Pending reports how many keys have an armed timer.
func (k *Keyed) Pending() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.pending)
}

// Stop cancels every armed timer and ignores later triggers.
func (k *Keyed) Stop() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.stopped = true
	for key, e := range k.pending {
		e.timer.Stop()
		delete(k.pending, key)
	}
}
