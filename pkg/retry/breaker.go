package retry

import (
	"sync"
	"time"
)

// breaker is a consecutive-failure circuit breaker. While open, calls
// are rejected until the cooldown elapses; the first call after the
// cooldown probes the dependency again.
type breaker struct {
	mu        sync.Mutex
	threshold int
	cooldown  time.Duration
	failures  int
	openedAt  time.Time
}

func newBreaker(threshold int, cooldown time.Duration) *breaker {
	return &breaker{threshold: threshold, cooldown: cooldown}
}

// allow reports whether a call may proceed.
func (b *breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failures < b.threshold {
		return true
	}
	if time.Since(b.openedAt) >= b.cooldown {
		// Half-open: let one probe through.
		b.failures = b.threshold - 1
		return true
	}
	return false
}

// recordSuccess closes the circuit.
func (b *breaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
}

// recordFailure counts an exhausted operation and opens the circuit at
// the threshold.
func (b *breaker) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	if b.failures >= b.threshold {
		b.openedAt = time.Now()
	}
}
