package session

import (
	"sync"
	"time"
)

// scheduledSource is one playback buffer placed on the timeline. Sources are
// tracked so they can be force-stopped on interruption, and released once
// playback finishes naturally.
type scheduledSource struct {
	seq      int64
	start    time.Duration
	duration time.Duration
}

// playbackClock places inbound audio buffers on a monotonically advancing
// virtual timeline. Start times are strictly non-decreasing; a next-start
// that has already elapsed is clamped forward to now plus a small fixed
// lookahead rather than left in the past.
type playbackClock struct {
	mu        sync.Mutex
	now       func() time.Duration
	lookahead time.Duration
	next      time.Duration
	seq       int64
	sources   map[int64]scheduledSource
}

func newPlaybackClock(now func() time.Duration, lookahead time.Duration) *playbackClock {
	return &playbackClock{
		now:       now,
		lookahead: lookahead,
		sources:   make(map[int64]scheduledSource),
	}
}

// Schedule reserves the next slot on the timeline for a buffer of the given
// duration and tracks it until Finish or Interrupt.
func (c *playbackClock) Schedule(d time.Duration) scheduledSource {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := c.now() + c.lookahead
	if c.next > start {
		start = c.next
	}
	c.next = start + d

	c.seq++
	src := scheduledSource{seq: c.seq, start: start, duration: d}
	c.sources[src.seq] = src
	return src
}

// Finish releases tracking for a buffer that played out naturally.
func (c *playbackClock) Finish(seq int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sources, seq)
}

// Interrupt discards every in-flight buffer and resets the timeline to zero.
func (c *playbackClock) Interrupt() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sources = make(map[int64]scheduledSource)
	c.next = 0
}

// Scheduled reports how many buffers are currently tracked.
func (c *playbackClock) Scheduled() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sources)
}

// Now reports the current position on the virtual timeline.
func (c *playbackClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now()
}
