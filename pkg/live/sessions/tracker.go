// Package sessions tracks open live voice sessions so the server can drain
// them on shutdown and enforce at most one live session per chat surface.
package sessions

import (
	"context"
	"sync"
)

// Handle is the control surface a live session exposes to the tracker.
type Handle struct {
	Stop func()
	Warn func(code, message string) error
}

// Tracker indexes live sessions by their owning chat session id. Registering
// a second live session for the same chat session stops and evicts the first.
type Tracker struct {
	mu      sync.Mutex
	entries map[string]*trackedSession
	wg      sync.WaitGroup
}

type trackedSession struct {
	handle Handle
	once   sync.Once
}

func NewTracker() *Tracker {
	return &Tracker{
		entries: make(map[string]*trackedSession),
	}
}

// Register tracks a live session under chatID and returns its unregister
// func. Unregister is idempotent. Any previously registered session for the
// same chatID is stopped first.
func (t *Tracker) Register(chatID string, h Handle) (unregister func()) {
	if t == nil {
		return func() {}
	}

	entry := &trackedSession{handle: h}

	t.mu.Lock()
	if t.entries == nil {
		t.entries = make(map[string]*trackedSession)
	}
	old := t.entries[chatID]
	t.entries[chatID] = entry
	t.wg.Add(1)
	t.mu.Unlock()

	if old != nil {
		if old.handle.Stop != nil {
			old.handle.Stop()
		}
		t.unregister(chatID, old)
	}

	return func() { t.unregister(chatID, entry) }
}

func (t *Tracker) unregister(chatID string, entry *trackedSession) {
	if t == nil || entry == nil {
		return
	}
	entry.once.Do(func() {
		t.mu.Lock()
		if t.entries != nil && t.entries[chatID] == entry {
			delete(t.entries, chatID)
		}
		t.mu.Unlock()
		t.wg.Done()
	})
}

func (t *Tracker) Count() int {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// WarnAll sends a warning to every live session, typically ahead of a
// shutdown, and reports how many were notified.
func (t *Tracker) WarnAll(code, message string) (sent int) {
	if t == nil {
		return 0
	}

	var warns []func(code, message string) error
	t.mu.Lock()
	for _, entry := range t.entries {
		if entry == nil || entry.handle.Warn == nil {
			continue
		}
		warns = append(warns, entry.handle.Warn)
	}
	t.mu.Unlock()

	for _, warn := range warns {
		_ = warn(code, message)
		sent++
	}
	return sent
}

// StopAll stops every live session and reports how many were stopped.
func (t *Tracker) StopAll() (stopped int) {
	if t == nil {
		return 0
	}

	var stops []func()
	t.mu.Lock()
	for _, entry := range t.entries {
		if entry == nil || entry.handle.Stop == nil {
			continue
		}
		stops = append(stops, entry.handle.Stop)
	}
	t.mu.Unlock()

	for _, stop := range stops {
		stop()
		stopped++
	}
	return stopped
}

// Wait blocks until every tracked session has unregistered or ctx is done.
// It reports whether the drain completed.
func (t *Tracker) Wait(ctx context.Context) bool {
	if t == nil {
		return true
	}
	if ctx == nil {
		t.wg.Wait()
		return true
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		t.wg.Wait()
	}()

	select {
	case <-done:
		return true
	case <-ctx.Done():
		return false
	}
}
