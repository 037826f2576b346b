// Package clipboard defines the boundary to the viewer's clipboard.
//
// The production implementation lives in dom/rodom: the citation must land
// in the browsing user's clipboard inside the page session, so the write
// goes through the page, not the host OS. Implementations own their own
// fallback strategy; callers only see the final success or failure.
package clipboard

import (
	"context"
	"errors"
	"sync"
)

// Clipboard writes text for the viewer. WriteText returns an error only
// when every path the implementation has — primary and fallback — failed.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// ErrUnavailable signals that the primary clipboard facility is missing
// or rejected the write.
var ErrUnavailable = errors.New("clipboard: unavailable")

// Memory is an in-memory Clipboard for tests. It mirrors the production
// primary/fallback split so tests can force either path to fail.
type Memory struct {
	mu sync.Mutex

	// PrimaryErr, when set, fails the primary path.
	PrimaryErr error
	// FallbackErr, when set, fails the fallback path too.
	FallbackErr error

	writes       []string
	fallbackUsed bool
}

// WriteText records the text unless both paths are failing.
func (m *Memory) WriteText(_ context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.PrimaryErr == nil {
		m.writes = append(m.writes, text)
		return nil
	}
	if m.FallbackErr == nil {
		m.fallbackUsed = true
		m.writes = append(m.writes, text)
		return nil
	}
	return errors.Join(m.PrimaryErr, m.FallbackErr)
}

// Writes returns everything written, in order.
func (m *Memory) Writes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.writes...)
}

// FallbackUsed reports whether a write went through the fallback path.
func (m *Memory) FallbackUsed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fallbackUsed
}
