package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/singleflight"
)

// ErrConnection is returned when the store cannot be reached.
var ErrConnection = errors.New("database connection failed")

// DialFunc opens a live connection handle to a store.
type DialFunc[T any] func(ctx context.Context) (T, error)

// CloseFunc releases a connection handle opened by a DialFunc.
type CloseFunc[T any] func(ctx context.Context, conn T) error

// Manager owns one process-wide connection handle. The handle is dialed
// lazily on first use; concurrent first callers share a single dial
// attempt. A failed dial is not cached, so a later call dials again.
type Manager[T any] struct {
	name  string
	dial  DialFunc[T]
	close CloseFunc[T]

	group     singleflight.Group
	mu        sync.RWMutex
	conn      T
	connected bool
}

// NewManager creates a Manager. close may be nil.
func NewManager[T any](name string, dial DialFunc[T], close CloseFunc[T]) *Manager[T] {
	return &Manager[T]{
		name:  name,
		dial:  dial,
		close: close,
	}
}

func (m *Manager[T]) cached() (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.conn, m.connected
}

// Get returns the shared handle, dialing it if needed. The dial is shared
// by every concurrent caller, so it does not stop when the caller that
// started it is cancelled.
func (m *Manager[T]) Get(ctx context.Context) (T, error) {
	if conn, ok := m.cached(); ok {
		return conn, nil
	}

	dialCtx := context.WithoutCancel(ctx)
	v, err, _ := m.group.Do(m.name, func() (interface{}, error) {
		if conn, ok := m.cached(); ok {
			return conn, nil
		}
		conn, err := m.dial(dialCtx)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.conn = conn
		m.connected = true
		m.mu.Unlock()
		log.Printf("Connected to %s", m.name)
		return conn, nil
	})
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%w: %s: %v", ErrConnection, m.name, err)
	}
	return v.(T), nil
}

// EnsureConnected dials the store if no live handle exists yet.
func (m *Manager[T]) EnsureConnected(ctx context.Context) error {
	_, err := m.Get(ctx)
	return err
}

// Connected reports whether a handle has been established.
func (m *Manager[T]) Connected() bool {
	_, ok := m.cached()
	return ok
}

// Close releases the handle if one was established.
func (m *Manager[T]) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return nil
	}
	var err error
	if m.close != nil {
		err = m.close(ctx, m.conn)
	}
	var zero T
	m.conn = zero
	m.connected = false
	if err != nil {
		return fmt.Errorf("failed to close %s connection: %w", m.name, err)
	}
	return nil
}
