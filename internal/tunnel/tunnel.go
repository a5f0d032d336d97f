// Package tunnel publishes the local HTTP listener on a public URL.
package tunnel

import (
	"context"
	"fmt"
	"sync"

	"github.com/forPelevin/viralcut/internal/logger"
)

// Handle is an open tunnel.
type Handle interface {
	URL() string
	Close() error
}

// Connector opens a tunnel forwarding to the local address addr (host:port).
type Connector interface {
	Connect(ctx context.Context, addr string) (Handle, error)
}

// Manager owns at most one tunnel. Start and Stop are idempotent and safe for concurrent use.
type Manager struct {
	mu   sync.Mutex
	conn Connector
	log  *logger.Logger
	h    Handle
}

func NewManager(conn Connector, log *logger.Logger) *Manager {
	if log == nil {
		log = logger.Nop()
	}
	return &Manager{conn: conn, log: log.With("component", "tunnel")}
}

// Start opens the tunnel, or returns the URL of the one already open.
func (m *Manager) Start(ctx context.Context, addr string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.h != nil {
		return m.h.URL(), nil
	}
	if m.conn == nil {
		return "", fmt.Errorf("tunnel: no connector configured")
	}
	h, err := m.conn.Connect(ctx, addr)
	if err != nil {
		return "", fmt.Errorf("tunnel: connect: %w", err)
	}
	m.h = h
	m.log.Info("tunnel started", "public_url", h.URL(), "local_addr", addr)
	return h.URL(), nil
}

// Stop closes the open tunnel, if any.
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.h == nil {
		return nil
	}
	h := m.h
	m.h = nil
	if err := h.Close(); err != nil {
		return fmt.Errorf("tunnel: close: %w", err)
	}
	m.log.Info("tunnel stopped")
	return nil
}

// URL returns the public URL, or "" when no tunnel is open.
func (m *Manager) URL() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.h == nil {
		return ""
	}
	return m.h.URL()
}
