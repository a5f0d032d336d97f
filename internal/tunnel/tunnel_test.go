package tunnel

import (
	"context"
	"errors"
	"testing"
)

type fakeHandle struct {
	url    string
	closed int
}

func (h *fakeHandle) URL() string { return h.url }
func (h *fakeHandle) Close() error {
	h.closed++
	return nil
}

type fakeConnector struct {
	calls int
	addr  string
	err   error
	last  *fakeHandle
}

func (c *fakeConnector) Connect(_ context.Context, addr string) (Handle, error) {
	c.calls++
	c.addr = addr
	if c.err != nil {
		return nil, c.err
	}
	c.last = &fakeHandle{url: "https://abc.ngrok.app"}
	return c.last, nil
}

func TestManager_StartIsIdempotent(t *testing.T) {
	conn := &fakeConnector{}
	m := NewManager(conn, nil)

	u1, err := m.Start(context.Background(), "127.0.0.1:8000")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	u2, err := m.Start(context.Background(), "127.0.0.1:8000")
	if err != nil {
		t.Fatalf("second start: %v", err)
	}
	if u1 != u2 || u1 != "https://abc.ngrok.app" {
		t.Fatalf("unexpected urls %q %q", u1, u2)
	}
	if conn.calls != 1 {
		t.Fatalf("expected one connect, got %d", conn.calls)
	}
	if conn.addr != "127.0.0.1:8000" {
		t.Fatalf("unexpected addr %q", conn.addr)
	}
	if m.URL() != u1 {
		t.Fatalf("URL() = %q", m.URL())
	}
}

func TestManager_StopIsIdempotent(t *testing.T) {
	conn := &fakeConnector{}
	m := NewManager(conn, nil)

	if err := m.Stop(); err != nil {
		t.Fatalf("stop before start: %v", err)
	}
	if _, err := m.Start(context.Background(), "127.0.0.1:8000"); err != nil {
		t.Fatalf("start: %v", err)
	}
	h := conn.last
	if err := m.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := m.Stop(); err != nil {
		t.Fatalf("second stop: %v", err)
	}
	if h.closed != 1 {
		t.Fatalf("expected one close, got %d", h.closed)
	}
	if m.URL() != "" {
		t.Fatalf("expected empty url after stop, got %q", m.URL())
	}

	if _, err := m.Start(context.Background(), "127.0.0.1:8000"); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if conn.calls != 2 {
		t.Fatalf("expected reconnect after stop, got %d calls", conn.calls)
	}
}

func TestManager_ConnectError(t *testing.T) {
	conn := &fakeConnector{err: errors.New("auth failed")}
	m := NewManager(conn, nil)
	if _, err := m.Start(context.Background(), "127.0.0.1:8000"); err == nil {
		t.Fatalf("expected error")
	}
	if m.URL() != "" {
		t.Fatalf("expected no tunnel after failure")
	}
}
