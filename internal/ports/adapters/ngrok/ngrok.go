package ngrok

import (
	"context"
	"fmt"
	"net"
	"net/url"

	"golang.ngrok.com/ngrok"
	"golang.ngrok.com/ngrok/config"

	"github.com/forPelevin/viralcut/internal/tunnel"
)

// Connector forwards an ngrok HTTP endpoint to a local listener.
type Connector struct {
	authToken string
}

func New(authToken string) *Connector {
	return &Connector{authToken: authToken}
}

func (c *Connector) Connect(ctx context.Context, addr string) (tunnel.Handle, error) {
	backend, err := backendURL(addr)
	if err != nil {
		return nil, err
	}
	opts := []ngrok.ConnectOption{ngrok.WithAuthtokenFromEnv()}
	if c.authToken != "" {
		opts = []ngrok.ConnectOption{ngrok.WithAuthtoken(c.authToken)}
	}
	fwd, err := ngrok.ListenAndForward(ctx, backend, config.HTTPEndpoint(), opts...)
	if err != nil {
		return nil, err
	}
	return fwd, nil
}

// backendURL maps a listen address to a URL ngrok can dial. Wildcard hosts become loopback.
func backendURL(addr string) (*url.URL, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("ngrok: invalid listen addr %q: %w", addr, err)
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
	}
	return &url.URL{Scheme: "http", Host: net.JoinHostPort(host, port)}, nil
}
