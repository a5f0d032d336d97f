package http

import (
	"context"
	"errors"
	"net"
	nethttp "net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/forPelevin/viralcut/internal/logger"
)

type Server struct {
	Engine *gin.Engine
	srv    *nethttp.Server
	log    *logger.Logger
}

func NewServer(cfg RouterConfig, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	engine := NewRouter(cfg)
	return &Server{
		Engine: engine,
		srv: &nethttp.Server{
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log.With("component", "http"),
	}
}

// Serve accepts connections on ln until Shutdown is called. A clean shutdown returns nil.
func (s *Server) Serve(ln net.Listener) error {
	s.log.Info("http server listening", "addr", ln.Addr().String())
	err := s.srv.Serve(ln)
	if errors.Is(err, nethttp.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("http server shutting down")
	return s.srv.Shutdown(ctx)
}
