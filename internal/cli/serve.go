package cli

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	apphttp "github.com/forPelevin/viralcut/internal/http"
	httpH "github.com/forPelevin/viralcut/internal/http/handlers"
	ngrokadapter "github.com/forPelevin/viralcut/internal/ports/adapters/ngrok"
	"github.com/forPelevin/viralcut/internal/tunnel"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE:  serve,
	}
	cmd.Flags().Int("port", 0, "Listen port (default from config)")
	cmd.Flags().Bool("ngrok", false, "Publish the API through an ngrok tunnel")
	return cmd
}

func serve(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Server.Port = port
	}
	if cmd.Flags().Changed("ngrok") {
		cfg.Tunnel.Enabled, _ = cmd.Flags().GetBool("ngrok")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer a.Close()

	var tm *tunnel.Manager
	if cfg.Tunnel.Enabled {
		tm = tunnel.NewManager(ngrokadapter.New(cfg.Tunnel.AuthToken), a.log)
	}
	publicURL := func() string {
		if tm == nil {
			return ""
		}
		return tm.URL()
	}

	srv := apphttp.NewServer(apphttp.RouterConfig{
		HealthHandler: httpH.NewHealthHandler(publicURL),
		ClipsHandler:  httpH.NewClipsHandler(a.svc, cfg.Clips, a.log),
		RunsHandler:   httpH.NewRunsHandler(a.svc, a.log),
	}, a.log)

	ln, err := net.Listen("tcp", cfg.ListenAddr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.ListenAddr(), err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve(ln)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if tm != nil {
			if err := tm.Stop(); err != nil {
				a.log.Warn("tunnel stop failed", "error", err)
			}
		}
		return srv.Shutdown(shutdownCtx)
	})

	if tm != nil {
		// A tunnel failure leaves the local server running.
		if u, err := tm.Start(gctx, ln.Addr().String()); err != nil {
			a.log.Warn("ngrok tunnel unavailable", "error", err)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "public url: %s\n", u)
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "listening on %s\n", ln.Addr().String())

	return g.Wait()
}
