package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forPelevin/viralcut/internal/config"
	"github.com/forPelevin/viralcut/internal/logger"
	"github.com/forPelevin/viralcut/internal/pipeline"
	"github.com/forPelevin/viralcut/internal/runs"
)

type app struct {
	cfg   *config.Config
	log   *logger.Logger
	store runs.Store
	svc   *pipeline.Service
	close []func()
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// newApp wires logger, run store and pipeline service. withRedis selects the Redis run
// store when one is configured; one-shot commands keep runs in memory.
func newApp(ctx context.Context, cfg *config.Config, withRedis bool) (*app, error) {
	log, err := logger.New(cfg.Logging.Mode)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	a := &app{cfg: cfg, log: log}
	a.close = append(a.close, log.Sync)

	a.store = runs.NewMemoryStore(cfg.Redis.RunTTL)
	if withRedis && cfg.Redis.Addr != "" {
		rs, err := runs.NewRedisStore(ctx, runs.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.RunTTL,
		})
		if err != nil {
			a.Close()
			return nil, err
		}
		a.store = rs
		a.close = append(a.close, func() { _ = rs.Close() })
		log.Info("using redis run store", "addr", cfg.Redis.Addr)
	}

	a.svc, err = pipeline.New(cfg, a.store, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("config: %w", err)
	}
	return a, nil
}

func (a *app) Close() {
	for i := len(a.close) - 1; i >= 0; i-- {
		a.close[i]()
	}
}
