package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/PrivateRookie/psql/pkg/config"
	"github.com/PrivateRookie/psql/pkg/database"
	"github.com/PrivateRookie/psql/pkg/handlers"
	"github.com/PrivateRookie/psql/pkg/logging"
	"github.com/PrivateRookie/psql/pkg/middleware"
	"github.com/PrivateRookie/psql/pkg/plan"
	"github.com/PrivateRookie/psql/pkg/registry"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	p, err := plan.Load(cfg.PlanPath)
	if err != nil {
		logger.Fatal("failed to load plan", zap.String("path", cfg.PlanPath), zap.Error(err))
	}

	reg := registry.New(database.Config{
		MaxOpenConns:    cfg.Pool.MaxOpenConns,
		MaxIdleConns:    cfg.Pool.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Pool.ConnMaxLifetimeMin) * time.Minute,
	}, logger)
	defer func() { _ = reg.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := reg.Seed(ctx, p); err != nil {
		cancel()
		logger.Fatal("failed to seed registry", zap.Error(err))
	}
	cancel()

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewQueryHandler(reg, cfg, p.Prefix, logger).RegisterRoutes(mux)
	handlers.NewAdminHandler(reg, cfg, p.Prefix, logger).RegisterRoutes(mux)
	handlers.NewDocHandler(reg, p, cfg.Version, logger).RegisterRoutes(mux)

	var handler http.Handler = mux
	handler = middleware.RequestLogger(logger)(handler)
	handler = middleware.RequestID()(handler)

	addresses := p.Addresses
	if override := cfg.Addr(); override != "" {
		addresses = []string{override}
	}

	errCh := make(chan error, len(addresses))
	for _, addr := range addresses {
		logger.Info("starting psql",
			zap.String("addr", addr),
			zap.String("prefix", p.Prefix),
			zap.String("version", cfg.Version))
		go func(addr string) {
			errCh <- http.ListenAndServe(addr, handler)
		}(addr)
	}
	logger.Fatal("server failed", zap.Error(<-errCh))
}
