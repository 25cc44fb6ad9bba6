package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"outreach/internal/modkit"
	"outreach/internal/modkit/module"
	"outreach/internal/platform/config"
	"outreach/internal/platform/logger"
	phttp "outreach/internal/platform/net/http"
	"outreach/internal/platform/store"

	"outreach/internal/services/api"
	matchmod "outreach/internal/services/match/module"
)

const serviceName = "outreach-api"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := config.New()
	l := logger.Get()

	// open the platform store (postgres + optional clickhouse audit sink)
	st, err := store.Open(ctx, store.FromConf(root, serviceName, "api"), store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	// http server (reads CORE_API_ADDR and timeouts)
	srv := phttp.NewServer(phttp.ServerOptionsFromConfig(root.Prefix("CORE_API_")))

	if _, err := api.Mount(srv.Router(), api.Options{
		Config:      root,
		Deps:        modkit.FromStore(root, st),
		Match:       matchmod.FromConfig(root),
		Guard:       st,
		ServiceName: serviceName,
	}); err != nil {
		l.Panic().Err(err).Msg("api.Mount failed")
	}

	// load the pool before taking traffic
	ports, ok := module.PortsAs[matchmod.Ports]("match")
	if !ok {
		l.Panic().Msg("match ports not registered")
	}
	loaded, err := ports.Resolver.Reload(ctx)
	if err != nil {
		l.Panic().Err(err).Msg("initial pool load failed")
	}
	l.Info().Int("companies", loaded.PoolSize).Msg("pool ready")

	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
