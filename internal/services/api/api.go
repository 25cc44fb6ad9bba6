// Package api composes the HTTP surface: meta and match modules under /api/v1, plus probes and metrics
package api

import (
	"context"
	"net/http"
	"time"

	"outreach/internal/modkit"
	"outreach/internal/modkit/module"
	"outreach/internal/platform/config"
	perr "outreach/internal/platform/errors"
	"outreach/internal/platform/metrics"
	phttp "outreach/internal/platform/net/http"
	"outreach/internal/platform/net/middleware"

	matchmod "outreach/internal/services/match/module"
	metamod "outreach/internal/services/meta/module"
)

// Guard reports whether the backing stores answer
type Guard interface {
	Guard(ctx context.Context) error
}

// Options are the API options
type Options struct {
	Config      config.Conf
	Deps        modkit.Deps
	Match       matchmod.Options
	Guard       Guard
	ServiceName string
}

// Mount mounts the API onto r and returns the modules it built
func Mount(r phttp.Router, opt Options) ([]module.Module, error) {
	apiCfg := opt.Config.Prefix("CORE_API_")

	match, err := matchmod.New(opt.Deps, opt.Match)
	if err != nil {
		return nil, err
	}
	mods := []module.Module{
		metamod.New(opt.Deps, opt.ServiceName),
		match,
	}

	for _, mw := range middleware.Defaults(apiCfg.MayDuration("REQUEST_TIMEOUT", 60*time.Second)) {
		r.Use(mw)
	}
	if origins := apiCfg.MayCSV("CORS_ORIGINS", nil); len(origins) > 0 {
		r.Use(middleware.CORS(middleware.CORSOptions{AllowedOrigins: origins, MaxAge: 300}))
	}

	metrics.Register()
	r.Handle("/metrics", metrics.Handler())
	phttp.GetJSON(r, "/healthz", healthz(opt.Guard))

	r.Route("/api/v1", func(api phttp.Router) {
		for _, m := range mods {
			// register each module's ports under its own name for cross module lookups
			module.Register(m.Name(), m.Ports())
			m.MountRoutes(api)
		}
	})
	return mods, nil
}

func healthz(g Guard) func(*http.Request) (any, error) {
	return func(r *http.Request) (any, error) {
		if g == nil {
			return map[string]string{"status": "ok"}, nil
		}
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := g.Guard(ctx); err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "store unavailable")
		}
		return map[string]string{"status": "ok"}, nil
	}
}
