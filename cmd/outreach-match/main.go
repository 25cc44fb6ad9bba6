package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"outreach/internal/modkit"
	"outreach/internal/modkit/module"
	"outreach/internal/platform/config"
	"outreach/internal/platform/logger"
	"outreach/internal/platform/metrics"
	"outreach/internal/platform/store"

	matchmod "outreach/internal/services/match/module"
)

const serviceName = "outreach-match"

func main() { os.Exit(run()) }

func run() int {
	root := config.New()
	opts := matchmod.FromConfig(root)

	var (
		workers = flag.Int("workers", opts.Workers, "concurrent resolutions per page (>=1)")
		page    = flag.Int("page", opts.PageSize, "pending records per page")
		dryRun  = flag.Bool("dry-run", opts.DryRun, "resolve but do not write outcomes, reviews or audit rows")
		arbiter = flag.String("arbiter", opts.Arbiter, "collision arbiter: none, rules or llm")
		audit   = flag.Bool("audit", opts.Audit, "append decisions to the clickhouse audit table")
	)
	flag.Parse()

	if *workers < 1 {
		log.Fatal("-workers must be >= 1")
	}
	if *page < 1 {
		log.Fatal("-page must be >= 1")
	}
	switch *arbiter {
	case matchmod.ArbiterNone, matchmod.ArbiterRules, matchmod.ArbiterLLM:
	default:
		log.Fatalf("bad -arbiter %q", *arbiter)
	}
	opts.Workers, opts.PageSize, opts.DryRun, opts.Arbiter, opts.Audit = *workers, *page, *dryRun, *arbiter, *audit

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	l := logger.Get()
	metrics.Register()

	stCfg := store.FromConf(root, serviceName, "batch")
	// the audit sink is only dialed when asked for
	stCfg.CH.Enabled = stCfg.CH.Enabled && opts.Audit && !opts.DryRun
	st, err := store.Open(ctx, stCfg, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	m, err := matchmod.New(modkit.FromStore(root, st), opts)
	if err != nil {
		l.Error().Err(err).Msg("match module")
		return 1
	}
	module.Register(m.Name(), m.Ports())

	sum, err := module.MustPortsOf[matchmod.Ports](m).Runner.Run(ctx)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(sum)
	if err != nil {
		l.Error().Err(err).Str("batch_id", sum.BatchID).Msg("match run failed")
		return 1
	}
	return 0
}
