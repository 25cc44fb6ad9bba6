// Package service holds the match workflows: pool loading, on demand resolution and batch runs
package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"outreach/internal/core/matcher"
	"outreach/internal/core/version"
	"outreach/internal/modkit/repokit"
	perr "outreach/internal/platform/errors"
	"outreach/internal/platform/logger"
	"outreach/internal/platform/metrics"
	"outreach/internal/services/match/domain"
)

// Config controls resolution and batch runs
type Config struct {
	Matcher matcher.Config

	// Workers bounds concurrent resolutions inside one batch
	Workers int

	// PageSize is the pending records fetched per page
	PageSize int

	// DryRun resolves without writing outcomes, reviews or audit rows
	DryRun bool

	// Audit appends every decision to the audit sink when one is wired
	Audit bool

	// TxTimeout caps each statement of the per page write transaction
	TxTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.PageSize <= 0 {
		c.PageSize = 500
	}
	if c.TxTimeout <= 0 {
		c.TxTimeout = 30 * time.Second
	}
	return c
}

// loaded is one generation of the pool and the matcher built on it
type loaded struct {
	m  *matcher.Matcher
	at time.Time
}

// Service implements domain.ResolverPort and domain.RunnerPort
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[domain.StorageRepo]
	Audit  domain.AuditPort
	Arb    matcher.Arbitrator
	Cfg    Config

	cur    atomic.Pointer[loaded]
	loadMu sync.Mutex

	now   func() time.Time
	newID func() string
}

// New constructs the match service. audit and arb may be nil.
func New(
	db repokit.TxRunner,
	binder repokit.Binder[domain.StorageRepo],
	audit domain.AuditPort,
	arb matcher.Arbitrator,
	cfg Config,
) *Service {
	if db == nil {
		panic("match.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("match.Service requires a non nil Repo binder")
	}
	return &Service{
		DB:     db,
		Binder: binder,
		Audit:  audit,
		Arb:    arb,
		Cfg:    cfg.withDefaults(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Reload builds a fresh pool from storage and swaps it in. In flight
// resolutions finish on the matcher they started with.
func (s *Service) Reload(ctx context.Context) (domain.ReloadResult, error) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	l := logger.C(ctx).With().Str("mod", "match").Logger()

	cands, err := s.Binder.Bind(s.DB).ListCompanies(ctx)
	if err != nil {
		return domain.ReloadResult{}, err
	}
	pool, err := matcher.NewPool(cands)
	if err != nil {
		return domain.ReloadResult{}, err
	}

	opts := []matcher.Option{
		matcher.WithLogger(*logger.Named("matcher")),
		matcher.WithObserver(matcher.ObserverFunc(observe)),
	}
	if s.Arb != nil {
		opts = append(opts, matcher.WithArbitrator(s.Arb))
	}
	m, err := matcher.New(pool, s.Cfg.Matcher, opts...)
	if err != nil {
		return domain.ReloadResult{}, err
	}

	at := s.now().UTC()
	s.cur.Store(&loaded{m: m, at: at})
	metrics.SetPoolSize(pool.Len())

	ev := l.Info().Int("companies", pool.Len())
	if n := pool.SharedDomains(); n > 0 {
		ev = ev.Int("shared_domains", n)
	}
	ev.Msg("match: pool loaded")

	return domain.ReloadResult{PoolSize: pool.Len(), SharedDomains: pool.SharedDomains(), LoadedAt: at}, nil
}

func (s *Service) current() (*loaded, error) {
	cur := s.cur.Load()
	if cur == nil {
		return nil, perr.Unavailablef("company pool not loaded")
	}
	return cur, nil
}

// Resolve implements domain.ResolverPort
func (s *Service) Resolve(ctx context.Context, in domain.RecordInput) (domain.OutcomeView, error) {
	cur, err := s.current()
	if err != nil {
		return domain.OutcomeView{}, err
	}
	return view(cur.m.Resolve(ctx, in.Record())), nil
}

// ResolveBatch implements domain.ResolverPort; output order follows input order
func (s *Service) ResolveBatch(ctx context.Context, in []domain.RecordInput) ([]domain.OutcomeView, error) {
	if len(in) > domain.MaxBatch {
		return nil, perr.WithField(perr.TooLargef("batch of %d records exceeds %d", len(in), domain.MaxBatch), "records")
	}
	cur, err := s.current()
	if err != nil {
		return nil, err
	}
	outs, err := s.resolveAll(ctx, cur.m, in)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeTimeout, "batch abandoned")
	}
	views := make([]domain.OutcomeView, len(outs))
	for i, o := range outs {
		views[i] = view(o)
	}
	return views, nil
}

func (s *Service) resolveAll(ctx context.Context, m *matcher.Matcher, in []domain.RecordInput) ([]matcher.Outcome, error) {
	recs := make([]matcher.InputRecord, len(in))
	for i, r := range in {
		recs[i] = r.Record()
	}
	return m.ResolveBatch(ctx, recs, s.Cfg.Workers)
}

// Stats implements domain.ResolverPort
func (s *Service) Stats(_ context.Context) (domain.StatsView, error) {
	cur, err := s.current()
	if err != nil {
		return domain.StatsView{}, err
	}
	p := cur.m.Pool()
	return domain.StatsView{
		Stats:          cur.m.Stats(),
		PoolSize:       p.Len(),
		SharedDomains:  p.SharedDomains(),
		LoadedAt:       cur.at,
		MatcherVersion: version.Matcher,
	}, nil
}

func view(o matcher.Outcome) domain.OutcomeView {
	return domain.OutcomeView{Outcome: o, MatcherVersion: version.Matcher}
}
