// Package module wires the match service into the API and the batch runner using modkit
package module

import (
	"outreach/internal/adapters/arbiter/llm"
	"outreach/internal/adapters/arbiter/rules"
	"outreach/internal/core/matcher"
	"outreach/internal/modkit"
	perr "outreach/internal/platform/errors"
	phttp "outreach/internal/platform/net/http"
	"outreach/internal/services/match/domain"
	matchhttp "outreach/internal/services/match/http"
	"outreach/internal/services/match/repo"
	"outreach/internal/services/match/service"
)

// Ports exposed by the match module
type Ports struct {
	Resolver domain.ResolverPort
	Runner   domain.RunnerPort
}

var _ modkit.Module = (*Module)(nil)

// Module implements the match module
type Module struct {
	deps  modkit.Deps
	built modkit.Built
	ports Ports
	svc   *service.Service
}

// New constructs the match module. The pool is empty until Resolver.Reload or Runner.Run.
func New(deps modkit.Deps, o Options, opts ...modkit.Option) (*Module, error) {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("match"), modkit.WithPrefix("/match")}, opts...)...)

	if deps.PG == nil {
		return nil, perr.Unavailablef("match module requires postgres")
	}
	if err := o.Matcher.Validate(); err != nil {
		return nil, err
	}
	arb, err := NewArbitrator(o)
	if err != nil {
		return nil, err
	}

	var audit domain.AuditPort
	if deps.CH != nil {
		audit = repo.NewCH(deps.CH)
	}

	svc := service.New(deps.PG, repo.NewPG(), audit, arb, service.Config{
		Matcher:   o.Matcher,
		Workers:   o.Workers,
		PageSize:  o.PageSize,
		DryRun:    o.DryRun,
		Audit:     o.Audit,
		TxTimeout: o.TxTimeout,
	})

	m := &Module{deps: deps, built: b, svc: svc}
	m.ports = Ports{Resolver: svc, Runner: svc}
	return m, nil
}

// NewArbitrator picks the arbitrator named by o.Arbiter; none gives a nil Arbitrator
func NewArbitrator(o Options) (matcher.Arbitrator, error) {
	switch o.Arbiter {
	case ArbiterRules:
		return rules.New(), nil
	case ArbiterLLM:
		a, err := llm.New(o.LLM)
		if err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, nil
	}
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return m.built.Name }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r phttp.Router) {
	m.built.Mount(r, func(rr phttp.Router) { matchhttp.Register(rr, m.svc) })
}
