package api

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"outreach/internal/modkit"
	"outreach/internal/modkit/module"
	"outreach/internal/platform/config"
	phttp "outreach/internal/platform/net/http"
	"outreach/internal/platform/store"
	matchdom "outreach/internal/services/match/domain"
	matchmod "outreach/internal/services/match/module"
)

type nopDB struct{}

func (nopDB) Exec(context.Context, string, ...any) (store.CommandTag, error) { return nil, nil }
func (nopDB) Query(context.Context, string, ...any) (store.Rows, error)      { return nil, errors.New("no db") }
func (nopDB) QueryRow(context.Context, string, ...any) store.Row             { return nil }
func (d nopDB) Tx(_ context.Context, fn func(store.RowQuerier) error) error   { return fn(d) }

type guard struct{ err error }

func (g guard) Guard(context.Context) error { return g.err }

func TestMount(t *testing.T) {
	module.Reset()
	t.Cleanup(module.Reset)

	r := phttp.NewRouter()
	mods, err := Mount(r, Options{
		Config:      config.New(),
		Deps:        modkit.Deps{PG: nopDB{}},
		Match:       matchmod.FromConfig(config.New()),
		Guard:       guard{},
		ServiceName: "outreach-api",
	})
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if len(mods) != 2 {
		t.Fatalf("mods = %d", len(mods))
	}
	if _, ok := module.PortsAs[matchmod.Ports]("match"); !ok {
		t.Fatalf("match ports not registered")
	}

	tests := []struct {
		path   string
		status int
		body   string
	}{
		{"/healthz", 200, `"status":"ok"`},
		{"/metrics", 200, "outreach_"},
		{"/api/v1/meta/health", 200, "outreach-api"},
		{"/api/v1/match/stats", 503, "not loaded"},
	}
	for _, tc := range tests {
		rec := httptest.NewRecorder()
		r.Mux().ServeHTTP(rec, httptest.NewRequest("GET", tc.path, nil))
		if rec.Code != tc.status || !strings.Contains(rec.Body.String(), tc.body) {
			t.Fatalf("GET %s = %d %s", tc.path, rec.Code, rec.Body.String())
		}
		if rec.Header().Get("X-Request-ID") == "" {
			t.Fatalf("GET %s: missing request id header", tc.path)
		}
	}

	// the resolver is reachable through the registry as well
	res, _ := module.PortsAs[matchmod.Ports]("match")
	var _ matchdom.ResolverPort = res.Resolver
}

func TestHealthz_StoreDown(t *testing.T) {
	h := healthz(guard{err: errors.New("pg: refused")})
	_, err := h(httptest.NewRequest("GET", "/healthz", nil))
	if err == nil || !strings.Contains(err.Error(), "refused") {
		t.Fatalf("err = %v", err)
	}
}
