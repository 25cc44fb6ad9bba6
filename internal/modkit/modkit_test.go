package modkit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"outreach/internal/platform/config"
	phttp "outreach/internal/platform/net/http"
	"outreach/internal/platform/store"
)

func TestBuild_DefaultsAndPrefix(t *testing.T) {
	b := Build(WithName("match"), WithPrefix("match/"), WithPorts(42))
	if b.Name != "match" || b.Prefix != "/match" || b.Ports != 42 || b.Register == nil {
		t.Fatalf("Build = %+v", b)
	}
	if got := Build(WithPrefix(" / ")).Prefix; got != "" {
		t.Fatalf("blank prefix = %q", got)
	}
}

func TestBuilt_Mount(t *testing.T) {
	tagged := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Module", "match")
			next.ServeHTTP(w, r)
		})
	}
	b := Build(
		WithPrefix("/match"),
		WithMiddlewares(tagged),
		WithRegister(func(r phttp.Router) {
			r.Get("/extra", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusAccepted) })
		}),
	)
	r := phttp.NewRouter()
	b.Mount(r, func(rr phttp.Router) {
		rr.Get("/stats", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	})

	for path, want := range map[string]int{"/match/stats": 200, "/match/extra": 202, "/stats": 404} {
		rr := httptest.NewRecorder()
		r.Mux().ServeHTTP(rr, httptest.NewRequest("GET", path, nil))
		if rr.Code != want {
			t.Fatalf("GET %s = %d, want %d", path, rr.Code, want)
		}
		if want != 404 && rr.Header().Get("X-Module") != "match" {
			t.Fatalf("module middleware not applied on %s", path)
		}
	}
}

func TestFromStore(t *testing.T) {
	d := FromStore(config.New(), nil)
	if d.PG != nil || d.CH != nil {
		t.Fatalf("nil store should leave seams nil")
	}
	d = FromStore(config.New(), &store.Store{})
	if d.PG != nil {
		t.Fatalf("disabled pg should stay nil")
	}
}
