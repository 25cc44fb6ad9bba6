// Package http provides http transport for the match service
package http

import (
	stdhttp "net/http"

	phttp "outreach/internal/platform/net/http"
	"outreach/internal/platform/net/http/bind"
	"outreach/internal/services/match/domain"
)

// batchMaxBytes fits MaxBatch records with generous field sizes
const batchMaxBytes = 4 << 20

// Register mounts match endpoints on the given router
func Register(r phttp.Router, s domain.ResolverPort) {
	h := &handlers{svc: s}

	// single record
	phttp.PostJSON[domain.RecordInput](r, "/resolve", h.resolve)

	// up to domain.MaxBatch records, answered in input order
	phttp.PostJSON[domain.BatchInput](r, "/batch", h.batch, bind.JSONOptions{MaxBytes: batchMaxBytes})

	// counters since the last pool load
	phttp.GetJSON(r, "/stats", h.stats)

	// rebuild the pool from storage
	r.Post("/reload", phttp.JSONHandlerNoBody(h.reload))
}

type handlers struct{ svc domain.ResolverPort }

func (h *handlers) resolve(r *stdhttp.Request, in domain.RecordInput) (any, error) {
	return h.svc.Resolve(r.Context(), in)
}

func (h *handlers) batch(r *stdhttp.Request, in domain.BatchInput) (any, error) {
	outs, err := h.svc.ResolveBatch(r.Context(), in.Records)
	if err != nil {
		return nil, err
	}
	return map[string]any{"outcomes": outs, "count": len(outs)}, nil
}

func (h *handlers) stats(r *stdhttp.Request) (any, error) {
	return h.svc.Stats(r.Context())
}

func (h *handlers) reload(r *stdhttp.Request) (any, error) {
	return h.svc.Reload(r.Context())
}
