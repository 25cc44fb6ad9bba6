package matcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	perr "outreach/internal/platform/errors"
)

// Decision is an arbitrator verdict
type Decision string

const (
	DecisionSelected       Decision = "SELECTED"
	DecisionRejected       Decision = "REJECTED"
	DecisionStillAmbiguous Decision = "STILL_AMBIGUOUS"
)

// CollisionCandidate is what an arbitrator sees of each contender
type CollisionCandidate struct {
	CompanyID string  `json:"company_id"`
	Name      string  `json:"name"`
	Score     float64 `json:"score"`
	City      string  `json:"city,omitempty"`
	State     string  `json:"state,omitempty"`
}

// ArbitrationRequest carries the normalized input and the collision set
type ArbitrationRequest struct {
	RecordID   string               `json:"record_id,omitempty"`
	Name       string               `json:"name"`
	City       string               `json:"city,omitempty"`
	State      string               `json:"state,omitempty"`
	Candidates []CollisionCandidate `json:"candidates"`
}

// Fingerprint identifies the request independent of candidate order and record id.
// Arbitrators must return the same decision for the same fingerprint.
func (r ArbitrationRequest) Fingerprint() string {
	cs := make([]string, len(r.Candidates))
	for i, c := range r.Candidates {
		cs[i] = strings.Join([]string{c.CompanyID, c.Name, c.City, c.State,
			strconv.FormatFloat(c.Score, 'f', 6, 64)}, "\x1f")
	}
	sort.Strings(cs)
	h := sha256.New()
	for _, part := range append([]string{r.Name, r.City, r.State}, cs...) {
		h.Write([]byte(part))
		h.Write([]byte{0x1e})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Has reports whether id is one of the candidates
func (r ArbitrationRequest) Has(id string) bool {
	for _, c := range r.Candidates {
		if c.CompanyID == id {
			return true
		}
	}
	return false
}

// Arbitration is an arbitrator's answer. CompanyID and Confidence matter only for SELECTED.
type Arbitration struct {
	Decision   Decision `json:"decision"`
	CompanyID  string   `json:"company_id,omitempty"`
	Confidence float64  `json:"confidence,omitempty"`
	Reasoning  string   `json:"reasoning,omitempty"`
	// Failed marks a verdict substituted after a timeout, error or contract violation
	Failed bool `json:"failed,omitempty"`
}

// Arbitrator settles a collision. Implementations must be idempotent per Fingerprint,
// must only select listed candidates and should honor ctx cancellation.
type Arbitrator interface {
	Arbitrate(ctx context.Context, req ArbitrationRequest) (Arbitration, error)
}

// ArbitratorFunc adapts a function to Arbitrator
type ArbitratorFunc func(ctx context.Context, req ArbitrationRequest) (Arbitration, error)

// Arbitrate implements Arbitrator
func (f ArbitratorFunc) Arbitrate(ctx context.Context, req ArbitrationRequest) (Arbitration, error) {
	return f(ctx, req)
}

// stillAmbiguous builds the downgrade verdict
func stillAmbiguous(format string, a ...any) Arbitration {
	return Arbitration{Decision: DecisionStillAmbiguous, Reasoning: fmt.Sprintf(format, a...)}
}

// arbitrate runs one bounded call. The returned Arbitration is always usable: timeouts,
// failures, panics and contract violations come back as STILL_AMBIGUOUS, and the error
// says which of those happened.
func arbitrate(ctx context.Context, a Arbitrator, req ArbitrationRequest, timeout time.Duration, minConfidence float64) (Arbitration, error) {
	cctx, cancel := withChildTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		arb Arbitration
		err error
	}
	ch := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- result{err: perr.PanicErrf("arbitrator panic: %v", r)}
			}
		}()
		arb, err := a.Arbitrate(cctx, req)
		ch <- result{arb: arb, err: err}
	}()

	var res result
	select {
	case res = <-ch:
	case <-cctx.Done():
		err := perr.Wrap(cctx.Err(), perr.ErrorCodeUnavailable, "arbitration abandoned")
		return stillAmbiguous("%v", err), err
	}
	if res.err != nil {
		err := perr.Wrap(res.err, perr.ErrorCodeUnavailable, "arbitration failed")
		return stillAmbiguous("%v", err), err
	}
	return validateArbitration(res.arb, req, minConfidence)
}

// validateArbitration enforces the contract on a returned verdict
func validateArbitration(arb Arbitration, req ArbitrationRequest, minConfidence float64) (Arbitration, error) {
	switch arb.Decision {
	case DecisionSelected:
		if !req.Has(arb.CompanyID) {
			err := perr.WithField(perr.InvalidArgf("arbitrator selected %q outside the collision set", arb.CompanyID), "company_id")
			return stillAmbiguous("%v", err), err
		}
		c := arb.Confidence
		if c != c {
			err := perr.WithField(perr.InvalidArgf("arbitrator returned NaN confidence"), "confidence")
			return stillAmbiguous("%v", err), err
		}
		arb.Confidence = min(max(c, 0), 1)
		if !atLeast(arb.Confidence, minConfidence) {
			// a weak pick is a legitimate answer, just not one we can match on
			return stillAmbiguous("arbitrator confidence %.4f below %.4f for %s: %s",
				arb.Confidence, minConfidence, arb.CompanyID, arb.Reasoning), nil
		}
		return arb, nil
	case DecisionRejected, DecisionStillAmbiguous:
		return Arbitration{Decision: arb.Decision, Reasoning: arb.Reasoning}, nil
	default:
		err := perr.WithField(perr.InvalidArgf("arbitrator returned unknown decision %q", arb.Decision), "decision")
		return stillAmbiguous("%v", err), err
	}
}

// remaining returns the time until the deadline on ctx or zero when none is set or already expired
func remaining(ctx context.Context) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 {
			return d
		}
	}
	return 0
}

// withChildTimeout picks the tighter of d and the parent's remaining budget, never extending it
func withChildTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(parent)
	}
	if rem := remaining(parent); rem > 0 && rem < d {
		return context.WithTimeout(parent, rem)
	}
	return context.WithTimeout(parent, d)
}
