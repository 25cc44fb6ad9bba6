package matcher

import (
	"strings"

	"outreach/internal/core/normalize"
	perr "outreach/internal/platform/errors"
)

// sharedDomain marks a domain claimed by more than one company
const sharedDomain = -1

type poolEntry struct {
	CompanyCandidate
	name   string
	domain string
	city   string
	state  string
}

// Pool is a read-only candidate set with prebuilt indices.
// Build it once per batch and share it across goroutines.
type Pool struct {
	entries  []poolEntry
	byDomain map[string]int
	byName   map[string][]int
	byID     map[string]int
	shared   int
}

// NewPool normalizes candidates and builds the domain and name indices.
// An empty or repeated company_id is a caller error and fails the whole pool.
func NewPool(cands []CompanyCandidate) (*Pool, error) {
	return newPool(cands, normalize.Default)
}

func newPool(cands []CompanyCandidate, n *normalize.Normalizer) (*Pool, error) {
	p := &Pool{
		entries:  make([]poolEntry, 0, len(cands)),
		byDomain: make(map[string]int, len(cands)),
		byName:   make(map[string][]int, len(cands)),
		byID:     make(map[string]int, len(cands)),
	}

	for i, c := range cands {
		if strings.TrimSpace(c.CompanyID) == "" {
			return nil, perr.WithField(perr.InvalidArgf("candidate %d has empty company_id", i), "company_id")
		}
		if prev, dup := p.byID[c.CompanyID]; dup {
			return nil, perr.WithField(
				perr.DuplicateKeyf("company_id %q repeated at %d and %d", c.CompanyID, prev, i), "company_id")
		}
		e := poolEntry{
			CompanyCandidate: c,
			name:             n.CompanyName(c.CompanyName),
			domain:           n.Domain(c.Domain),
			city:             n.City(c.City),
			state:            n.State(c.State),
		}
		idx := len(p.entries)
		p.entries = append(p.entries, e)
		p.byID[c.CompanyID] = idx

		if e.domain != "" {
			if prev, ok := p.byDomain[e.domain]; ok {
				if prev != sharedDomain {
					p.byDomain[e.domain] = sharedDomain
					p.shared++
				}
			} else {
				p.byDomain[e.domain] = idx
			}
		}
		if e.name != "" {
			p.byName[e.name] = append(p.byName[e.name], idx)
		}
	}
	return p, nil
}

// Len is the number of candidates
func (p *Pool) Len() int { return len(p.entries) }

// SharedDomains counts domains claimed by several companies; those never produce GOLD
func (p *Pool) SharedDomains() int { return p.shared }

// lookupDomain returns the single owner of domain
func (p *Pool) lookupDomain(domain string) (*poolEntry, bool) {
	idx, ok := p.byDomain[domain]
	if !ok || idx == sharedDomain {
		return nil, false
	}
	return &p.entries[idx], true
}

// lookupName returns every entry whose normalized name equals name
func (p *Pool) lookupName(name string) []int { return p.byName[name] }

// Get returns a candidate by company id
func (p *Pool) Get(id string) (CompanyCandidate, bool) {
	idx, ok := p.byID[id]
	if !ok {
		return CompanyCandidate{}, false
	}
	return p.entries[idx].CompanyCandidate, true
}
