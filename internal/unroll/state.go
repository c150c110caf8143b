// Package unroll implements the finite-depth symbolic unroller: it expands a
// Query against a clause.KClauses rule set under a per-k-variable depth
// budget, producing a disjunctive interpolation And/Or tree
// (internal/query.Node) plus the State needed to later reverse its renaming
// during solution extraction.
package unroll

import "github.com/horn-infer/hornqual/internal/term"

// State accumulates the bookkeeping unrolling needs across the whole tree:
// CreatedSymbols records fresh symbols that must be declared to the SMT
// solver; UnrollSubs records, for every fresh symbol introduced during
// unrolling, the original symbol it stands for (transitively collapsed).
type State struct {
	CreatedSymbols map[term.Symbol]term.Sort
	UnrollSubs     map[term.Symbol]term.Symbol
	renamer        *term.Renamer
}

// NewState builds a State whose renamer is seeded from every symbol
// reachable in the unrolling's input: a fresh counter must start above any
// suffix already present, or generated names could collide with
// pre-existing ones.
func NewState(seedSymbols []term.Symbol) *State {
	return &State{
		CreatedSymbols: make(map[term.Symbol]term.Sort),
		UnrollSubs:     make(map[term.Symbol]term.Symbol),
		renamer:        term.NewRenamer(seedSymbols),
	}
}

// Original collapses a (possibly fresh) symbol transitively through
// UnrollSubs back to the non-fresh symbol or vv it ultimately stands for.
func (s *State) Original(sym term.Symbol) term.Symbol {
	cur := sym
	for {
		orig, ok := s.UnrollSubs[cur]
		if !ok {
			return cur
		}
		cur = orig
	}
}

// freshFor generates a fresh symbol from base, recording it in
// CreatedSymbols with sort, and returns it. It does not itself record an
// UnrollSubs entry: callers decide what original symbol the fresh one
// stands for.
func (s *State) freshFor(base term.Symbol, sort term.Sort) term.Symbol {
	fresh := s.renamer.Fresh(base)
	s.CreatedSymbols[fresh] = sort
	return fresh
}
