// Package qualifier decomposes per-k-variable candidate predicates into
// atomic, typed qualifier records: every candidate is flattened under its
// connectives down to atoms, each atom's free symbols are sorted, and the
// resulting records are deduplicated across every k-variable.
package qualifier

import (
	"sort"

	hclog "github.com/hashicorp/go-hclog"

	"github.com/horn-infer/hornqual/internal/clause"
	"github.com/horn-infer/hornqual/internal/herrors"
	"github.com/horn-infer/hornqual/internal/solution"
	"github.com/horn-infer/hornqual/internal/term"
)

// Param is one typed parameter of a Qualifier.
type Param struct {
	Sym  term.Symbol
	Sort term.Sort
}

// Qualifier is one atomic predicate extracted from a k-variable's candidate
// set, with its free symbols resolved to sorted parameters.
type Qualifier struct {
	Name     string
	Params   []Param
	Body     term.Expr
	Location term.KVar
}

// Extract flattens every k-variable's candidates in candidates down to
// atomic predicates, types each atom's free symbols from symSorts
// (defaulting to integer, and using the k-variable's own parameter sort from
// wf for occurrences of vv), and deduplicates the resulting records across
// every k-variable by structural equality of their bodies.
func Extract(candidates solution.Candidates, symSorts term.SortEnv, wf clause.WellFormed, log hclog.Logger) []Qualifier {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	var out []Qualifier
	for _, k := range candidates.SortedKVars() {
		for _, pred := range candidates[k] {
			for _, atom := range flatten(pred) {
				out = append(out, qualifierFor(k, atom, symSorts, wf, log))
			}
		}
	}
	return dedupe(out)
}

// flatten decomposes e under conjunction and disjunction into the multiset
// of atomic predicates below those connectives; Not/Implies/Iff/Exists/Ite
// and atomic relations are themselves treated as atoms, since only
// conjunction and disjunction are flattened.
func flatten(e term.Expr) []term.Expr {
	switch n := e.(type) {
	case term.And:
		var out []term.Expr
		for _, x := range n.Xs {
			out = append(out, flatten(x)...)
		}
		return out
	case term.Or:
		var out []term.Expr
		for _, x := range n.Xs {
			out = append(out, flatten(x)...)
		}
		return out
	default:
		return []term.Expr{e}
	}
}

func qualifierFor(k term.KVar, atom term.Expr, symSorts term.SortEnv, wf clause.WellFormed, log hclog.Logger) Qualifier {
	syms := term.SortedFreeVars(atom)
	params := make([]Param, 0, len(syms))
	for _, s := range syms {
		params = append(params, Param{Sym: s, Sort: sortFor(s, k, symSorts, wf, log)})
	}
	sort.Slice(params, func(i, j int) bool { return params[i].Sym < params[j].Sym })

	return Qualifier{
		Name:     qualifierName(k, atom),
		Params:   params,
		Body:     atom,
		Location: k,
	}
}

// sortFor looks up sym's sort, defaulting to integer and logging the
// SortLookupMiss recovery at debug level; an occurrence of vv uses k's own
// well-formedness sort rather than the default.
func sortFor(sym term.Symbol, k term.KVar, symSorts term.SortEnv, wf clause.WellFormed, log hclog.Logger) term.Sort {
	if sym == term.VV {
		if s, ok := wf[k]; ok {
			return s
		}
	}
	if s, ok := symSorts.Lookup(sym); ok {
		return s
	}
	log.Debug("sort lookup miss", "error", herrors.NewSortLookupMiss(string(sym)))
	return term.Int
}

// qualifierName derives a stable, human-readable name from the k-variable
// and the atom's own syntactic shape, not from any synthesized counter, so
// that two identical atoms under the same k-variable always name the same.
func qualifierName(k term.KVar, atom term.Expr) string {
	return string(k) + "_" + atom.String()
}

// dedupe removes records whose Body is structurally equal to one already
// kept, across every k-variable, preserving first-seen order.
func dedupe(qs []Qualifier) []Qualifier {
	var out []Qualifier
	for _, q := range qs {
		dup := false
		for _, kept := range out {
			if term.Equal(kept.Body, q.Body) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, q)
		}
	}
	return out
}
