// Package clause normalizes raw subtyping constraints into Rules (head is a
// k-variable) and Queries (head is a concrete predicate), and classifies
// each k-variable as recursive or non-recursive via call-graph reachability.
package clause

import "github.com/horn-infer/hornqual/internal/term"

// Refinement is a predicate template over a local implicit argument VV,
// e.g. {v: Int | v >= 0} becomes Refinement{VV: "v", Pred: v >= 0}.
type Refinement struct {
	VV   term.Symbol
	Pred term.Expr
	Sort term.Sort
}

// Instantiate substitutes actual for r.VV throughout r.Pred, returning the
// predicate phrased in terms of actual instead of the refinement's own
// local binder.
func (r Refinement) Instantiate(actual term.Symbol) term.Expr {
	if r.Pred == nil {
		return term.BoolLit{Value: true}
	}
	sigma := term.NewSubst(term.SubstPair{Key: r.VV, Value: term.Var{Sym: actual}})
	return sigma.Apply(r.Pred)
}

// BinderID names a bound-variable position in the upstream constraint file.
type BinderID string

// Binding associates a binder id with the symbol used for its occurrences
// and its refined sort.
type Binding struct {
	Sym     term.Symbol
	Refined Refinement
}

// BindEnv is the upstream bind environment: binder id -> (symbol, refined
// sort).
type BindEnv map[BinderID]Binding

// WellFormed records, for each k-variable under consideration, the sort of
// its implicit vv argument.
type WellFormed map[term.KVar]term.Sort

// RawConstraint is one subtyping constraint as received from the upstream
// parser: an LHS refinement, an RHS refinement, and the ordered set of
// binder ids in scope.
type RawConstraint struct {
	ID  string
	Env []BinderID
	LHS Refinement
	RHS Refinement
}

// FInfo is the input record produced by the upstream constraint-file parser,
// out of scope for this module.
type FInfo struct {
	Binds      BindEnv
	Constraints map[string]RawConstraint
	WF         WellFormed
	LiteralSorts term.SortEnv
	KVars      []term.KVar
}
