// Package query implements the disjunctive interpolation And/Or tree, its
// Or-expansion into tree interpolation queries, and the query serializer
// that emits the tree-interpolation formula and counts its cut points.
package query

import "github.com/horn-infer/hornqual/internal/term"

// Info marks a node as corresponding to an unrolled k-variable occurrence.
// It drives solution extraction: the And-child directly below an Or node
// carrying Info contributes a candidate predicate for Info.K.
type Info struct {
	K   term.KVar
	Sym term.Symbol
}

// Node is either an And node (a conjunction whose RootExpr is a clause
// body) or an Or node (a disjunction over alternative expansions for one
// k-variable occurrence).
type Node interface {
	isNode()
}

// And is a conjunction node; its subtree is a tree-interpolation query when
// free of Or-nodes.
type And struct {
	Info     *Info
	RootExpr term.Expr
	Children []Node
}

// Or is a disjunction over alternative expansions for a single k-variable
// occurrence.
type Or struct {
	Info     *Info
	Children []Node
}

func (And) isNode() {}
func (Or) isNode()  {}

// TreeInterp mirrors an InterpQuery's And/Or skeleton and Info tags exactly,
// with each And node's RootExpr replaced by the interpolant the SMT solver
// returned at that cut.
type TreeInterp interface {
	isTreeInterp()
}

// InterpAnd is a TreeInterp And node.
type InterpAnd struct {
	Info        *Info
	Interpolant term.Expr
	Children    []TreeInterp
}

// InterpOr is a TreeInterp Or node.
type InterpOr struct {
	Info     *Info
	Children []TreeInterp
}

func (InterpAnd) isTreeInterp() {}
func (InterpOr) isTreeInterp()  {}
