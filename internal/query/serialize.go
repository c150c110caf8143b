package query

import "github.com/horn-infer/hornqual/internal/term"

// Serialize emits a single formula over an Or-free tree interpolation query
// (the output of Expand), and counts how many Interp cut markers it
// contains — the number of interpolants the SMT solver must return for
// this query.
func Serialize(t Node) (term.Expr, int) {
	cuts := 0
	expr := serializeNode(t, &cuts)
	return expr, cuts
}

func serializeNode(n Node, cuts *int) term.Expr {
	switch t := n.(type) {
	case Or:
		disjuncts := make([]term.Expr, 0, len(t.Children))
		for _, c := range t.Children {
			disjuncts = append(disjuncts, serializeNode(c, cuts))
		}
		return disjoinAll(disjuncts...)
	case And:
		conjuncts := make([]term.Expr, 0, len(t.Children)+1)
		conjuncts = append(conjuncts, t.RootExpr)
		for _, c := range t.Children {
			conjuncts = append(conjuncts, serializeWrapped(c, cuts))
		}
		return term.ConjoinAll(conjuncts...)
	default:
		return term.BoolLit{Value: false}
	}
}

// serializeWrapped serializes an And node's child, tagging it with an
// Interp cut marker when the child is itself an And (a genuine
// interpolation cut point); an Or-child is left untagged, and its disjuncts
// are serialized without cut markers of their own.
func serializeWrapped(c Node, cuts *int) term.Expr {
	inner := serializeNode(c, cuts)
	if _, ok := c.(And); ok {
		*cuts++
		return term.Interp{X: inner}
	}
	return inner
}
