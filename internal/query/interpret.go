package query

import "github.com/horn-infer/hornqual/internal/term"

// BuildTreeInterp rebuilds a TreeInterp over n by consuming interpolants in
// exactly the order Serialize assigned their cut markers: post-order, so an
// And node's own cut (if it has one) is consumed after every cut nested
// inside its children. n must be the same tree Serialize was called on.
func BuildTreeInterp(n Node, interpolants []term.Expr) TreeInterp {
	idx := 0
	return buildNode(n, interpolants, &idx)
}

func buildNode(n Node, interpolants []term.Expr, idx *int) TreeInterp {
	switch t := n.(type) {
	case Or:
		children := make([]TreeInterp, 0, len(t.Children))
		for _, c := range t.Children {
			children = append(children, buildNode(c, interpolants, idx))
		}
		return InterpOr{Info: t.Info, Children: children}
	case And:
		children := make([]TreeInterp, 0, len(t.Children))
		for _, c := range t.Children {
			children = append(children, buildWrapped(c, interpolants, idx))
		}
		return InterpAnd{Info: t.Info, Interpolant: t.RootExpr, Children: children}
	default:
		return InterpAnd{Interpolant: term.BoolLit{Value: false}}
	}
}

// buildWrapped mirrors serializeWrapped: it recurses into c first (so nested
// cuts are consumed first), then, if c is an And node (a genuine cut point),
// replaces that node's own RootExpr with the next interpolant in sequence.
func buildWrapped(c Node, interpolants []term.Expr, idx *int) TreeInterp {
	built := buildNode(c, interpolants, idx)
	a, ok := built.(InterpAnd)
	if !ok {
		return built
	}
	if _, wasAnd := c.(And); !wasAnd {
		return built
	}
	if *idx < len(interpolants) {
		a.Interpolant = interpolants[*idx]
	}
	*idx++
	return a
}
