package query

import (
	"github.com/hashicorp/go-hclog"

	"github.com/horn-infer/hornqual/internal/term"
)

// Expand flattens a disjunctive interpolation tree into the list of tree
// interpolation queries it represents, one per combination of disjunctive
// alternatives: every Or node disappears, replaced by its children's own
// expansions, each relabeled with the Or's own Info so that solution
// extraction can still tell which k-variable occurrence it came from.
//
// When a combination count at some And node would exceed threshold, a
// warning is logged (via log, which may be nil to suppress it) but
// expansion still proceeds — thresholds here are observability, not a cap.
func Expand(root Node, threshold int, log hclog.Logger) []Node {
	return expandNode(root, threshold, log)
}

func expandNode(n Node, threshold int, log hclog.Logger) []Node {
	switch t := n.(type) {
	case And:
		return expandAnd(t, threshold, log)
	case Or:
		out := make([]Node, 0, len(t.Children))
		for _, c := range t.Children {
			for _, e := range expandNode(c, threshold, log) {
				out = append(out, attachInfo(e, t.Info))
			}
		}
		return out
	default:
		return nil
	}
}

// attachInfo grafts info onto an And node produced by expansion, overriding
// its own Info (rule-instantiation And nodes always start with Info nil, so
// there is nothing to lose).
func attachInfo(n Node, info *Info) Node {
	a := n.(And)
	a.Info = info
	return a
}

func expandAnd(a And, threshold int, log hclog.Logger) []Node {
	if len(a.Children) == 0 {
		return []Node{And{Info: a.Info, RootExpr: a.RootExpr, Children: nil}}
	}

	childAlts := make([][]Node, len(a.Children))
	total := 1
	for i, c := range a.Children {
		alts := expandNode(c, threshold, log)
		if len(alts) == 0 {
			// One child has no valid expansion path (an unknown k-variable,
			// or a branch that itself bottomed out empty): this whole
			// conjunction contributes no tree interpolation query.
			return nil
		}
		childAlts[i] = alts
		total *= len(alts)
	}
	if threshold > 0 && total > threshold && log != nil {
		log.Warn("or-expansion combination count exceeds configured threshold",
			"count", total, "threshold", threshold)
	}

	out := make([]Node, 0, total)
	for _, combo := range cartesianProduct(childAlts) {
		out = append(out, And{Info: a.Info, RootExpr: a.RootExpr, Children: combo})
	}
	return out
}

// cartesianProduct enumerates every combination across lists using an
// explicit odometer of counters rather than recursion, so a wide Or-fan
// doesn't consume Go call-stack depth proportional to the tree's branching.
func cartesianProduct(lists [][]Node) [][]Node {
	if len(lists) == 0 {
		return [][]Node{nil}
	}
	counters := make([]int, len(lists))
	var out [][]Node
	for {
		combo := make([]Node, len(lists))
		for i, l := range lists {
			combo[i] = l[counters[i]]
		}
		out = append(out, combo)

		i := len(lists) - 1
		for i >= 0 {
			counters[i]++
			if counters[i] < len(lists[i]) {
				break
			}
			counters[i] = 0
			i--
		}
		if i < 0 {
			return out
		}
	}
}

// disjoinAll mirrors term.ConjoinAll for disjunction: empty collapses to
// false, a single expression passes through, otherwise an Or node.
func disjoinAll(xs ...term.Expr) term.Expr {
	switch len(xs) {
	case 0:
		return term.BoolLit{Value: false}
	case 1:
		return xs[0]
	default:
		return term.Or{Xs: xs}
	}
}
