// Package solution rehydrates a TreeInterp back into per-k-variable
// candidate predicates: it reverses the unroller's renaming via unrollSubs,
// substitutes each info-tagged node's own vv-binding back to the canonical
// vv, and collects the results into a map keyed by k-variable.
package solution

import (
	"sort"

	"github.com/horn-infer/hornqual/internal/query"
	"github.com/horn-infer/hornqual/internal/term"
)

// Candidates maps each k-variable to the candidate predicates collected for
// it, each phrased over the canonical implicit argument vv.
type Candidates map[term.KVar][]term.Expr

// Extract walks t top-down, transforming every node's interpolant by (a)
// applying unrollSubs as a substitution, replacing every fresh symbol with
// the original it stands for, and (b) for info-tagged nodes, additionally
// rehydrating the node's own vv-binding (sym) back to the canonical vv —
// then collecting each info-tagged node's transformed expression into
// candidates[K].
func Extract(t query.TreeInterp, unrollSubs map[term.Symbol]term.Symbol) Candidates {
	candidates := make(Candidates)
	walk(t, unrollSubs, candidates)
	return candidates
}

func walk(t query.TreeInterp, unrollSubs map[term.Symbol]term.Symbol, candidates Candidates) {
	switch n := t.(type) {
	case query.InterpAnd:
		expr := rehydrate(n.Interpolant, unrollSubs, n.Info)
		if n.Info != nil {
			candidates[n.Info.K] = append(candidates[n.Info.K], numberify(expr))
		}
		for _, c := range n.Children {
			walk(c, unrollSubs, candidates)
		}
	case query.InterpOr:
		for _, c := range n.Children {
			walk(c, unrollSubs, candidates)
		}
	}
}

// rehydrate applies the reverse-unrolling substitution to e: every free
// symbol that unrollSubs records is replaced by the original symbol it
// stands for (transitively collapsed), and if info is non-nil, info.Sym is
// additionally mapped to the canonical vv.
func rehydrate(e term.Expr, unrollSubs map[term.Symbol]term.Symbol, info *query.Info) term.Expr {
	pairs := make([]term.SubstPair, 0, len(unrollSubs)+1)
	for fresh := range unrollSubs {
		pairs = append(pairs, term.SubstPair{Key: fresh, Value: term.Var{Sym: original(fresh, unrollSubs)}})
	}
	if info != nil {
		pairs = append(pairs, term.SubstPair{Key: info.Sym, Value: term.Var{Sym: term.VV}})
	}
	sigma := term.NewSubst(pairs...)
	return sigma.Apply(e)
}

func original(sym term.Symbol, unrollSubs map[term.Symbol]term.Symbol) term.Symbol {
	cur := sym
	for {
		orig, ok := unrollSubs[cur]
		if !ok {
			return cur
		}
		cur = orig
	}
}

// numberify replaces every free variable whose name parses as an integer
// literal with the corresponding IntLit, reversing the renaming artefact
// where an integer constant had earlier become a symbol name.
func numberify(e term.Expr) term.Expr {
	pairs := make([]term.SubstPair, 0)
	seen := make(map[term.Symbol]struct{})
	for sym := range term.FreeVars(e) {
		if _, ok := seen[sym]; ok {
			continue
		}
		seen[sym] = struct{}{}
		if n, ok := sym.IsInteger(); ok {
			pairs = append(pairs, term.SubstPair{Key: sym, Value: term.IntLit{Value: n}})
		}
	}
	if len(pairs) == 0 {
		return e
	}
	return term.NewSubst(pairs...).Apply(e)
}

// SortedKVars returns candidates' keys in a deterministic order, for
// outputs that must not depend on map iteration order.
func (c Candidates) SortedKVars() []term.KVar {
	out := make([]term.KVar, 0, len(c))
	for k := range c {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
