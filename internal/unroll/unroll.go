package unroll

import (
	"sort"

	hclog "github.com/hashicorp/go-hclog"

	"github.com/horn-infer/hornqual/internal/clause"
	"github.com/horn-infer/hornqual/internal/herrors"
	"github.com/horn-infer/hornqual/internal/query"
	"github.com/horn-infer/hornqual/internal/term"
)

// Unroll expands q against kc under a per-k-variable depth budget of depth,
// returning the root of the resulting disjunctive interpolation tree and the
// State recording every fresh symbol it introduced.
//
// Every k-variable known to kc starts with budget depth. At an occurrence of
// K, if its remaining budget is positive the occurrence may expand through
// the union of K's recursive and non-recursive rules, and the budget seen by
// occurrences of K nested under it is one less; once the budget reaches
// zero, only K's non-recursive rules remain available, guaranteeing
// termination along every recursive edge while leaving non-recursive
// expansion unbounded.
func Unroll(q clause.Query, kc *clause.KClauses, symSorts term.SortEnv, depth int, log hclog.Logger) (query.Node, *State, error) {
	if depth < 0 {
		return nil, nil, herrors.NewInputError(herrors.PhaseUnroll, q.ID, "depth budget must be non-negative")
	}
	if log == nil {
		log = hclog.NewNullLogger()
	}

	seeds := collectSeeds(q, kc)
	st := NewState(seeds)

	vvSort := lookupSort(symSorts, term.VV, log)
	v0 := st.freshFor(term.VV, vvSort)
	st.UnrollSubs[v0] = term.VV
	sigma0 := term.NewSubst(term.SubstPair{Key: term.VV, Value: term.Var{Sym: v0}})

	qBody := sigma0.Apply(q.Body)
	qHead := sigma0.Apply(q.Head)

	dmap := initDepthMap(kc, depth)

	children := make([]query.Node, 0, len(q.Children))
	for _, c := range q.Children {
		sigma := renameSubstValues(c.Sigma, sigma0)
		sym := c.Sym
		if sym == term.VV {
			sym = v0
		}
		children = append(children, expandOccurrence(c.K, sigma, sym, dmap, kc, symSorts, st, log))
	}

	root := query.And{
		Info:     nil,
		RootExpr: term.ConjoinAll(term.Not{X: qHead}, qBody),
		Children: children,
	}
	return root, st, nil
}

// lookupSort resolves sym's sort, logging the SortLookupMiss recovery at
// debug level and defaulting to Int whenever symSorts has no entry for it.
func lookupSort(symSorts term.SortEnv, sym term.Symbol, log hclog.Logger) term.Sort {
	s, ok := symSorts.Lookup(sym)
	if !ok {
		log.Debug("sort lookup miss", "error", herrors.NewSortLookupMiss(string(sym)))
	}
	return s
}

// initDepthMap seeds the depth budget for every k-variable kc knows about.
func initDepthMap(kc *clause.KClauses, depth int) map[term.KVar]int {
	dmap := make(map[term.KVar]int)
	for k := range kc.Recursive {
		dmap[k] = depth
	}
	for k := range kc.NonRecursive {
		if _, ok := dmap[k]; !ok {
			dmap[k] = depth
		}
	}
	return dmap
}

func copyDepthMap(dmap map[term.KVar]int) map[term.KVar]int {
	out := make(map[term.KVar]int, len(dmap))
	for k, v := range dmap {
		out[k] = v
	}
	return out
}

// expandOccurrence unrolls one k-variable occurrence K[sigma], tagged with
// the symbol sym its vv is bound to, into an Or node over its candidate
// rules. An unknown k-variable unrolls to a childless Or: it has no
// expansion paths, and Serialize renders it as `false`.
func expandOccurrence(k term.KVar, sigma *term.Subst, sym term.Symbol, dmap map[term.KVar]int, kc *clause.KClauses, symSorts term.SortEnv, st *State, log hclog.Logger) query.Node {
	info := &query.Info{K: k, Sym: sym}
	if !kc.Known(k) {
		return query.Or{Info: info, Children: nil}
	}

	budget := dmap[k]
	rules := kc.RulesFor(k, budget)

	childDmap := dmap
	if budget > 0 {
		childDmap = copyDepthMap(dmap)
		childDmap[k] = budget - 1
	}

	alternatives := make([]query.Node, 0, len(rules))
	for _, r := range rules {
		body, instChildren := instantiateRule(r, sigma, sym, st, symSorts, log)

		subChildren := make([]query.Node, 0, len(instChildren))
		for _, c := range instChildren {
			subChildren = append(subChildren, expandOccurrence(c.K, c.Sigma, c.Sym, childDmap, kc, symSorts, st, log))
		}
		alternatives = append(alternatives, query.And{Info: nil, RootExpr: body, Children: subChildren})
	}
	return query.Or{Info: info, Children: alternatives}
}

// instantiateRule produces a fresh instance of r for one occurrence: every
// free symbol of r other than vv is renamed to a symbol private to this
// instance (so that two occurrences expanding the same rule never alias one
// another's locals), vv is replaced by the occurrence's own binder symbol,
// and each free symbol sigma binds is additionally equated, via a fresh
// substitution symbol, to the expression sigma supplies for it.
func instantiateRule(r clause.Rule, sigma *term.Subst, vvBinding term.Symbol, st *State, symSorts term.SortEnv, log hclog.Logger) (term.Expr, []clause.Child) {
	rename := term.NewSubst(term.SubstPair{Key: term.VV, Value: term.Var{Sym: vvBinding}})
	var substAtoms []term.Expr

	for _, free := range ruleFreeSymbols(r) {
		if free == term.VV {
			continue
		}
		freeSort := lookupSort(symSorts, free, log)
		fresh := st.freshFor(free, freeSort)
		st.UnrollSubs[fresh] = st.Original(free)

		if value, ok := sigma.Lookup(free); ok {
			substAtoms = append(substAtoms, term.BinRel{Op: term.Eq, L: term.Var{Sym: fresh}, R: value})
		}
		rename.Set(free, term.Var{Sym: fresh})
	}

	body := rename.Apply(r.Body)
	conjuncts := append([]term.Expr{body}, substAtoms...)

	children := make([]clause.Child, len(r.Children))
	for i, c := range r.Children {
		childSigma := renameSubstValues(c.Sigma, rename)
		childSym := c.Sym
		if renamed, ok := rename.Lookup(c.Sym); ok {
			if v, ok := renamed.(term.Var); ok {
				childSym = v.Sym
			}
		}
		children[i] = clause.Child{K: c.K, Sigma: childSigma, Sym: childSym}
	}
	return term.ConjoinAll(conjuncts...), children
}

// ruleFreeSymbols returns, in a stable order, every symbol free in r.Body or
// in any child's substitution values or binder symbol, except vv itself.
func ruleFreeSymbols(r clause.Rule) []term.Symbol {
	seen := make(map[term.Symbol]struct{})
	var out []term.Symbol
	add := func(s term.Symbol) {
		if s == term.VV {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	for _, s := range term.SortedFreeVars(r.Body) {
		add(s)
	}
	for _, c := range r.Children {
		add(c.Sym)
		for _, p := range c.Sigma.Pairs() {
			for _, s := range term.SortedFreeVars(p.Value) {
				add(s)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// renameSubstValues applies rename to every value in sigma, leaving its keys
// untouched: a substitution's keys name positions in the callee's rule, not
// symbols of the caller being renamed.
func renameSubstValues(sigma *term.Subst, rename *term.Subst) *term.Subst {
	if sigma.Len() == 0 {
		return sigma
	}
	pairs := make([]term.SubstPair, 0, sigma.Len())
	for _, p := range sigma.Pairs() {
		pairs = append(pairs, term.SubstPair{Key: p.Key, Value: rename.Apply(p.Value)})
	}
	return term.NewSubst(pairs...)
}

// collectSeeds gathers every symbol appearing anywhere in q or kc so the
// State's renamer starts its per-base counters above any suffix already in
// use.
func collectSeeds(q clause.Query, kc *clause.KClauses) []term.Symbol {
	seen := make(map[term.Symbol]struct{})
	var out []term.Symbol
	add := func(s term.Symbol) {
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	addExpr := func(e term.Expr) {
		for s := range term.FreeVars(e) {
			add(s)
		}
	}
	addChildren := func(children []clause.Child) {
		for _, c := range children {
			add(c.Sym)
			for _, p := range c.Sigma.Pairs() {
				add(p.Key)
				addExpr(p.Value)
			}
		}
	}

	addExpr(q.Body)
	addExpr(q.Head)
	addChildren(q.Children)

	for _, rules := range []map[term.KVar][]clause.Rule{kc.Recursive, kc.NonRecursive} {
		for _, rs := range rules {
			for _, r := range rs {
				addExpr(r.Body)
				addChildren(r.Children)
			}
		}
	}
	return out
}
