package clause

import (
	"sort"

	"github.com/horn-infer/hornqual/internal/herrors"
	"github.com/horn-infer/hornqual/internal/term"
)

// Normalize turns fi's raw subtyping constraints into Rules and Queries.
// Constraints are processed in sorted-id order so that output ordering is
// deterministic given identical input, independent of any upstream map
// iteration order.
func Normalize(fi *FInfo) ([]Rule, []Query, error) {
	ids := make([]string, 0, len(fi.Constraints))
	for id := range fi.Constraints {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var rules []Rule
	var queries []Query
	var errs []error

	for _, id := range ids {
		c := fi.Constraints[id]
		c.ID = id
		rule, query, err := normalizeOne(fi, c)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if rule != nil {
			rules = append(rules, *rule)
		} else {
			queries = append(queries, *query)
		}
	}
	if agg := herrors.Aggregate(errs...); agg != nil {
		return nil, nil, agg
	}
	return rules, queries, nil
}

type collectedExpr struct {
	expr  term.Expr
	assoc term.Symbol
}

func normalizeOne(fi *FInfo, c RawConstraint) (*Rule, *Query, error) {
	eLHS := scrubExpr(c.LHS.Instantiate(term.VV), term.VV)
	eRHS := scrubExpr(c.RHS.Instantiate(term.VV), term.VV)

	collected := []collectedExpr{{expr: eLHS, assoc: term.VV}}
	for _, bID := range c.Env {
		b, ok := fi.Binds[bID]
		if !ok {
			return nil, nil, herrors.NewInputError(herrors.PhaseNormalize, string(bID), "no binding recorded for bound variable in constraint "+c.ID)
		}
		e := scrubExpr(b.Refined.Instantiate(b.Sym), b.Sym)
		collected = append(collected, collectedExpr{expr: e, assoc: b.Sym})
	}

	var atoms []term.Expr
	var children []Child
	for _, ce := range collected {
		for _, conjunct := range flattenConjuncts(ce.expr) {
			if kapp, ok := conjunct.(term.KApp); ok {
				children = append(children, Child{K: kapp.K, Sigma: kapp.Sigma, Sym: ce.assoc})
				continue
			}
			atoms = append(atoms, conjunct)
		}
	}
	body := term.ConjoinAll(atoms...)

	if kapp, ok := eRHS.(term.KApp); ok {
		if _, wf := fi.WF[kapp.K]; !wf {
			return nil, nil, herrors.NewInputError(herrors.PhaseNormalize, string(kapp.K), "k-variable used as a rule head has no well-formedness entry, constraint "+c.ID)
		}
		return &Rule{ID: c.ID, Body: body, Children: children, Head: kapp.K}, nil, nil
	}
	return nil, &Query{ID: c.ID, Body: body, Children: children, Head: eRHS}, nil
}

// flattenConjuncts flattens top-level conjunction into its conjuncts; a
// non-conjunction expression flattens to itself.
func flattenConjuncts(e term.Expr) []term.Expr {
	if and, ok := e.(term.And); ok {
		var out []term.Expr
		for _, x := range and.Xs {
			out = append(out, flattenConjuncts(x)...)
		}
		return out
	}
	return []term.Expr{e}
}

// scrubExpr removes, from every k-var application reachable inside e,
// substitution pairs whose value is exactly Var{assoc} — the identity-like
// `[x := x]`-shaped artefacts left over by the upstream encoding whenever a
// bound variable's own refinement mentions its own k-applications.
func scrubExpr(e term.Expr, assoc term.Symbol) term.Expr {
	switch n := e.(type) {
	case term.IntLit, term.RealLit, term.BoolLit, term.Var:
		return e
	case term.Neg:
		return term.Neg{X: scrubExpr(n.X, assoc)}
	case term.BinArith:
		return term.BinArith{Op: n.Op, L: scrubExpr(n.L, assoc), R: scrubExpr(n.R, assoc)}
	case term.BinRel:
		return term.BinRel{Op: n.Op, L: scrubExpr(n.L, assoc), R: scrubExpr(n.R, assoc)}
	case term.Not:
		return term.Not{X: scrubExpr(n.X, assoc)}
	case term.And:
		xs := make([]term.Expr, len(n.Xs))
		for i, x := range n.Xs {
			xs[i] = scrubExpr(x, assoc)
		}
		return term.And{Xs: xs}
	case term.Or:
		xs := make([]term.Expr, len(n.Xs))
		for i, x := range n.Xs {
			xs[i] = scrubExpr(x, assoc)
		}
		return term.Or{Xs: xs}
	case term.Implies:
		return term.Implies{L: scrubExpr(n.L, assoc), R: scrubExpr(n.R, assoc)}
	case term.Iff:
		return term.Iff{L: scrubExpr(n.L, assoc), R: scrubExpr(n.R, assoc)}
	case term.Exists:
		return term.Exists{Vars: n.Vars, Sorts: n.Sorts, Body: scrubExpr(n.Body, assoc)}
	case term.Ite:
		return term.Ite{Cond: scrubExpr(n.Cond, assoc), Then: scrubExpr(n.Then, assoc), Else: scrubExpr(n.Else, assoc)}
	case term.App:
		args := make([]term.Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = scrubExpr(a, assoc)
		}
		return term.App{Func: n.Func, Args: args}
	case term.KApp:
		var pairs []term.SubstPair
		for _, p := range n.Sigma.Pairs() {
			if v, ok := p.Value.(term.Var); ok && v.Sym == assoc {
				continue
			}
			pairs = append(pairs, term.SubstPair{Key: p.Key, Value: scrubExpr(p.Value, assoc)})
		}
		return term.KApp{K: n.K, Sigma: term.NewSubst(pairs...)}
	case term.Interp:
		return term.Interp{X: scrubExpr(n.X, assoc)}
	default:
		return e
	}
}
