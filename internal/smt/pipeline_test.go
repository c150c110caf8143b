package smt

import (
	"testing"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/horn-infer/hornqual/internal/clause"
	"github.com/horn-infer/hornqual/internal/qualifier"
	"github.com/horn-infer/hornqual/internal/query"
	"github.com/horn-infer/hornqual/internal/solution"
	"github.com/horn-infer/hornqual/internal/term"
	"github.com/horn-infer/hornqual/internal/unroll"
)

// TestSumExampleEndToEndAgainstFakeSolver drives the full
// Normalize/BuildKClauses -> Unroll -> Expand -> Serialize -> Interpolate ->
// BuildTreeInterp -> solution.Extract -> qualifier.Extract chain for the
// sum-example scenario (R1: k <= 0 /\ v = 0 => K(v); Query: K(v) => v >= k),
// at depth 0 so only the non-recursive base case R1 applies, against a fake
// SMT backend standing in for a real subprocess.
func TestSumExampleEndToEndAgainstFakeSolver(t *testing.T) {
	r1 := clause.Rule{
		ID: "R1",
		Body: term.And{Xs: []term.Expr{
			term.BinRel{Op: term.Le, L: term.Var{Sym: "k"}, R: term.IntLit{Value: 0}},
			term.BinRel{Op: term.Eq, L: term.Var{Sym: term.VV}, R: term.IntLit{Value: 0}},
		}},
		Head: "K",
	}
	r2 := clause.Rule{
		ID: "R2",
		Body: term.And{Xs: []term.Expr{
			term.BinRel{Op: term.Gt, L: term.Var{Sym: "k"}, R: term.IntLit{Value: 0}},
			term.BinRel{Op: term.Eq, L: term.Var{Sym: term.VV}, R: term.BinArith{Op: term.Add, L: term.Var{Sym: "s"}, R: term.Var{Sym: "k"}}},
		}},
		Head: "K",
		Children: []clause.Child{
			{K: "K", Sym: "s", Sigma: term.NewSubst(
				term.SubstPair{Key: "k", Value: term.BinArith{Op: term.Sub, L: term.Var{Sym: "k"}, R: term.IntLit{Value: 1}}},
			)},
		},
	}
	q := clause.Query{
		ID:   "Q",
		Body: term.BoolLit{Value: true},
		Head: term.BinRel{Op: term.Ge, L: term.Var{Sym: term.VV}, R: term.Var{Sym: "k"}},
		Children: []clause.Child{
			{K: "K", Sym: term.VV, Sigma: term.NewSubst()},
		},
	}

	kc, err := clause.BuildKClauses([]clause.Rule{r1, r2})
	require.NoError(t, err)

	log := hclog.NewNullLogger()
	root, state, err := unroll.Unroll(q, kc, term.SortEnv{}, 0, log)
	require.NoError(t, err)

	expanded := query.Expand(root, 256, log)
	require.Len(t, expanded, 1, "depth 0 leaves exactly one candidate rule (R1), so there is no disjunctive fan-out")

	formula, cuts := query.Serialize(expanded[0])
	require.Equal(t, 1, cuts, "one And-in-And cut point: the R1 instantiation nested under the query's own And")

	// v0 is the fresh symbol Unroll minted for the query's own vv binder;
	// it is the only symbol unrollSubs maps directly back to term.VV.
	v0 := findFreshVV(t, state.UnrollSubs)

	d, fs := newTestDriver(t)
	go func() {
		for cmd := range fs.sentCh {
			switch {
			case cmd == "(check-sat)":
				fs.respond("unsat")
			case cmd == "(compute-interpolant)":
				fs.respond("(= " + string(v0) + " 0)")
			}
		}
	}()

	interpolants, err := d.Interpolate(formula, cuts)
	require.NoError(t, err)
	require.Len(t, interpolants, 1)

	tree := query.BuildTreeInterp(expanded[0], interpolants)
	candidates := solution.Extract(tree, state.UnrollSubs)
	require.Contains(t, candidates, term.KVar("K"))
	require.Len(t, candidates["K"], 1)
	assert.True(t, term.Equal(
		term.BinRel{Op: term.Eq, L: term.Var{Sym: term.VV}, R: term.IntLit{Value: 0}},
		candidates["K"][0],
	), "the fresh query symbol must be rehydrated back to vv")

	wf := clause.WellFormed{"K": term.Int}
	qs := qualifier.Extract(candidates, term.SortEnv{}, wf, log)
	require.Len(t, qs, 1)
	assert.Equal(t, term.KVar("K"), qs[0].Location)
	require.Len(t, qs[0].Params, 1)
	assert.Equal(t, term.VV, qs[0].Params[0].Sym)
	assert.True(t, qs[0].Params[0].Sort.Equal(term.Int))
}

func findFreshVV(t *testing.T, unrollSubs map[term.Symbol]term.Symbol) term.Symbol {
	t.Helper()
	for fresh, orig := range unrollSubs {
		if orig == term.VV {
			return fresh
		}
	}
	t.Fatal("no fresh symbol mapped directly back to vv")
	return ""
}
