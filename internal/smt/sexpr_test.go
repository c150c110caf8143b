package smt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/horn-infer/hornqual/internal/term"
)

func TestRoundTripThroughSMTLIB(t *testing.T) {
	tests := []struct {
		name string
		expr term.Expr
	}{
		{"relation", term.BinRel{Op: term.Ge, L: term.Var{Sym: "v"}, R: term.IntLit{Value: 3}}},
		{"arithmetic", term.BinArith{Op: term.Add, L: term.Var{Sym: "x"}, R: term.IntLit{Value: 1}}},
		{"conjunction", term.And{Xs: []term.Expr{
			term.BinRel{Op: term.Ge, L: term.Var{Sym: "v"}, R: term.IntLit{Value: 0}},
			term.BinRel{Op: term.Lt, L: term.Var{Sym: "v"}, R: term.IntLit{Value: 10}},
		}}},
		{"negative literal", term.BinRel{Op: term.Eq, L: term.Var{Sym: "v"}, R: term.IntLit{Value: -5}}},
		{"not", term.Not{X: term.BoolLit{Value: true}}},
		{"ite", term.Ite{Cond: term.BoolLit{Value: true}, Then: term.IntLit{Value: 1}, Else: term.IntLit{Value: 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := toSMTLIB(tt.expr)
			got, err := ParseExpr(text)
			require.NoError(t, err)
			assert.True(t, term.Equal(tt.expr, got), "round trip mismatch for %s", text)
		})
	}
}

func TestParseExprDistinctBecomesNotEqual(t *testing.T) {
	got, err := ParseExpr("(distinct v 0)")
	require.NoError(t, err)
	rel := got.(term.BinRel)
	assert.Equal(t, term.Ne, rel.Op)
}

func TestParseExprAmbiguousEqualsPrefersIffBetweenFormulas(t *testing.T) {
	got, err := ParseExpr("(= (>= v 0) (<= v 10))")
	require.NoError(t, err)
	_, isIff := got.(term.Iff)
	assert.True(t, isIff)
}

func TestParseExprEqualsBetweenValuesIsAtom(t *testing.T) {
	got, err := ParseExpr("(= v 0)")
	require.NoError(t, err)
	rel, ok := got.(term.BinRel)
	require.True(t, ok)
	assert.Equal(t, term.Eq, rel.Op)
}

func TestParseExprUnrecognizedFunctionBecomesApp(t *testing.T) {
	got, err := ParseExpr("(foo v 1)")
	require.NoError(t, err)
	app, ok := got.(term.App)
	require.True(t, ok)
	assert.Equal(t, term.Symbol("foo"), app.Func)
}
