package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/horn-infer/hornqual/internal/term"
)

func leafAnd(n int64) And {
	return And{RootExpr: term.IntLit{Value: n}}
}

func TestExpandFlattensSingleOr(t *testing.T) {
	root := And{
		RootExpr: term.BoolLit{Value: true},
		Children: []Node{
			Or{Info: &Info{K: "K", Sym: "s"}, Children: []Node{leafAnd(1), leafAnd(2)}},
		},
	}

	out := Expand(root, 0, nil)
	require.Len(t, out, 2, "one alternative per Or-child")
	for _, n := range out {
		a := n.(And)
		require.Len(t, a.Children, 1)
		child := a.Children[0].(And)
		assert.NotNil(t, child.Info, "the lifted And must carry the Or's Info tag")
		assert.Equal(t, term.KVar("K"), child.Info.K)
	}
}

func TestExpandCartesianProductAcrossTwoOrs(t *testing.T) {
	root := And{
		RootExpr: term.BoolLit{Value: true},
		Children: []Node{
			Or{Children: []Node{leafAnd(1), leafAnd(2)}},
			Or{Children: []Node{leafAnd(3), leafAnd(4)}},
		},
	}

	out := Expand(root, 0, nil)
	assert.Len(t, out, 4, "2x2 combinations")
}

func TestExpandEmptyOrKillsConjunction(t *testing.T) {
	root := And{
		RootExpr: term.BoolLit{Value: true},
		Children: []Node{
			Or{Children: nil},
		},
	}
	out := Expand(root, 0, nil)
	assert.Empty(t, out, "an unmodeled child contributes no valid tree query")
}

func TestExpandNoChildrenYieldsOneQuery(t *testing.T) {
	root := And{RootExpr: term.BoolLit{Value: true}}
	out := Expand(root, 0, nil)
	require.Len(t, out, 1)
	assert.Empty(t, out[0].(And).Children)
}

func TestCartesianProductOdometer(t *testing.T) {
	lists := [][]Node{
		{leafAnd(1), leafAnd(2)},
		{leafAnd(10)},
		{leafAnd(100), leafAnd(200), leafAnd(300)},
	}
	combos := cartesianProduct(lists)
	assert.Len(t, combos, 6)
	for _, c := range combos {
		assert.Len(t, c, 3)
	}
}
