package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/horn-infer/hornqual/internal/term"
)

func TestBuildTreeInterpAssignsInterpolantsPostOrder(t *testing.T) {
	n := And{
		RootExpr: term.BoolLit{Value: true},
		Children: []Node{
			And{
				RootExpr: term.IntLit{Value: 1},
				Children: []Node{
					And{RootExpr: term.IntLit{Value: 2}},
				},
			},
		},
	}
	_, cuts := Serialize(n)
	require.Equal(t, 2, cuts)

	interpolants := []term.Expr{
		term.BinRel{Op: term.Ge, L: term.Var{Sym: "v"}, R: term.IntLit{Value: 0}}, // innermost cut, consumed first
		term.BinRel{Op: term.Lt, L: term.Var{Sym: "v"}, R: term.IntLit{Value: 10}},
	}

	tree := BuildTreeInterp(n, interpolants)
	outer := tree.(InterpAnd)
	require.Len(t, outer.Children, 1)
	middle := outer.Children[0].(InterpAnd)
	assert.True(t, term.Equal(interpolants[1], middle.Interpolant))
	require.Len(t, middle.Children, 1)
	inner := middle.Children[0].(InterpAnd)
	assert.True(t, term.Equal(interpolants[0], inner.Interpolant))
}

func TestBuildTreeInterpPreservesInfo(t *testing.T) {
	info := &Info{K: "K", Sym: "s"}
	n := Or{
		Info: info,
		Children: []Node{
			And{RootExpr: term.BoolLit{Value: true}},
		},
	}
	tree := BuildTreeInterp(n, nil)
	or := tree.(InterpOr)
	assert.Same(t, info, or.Info)
}
