package qualifier

import (
	"bytes"
	"testing"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/horn-infer/hornqual/internal/clause"
	"github.com/horn-infer/hornqual/internal/solution"
	"github.com/horn-infer/hornqual/internal/term"
)

func TestExtractFlattensConjunctionIntoAtoms(t *testing.T) {
	candidates := solution.Candidates{
		"K": {
			term.And{Xs: []term.Expr{
				term.BinRel{Op: term.Ge, L: term.Var{Sym: term.VV}, R: term.IntLit{Value: 0}},
				term.BinRel{Op: term.Le, L: term.Var{Sym: term.VV}, R: term.Var{Sym: "n"}},
			}},
		},
	}
	wf := clause.WellFormed{"K": term.Int}

	qs := Extract(candidates, term.SortEnv{}, wf, nil)
	require.Len(t, qs, 2)
	assert.Equal(t, term.KVar("K"), qs[0].Location)
}

func TestExtractTypesVVFromWellFormedness(t *testing.T) {
	candidates := solution.Candidates{
		"K": {term.BinRel{Op: term.Ge, L: term.Var{Sym: term.VV}, R: term.IntLit{Value: 0}}},
	}
	wf := clause.WellFormed{"K": term.Bool}

	qs := Extract(candidates, term.SortEnv{}, wf, nil)
	require.Len(t, qs, 1)
	require.Len(t, qs[0].Params, 1)
	assert.True(t, qs[0].Params[0].Sort.Equal(term.Bool))
}

func TestExtractDefaultsUnrecordedSymbolToInt(t *testing.T) {
	candidates := solution.Candidates{
		"K": {term.BinRel{Op: term.Ge, L: term.Var{Sym: "x"}, R: term.IntLit{Value: 0}}},
	}
	qs := Extract(candidates, term.SortEnv{}, clause.WellFormed{}, nil)
	require.Len(t, qs, 1)
	require.Len(t, qs[0].Params, 1)
	assert.True(t, qs[0].Params[0].Sort.Equal(term.Int))
}

func TestExtractDeduplicatesAcrossKVars(t *testing.T) {
	atom := term.BinRel{Op: term.Ge, L: term.Var{Sym: term.VV}, R: term.IntLit{Value: 0}}
	candidates := solution.Candidates{
		"K1": {atom},
		"K2": {atom},
	}
	wf := clause.WellFormed{"K1": term.Int, "K2": term.Int}

	qs := Extract(candidates, term.SortEnv{}, wf, nil)
	assert.Len(t, qs, 1, "identical bodies dedupe across k-variables")
}

func TestExtractDeduplicatesDuplicateWithinKVar(t *testing.T) {
	atom := term.BinRel{Op: term.Ge, L: term.Var{Sym: term.VV}, R: term.IntLit{Value: 0}}
	candidates := solution.Candidates{
		"K": {atom, atom},
	}
	wf := clause.WellFormed{"K": term.Int}

	qs := Extract(candidates, term.SortEnv{}, wf, nil)
	assert.Len(t, qs, 1)
}

func TestExtractLogsSortLookupMissAtDebug(t *testing.T) {
	candidates := solution.Candidates{
		"K": {term.BinRel{Op: term.Ge, L: term.Var{Sym: "x"}, R: term.IntLit{Value: 0}}},
	}
	var buf bytes.Buffer
	log := hclog.New(&hclog.LoggerOptions{Level: hclog.Debug, Output: &buf})

	Extract(candidates, term.SortEnv{}, clause.WellFormed{}, log)
	assert.Contains(t, buf.String(), "sort lookup miss")
	assert.Contains(t, buf.String(), "x")
}

func TestExtractDoesNotLogWhenSortIsRecorded(t *testing.T) {
	candidates := solution.Candidates{
		"K": {term.BinRel{Op: term.Ge, L: term.Var{Sym: "x"}, R: term.IntLit{Value: 0}}},
	}
	var buf bytes.Buffer
	log := hclog.New(&hclog.LoggerOptions{Level: hclog.Debug, Output: &buf})

	Extract(candidates, term.SortEnv{"x": term.Int}, clause.WellFormed{}, log)
	assert.NotContains(t, buf.String(), "sort lookup miss")
}

func TestFlattenTreatsNonConnectiveAsAtom(t *testing.T) {
	atom := term.Not{X: term.BoolLit{Value: false}}
	atoms := flatten(atom)
	require.Len(t, atoms, 1)
	assert.True(t, term.Equal(atom, atoms[0]))
}
