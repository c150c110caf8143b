package finfo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/horn-infer/hornqual/internal/clause"
	"github.com/horn-infer/hornqual/internal/term"
)

const sampleFInfo = `{
  "binds": {
    "b0": {"sym": "x", "refined": {"vv": "v", "pred": "(>= v 0)", "sort": "Int"}}
  },
  "constraints": {
    "c1": {
      "env": ["b0"],
      "lhs": {"vv": "v", "pred": "(K)"},
      "rhs": {"vv": "v", "pred": "(>= v 0)", "sort": "Int"}
    }
  },
  "wf": {"K": "Int"},
  "literal_sorts": {"x": "Int"},
  "kvars": ["K"]
}`

func TestLoadDecodesFInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finfo.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleFInfo), 0o600))

	fi, err := Load(path)
	require.NoError(t, err)

	require.Contains(t, fi.Binds, clause.BinderID("b0"))
	assert.Equal(t, term.Symbol("x"), fi.Binds[clause.BinderID("b0")].Sym)

	require.Contains(t, fi.Constraints, "c1")
	assert.Equal(t, []term.KVar{"K"}, fi.KVars)

	sort, ok := fi.WF[term.KVar("K")]
	require.True(t, ok)
	assert.True(t, sort.Equal(term.Int))
}

func TestLoadRejectsMalformedExpression(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finfo.json")
	bad := `{"constraints": {"c1": {"lhs": {"pred": "(unterminated"}, "rhs": {"pred": "true"}}}}`
	require.NoError(t, os.WriteFile(path, []byte(bad), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
