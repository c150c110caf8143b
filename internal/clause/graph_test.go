package clause

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/horn-infer/hornqual/internal/term"
)

func TestBuildKClausesClassifiesRecursiveRule(t *testing.T) {
	// R1: k <= 0 /\ v = 0 => K(v)      (non-recursive: no K child)
	// R2: k > 0  /\ K(s)[...]          (recursive: K calls K)
	r1 := Rule{ID: "R1", Head: "K", Body: term.BoolLit{Value: true}}
	r2 := Rule{
		ID:   "R2",
		Head: "K",
		Body: term.BoolLit{Value: true},
		Children: []Child{
			{K: "K", Sigma: term.NewSubst(), Sym: "s"},
		},
	}

	kc, err := BuildKClauses([]Rule{r1, r2})
	require.NoError(t, err)

	require.Len(t, kc.NonRecursive["K"], 1)
	require.Len(t, kc.Recursive["K"], 1)
	assert.Equal(t, "R1", kc.NonRecursive["K"][0].ID)
	assert.Equal(t, "R2", kc.Recursive["K"][0].ID)
}

func TestBuildKClausesTransitiveRecursion(t *testing.T) {
	// K1's rule calls K2, K2's rule calls K1: both recursive via the cycle.
	r1 := Rule{ID: "R1", Head: "K1", Children: []Child{{K: "K2", Sigma: term.NewSubst(), Sym: "a"}}}
	r2 := Rule{ID: "R2", Head: "K2", Children: []Child{{K: "K1", Sigma: term.NewSubst(), Sym: "b"}}}

	kc, err := BuildKClauses([]Rule{r1, r2})
	require.NoError(t, err)

	assert.Len(t, kc.Recursive["K1"], 1)
	assert.Len(t, kc.Recursive["K2"], 1)
}

func TestKClausesRulesForHonorsBudget(t *testing.T) {
	kc := &KClauses{
		Recursive:    map[term.KVar][]Rule{"K": {{ID: "rec"}}},
		NonRecursive: map[term.KVar][]Rule{"K": {{ID: "nonrec"}}},
	}

	withBudget := kc.RulesFor("K", 1)
	assert.Len(t, withBudget, 2)

	exhausted := kc.RulesFor("K", 0)
	require.Len(t, exhausted, 1)
	assert.Equal(t, "nonrec", exhausted[0].ID)
}

func TestKClausesKnown(t *testing.T) {
	kc := &KClauses{
		Recursive:    map[term.KVar][]Rule{},
		NonRecursive: map[term.KVar][]Rule{"K": {{ID: "r"}}},
	}
	assert.True(t, kc.Known("K"))
	assert.False(t, kc.Known("Unknown"))
}
