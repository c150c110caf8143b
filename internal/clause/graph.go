package clause

import (
	"context"
	"fmt"
	"sort"

	"github.com/ichiban/prolog"

	"github.com/horn-infer/hornqual/internal/herrors"
	"github.com/horn-infer/hornqual/internal/term"
)

// KClauses partitions each k-variable's rules into recursive and
// non-recursive buckets.
type KClauses struct {
	Recursive    map[term.KVar][]Rule
	NonRecursive map[term.KVar][]Rule
}

// RulesFor returns the rules the unroller should use to expand K: the union
// of recursive and non-recursive rules if budget allows recursion,
// otherwise only the non-recursive rules.
func (kc *KClauses) RulesFor(k term.KVar, budgetRemaining int) []Rule {
	if budgetRemaining > 0 {
		out := make([]Rule, 0, len(kc.Recursive[k])+len(kc.NonRecursive[k]))
		out = append(out, kc.Recursive[k]...)
		out = append(out, kc.NonRecursive[k]...)
		return out
	}
	return kc.NonRecursive[k]
}

// Known reports whether any rule (recursive or not) is recorded for K.
func (kc *KClauses) Known(k term.KVar) bool {
	return len(kc.Recursive[k]) > 0 || len(kc.NonRecursive[k]) > 0
}

// reachabilityCore is the Prolog reachability predicate over a dynamic
// calls/2 relation, generalizing claude/turducken/pkg/prolog/engine.go's
// CTL `reachable(S, S). reachable(S, T) :- edge(S, U), reachable(U, T).`
// from Kripke-structure state reachability to k-variable call-graph
// reachability. The list of already-visited nodes keeps the search finite
// when the call graph has a cycle that does not lead to the target.
const reachabilityCore = `
:- dynamic(calls/2).
reachable(X, Y) :- reachable(X, Y, [X]).
reachable(X, Y, _) :- calls(X, Y).
reachable(X, Y, Seen) :- calls(X, Z), \+ visited(Z, Seen), reachable(Z, Y, [Z|Seen]).
visited(X, [X|_]).
visited(X, [_|T]) :- visited(X, T).
`

// BuildKClauses classifies a rule as recursive iff there exists a path
// K -> ... -> K through children's heads in the rule-call graph. The
// reachability check itself is delegated to an embedded Prolog interpreter
// scoped to this call: the call-graph edges are asserted as `calls/2` facts
// and each rule's recursiveness is decided by querying whether any of its
// children's heads can reach its own head.
func BuildKClauses(rules []Rule) (*KClauses, error) {
	interp := prolog.New(nil, nil)
	if err := interp.Exec(reachabilityCore); err != nil {
		return nil, herrors.NewIOError("loading k-var reachability predicates", err)
	}

	edgeSet := make(map[[2]term.KVar]struct{})
	for _, r := range rules {
		for _, c := range r.Children {
			edgeSet[[2]term.KVar{r.Head, c.K}] = struct{}{}
		}
	}
	edges := make([][2]term.KVar, 0, len(edgeSet))
	for e := range edgeSet {
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i][0] != edges[j][0] {
			return edges[i][0] < edges[j][0]
		}
		return edges[i][1] < edges[j][1]
	})

	ctx := context.Background()
	for _, e := range edges {
		assertion := fmt.Sprintf(":- assertz(calls(%s, %s)).", prologAtom(string(e[0])), prologAtom(string(e[1])))
		if err := interp.Exec(assertion); err != nil {
			return nil, herrors.NewIOError("asserting k-var call edge", err)
		}
	}

	kc := &KClauses{
		Recursive:    make(map[term.KVar][]Rule),
		NonRecursive: make(map[term.KVar][]Rule),
	}
	for _, r := range rules {
		recursive := false
		for _, c := range r.Children {
			ok, err := reachableQuery(ctx, interp, c.K, r.Head)
			if err != nil {
				return nil, herrors.NewIOError("querying k-var reachability", err)
			}
			if c.K == r.Head || ok {
				recursive = true
				break
			}
		}
		if recursive {
			kc.Recursive[r.Head] = append(kc.Recursive[r.Head], r)
		} else {
			kc.NonRecursive[r.Head] = append(kc.NonRecursive[r.Head], r)
		}
	}
	return kc, nil
}

func reachableQuery(ctx context.Context, interp *prolog.Interpreter, from, to term.KVar) (bool, error) {
	q := fmt.Sprintf("reachable(%s, %s).", prologAtom(string(from)), prologAtom(string(to)))
	sols, err := interp.QueryContext(ctx, q)
	if err != nil {
		return false, err
	}
	defer sols.Close()
	found := sols.Next()
	return found, sols.Err()
}

// prologAtom quotes s as a Prolog atom literal so that k-variable names
// containing characters outside [a-z][a-zA-Z0-9_]* still parse correctly.
func prologAtom(s string) string {
	out := make([]byte, 0, len(s)+2)
	out = append(out, '\'')
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' || s[i] == '\\' {
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	out = append(out, '\'')
	return string(out)
}
