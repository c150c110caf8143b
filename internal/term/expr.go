package term

import (
	"fmt"
	"sort"
	"strings"
)

// KVar is an unknown predicate variable appearing applied to a substitution
// in clause bodies and heads.
type KVar string

func (k KVar) String() string { return string(k) }

// ArithOp enumerates binary arithmetic operators.
type ArithOp int

const (
	Add ArithOp = iota
	Sub
	Mul
	Div
	Mod
)

var arithSymbols = map[ArithOp]string{Add: "+", Sub: "-", Mul: "*", Div: "/", Mod: "mod"}

func (o ArithOp) String() string { return arithSymbols[o] }

// RelOp enumerates binary relational operators.
type RelOp int

const (
	Eq RelOp = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

var relSymbols = map[RelOp]string{Eq: "=", Ne: "!=", Lt: "<", Le: "<=", Gt: ">", Ge: ">="}

func (o RelOp) String() string { return relSymbols[o] }

// Expr is a recursive term tree. All variants below implement Expr; the set
// is closed, matched with type switches rather than a visitor interface.
type Expr interface {
	isExpr()
	String() string
}

type IntLit struct{ Value int64 }
type RealLit struct{ Value float64 }
type BoolLit struct{ Value bool }

// Var is a free or bound occurrence of a symbol.
type Var struct{ Sym Symbol }

// Neg is unary arithmetic negation.
type Neg struct{ X Expr }

// BinArith is a binary arithmetic operation (+ - x / mod).
type BinArith struct {
	Op   ArithOp
	L, R Expr
}

// BinRel is a binary relation (= != < <= > >=).
type BinRel struct {
	Op   RelOp
	L, R Expr
}

// Not is logical negation.
type Not struct{ X Expr }

// And is n-ary logical conjunction.
type And struct{ Xs []Expr }

// Or is n-ary logical disjunction.
type Or struct{ Xs []Expr }

// Implies is logical implication (L => R).
type Implies struct{ L, R Expr }

// Iff is logical biconditional (L <=> R).
type Iff struct{ L, R Expr }

// Exists is an existential binder over Vars (with sorts) and Body.
type Exists struct {
	Vars  []Symbol
	Sorts []Sort
	Body  Expr
}

// Ite is if-then-else.
type Ite struct{ Cond, Then, Else Expr }

// App is application of an uninterpreted function symbol.
type App struct {
	Func Symbol
	Args []Expr
}

// KApp is application of a k-variable to a substitution: K[sigma].
type KApp struct {
	K     KVar
	Sigma *Subst
}

// Interp tags a subterm as a Craig-interpolation cut point.
type Interp struct{ X Expr }

func (IntLit) isExpr()   {}
func (RealLit) isExpr()  {}
func (BoolLit) isExpr()  {}
func (Var) isExpr()      {}
func (Neg) isExpr()      {}
func (BinArith) isExpr() {}
func (BinRel) isExpr()   {}
func (Not) isExpr()      {}
func (And) isExpr()      {}
func (Or) isExpr()       {}
func (Implies) isExpr()  {}
func (Iff) isExpr()      {}
func (Exists) isExpr()   {}
func (Ite) isExpr()      {}
func (App) isExpr()      {}
func (KApp) isExpr()     {}
func (Interp) isExpr()   {}

func (e IntLit) String() string  { return fmt.Sprintf("%d", e.Value) }
func (e RealLit) String() string { return fmt.Sprintf("%g", e.Value) }
func (e BoolLit) String() string {
	if e.Value {
		return "true"
	}
	return "false"
}
func (e Var) String() string { return string(e.Sym) }
func (e Neg) String() string { return "(- " + e.X.String() + ")" }
func (e BinArith) String() string {
	return "(" + e.Op.String() + " " + e.L.String() + " " + e.R.String() + ")"
}
func (e BinRel) String() string {
	return "(" + e.Op.String() + " " + e.L.String() + " " + e.R.String() + ")"
}
func (e Not) String() string { return "(not " + e.X.String() + ")" }
func (e And) String() string { return "(and " + joinExprs(e.Xs) + ")" }
func (e Or) String() string  { return "(or " + joinExprs(e.Xs) + ")" }
func (e Implies) String() string {
	return "(=> " + e.L.String() + " " + e.R.String() + ")"
}
func (e Iff) String() string {
	return "(= " + e.L.String() + " " + e.R.String() + ")"
}
func (e Exists) String() string {
	names := make([]string, len(e.Vars))
	for i, v := range e.Vars {
		names[i] = string(v)
	}
	return "(exists (" + strings.Join(names, " ") + ") " + e.Body.String() + ")"
}
func (e Ite) String() string {
	return "(ite " + e.Cond.String() + " " + e.Then.String() + " " + e.Else.String() + ")"
}
func (e App) String() string {
	if len(e.Args) == 0 {
		return string(e.Func)
	}
	return "(" + string(e.Func) + " " + joinExprs(e.Args) + ")"
}
func (e KApp) String() string {
	return string(e.K) + e.Sigma.String()
}
func (e Interp) String() string { return "(! " + e.X.String() + " :interp)" }

func joinExprs(xs []Expr) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = x.String()
	}
	return strings.Join(parts, " ")
}

// ConjoinAll builds a conjunction of the given expressions, skipping nil
// entries: no expressions yield true, and a single expression collapses to
// itself rather than being wrapped in And.
func ConjoinAll(xs ...Expr) Expr {
	filtered := xs[:0:0]
	for _, x := range xs {
		if x == nil {
			continue
		}
		filtered = append(filtered, x)
	}
	if len(filtered) == 0 {
		return BoolLit{Value: true}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return And{Xs: filtered}
}

// FreeVars returns the set of symbols free in e.
func FreeVars(e Expr) map[Symbol]struct{} {
	out := make(map[Symbol]struct{})
	collectFreeVars(e, out)
	return out
}

func collectFreeVars(e Expr, out map[Symbol]struct{}) {
	switch n := e.(type) {
	case IntLit, RealLit, BoolLit:
	case Var:
		out[n.Sym] = struct{}{}
	case Neg:
		collectFreeVars(n.X, out)
	case BinArith:
		collectFreeVars(n.L, out)
		collectFreeVars(n.R, out)
	case BinRel:
		collectFreeVars(n.L, out)
		collectFreeVars(n.R, out)
	case Not:
		collectFreeVars(n.X, out)
	case And:
		for _, x := range n.Xs {
			collectFreeVars(x, out)
		}
	case Or:
		for _, x := range n.Xs {
			collectFreeVars(x, out)
		}
	case Implies:
		collectFreeVars(n.L, out)
		collectFreeVars(n.R, out)
	case Iff:
		collectFreeVars(n.L, out)
		collectFreeVars(n.R, out)
	case Exists:
		inner := make(map[Symbol]struct{})
		collectFreeVars(n.Body, inner)
		bound := make(map[Symbol]struct{}, len(n.Vars))
		for _, v := range n.Vars {
			bound[v] = struct{}{}
		}
		for s := range inner {
			if _, isBound := bound[s]; !isBound {
				out[s] = struct{}{}
			}
		}
	case Ite:
		collectFreeVars(n.Cond, out)
		collectFreeVars(n.Then, out)
		collectFreeVars(n.Else, out)
	case App:
		for _, a := range n.Args {
			collectFreeVars(a, out)
		}
	case KApp:
		for _, kv := range n.Sigma.Pairs() {
			collectFreeVars(kv.Value, out)
		}
	case Interp:
		collectFreeVars(n.X, out)
	}
}

// SortedFreeVars returns FreeVars(e) as a deterministically ordered slice.
func SortedFreeVars(e Expr) []Symbol {
	m := FreeVars(e)
	out := make([]Symbol, 0, len(m))
	for s := range m {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// WalkKApps calls visit for every KApp node reachable in e, in a
// deterministic pre-order traversal.
func WalkKApps(e Expr, visit func(KApp)) {
	switch n := e.(type) {
	case KApp:
		visit(n)
	case Neg:
		WalkKApps(n.X, visit)
	case BinArith:
		WalkKApps(n.L, visit)
		WalkKApps(n.R, visit)
	case BinRel:
		WalkKApps(n.L, visit)
		WalkKApps(n.R, visit)
	case Not:
		WalkKApps(n.X, visit)
	case And:
		for _, x := range n.Xs {
			WalkKApps(x, visit)
		}
	case Or:
		for _, x := range n.Xs {
			WalkKApps(x, visit)
		}
	case Implies:
		WalkKApps(n.L, visit)
		WalkKApps(n.R, visit)
	case Iff:
		WalkKApps(n.L, visit)
		WalkKApps(n.R, visit)
	case Exists:
		WalkKApps(n.Body, visit)
	case Ite:
		WalkKApps(n.Cond, visit)
		WalkKApps(n.Then, visit)
		WalkKApps(n.Else, visit)
	case App:
		for _, a := range n.Args {
			WalkKApps(a, visit)
		}
	case Interp:
		WalkKApps(n.X, visit)
	}
}

// HasKApp reports whether e contains any k-variable application.
func HasKApp(e Expr) bool {
	found := false
	WalkKApps(e, func(KApp) { found = true })
	return found
}
