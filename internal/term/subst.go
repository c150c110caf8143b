package term

import (
	"strconv"
	"strings"
	"sync/atomic"
)

// SubstPair is one (key, image) entry of a Subst.
type SubstPair struct {
	Key   Symbol
	Value Expr
}

// Subst is a finite mapping from symbols to expressions with unique keys;
// order of construction is preserved for deterministic serialization, even
// though the mapping's semantics do not depend on it.
type Subst struct {
	pairs []SubstPair
	index map[Symbol]int
}

// NewSubst builds a Subst from pairs, later pairs overriding earlier ones
// with the same key (the last write for a key wins, but its position in
// iteration order is that of its first occurrence).
func NewSubst(pairs ...SubstPair) *Subst {
	s := &Subst{index: make(map[Symbol]int, len(pairs))}
	for _, p := range pairs {
		s.Set(p.Key, p.Value)
	}
	return s
}

// Set adds or overwrites the image of key.
func (s *Subst) Set(key Symbol, value Expr) {
	if i, ok := s.index[key]; ok {
		s.pairs[i].Value = value
		return
	}
	s.index[key] = len(s.pairs)
	s.pairs = append(s.pairs, SubstPair{Key: key, Value: value})
}

// Lookup returns the image of key, if present.
func (s *Subst) Lookup(key Symbol) (Expr, bool) {
	if s == nil {
		return nil, false
	}
	if i, ok := s.index[key]; ok {
		return s.pairs[i].Value, true
	}
	return nil, false
}

// Pairs returns the Subst's entries in construction order. Callers must not
// mutate the returned slice's Value expressions in place.
func (s *Subst) Pairs() []SubstPair {
	if s == nil {
		return nil
	}
	return s.pairs
}

// Len returns the number of entries.
func (s *Subst) Len() int {
	if s == nil {
		return 0
	}
	return len(s.pairs)
}

// Without returns a new Subst equal to s but with key removed, if present.
// Clause normalization's substitution scrubbing does not use it: that step
// filters pairs by their value (see internal/clause.scrubExpr).
func (s *Subst) Without(key Symbol) *Subst {
	out := &Subst{index: make(map[Symbol]int, s.Len())}
	for _, p := range s.Pairs() {
		if p.Key == key {
			continue
		}
		out.Set(p.Key, p.Value)
	}
	return out
}

// RenameKey returns a new Subst equal to s but with every occurrence of
// from as a key replaced by to. The unroller does not use it: it renames a
// substitution's values only and leaves its keys untouched.
func (s *Subst) RenameKey(from, to Symbol) *Subst {
	out := &Subst{index: make(map[Symbol]int, s.Len())}
	for _, p := range s.Pairs() {
		k := p.Key
		if k == from {
			k = to
		}
		out.Set(k, p.Value)
	}
	return out
}

// String renders the substitution as a bracketed list of k:=e pairs, for
// debugging and as part of KApp.String().
func (s *Subst) String() string {
	if s.Len() == 0 {
		return "[]"
	}
	var b strings.Builder
	b.WriteByte('[')
	for i, p := range s.Pairs() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(string(p.Key))
		b.WriteString(":=")
		b.WriteString(p.Value.String())
	}
	b.WriteByte(']')
	return b.String()
}

var captureCounter int64

// freshCaptureName returns a symbol guaranteed not to collide with base's
// suffix lineage, used only on the rare path where a substitution's free
// variables would otherwise be captured by an Exists binder.
func freshCaptureName(base Symbol) Symbol {
	n := atomic.AddInt64(&captureCounter, 1)
	return Symbol(string(base) + "$cap" + strconv.FormatInt(n, 10))
}

// Apply applies sigma to e, replacing free occurrences of each key with its
// image, capture-avoidingly: a bound variable shadows sigma for the scope
// it binds, and if a bound variable would capture a free variable newly
// introduced by substitution, it is alpha-renamed first.
func (sigma *Subst) Apply(e Expr) Expr {
	if sigma.Len() == 0 {
		return e
	}
	return applySubst(e, sigma, nil)
}

func applySubst(e Expr, sigma *Subst, shadowed map[Symbol]bool) Expr {
	switch n := e.(type) {
	case IntLit, RealLit, BoolLit:
		return e
	case Var:
		if shadowed[n.Sym] {
			return e
		}
		if img, ok := sigma.Lookup(n.Sym); ok {
			return img
		}
		return e
	case Neg:
		return Neg{X: applySubst(n.X, sigma, shadowed)}
	case BinArith:
		return BinArith{Op: n.Op, L: applySubst(n.L, sigma, shadowed), R: applySubst(n.R, sigma, shadowed)}
	case BinRel:
		return BinRel{Op: n.Op, L: applySubst(n.L, sigma, shadowed), R: applySubst(n.R, sigma, shadowed)}
	case Not:
		return Not{X: applySubst(n.X, sigma, shadowed)}
	case And:
		xs := make([]Expr, len(n.Xs))
		for i, x := range n.Xs {
			xs[i] = applySubst(x, sigma, shadowed)
		}
		return And{Xs: xs}
	case Or:
		xs := make([]Expr, len(n.Xs))
		for i, x := range n.Xs {
			xs[i] = applySubst(x, sigma, shadowed)
		}
		return Or{Xs: xs}
	case Implies:
		return Implies{L: applySubst(n.L, sigma, shadowed), R: applySubst(n.R, sigma, shadowed)}
	case Iff:
		return Iff{L: applySubst(n.L, sigma, shadowed), R: applySubst(n.R, sigma, shadowed)}
	case Ite:
		return Ite{
			Cond: applySubst(n.Cond, sigma, shadowed),
			Then: applySubst(n.Then, sigma, shadowed),
			Else: applySubst(n.Else, sigma, shadowed),
		}
	case App:
		args := make([]Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = applySubst(a, sigma, shadowed)
		}
		return App{Func: n.Func, Args: args}
	case KApp:
		pairs := make([]SubstPair, 0, n.Sigma.Len())
		for _, p := range n.Sigma.Pairs() {
			pairs = append(pairs, SubstPair{Key: p.Key, Value: applySubst(p.Value, sigma, shadowed)})
		}
		return KApp{K: n.K, Sigma: NewSubst(pairs...)}
	case Interp:
		return Interp{X: applySubst(n.X, sigma, shadowed)}
	case Exists:
		return applySubstExists(n, sigma, shadowed)
	default:
		return e
	}
}

func applySubstExists(n Exists, sigma *Subst, shadowed map[Symbol]bool) Expr {
	// Collect the free variables sigma's substitution would introduce for
	// keys that are actually free (not already shadowed) within this Exists.
	introduced := make(map[Symbol]struct{})
	for _, p := range sigma.Pairs() {
		if shadowed[p.Key] {
			continue
		}
		for s := range FreeVars(p.Value) {
			introduced[s] = struct{}{}
		}
	}

	vars := make([]Symbol, len(n.Vars))
	copy(vars, n.Vars)
	innerShadowed := make(map[Symbol]bool, len(shadowed)+len(vars))
	for k, v := range shadowed {
		innerShadowed[k] = v
	}
	body := n.Body
	for i, v := range vars {
		if _, capt := introduced[v]; capt {
			fresh := freshCaptureName(v)
			renamed := NewSubst(SubstPair{Key: v, Value: Var{Sym: fresh}})
			body = renamed.Apply(body)
			vars[i] = fresh
			v = fresh
		}
		innerShadowed[v] = true
	}
	return Exists{Vars: vars, Sorts: n.Sorts, Body: applySubst(body, sigma, innerShadowed)}
}
