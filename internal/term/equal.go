package term

// Equal reports structural equality between two expressions. Qualifier
// deduplication and the S-expression round-trip property both rely on
// this.
func Equal(a, b Expr) bool {
	switch x := a.(type) {
	case IntLit:
		y, ok := b.(IntLit)
		return ok && x.Value == y.Value
	case RealLit:
		y, ok := b.(RealLit)
		return ok && x.Value == y.Value
	case BoolLit:
		y, ok := b.(BoolLit)
		return ok && x.Value == y.Value
	case Var:
		y, ok := b.(Var)
		return ok && x.Sym == y.Sym
	case Neg:
		y, ok := b.(Neg)
		return ok && Equal(x.X, y.X)
	case BinArith:
		y, ok := b.(BinArith)
		return ok && x.Op == y.Op && Equal(x.L, y.L) && Equal(x.R, y.R)
	case BinRel:
		y, ok := b.(BinRel)
		return ok && x.Op == y.Op && Equal(x.L, y.L) && Equal(x.R, y.R)
	case Not:
		y, ok := b.(Not)
		return ok && Equal(x.X, y.X)
	case And:
		y, ok := b.(And)
		return ok && equalExprSlice(x.Xs, y.Xs)
	case Or:
		y, ok := b.(Or)
		return ok && equalExprSlice(x.Xs, y.Xs)
	case Implies:
		y, ok := b.(Implies)
		return ok && Equal(x.L, y.L) && Equal(x.R, y.R)
	case Iff:
		y, ok := b.(Iff)
		return ok && Equal(x.L, y.L) && Equal(x.R, y.R)
	case Exists:
		y, ok := b.(Exists)
		if !ok || len(x.Vars) != len(y.Vars) {
			return false
		}
		for i := range x.Vars {
			if x.Vars[i] != y.Vars[i] {
				return false
			}
		}
		return Equal(x.Body, y.Body)
	case Ite:
		y, ok := b.(Ite)
		return ok && Equal(x.Cond, y.Cond) && Equal(x.Then, y.Then) && Equal(x.Else, y.Else)
	case App:
		y, ok := b.(App)
		return ok && x.Func == y.Func && equalExprSlice(x.Args, y.Args)
	case KApp:
		y, ok := b.(KApp)
		if !ok || x.K != y.K || x.Sigma.Len() != y.Sigma.Len() {
			return false
		}
		for i, p := range x.Sigma.Pairs() {
			q := y.Sigma.Pairs()[i]
			if p.Key != q.Key || !Equal(p.Value, q.Value) {
				return false
			}
		}
		return true
	case Interp:
		y, ok := b.(Interp)
		return ok && Equal(x.X, y.X)
	default:
		return false
	}
}

func equalExprSlice(a, b []Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
