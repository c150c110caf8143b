package smt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/horn-infer/hornqual/internal/term"
)

// toSMTLIB renders e as an SMT-LIB 2 term. It differs from term.Expr's own
// String() (a Go-debug rendering) in the ways SMT-LIB is stricter: `!=`
// becomes `distinct`, and negative integer/real literals use SMT-LIB's
// `(- n)` notation rather than a leading minus sign.
func toSMTLIB(e term.Expr) string {
	switch n := e.(type) {
	case term.IntLit:
		return smtLibNumber(n.Value)
	case term.RealLit:
		return smtLibFloat(n.Value)
	case term.BoolLit:
		if n.Value {
			return "true"
		}
		return "false"
	case term.Var:
		return string(n.Sym)
	case term.Neg:
		return "(- " + toSMTLIB(n.X) + ")"
	case term.BinArith:
		return "(" + n.Op.String() + " " + toSMTLIB(n.L) + " " + toSMTLIB(n.R) + ")"
	case term.BinRel:
		if n.Op == term.Ne {
			return "(distinct " + toSMTLIB(n.L) + " " + toSMTLIB(n.R) + ")"
		}
		return "(" + n.Op.String() + " " + toSMTLIB(n.L) + " " + toSMTLIB(n.R) + ")"
	case term.Not:
		return "(not " + toSMTLIB(n.X) + ")"
	case term.And:
		return "(and " + joinSMTLIB(n.Xs) + ")"
	case term.Or:
		return "(or " + joinSMTLIB(n.Xs) + ")"
	case term.Implies:
		return "(=> " + toSMTLIB(n.L) + " " + toSMTLIB(n.R) + ")"
	case term.Iff:
		return "(= " + toSMTLIB(n.L) + " " + toSMTLIB(n.R) + ")"
	case term.Exists:
		return "(exists (" + smtLibSortedVars(n.Vars, n.Sorts) + ") " + toSMTLIB(n.Body) + ")"
	case term.Ite:
		return "(ite " + toSMTLIB(n.Cond) + " " + toSMTLIB(n.Then) + " " + toSMTLIB(n.Else) + ")"
	case term.App:
		if len(n.Args) == 0 {
			return string(n.Func)
		}
		return "(" + string(n.Func) + " " + joinSMTLIB(n.Args) + ")"
	case term.Interp:
		return toSMTLIB(n.X)
	default:
		return "true"
	}
}

func smtLibNumber(v int64) string {
	if v < 0 {
		return fmt.Sprintf("(- %d)", -v)
	}
	return strconv.FormatInt(v, 10)
}

func smtLibFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if v < 0 {
		return "(- " + strings.TrimPrefix(s, "-") + ")"
	}
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func joinSMTLIB(xs []term.Expr) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = toSMTLIB(x)
	}
	return strings.Join(parts, " ")
}

func smtLibSortedVars(vars []term.Symbol, sorts []term.Sort) string {
	parts := make([]string, len(vars))
	for i, v := range vars {
		sortName := "Int"
		if i < len(sorts) {
			sortName = sorts[i].SMTName()
		}
		parts[i] = "(" + string(v) + " " + sortName + ")"
	}
	return strings.Join(parts, " ")
}

// declareFunCommand renders a declare-fun command for a nullary symbol.
func declareFunCommand(sym term.Symbol, sort term.Sort) string {
	return fmt.Sprintf("(declare-fun %s () %s)", sym, sort.SMTName())
}
