package smt

import (
	"strconv"
	"strings"

	"github.com/horn-infer/hornqual/internal/herrors"
	"github.com/horn-infer/hornqual/internal/term"
)

// sexprNode is a raw, untyped S-expression parse tree: either an atom or a
// parenthesized list of sexprNodes.
type sexprNode struct {
	atom   string
	list   []sexprNode
	isList bool
}

func tokenizeSExpr(s string) []string {
	toks := make([]string, 0, len(s)/2)
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(' || c == ')':
			toks = append(toks, string(c))
			i++
		case c == '|':
			j := i + 1
			for j < len(s) && s[j] != '|' {
				j++
			}
			if j < len(s) {
				j++
			}
			toks = append(toks, s[i:j])
			i = j
		default:
			j := i
			for j < len(s) && s[j] != ' ' && s[j] != '\t' && s[j] != '\n' && s[j] != '\r' && s[j] != '(' && s[j] != ')' {
				j++
			}
			toks = append(toks, s[i:j])
			i = j
		}
	}
	return toks
}

// ParseExpr parses an SMT-LIB 2 term from text into a term.Expr, the same
// parser the driver uses on interpolant responses, exposed for the
// constraint-file loader to reuse rather than duplicate.
func ParseExpr(text string) (term.Expr, error) {
	n, err := parseSExpr(text)
	if err != nil {
		return nil, err
	}
	return exprFromSExpr(n)
}

// parseSExpr parses text into exactly one top-level S-expression.
func parseSExpr(text string) (sexprNode, error) {
	toks := tokenizeSExpr(text)
	pos := 0
	n, err := parseOneSExpr(toks, &pos)
	if err != nil {
		return sexprNode{}, err
	}
	return n, nil
}

func parseOneSExpr(toks []string, pos *int) (sexprNode, error) {
	if *pos >= len(toks) {
		return sexprNode{}, herrors.NewSMTProtocolError("s-expression", "unexpected end of input")
	}
	t := toks[*pos]
	if t == ")" {
		return sexprNode{}, herrors.NewSMTProtocolError("s-expression", "unexpected ')'")
	}
	if t != "(" {
		*pos++
		return sexprNode{atom: t}, nil
	}
	*pos++
	var items []sexprNode
	for {
		if *pos >= len(toks) {
			return sexprNode{}, herrors.NewSMTProtocolError("s-expression", "unterminated list")
		}
		if toks[*pos] == ")" {
			*pos++
			return sexprNode{isList: true, list: items}, nil
		}
		n, err := parseOneSExpr(toks, pos)
		if err != nil {
			return sexprNode{}, err
		}
		items = append(items, n)
	}
}

var arithOpByName = map[string]term.ArithOp{"+": term.Add, "*": term.Mul, "/": term.Div, "mod": term.Mod}
var relOpByName = map[string]term.RelOp{"=": term.Eq, "<": term.Lt, "<=": term.Le, ">": term.Gt, ">=": term.Ge}

// exprFromSExpr converts a raw parse tree into a term.Expr per the grammar
// recognized by the solution extractor: true/false, variables, not/and/or,
// =>, = (iff when both sides are themselves formulas, an equality atom
// otherwise), arithmetic/relational operators, unary minus, ite, and
// arbitrary function application. Anything else is rejected.
func exprFromSExpr(n sexprNode) (term.Expr, error) {
	if !n.isList {
		return atomFromSExpr(n.atom), nil
	}
	if len(n.list) == 0 {
		return nil, herrors.NewSMTProtocolError("s-expression", "empty application")
	}
	head := n.list[0]
	if head.isList {
		return nil, herrors.NewSMTProtocolError("s-expression", "function position must be a symbol")
	}
	args := n.list[1:]

	switch head.atom {
	case "not":
		if len(args) != 1 {
			return nil, herrors.NewSMTProtocolError("s-expression", "not takes exactly one argument")
		}
		x, err := exprFromSExpr(args[0])
		if err != nil {
			return nil, err
		}
		return term.Not{X: x}, nil
	case "and":
		xs, err := exprListFromSExpr(args)
		if err != nil {
			return nil, err
		}
		return term.ConjoinAll(xs...), nil
	case "or":
		xs, err := exprListFromSExpr(args)
		if err != nil {
			return nil, err
		}
		return disjoinAllExpr(xs...), nil
	case "=>":
		if len(args) != 2 {
			return nil, herrors.NewSMTProtocolError("s-expression", "=> takes exactly two arguments")
		}
		l, r, err := exprPairFromSExpr(args)
		if err != nil {
			return nil, err
		}
		return term.Implies{L: l, R: r}, nil
	case "distinct":
		if len(args) != 2 {
			return nil, herrors.NewSMTProtocolError("s-expression", "distinct takes exactly two arguments")
		}
		l, r, err := exprPairFromSExpr(args)
		if err != nil {
			return nil, err
		}
		return term.BinRel{Op: term.Ne, L: l, R: r}, nil
	case "ite":
		if len(args) != 3 {
			return nil, herrors.NewSMTProtocolError("s-expression", "ite takes exactly three arguments")
		}
		cond, err := exprFromSExpr(args[0])
		if err != nil {
			return nil, err
		}
		then, err := exprFromSExpr(args[1])
		if err != nil {
			return nil, err
		}
		els, err := exprFromSExpr(args[2])
		if err != nil {
			return nil, err
		}
		return term.Ite{Cond: cond, Then: then, Else: els}, nil
	case "-":
		if len(args) == 1 {
			x, err := exprFromSExpr(args[0])
			if err != nil {
				return nil, err
			}
			switch v := x.(type) {
			case term.IntLit:
				return term.IntLit{Value: -v.Value}, nil
			case term.RealLit:
				return term.RealLit{Value: -v.Value}, nil
			}
			return term.Neg{X: x}, nil
		}
		if len(args) == 2 {
			l, r, err := exprPairFromSExpr(args)
			if err != nil {
				return nil, err
			}
			return term.BinArith{Op: term.Sub, L: l, R: r}, nil
		}
		return nil, herrors.NewSMTProtocolError("s-expression", "- takes one or two arguments")
	case "=":
		if len(args) != 2 {
			return nil, herrors.NewSMTProtocolError("s-expression", "= takes exactly two arguments")
		}
		l, r, err := exprPairFromSExpr(args)
		if err != nil {
			return nil, err
		}
		if isFormula(l) && isFormula(r) {
			return term.Iff{L: l, R: r}, nil
		}
		return term.BinRel{Op: term.Eq, L: l, R: r}, nil
	}

	if op, ok := arithOpByName[head.atom]; ok {
		if len(args) != 2 {
			return nil, herrors.NewSMTProtocolError("s-expression", head.atom+" takes exactly two arguments")
		}
		l, r, err := exprPairFromSExpr(args)
		if err != nil {
			return nil, err
		}
		return term.BinArith{Op: op, L: l, R: r}, nil
	}
	if op, ok := relOpByName[head.atom]; ok {
		if len(args) != 2 {
			return nil, herrors.NewSMTProtocolError("s-expression", head.atom+" takes exactly two arguments")
		}
		l, r, err := exprPairFromSExpr(args)
		if err != nil {
			return nil, err
		}
		return term.BinRel{Op: op, L: l, R: r}, nil
	}

	xs, err := exprListFromSExpr(args)
	if err != nil {
		return nil, err
	}
	return term.App{Func: term.Symbol(head.atom), Args: xs}, nil
}

func exprPairFromSExpr(args []sexprNode) (term.Expr, term.Expr, error) {
	l, err := exprFromSExpr(args[0])
	if err != nil {
		return nil, nil, err
	}
	r, err := exprFromSExpr(args[1])
	if err != nil {
		return nil, nil, err
	}
	return l, r, nil
}

func exprListFromSExpr(args []sexprNode) ([]term.Expr, error) {
	xs := make([]term.Expr, len(args))
	for i, a := range args {
		x, err := exprFromSExpr(a)
		if err != nil {
			return nil, err
		}
		xs[i] = x
	}
	return xs, nil
}

func atomFromSExpr(atom string) term.Expr {
	switch atom {
	case "true":
		return term.BoolLit{Value: true}
	case "false":
		return term.BoolLit{Value: false}
	}
	if iv, err := strconv.ParseInt(atom, 10, 64); err == nil {
		return term.IntLit{Value: iv}
	}
	if strings.ContainsAny(atom, ".eE") {
		if rv, err := strconv.ParseFloat(atom, 64); err == nil {
			return term.RealLit{Value: rv}
		}
	}
	return term.Var{Sym: term.Symbol(strings.Trim(atom, "|"))}
}

// isFormula reports whether e is already known to be Bool-sorted by its
// own shape, used to disambiguate SMT-LIB's overloaded `=` between logical
// iff and an equality atom.
func isFormula(e term.Expr) bool {
	switch e.(type) {
	case term.BoolLit, term.Not, term.And, term.Or, term.Implies, term.Iff, term.BinRel, term.Exists, term.Interp:
		return true
	default:
		return false
	}
}

func disjoinAllExpr(xs ...term.Expr) term.Expr {
	switch len(xs) {
	case 0:
		return term.BoolLit{Value: false}
	case 1:
		return xs[0]
	default:
		return term.Or{Xs: xs}
	}
}
