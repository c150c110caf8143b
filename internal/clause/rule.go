package clause

import "github.com/horn-infer/hornqual/internal/term"

// Child is a k-variable occurrence K[sigma] found while normalizing a
// constraint, tagged with the symbol to which its implicit vv argument was
// bound.
type Child struct {
	K     term.KVar
	Sigma *term.Subst
	Sym   term.Symbol
}

// Rule is a Horn clause whose conclusion is a k-variable application.
type Rule struct {
	ID       string
	Body     term.Expr
	Children []Child
	Head     term.KVar
}

// Query is a Horn clause whose conclusion is a concrete predicate.
type Query struct {
	ID       string
	Body     term.Expr
	Children []Child
	Head     term.Expr
}
