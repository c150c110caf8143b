// Package finfo loads the FInfo record the constraint-file parser would
// otherwise produce. That parser is out of scope; this package reads a
// small JSON envelope naming the same fields so the CLI has a concrete file
// format to read, reusing internal/smt's SMT-LIB term parser for every
// expression field rather than inventing a second expression syntax.
package finfo

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/horn-infer/hornqual/internal/clause"
	"github.com/horn-infer/hornqual/internal/smt"
	"github.com/horn-infer/hornqual/internal/term"
)

type jsonRefinement struct {
	VV   string `json:"vv"`
	Pred string `json:"pred"`
	Sort string `json:"sort"`
}

type jsonBinding struct {
	Sym     string         `json:"sym"`
	Refined jsonRefinement `json:"refined"`
}

type jsonConstraint struct {
	Env []string       `json:"env"`
	LHS jsonRefinement `json:"lhs"`
	RHS jsonRefinement `json:"rhs"`
}

type jsonFInfo struct {
	Binds        map[string]jsonBinding    `json:"binds"`
	Constraints  map[string]jsonConstraint `json:"constraints"`
	WF           map[string]string         `json:"wf"`
	LiteralSorts map[string]string         `json:"literal_sorts"`
	KVars        []string                  `json:"kvars"`
}

// Load reads and decodes the FInfo record at path.
func Load(path string) (*clause.FInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading FInfo file %s", path)
	}
	var jf jsonFInfo
	if err := json.Unmarshal(data, &jf); err != nil {
		return nil, errors.Wrapf(err, "parsing FInfo file %s", path)
	}
	return decode(jf)
}

func decode(jf jsonFInfo) (*clause.FInfo, error) {
	binds := make(clause.BindEnv, len(jf.Binds))
	for id, b := range jf.Binds {
		refined, err := decodeRefinement(b.Refined)
		if err != nil {
			return nil, errors.Wrapf(err, "decoding binding %s", id)
		}
		binds[clause.BinderID(id)] = clause.Binding{Sym: term.Symbol(b.Sym), Refined: refined}
	}

	constraints := make(map[string]clause.RawConstraint, len(jf.Constraints))
	for id, c := range jf.Constraints {
		lhs, err := decodeRefinement(c.LHS)
		if err != nil {
			return nil, errors.Wrapf(err, "decoding constraint %s LHS", id)
		}
		rhs, err := decodeRefinement(c.RHS)
		if err != nil {
			return nil, errors.Wrapf(err, "decoding constraint %s RHS", id)
		}
		env := make([]clause.BinderID, len(c.Env))
		for i, e := range c.Env {
			env[i] = clause.BinderID(e)
		}
		constraints[id] = clause.RawConstraint{ID: id, Env: env, LHS: lhs, RHS: rhs}
	}

	wf := make(clause.WellFormed, len(jf.WF))
	for k, sortName := range jf.WF {
		wf[term.KVar(k)] = decodeSort(sortName)
	}

	literalSorts := make(term.SortEnv, len(jf.LiteralSorts))
	for sym, sortName := range jf.LiteralSorts {
		literalSorts[term.Symbol(sym)] = decodeSort(sortName)
	}

	kvars := make([]term.KVar, len(jf.KVars))
	for i, k := range jf.KVars {
		kvars[i] = term.KVar(k)
	}

	return &clause.FInfo{
		Binds:        binds,
		Constraints:  constraints,
		WF:           wf,
		LiteralSorts: literalSorts,
		KVars:        kvars,
	}, nil
}

func decodeRefinement(r jsonRefinement) (clause.Refinement, error) {
	if r.Pred == "" {
		return clause.Refinement{VV: term.Symbol(r.VV), Sort: decodeSort(r.Sort)}, nil
	}
	pred, err := smt.ParseExpr(r.Pred)
	if err != nil {
		return clause.Refinement{}, err
	}
	return clause.Refinement{VV: term.Symbol(r.VV), Pred: pred, Sort: decodeSort(r.Sort)}, nil
}

func decodeSort(name string) term.Sort {
	switch name {
	case "Bool":
		return term.Bool
	case "Real":
		return term.Real
	case "Int", "":
		return term.Int
	default:
		return term.Named(name)
	}
}
