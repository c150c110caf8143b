// Package term implements the expression language hornqual reasons over:
// symbols, sorts, expressions, and capture-avoiding substitutions.
package term

import (
	"fmt"
	"regexp"
	"strconv"
)

// VV is the distinguished symbol naming a k-variable's implicit argument
// position. Solutions are expressed in terms of VV.
const VV Symbol = "VV"

// Symbol is an interned identifier. Symbols are decorated with a numeric
// suffix by the renamer; suffixed symbols are otherwise opaque.
type Symbol string

// String implements fmt.Stringer.
func (s Symbol) String() string { return string(s) }

var suffixPattern = regexp.MustCompile(`^(.*?)(\d+)$`)

// Base returns the un-suffixed portion of a symbol and the numeric suffix
// found, if any. "v101" splits into ("v", 101, true); "v" splits into
// ("v", 0, false).
func (s Symbol) Base() (base string, suffix int, ok bool) {
	m := suffixPattern.FindStringSubmatch(string(s))
	if m == nil {
		return string(s), 0, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return string(s), 0, false
	}
	return m[1], n, true
}

// IsInteger reports whether the symbol's name parses as an integer literal.
// This backs the numberification heuristic in internal/solution.numberify,
// its single call site.
func (s Symbol) IsInteger() (int64, bool) {
	n, err := strconv.ParseInt(string(s), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Renamer generates fresh symbols from a base, maintaining one counter per
// base name (not a global counter) so generated names stay stable under
// reordering. It must be seeded from every symbol already present in the
// input so that freshly generated suffixes never collide with pre-existing
// ones.
type Renamer struct {
	counters map[string]int
}

// NewRenamer builds a Renamer whose per-base counters are seeded one above
// the highest numeric suffix observed in seedSymbols.
func NewRenamer(seedSymbols []Symbol) *Renamer {
	r := &Renamer{counters: make(map[string]int)}
	for _, s := range seedSymbols {
		base, n, ok := s.Base()
		if !ok {
			continue
		}
		if cur, present := r.counters[base]; !present || n >= cur {
			r.counters[base] = n + 1
		}
	}
	return r
}

// Fresh returns a new symbol suffixing sym's base with this Renamer's
// current counter for that base, then advances the counter. If sym is
// itself already suffixed (e.g. it was produced by an earlier Fresh call),
// the counter is shared with its base so a lineage of renames never
// collides with itself or with suffixes already present in the input.
func (r *Renamer) Fresh(sym Symbol) Symbol {
	base := string(sym)
	if b, _, ok := sym.Base(); ok {
		base = b
	}
	n := r.counters[base]
	r.counters[base] = n + 1
	return Symbol(fmt.Sprintf("%s%d", base, n))
}
