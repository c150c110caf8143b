package smt

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/horn-infer/hornqual/internal/config"
)

// preambleCommands returns the set-option commands issued right after the
// solver starts, before any declarations: model production always on,
// interpolation-friendly quantifier instantiation tuned per backend and, for
// Z3, per version.
func preambleCommands(backend config.Backend, z3Version string) []string {
	cmds := []string{"(set-option :produce-models true)"}
	switch backend {
	case config.BackendZ3:
		if z3VersionBefore(z3Version, 4, 3, 2) {
			cmds = append(cmds, "(set-option :auto-config false)", "(set-option :smt.mbqi false)")
		} else {
			cmds = append(cmds, "(set-option :smt.qi.eager_threshold 100)", "(set-option :smt.mbqi false)")
		}
	case config.BackendMathSAT:
		cmds = append(cmds, "(set-option :interpolation true)")
	case config.BackendCVC4:
		cmds = append(cmds, "(set-option :produce-interpolants true)")
	}
	return cmds
}

// interpolationCommand returns the command used to request interpolants for
// the asserted formula, after an `unsat` response to check-sat, per backend.
func interpolationCommand(backend config.Backend) string {
	switch backend {
	case config.BackendMathSAT, config.BackendCVC4:
		return "(get-interpolants)"
	default:
		return "(compute-interpolant)"
	}
}

var z3VersionPattern = regexp.MustCompile(`(\d+)\.(\d+)\.(\d+)`)

// z3VersionBefore reports whether version (as returned by Z3's
// `(get-info :version)`) is strictly older than major.minor.patch. An
// unparseable version string is treated as pre-dating any gate, matching
// the conservative (older) option set.
func z3VersionBefore(version string, major, minor, patch int) bool {
	m := z3VersionPattern.FindStringSubmatch(version)
	if m == nil {
		return true
	}
	vMajor, _ := strconv.Atoi(m[1])
	vMinor, _ := strconv.Atoi(m[2])
	vPatch, _ := strconv.Atoi(m[3])
	if vMajor != major {
		return vMajor < major
	}
	if vMinor != minor {
		return vMinor < minor
	}
	return vPatch < patch
}

// parseZ3Version extracts the version string from a `(:version "x.y.z")`
// get-info response, returning "" if the response doesn't match that shape.
func parseZ3Version(response string) string {
	idx := strings.Index(response, ":version")
	if idx < 0 {
		return ""
	}
	rest := response[idx+len(":version"):]
	start := strings.IndexByte(rest, '"')
	if start < 0 {
		return ""
	}
	rest = rest[start+1:]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		return ""
	}
	return rest[:end]
}
