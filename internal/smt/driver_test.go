package smt

import (
	"bufio"
	"io"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/horn-infer/hornqual/internal/config"
	"github.com/horn-infer/hornqual/internal/term"
)

// fakeSolver drains commands sent to stdin and lets a test script the
// responses a real subprocess would have written to stdout, without ever
// spawning one.
type fakeSolver struct {
	sentCh chan string
	out    *io.PipeWriter
}

func newTestDriver(t *testing.T) (*Driver, *fakeSolver) {
	t.Helper()
	stdinR, stdinW := io.Pipe()
	stdoutR, stdoutW := io.Pipe()

	fs := &fakeSolver{sentCh: make(chan string, 64), out: stdoutW}
	go func() {
		scanner := bufio.NewScanner(stdinR)
		for scanner.Scan() {
			fs.sentCh <- scanner.Text()
		}
	}()

	d := &Driver{
		stdin:    stdinW,
		out:      bufio.NewReader(stdoutR),
		log:      hclog.NewNullLogger(),
		backend:  config.BackendZ3,
		declared: make(map[term.Symbol]struct{}),
	}
	return d, fs
}

func (fs *fakeSolver) respond(text string) {
	_, _ = io.WriteString(fs.out, text+"\n")
}

func TestDriverDeclareSkipsAlreadyDeclared(t *testing.T) {
	d, fs := newTestDriver(t)

	err := d.Declare(term.SortEnv{"x": term.Int})
	require.NoError(t, err)
	err = d.Declare(term.SortEnv{"x": term.Int, "y": term.Bool})
	require.NoError(t, err)

	assert.Contains(t, d.declared, term.Symbol("x"))
	assert.Contains(t, d.declared, term.Symbol("y"))
	assert.Equal(t, "(declare-fun x () Int)", <-fs.sentCh)
	assert.Equal(t, "(declare-fun y () Bool)", <-fs.sentCh, "x must not be declared a second time")
}

func TestDriverInterpolateUnsatReturnsInterpolants(t *testing.T) {
	d, fs := newTestDriver(t)
	go func() {
		for cmd := range fs.sentCh {
			switch {
			case cmd == "(check-sat)":
				fs.respond("unsat")
			case strings.Contains(cmd, "compute-interpolant"):
				fs.respond("(>= v 0)")
			}
		}
	}()

	formula := term.BinRel{Op: term.Ge, L: term.Var{Sym: "v"}, R: term.IntLit{Value: 0}}
	interpolants, err := d.Interpolate(formula, 1)
	require.NoError(t, err)
	require.Len(t, interpolants, 1)
	assert.True(t, term.Equal(formula, interpolants[0]))
}

func TestDriverInterpolateSatReturnsError(t *testing.T) {
	d, fs := newTestDriver(t)
	go func() {
		for cmd := range fs.sentCh {
			if cmd == "(check-sat)" {
				fs.respond("sat")
			}
		}
	}()

	_, err := d.Interpolate(term.BoolLit{Value: true}, 1)
	assert.Error(t, err)
}

func TestDriverInterpolateUnknownReturnsError(t *testing.T) {
	d, fs := newTestDriver(t)
	go func() {
		for cmd := range fs.sentCh {
			if cmd == "(check-sat)" {
				fs.respond("unknown")
			}
		}
	}()

	_, err := d.Interpolate(term.BoolLit{Value: true}, 1)
	assert.Error(t, err)
}

func TestReadSExprTextBalancesParens(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("  (and (>= v 0) (< v 10)) extra"))
	got, err := readSExprText(r)
	require.NoError(t, err)
	assert.Equal(t, "(and (>= v 0) (< v 10))", got)
}

func TestReadSExprTextAtom(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("unsat\n"))
	got, err := readSExprText(r)
	require.NoError(t, err)
	assert.Equal(t, "unsat", got)
}
