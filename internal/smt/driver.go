// Package smt drives a long-lived SMT solver subprocess over SMT-LIB 2,
// wrapping a subprocess pipe dialogue behind a mutex-guarded set of
// request/response methods.
package smt

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/horn-infer/hornqual/internal/config"
	"github.com/horn-infer/hornqual/internal/herrors"
	"github.com/horn-infer/hornqual/internal/term"
)

// dialogueState tracks the SMT dialogue's protocol state: Idle, Declaring,
// Asserting, WaitingSat, WaitingInterp, back to Idle.
type dialogueState int

const (
	stateIdle dialogueState = iota
	stateDeclaring
	stateAsserting
	stateWaitingSat
	stateWaitingInterp
)

// Driver owns one solver subprocess. Every exported method holds mu for its
// whole exchange, so calls from several goroutines are serialized and the
// dialogue stays strictly sequential (one query at a time), matching
// kernel.Kernel's own single-mutex discipline.
type Driver struct {
	mu sync.Mutex

	cmd   *exec.Cmd
	stdin io.WriteCloser
	out   *bufio.Reader

	log        hclog.Logger
	transcript *os.File
	backend    config.Backend

	state    dialogueState
	declared map[term.Symbol]struct{}
}

// NewDriver spawns the configured solver subprocess, opens the optional
// transcript log, probes the backend's version (Z3 only) and emits the
// version-gated preamble of set-option commands.
func NewDriver(ctx context.Context, cfg config.Config, log hclog.Logger) (*Driver, error) {
	cmd := exec.CommandContext(ctx, cfg.SolverPath, "-in")
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, herrors.NewIOError("opening SMT solver stdin", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, herrors.NewIOError("opening SMT solver stdout", err)
	}
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		return nil, herrors.NewIOError("spawning SMT solver subprocess", err)
	}

	d := &Driver{
		cmd:      cmd,
		stdin:    stdin,
		out:      bufio.NewReader(stdout),
		log:      log,
		backend:  cfg.Backend,
		state:    stateIdle,
		declared: make(map[term.Symbol]struct{}),
	}
	started := false
	defer func() {
		if !started {
			_ = d.Close()
		}
	}()

	if cfg.TranscriptLog != "" {
		f, err := os.Create(cfg.TranscriptLog)
		if err != nil {
			return nil, herrors.NewIOError("opening SMT transcript log", err)
		}
		d.transcript = f
	}

	z3Version := ""
	if cfg.Backend == config.BackendZ3 {
		v, err := d.probeZ3Version()
		if err != nil {
			return nil, err
		}
		z3Version = v
	}
	for _, c := range preambleCommands(cfg.Backend, z3Version) {
		if err := d.send(c); err != nil {
			return nil, err
		}
	}
	started = true
	return d, nil
}

func (d *Driver) probeZ3Version() (string, error) {
	if err := d.send("(get-info :version)"); err != nil {
		return "", err
	}
	resp, err := d.recvRaw()
	if err != nil {
		return "", err
	}
	return parseZ3Version(resp), nil
}

// Declare emits a declare-fun command for every symbol in syms not already
// declared on this connection, transitioning Idle -> Declaring -> Idle.
func (d *Driver) Declare(syms term.SortEnv) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.state = stateDeclaring
	names := make([]term.Symbol, 0, len(syms))
	for sym := range syms {
		names = append(names, sym)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	for _, sym := range names {
		if _, ok := d.declared[sym]; ok {
			continue
		}
		if err := d.send(declareFunCommand(sym, syms[sym])); err != nil {
			return err
		}
		d.declared[sym] = struct{}{}
	}
	d.state = stateIdle
	return nil
}

// Interpolate asserts formula inside a push/pop scope (so the assertion
// does not persist for the next query) and, if the solver confirms unsat,
// requests interpolants, parsing exactly cutCount of them.
func (d *Driver) Interpolate(formula term.Expr, cutCount int) ([]term.Expr, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	queryID := uuid.NewString()
	log := d.log.With("query_id", queryID)

	if err := d.send("(push 1)"); err != nil {
		return nil, err
	}
	defer func() {
		if err := d.send("(pop 1)"); err != nil {
			log.Warn("failed to pop SMT scope after query", "error", err)
		}
	}()

	d.state = stateAsserting
	if err := d.send("(assert " + toSMTLIB(formula) + ")"); err != nil {
		return nil, err
	}

	d.state = stateWaitingSat
	if err := d.send("(check-sat)"); err != nil {
		return nil, err
	}
	sat, err := d.recvRaw()
	if err != nil {
		return nil, err
	}
	sat = strings.TrimSpace(sat)
	log.Trace("smt check-sat response", "response", sat)

	switch sat {
	case "unsat":
		d.state = stateWaitingInterp
	case "sat":
		d.state = stateIdle
		return nil, herrors.NewSMTProtocolError(queryID, "solver returned sat on an interpolation query")
	case "unknown":
		d.state = stateIdle
		return nil, herrors.NewSMTProtocolError(queryID, "solver returned unknown")
	default:
		d.state = stateIdle
		return nil, herrors.NewSMTProtocolError(queryID, "unrecognized check-sat response: "+sat)
	}

	if err := d.send(interpolationCommand(d.backend)); err != nil {
		return nil, err
	}

	interpolants := make([]term.Expr, 0, cutCount)
	for i := 0; i < cutCount; i++ {
		raw, err := d.recvRaw()
		if err != nil {
			return nil, err
		}
		if strings.HasPrefix(strings.TrimSpace(raw), "(error") {
			return nil, herrors.NewSMTProtocolError(queryID, "solver returned an error token: "+raw)
		}
		node, err := parseSExpr(raw)
		if err != nil {
			return nil, err
		}
		expr, err := exprFromSExpr(node)
		if err != nil {
			return nil, err
		}
		interpolants = append(interpolants, expr)
	}
	if len(interpolants) != cutCount {
		return nil, herrors.NewSMTProtocolError(queryID, "solver returned fewer interpolants than cut points")
	}

	d.state = stateIdle
	log.Trace("smt interpolation satisfied", "cuts", cutCount)
	return interpolants, nil
}

// Close terminates the solver dialogue: closes stdin (most solvers exit on
// EOF), drains any solver output not yet read, waits for the process, and
// closes the transcript log.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var firstErr error
	if err := d.stdin.Close(); err != nil && firstErr == nil {
		firstErr = herrors.NewIOError("closing SMT solver stdin", err)
	}
	_, _ = io.Copy(io.Discard, d.out)
	if err := d.cmd.Wait(); err != nil && firstErr == nil {
		firstErr = herrors.NewIOError("waiting for SMT solver to exit", err)
	}
	if d.transcript != nil {
		if err := d.transcript.Close(); err != nil && firstErr == nil {
			firstErr = herrors.NewIOError("closing SMT transcript log", err)
		}
	}
	return firstErr
}

func (d *Driver) send(line string) error {
	if d.transcript != nil {
		_, _ = io.WriteString(d.transcript, line+"\n")
	}
	d.log.Trace("smt send", "line", line)
	if _, err := io.WriteString(d.stdin, line+"\n"); err != nil {
		return herrors.NewIOError("writing to SMT solver", err)
	}
	return nil
}

func (d *Driver) recvRaw() (string, error) {
	raw, err := readSExprText(d.out)
	if err != nil {
		return "", herrors.NewIOError("reading from SMT solver", err)
	}
	if d.transcript != nil {
		_, _ = io.WriteString(d.transcript, "; <- "+raw+"\n")
	}
	d.log.Trace("smt recv", "raw", raw)
	return raw, nil
}

// readSExprText reads one whitespace-delimited atom or one balanced
// parenthesized form from r, skipping leading whitespace. |...|-quoted
// sections are not scanned for parens.
func readSExprText(r *bufio.Reader) (string, error) {
	for {
		b, err := r.ReadByte()
		if err != nil {
			return "", err
		}
		if b == ' ' || b == '\t' || b == '\n' || b == '\r' {
			continue
		}
		if err := r.UnreadByte(); err != nil {
			return "", err
		}
		break
	}

	first, err := r.ReadByte()
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteByte(first)
	if first != '(' {
		for {
			b, err := r.ReadByte()
			if err != nil {
				if err == io.EOF {
					break
				}
				return "", err
			}
			if b == ' ' || b == '\t' || b == '\n' || b == '\r' {
				break
			}
			sb.WriteByte(b)
		}
		return sb.String(), nil
	}

	depth := 1
	inPipe := false
	for depth > 0 {
		b, err := r.ReadByte()
		if err != nil {
			return "", err
		}
		sb.WriteByte(b)
		if b == '|' {
			inPipe = !inPipe
			continue
		}
		if inPipe {
			continue
		}
		if b == '(' {
			depth++
		} else if b == ')' {
			depth--
		}
	}
	return sb.String(), nil
}
