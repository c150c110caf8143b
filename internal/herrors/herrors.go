// Package herrors implements hornqual's error taxonomy: InputError and
// UnrollInvariantError are fatal caller-bug diagnostics; SMTProtocolError is
// fatal for the current query; SortLookupMiss is recovered locally; IOError
// propagates.
package herrors

import (
	"fmt"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// Phase names the pipeline stage that raised an error, for structured,
// user-visible failure reports.
type Phase string

const (
	PhaseNormalize Phase = "normalize"
	PhaseUnroll    Phase = "unroll"
	PhaseExpand    Phase = "expand"
	PhaseSerialize Phase = "serialize"
	PhaseSMT       Phase = "smt"
	PhaseSolution  Phase = "solution"
	PhaseQualifier Phase = "qualifier"
)

// InputError indicates a constraint's RHS shape mismatches its
// classification (rule vs query), or a k-var lacks a well-formedness entry.
// Fatal: it indicates a caller bug in the upstream constraint file.
type InputError struct {
	Phase  Phase
	Entity string // constraint id, k-var name, or similar
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("input error in %s phase at %s: %s", e.Phase, e.Entity, e.Reason)
}

// NewInputError builds an InputError wrapped with a stack trace.
func NewInputError(phase Phase, entity, reason string) error {
	return errors.WithStack(&InputError{Phase: phase, Entity: entity, Reason: reason})
}

// UnrollInvariantError indicates an unknown Expr variant appeared in a
// position where only k-var applications were expected. Fatal.
type UnrollInvariantError struct {
	Entity string
	Reason string
}

func (e *UnrollInvariantError) Error() string {
	return fmt.Sprintf("unroll invariant violated at %s: %s", e.Entity, e.Reason)
}

// NewUnrollInvariantError builds an UnrollInvariantError wrapped with a
// stack trace.
func NewUnrollInvariantError(entity, reason string) error {
	return errors.WithStack(&UnrollInvariantError{Entity: entity, Reason: reason})
}

// SMTProtocolError indicates the solver returned `sat` on an interpolation
// query, `unknown`, an unrecognized S-expression, fewer interpolants than
// cuts, or an `error` token. Fatal for the current query.
type SMTProtocolError struct {
	Entity string
	Reason string
}

func (e *SMTProtocolError) Error() string {
	return fmt.Sprintf("SMT protocol error at %s: %s", e.Entity, e.Reason)
}

// NewSMTProtocolError builds an SMTProtocolError wrapped with a stack trace.
func NewSMTProtocolError(entity, reason string) error {
	return errors.WithStack(&SMTProtocolError{Entity: entity, Reason: reason})
}

// SortLookupMiss indicates a symbol has no recorded sort. Recovered locally
// by defaulting to integer; callers should log this rather than abort.
type SortLookupMiss struct {
	Symbol string
}

func (e *SortLookupMiss) Error() string {
	return fmt.Sprintf("no recorded sort for %s, defaulting to Int", e.Symbol)
}

// NewSortLookupMiss builds a SortLookupMiss value (not stack-wrapped: this
// is a recoverable, logged condition, not a propagated failure).
func NewSortLookupMiss(symbol string) error {
	return &SortLookupMiss{Symbol: symbol}
}

// IOError wraps subprocess spawn failures, pipe closures, and log-file open
// failures. Propagates to the caller.
type IOError struct {
	Op     string
	Reason error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("I/O error during %s: %v", e.Op, e.Reason)
}

func (e *IOError) Unwrap() error { return e.Reason }

// NewIOError builds an IOError wrapped with a stack trace.
func NewIOError(op string, reason error) error {
	return errors.WithStack(&IOError{Op: op, Reason: reason})
}

// Aggregate collects zero or more errors into a single multierror.Error,
// returning nil if errs is empty after filtering nils. Used when a phase
// can report more than one simultaneous diagnostic.
func Aggregate(errs ...error) error {
	var result *multierror.Error
	for _, e := range errs {
		if e != nil {
			result = multierror.Append(result, e)
		}
	}
	if result == nil {
		return nil
	}
	return result.ErrorOrNil()
}
