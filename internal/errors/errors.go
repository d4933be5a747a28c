// Package errors provides error handling for yichus-core.
//
// It re-exports github.com/cockroachdb/errors so callers get stack traces,
// wrapping, and errors.Is/As compatibility from a single import, and it
// defines the sentinel errors the resolution and status engines report.
//
// Usage:
//
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	if errors.Is(err, errors.ErrUnknownPerson) {
//	    // handle a reference to a person the snapshot does not contain
//	}
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing hints and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
)

// Assertions
var (
	AssertionFailedf = crdb.AssertionFailedf
)

// Sentinel errors reported by graph resolution and status computation.
// Check them with errors.Is(); wrap them with errors.Wrap() to add context
// while preserving the kind.
var (
	// ErrOutOfRange indicates a slice index outside a graph's timeline.
	ErrOutOfRange = New("slice index out of range")

	// ErrDuplicateID indicates an event introduced an ID that already exists.
	ErrDuplicateID = New("duplicate id")

	// ErrDanglingReference indicates a relation or change referencing a
	// person that does not exist at the slice where it is applied.
	ErrDanglingReference = New("dangling reference")

	// ErrUnknownPerson indicates a person ID that does not resolve.
	ErrUnknownPerson = New("unknown person")

	// ErrUnknownRelation indicates a relation ID that does not resolve.
	ErrUnknownRelation = New("unknown relation")

	// ErrInvalidPair indicates a pair query with identical endpoints or an
	// endpoint absent from the snapshot.
	ErrInvalidPair = New("invalid pair")

	// ErrNotFound indicates a stored resource (tree, profile) that does not
	// exist.
	ErrNotFound = New("not found")
)

// IsNotFound checks if an error is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsResolutionError checks if an error is one of the kinds the resolver
// reports while folding a timeline. CLI commands use it to distinguish
// bad graph data from infrastructure failures.
func IsResolutionError(err error) bool {
	return err != nil && IsAny(err,
		ErrOutOfRange,
		ErrDuplicateID,
		ErrDanglingReference,
		ErrUnknownPerson,
		ErrUnknownRelation,
	)
}
