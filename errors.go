// errors.go: Structured error kinds for argument registration and parsing
//
// Every failure raised by this package is an *ArgError carrying a closed
// ErrorKind and the context needed to render a diagnostic (offending token,
// destination key, expected cardinality). ArgError implements the
// go-errors ErrorCoder interface so callers can branch on stable codes.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package argparse

import (
	goerrors "errors"
	"fmt"
	"strings"

	"github.com/agilira/go-errors"
)

// Error codes
const (
	ErrCodeIllegalName           = "ARGPARSE_ILLEGAL_NAME"
	ErrCodeIllegalAction         = "ARGPARSE_ILLEGAL_ACTION"
	ErrCodeIllegalNArgs          = "ARGPARSE_ILLEGAL_NARGS"
	ErrCodeIllegalAltSwitches    = "ARGPARSE_ILLEGAL_ALT_SWITCHES"
	ErrCodeDuplicateArgument     = "ARGPARSE_DUPLICATE_ARGUMENT"
	ErrCodeDuplicateSwitch       = "ARGPARSE_DUPLICATE_SWITCH"
	ErrCodeIncompatibleSwitches  = "ARGPARSE_INCOMPATIBLE_SWITCHES"
	ErrCodeEmptyDestinationName  = "ARGPARSE_EMPTY_DESTINATION_NAME"
	ErrCodeAcceptSetSizeMismatch = "ARGPARSE_ACCEPT_SET_SIZE_MISMATCH"
	ErrCodeDefaultOnPositional   = "ARGPARSE_DEFAULT_ON_POSITIONAL"
	ErrCodeTypeMismatch          = "ARGPARSE_TYPE_MISMATCH"
	ErrCodeLogicalConflict       = "ARGPARSE_LOGICAL_CONFLICT"
	ErrCodeUnrecognizedBoolean   = "ARGPARSE_UNRECOGNIZED_BOOLEAN"
	ErrCodeUnrecognizedNumber    = "ARGPARSE_UNRECOGNIZED_NUMBER"
	ErrCodeOutsideAcceptanceSet  = "ARGPARSE_OUTSIDE_ACCEPTANCE_SET"
	ErrCodeNotSet                = "ARGPARSE_NOT_SET"
	ErrCodeUnrecognizedSwitch    = "ARGPARSE_UNRECOGNIZED_SWITCH"
	ErrCodeRepeatedArgument      = "ARGPARSE_REPEATED_ARGUMENT"
	ErrCodeInsufficientArguments = "ARGPARSE_INSUFFICIENT_ARGUMENTS"
	ErrCodeTooManyPositional     = "ARGPARSE_TOO_MANY_POSITIONAL"
	ErrCodeMissingPositional     = "ARGPARSE_MISSING_POSITIONAL"
	ErrCodePredicateSyntax       = "ARGPARSE_PREDICATE_SYNTAX"
	ErrCodeValueCountMismatch    = "ARGPARSE_VALUE_COUNT_MISMATCH"
	ErrCodeUnknownArgument       = "ARGPARSE_UNKNOWN_ARGUMENT"
	ErrCodeInvalidDeclaration    = "ARGPARSE_INVALID_DECLARATION"
	ErrCodeInvalidLayout         = "ARGPARSE_INVALID_LAYOUT"
	ErrCodeAuditFailure          = "ARGPARSE_AUDIT_FAILURE"
	ErrCodeInvalidTokenLine      = "ARGPARSE_INVALID_TOKEN_LINE"
	ErrCodeBatchFailure          = "ARGPARSE_BATCH_FAILURE"
)

// ErrorKind enumerates every failure the package can raise.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota

	// construction
	KindIllegalName
	KindIllegalAction
	KindIllegalNArgs
	KindIllegalAltSwitches
	KindDuplicateArgument
	KindDuplicateSwitch
	KindIncompatibleSwitches
	KindEmptyDestinationName

	// configuration
	KindAcceptSetSizeMismatch
	KindDefaultOnPositional
	KindTypeMismatch
	KindLogicalConflict

	// value
	KindUnrecognizedBoolean
	KindUnrecognizedNumber
	KindOutsideAcceptanceSet
	KindNotSet
	KindPredicateSyntax
	KindValueCountMismatch

	// parse
	KindUnrecognizedSwitch
	KindRepeatedArgument
	KindInsufficientArguments
	KindTooManyPositional
	KindMissingPositional

	// lookup and collaborators
	KindUnknownArgument
	KindInvalidDeclaration
	KindInvalidLayout
	KindInvalidTokenLine
)

// Phase groups error kinds by the lifecycle stage that raises them.
type Phase int

const (
	PhaseOther Phase = iota
	PhaseConstruction
	PhaseConfiguration
	PhaseValue
	PhaseParse
)

var kindInfo = map[ErrorKind]struct {
	name  string
	code  string
	phase Phase
}{
	KindIllegalName:           {"IllegalName", ErrCodeIllegalName, PhaseConstruction},
	KindIllegalAction:         {"IllegalAction", ErrCodeIllegalAction, PhaseConstruction},
	KindIllegalNArgs:          {"IllegalNArgs", ErrCodeIllegalNArgs, PhaseConstruction},
	KindIllegalAltSwitches:    {"IllegalAltSwitches", ErrCodeIllegalAltSwitches, PhaseConstruction},
	KindDuplicateArgument:     {"DuplicateArgument", ErrCodeDuplicateArgument, PhaseConstruction},
	KindDuplicateSwitch:       {"DuplicateSwitch", ErrCodeDuplicateSwitch, PhaseConstruction},
	KindIncompatibleSwitches:  {"IncompatibleSwitches", ErrCodeIncompatibleSwitches, PhaseConstruction},
	KindEmptyDestinationName:  {"EmptyDestinationName", ErrCodeEmptyDestinationName, PhaseConstruction},
	KindAcceptSetSizeMismatch: {"AcceptSetSizeMismatch", ErrCodeAcceptSetSizeMismatch, PhaseConfiguration},
	KindDefaultOnPositional:   {"DefaultOnPositional", ErrCodeDefaultOnPositional, PhaseConfiguration},
	KindTypeMismatch:          {"TypeMismatch", ErrCodeTypeMismatch, PhaseConfiguration},
	KindLogicalConflict:       {"LogicalConflict", ErrCodeLogicalConflict, PhaseConfiguration},
	KindUnrecognizedBoolean:   {"UnrecognizedBoolean", ErrCodeUnrecognizedBoolean, PhaseValue},
	KindUnrecognizedNumber:    {"UnrecognizedNumber", ErrCodeUnrecognizedNumber, PhaseValue},
	KindOutsideAcceptanceSet:  {"OutsideAcceptanceSet", ErrCodeOutsideAcceptanceSet, PhaseValue},
	KindNotSet:                {"NotSet", ErrCodeNotSet, PhaseValue},
	KindPredicateSyntax:       {"PredicateSyntax", ErrCodePredicateSyntax, PhaseValue},
	KindValueCountMismatch:    {"ValueCountMismatch", ErrCodeValueCountMismatch, PhaseValue},
	KindUnrecognizedSwitch:    {"UnrecognizedSwitch", ErrCodeUnrecognizedSwitch, PhaseParse},
	KindRepeatedArgument:      {"RepeatedArgument", ErrCodeRepeatedArgument, PhaseParse},
	KindInsufficientArguments: {"InsufficientArguments", ErrCodeInsufficientArguments, PhaseParse},
	KindTooManyPositional:     {"TooManyPositional", ErrCodeTooManyPositional, PhaseParse},
	KindMissingPositional:     {"MissingPositional", ErrCodeMissingPositional, PhaseParse},
	KindUnknownArgument:       {"UnknownArgument", ErrCodeUnknownArgument, PhaseOther},
	KindInvalidDeclaration:    {"InvalidDeclaration", ErrCodeInvalidDeclaration, PhaseOther},
	KindInvalidLayout:         {"InvalidLayout", ErrCodeInvalidLayout, PhaseOther},
	KindInvalidTokenLine:      {"InvalidTokenLine", ErrCodeInvalidTokenLine, PhaseParse},
}

// String returns the kind name.
func (k ErrorKind) String() string {
	if info, ok := kindInfo[k]; ok {
		return info.name
	}
	return "Unknown"
}

// Code returns the stable error code for the kind.
func (k ErrorKind) Code() errors.ErrorCode {
	if info, ok := kindInfo[k]; ok {
		return errors.ErrorCode(info.code)
	}
	return errors.ErrorCode("ARGPARSE_UNKNOWN")
}

// Phase reports the lifecycle stage that raises the kind.
func (k ErrorKind) Phase() Phase {
	return kindInfo[k].phase
}

// Sentinel errors for use with errors.Is. Matching compares kinds only.
var (
	ErrIllegalName           = &ArgError{Kind: KindIllegalName, Index: -1}
	ErrIllegalAction         = &ArgError{Kind: KindIllegalAction, Index: -1}
	ErrIllegalNArgs          = &ArgError{Kind: KindIllegalNArgs, Index: -1}
	ErrIllegalAltSwitches    = &ArgError{Kind: KindIllegalAltSwitches, Index: -1}
	ErrDuplicateArgument     = &ArgError{Kind: KindDuplicateArgument, Index: -1}
	ErrDuplicateSwitch       = &ArgError{Kind: KindDuplicateSwitch, Index: -1}
	ErrIncompatibleSwitches  = &ArgError{Kind: KindIncompatibleSwitches, Index: -1}
	ErrEmptyDestinationName  = &ArgError{Kind: KindEmptyDestinationName, Index: -1}
	ErrAcceptSetSizeMismatch = &ArgError{Kind: KindAcceptSetSizeMismatch, Index: -1}
	ErrDefaultOnPositional   = &ArgError{Kind: KindDefaultOnPositional, Index: -1}
	ErrTypeMismatch          = &ArgError{Kind: KindTypeMismatch, Index: -1}
	ErrLogicalConflict       = &ArgError{Kind: KindLogicalConflict, Index: -1}
	ErrUnrecognizedBoolean   = &ArgError{Kind: KindUnrecognizedBoolean, Index: -1}
	ErrUnrecognizedNumber    = &ArgError{Kind: KindUnrecognizedNumber, Index: -1}
	ErrOutsideAcceptanceSet  = &ArgError{Kind: KindOutsideAcceptanceSet, Index: -1}
	ErrNotSet                = &ArgError{Kind: KindNotSet, Index: -1}
	ErrPredicateSyntax       = &ArgError{Kind: KindPredicateSyntax, Index: -1}
	ErrValueCountMismatch    = &ArgError{Kind: KindValueCountMismatch, Index: -1}
	ErrUnrecognizedSwitch    = &ArgError{Kind: KindUnrecognizedSwitch, Index: -1}
	ErrRepeatedArgument      = &ArgError{Kind: KindRepeatedArgument, Index: -1}
	ErrInsufficientArguments = &ArgError{Kind: KindInsufficientArguments, Index: -1}
	ErrTooManyPositional     = &ArgError{Kind: KindTooManyPositional, Index: -1}
	ErrMissingPositional     = &ArgError{Kind: KindMissingPositional, Index: -1}
	ErrUnknownArgument       = &ArgError{Kind: KindUnknownArgument, Index: -1}
	ErrInvalidDeclaration    = &ArgError{Kind: KindInvalidDeclaration, Index: -1}
	ErrInvalidLayout         = &ArgError{Kind: KindInvalidLayout, Index: -1}
	ErrInvalidTokenLine      = &ArgError{Kind: KindInvalidTokenLine, Index: -1}
)

// ArgError is the structured error value raised by registration,
// configuration, value handling and parsing.
type ArgError struct {
	Kind ErrorKind

	Dest      string // destination key, when known
	Name      string // switch spelling or argument name
	Token     string // offending input token
	Index     int    // position in the token list, -1 when not applicable
	Expected  int    // expected cardinality
	Got       int    // observed cardinality
	Predicate string // acceptance predicate involved
	Detail    string // free-form context

	Err error // underlying cause
}

func newError(kind ErrorKind, detail string) *ArgError {
	return &ArgError{Kind: kind, Index: -1, Detail: detail}
}

// Error renders a one-line diagnostic.
func (e *ArgError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	var ctx []string
	if e.Dest != "" {
		ctx = append(ctx, "dest="+e.Dest)
	}
	if e.Name != "" {
		ctx = append(ctx, "name="+e.Name)
	}
	if e.Token != "" {
		ctx = append(ctx, fmt.Sprintf("token=%q", e.Token))
	}
	if e.Index >= 0 {
		ctx = append(ctx, fmt.Sprintf("index=%d", e.Index))
	}
	if e.Expected > 0 || e.Got > 0 {
		ctx = append(ctx, fmt.Sprintf("expected=%d got=%d", e.Expected, e.Got))
	}
	if e.Predicate != "" {
		ctx = append(ctx, fmt.Sprintf("predicate=%q", e.Predicate))
	}
	if len(ctx) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(ctx, ", "))
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *ArgError) Unwrap() error { return e.Err }

// ErrorCode implements errors.ErrorCoder.
func (e *ArgError) ErrorCode() errors.ErrorCode { return e.Kind.Code() }

// Is reports whether target is an *ArgError of the same kind.
func (e *ArgError) Is(target error) bool {
	t, ok := target.(*ArgError)
	return ok && t.Kind == e.Kind
}

// KindOf returns the kind of the outermost *ArgError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var ae *ArgError
	if goerrors.As(err, &ae) {
		return ae.Kind, true
	}
	return KindUnknown, false
}

// IsKind reports whether err carries the given kind anywhere in its chain.
func IsKind(err error, kind ErrorKind) bool {
	for err != nil {
		if ae, ok := err.(*ArgError); ok && ae.Kind == kind {
			return true
		}
		err = goerrors.Unwrap(err)
	}
	return false
}

// annotate fills empty context fields of an *ArgError. Other errors are
// returned unchanged.
func annotate(err error, dest, token string, index int) error {
	ae, ok := err.(*ArgError)
	if !ok {
		return err
	}
	if ae.Dest == "" {
		ae.Dest = dest
	}
	if ae.Token == "" {
		ae.Token = token
	}
	if ae.Index < 0 {
		ae.Index = index
	}
	return ae
}
