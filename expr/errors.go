package expr

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// A UserError is an error caused by an invalid model, rather than by a failure
// of the compiler itself. Such errors are reported to the caller and never
// silently defaulted.
type UserError interface {
	error
	UserError() bool
}

// IsUserError is true iff err, or one of the errors it wraps, is a UserError.
func IsUserError(err error) bool {
	var ue UserError
	return errors.As(err, &ue) && ue.UserError()
}

// UnsupportedDomainError is returned when a variable domain cannot be encoded.
type UnsupportedDomainError struct {
	Var    string
	Domain Domain
	Reason string
}

func (e *UnsupportedDomainError) Error() string {
	return fmt.Sprintf("unsupported domain %v for variable %q: %s", e.Domain, e.Var, e.Reason)
}

// UserError implements UserError.
func (e *UnsupportedDomainError) UserError() bool { return true }

// MalformedPredicateError is returned when a constraint cannot be turned into a penalty.
type MalformedPredicateError struct {
	Label  string
	Reason string
}

func (e *MalformedPredicateError) Error() string {
	return fmt.Sprintf("malformed predicate for constraint %q: %s", e.Label, e.Reason)
}

// UserError implements UserError.
func (e *MalformedPredicateError) UserError() bool { return true }

// DuplicateLabelError is returned when two constraints or labeled subexpressions share a label.
type DuplicateLabelError string

func (e DuplicateLabelError) Error() string {
	return fmt.Sprintf("duplicate label %q in model", string(e))
}

// UserError implements UserError.
func (e DuplicateLabelError) UserError() bool { return true }

// UnknownLabelError is returned when a category selector names a label absent from the domain.
type UnknownLabelError struct {
	Var   string
	Label string
}

func (e *UnknownLabelError) Error() string {
	return fmt.Sprintf("variable %q has no label %q", e.Var, e.Label)
}

// UserError implements UserError.
func (e *UnknownLabelError) UserError() bool { return true }

// ConflictingDeclarationError is returned when a variable name is declared twice with different domains.
type ConflictingDeclarationError struct {
	Var      string
	Previous Domain
	Domain   Domain
}

func (e *ConflictingDeclarationError) Error() string {
	return fmt.Sprintf("variable %q declared as %v, then as %v", e.Var, e.Previous, e.Domain)
}

// UserError implements UserError.
func (e *ConflictingDeclarationError) UserError() bool { return true }

// BuildErrors gathers all the errors encountered while building a graph.
type BuildErrors []error

func (errs BuildErrors) Error() string {
	s := make([]string, len(errs))
	for i, err := range errs {
		s[i] = err.Error()
	}
	return fmt.Sprintf("%d errors encountered while building model: %s", len(s), strings.Join(s, ", "))
}

// UserError implements UserError.
func (errs BuildErrors) UserError() bool { return true }

// Unwrap gives access to the individual errors.
func (errs BuildErrors) Unwrap() []error { return errs }
