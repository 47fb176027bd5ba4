package compile

import (
	"fmt"
	"strings"

	"github.com/crillab/goqubo/expr"
	"github.com/pkg/errors"
)

// MissingBindingError is returned when placeholders have no bound value.
type MissingBindingError struct {
	Names []string // sorted
}

func (e *MissingBindingError) Error() string {
	return fmt.Sprintf("no binding for placeholder(s) %s", strings.Join(e.Names, ", "))
}

// UserError implements expr.UserError.
func (e *MissingBindingError) UserError() bool { return true }

// ReductionOverflowError is returned when degree reduction needs more
// auxiliary variables than allowed.
type ReductionOverflowError struct {
	Max  int
	Term string // the term that could not be reduced
}

func (e *ReductionOverflowError) Error() string {
	return fmt.Sprintf("degree reduction needs more than %d auxiliary variables, could not reduce %s", e.Max, e.Term)
}

// Internal implements internalError.
func (e *ReductionOverflowError) Internal() bool { return true }

type internalError interface {
	error
	Internal() bool
}

// IsUserModelError is true iff err was caused by an invalid model:
// missing bindings, unsupported domains, malformed predicates, etc.
func IsUserModelError(err error) bool {
	return expr.IsUserError(err)
}

// IsInternalError is true iff err is a compiler failure, such as a degree reduction overflow.
func IsInternalError(err error) bool {
	var ie internalError
	return errors.As(err, &ie) && ie.Internal()
}
