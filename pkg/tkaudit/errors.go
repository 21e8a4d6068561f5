package tkaudit

import (
	"errors"
	"fmt"

	"github.com/tetraklein/tkaudit/internal/tkaudit/air"
	"github.com/tetraklein/tkaudit/internal/tkaudit/fri"
	"github.com/tetraklein/tkaudit/internal/tkaudit/ivc"
	"github.com/tetraklein/tkaudit/internal/tkaudit/stability"
	"github.com/tetraklein/tkaudit/internal/tkaudit/trace"
)

// Hard failure types. Each is a structural proof of infeasibility and
// aborts the whole audit run; none is retryable.
type (
	// InvalidLengthError reports a non-positive trace length request.
	InvalidLengthError = trace.InvalidLengthError

	// DegreeExceededError reports a constraint over its degree ceiling.
	DegreeExceededError = air.DegreeExceededError

	// InfeasibleDomainError reports an evaluation domain over the memory
	// ceiling.
	InfeasibleDomainError = fri.InfeasibleDomainError

	// UnboundedGrowthError reports a folding schedule that grows with the
	// horizon.
	UnboundedGrowthError = ivc.UnboundedGrowthError

	// DivergenceError reports a contraction coefficient at or above 1.
	DivergenceError = stability.DivergenceError
)

// ErrorCode classifies an audit error for callers that dispatch on kind
// rather than type.
type ErrorCode int

const (
	// ErrUnknown represents an unknown error.
	ErrUnknown ErrorCode = iota

	// ErrInvalidConfig represents an invalid configuration error.
	ErrInvalidConfig

	// ErrInvalidLength represents an invalid trace length error.
	ErrInvalidLength

	// ErrDegreeExceeded represents a constraint degree ceiling violation.
	ErrDegreeExceeded

	// ErrInfeasibleDomain represents a memory-infeasible evaluation domain.
	ErrInfeasibleDomain

	// ErrUnboundedGrowth represents an unbounded folding schedule.
	ErrUnboundedGrowth

	// ErrDivergence represents a divergent contraction recurrence.
	ErrDivergence
)

// AuditError wraps a stage failure with its classification and the goal
// it surfaced in.
type AuditError struct {
	Code    ErrorCode
	Goal    string
	Message string
	Cause   error
}

// Error returns the error message.
func (e *AuditError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("tkaudit error [%d] at goal %s: %s (caused by: %v)", e.Code, e.Goal, e.Message, e.Cause)
	}
	return fmt.Sprintf("tkaudit error [%d] at goal %s: %s", e.Code, e.Goal, e.Message)
}

// Unwrap returns the cause of the error.
func (e *AuditError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error.
func (e *AuditError) Is(target error) bool {
	t, ok := target.(*AuditError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Classify maps a stage error to its code by type, unwrapping as needed.
func Classify(err error) ErrorCode {
	var (
		lengthErr  *InvalidLengthError
		degreeErr  *DegreeExceededError
		domainErr  *InfeasibleDomainError
		growthErr  *UnboundedGrowthError
		divergeErr *DivergenceError
	)
	switch {
	case errors.As(err, &lengthErr):
		return ErrInvalidLength
	case errors.As(err, &degreeErr):
		return ErrDegreeExceeded
	case errors.As(err, &domainErr):
		return ErrInfeasibleDomain
	case errors.As(err, &growthErr):
		return ErrUnboundedGrowth
	case errors.As(err, &divergeErr):
		return ErrDivergence
	default:
		return ErrUnknown
	}
}
