package workflow

import (
	"errors"
	"fmt"
)

// ErrUnknownCostType is returned when a key names a cost type the catalog
// does not define.
var ErrUnknownCostType = errors.New("unknown cost type")

// StorageError wraps a persistence failure. It is the only engine error
// that indicates an external fault; everything else is a validation
// outcome computed from loaded state.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// UnauthorizedError reports that the acting department does not own the
// step it tried to act on.
type UnauthorizedError struct {
	StepNo   int
	Required string
	Actor    string
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("step %d is owned by %q, not %q", e.StepNo, e.Required, e.Actor)
}

// InvalidFieldError reports an amount recorded against a step that the
// amount policy does not map to that field.
type InvalidFieldError struct {
	CostType string
	StepNo   int
	Field    string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("step %d of %s does not accept amount field %q", e.StepNo, e.CostType, e.Field)
}

// InvalidAmountError reports a negative amount.
type InvalidAmountError struct {
	Field  string
	Amount int64
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("amount %d for %q must not be negative", e.Amount, e.Field)
}

// PrematureAdvanceError reports an advance attempted while the step was not
// yet done.
type PrematureAdvanceError struct {
	StepNo int
	Status string
}

func (e *PrematureAdvanceError) Error() string {
	return fmt.Sprintf("step %d has status %q; only a done step can be advanced", e.StepNo, e.Status)
}

// MissingAmountError reports an advance attempted on a step whose required
// amount field was never recorded.
type MissingAmountError struct {
	StepNo int
	Field  string
}

func (e *MissingAmountError) Error() string {
	return fmt.Sprintf("step %d requires %q to be recorded before advancing", e.StepNo, e.Field)
}

// StepNotFoundError reports an operation addressed to a step number with no
// record, including attempts to advance past the final step.
type StepNotFoundError struct {
	StepNo int
}

func (e *StepNotFoundError) Error() string {
	return fmt.Sprintf("no such step %d", e.StepNo)
}

// StepFinalizedError reports a status write to a step the instance has
// already advanced past. Finalized steps are immutable.
type StepFinalizedError struct {
	StepNo  int
	Current int
}

func (e *StepFinalizedError) Error() string {
	return fmt.Sprintf("step %d is finalized; the procedure is at step %d", e.StepNo, e.Current)
}

// StepNotActionableError reports a write to a step the instance has not
// reached yet.
type StepNotActionableError struct {
	StepNo  int
	Current int
}

func (e *StepNotActionableError) Error() string {
	return fmt.Sprintf("step %d is not actionable yet; the procedure is at step %d", e.StepNo, e.Current)
}

// InvalidStatusError reports a status value outside the recognized set.
type InvalidStatusError struct {
	Status string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid status %q", e.Status)
}
