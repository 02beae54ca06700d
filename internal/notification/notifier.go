package notification

import "context"

// StepAdvanced describes a confirmed procedure transition: the step that
// has become actionable and the department that now owns the work.
type StepAdvanced struct {
	Site       string
	Year       string
	Month      string
	CostType   string
	CostLabel  string
	StepNo     int
	Task       string
	Department string
}

// Notifier delivers step-transition notices to the next owning department.
// Delivery is best-effort; the engine never fails an advance over it.
type Notifier interface {
	StepAdvanced(ctx context.Context, notice StepAdvanced) error
}

// Noop discards all notices. Used when outbound messaging is disabled.
type Noop struct{}

// StepAdvanced implements Notifier.
func (Noop) StepAdvanced(context.Context, StepAdvanced) error { return nil }
