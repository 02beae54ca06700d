package workflow

import (
	"context"
	"fmt"

	"github.com/donkihote1489/site-cost-manager/internal/domain/entity"
	domain "github.com/donkihote1489/site-cost-manager/internal/domain/workflow"
	"github.com/donkihote1489/site-cost-manager/internal/notification"
	"go.uber.org/zap"
)

// StepStore is the persistence contract the engine needs. The stored rows
// are the system of record; the engine keeps no state of its own.
type StepStore interface {
	Initialize(ctx context.Context, key entity.InstanceKey, templates []domain.StepTemplate) error
	Load(ctx context.Context, key entity.InstanceKey) ([]*entity.StepRecord, error)
	UpdateStatus(ctx context.Context, key entity.InstanceKey, stepNo int, status string) error
	UpdateAmount(ctx context.Context, key entity.InstanceKey, stepNo int, field string, amount int64) error
}

// CurrentState is the engine's view of a workflow instance: the step that
// is actionable now, or Completed once every step is done.
type CurrentState struct {
	Completed  bool
	Record     *entity.StepRecord
	TotalSteps int
}

// Advanced is the outcome of a successful advance: the next actionable
// record, or Completed when the final step was advanced.
type Advanced struct {
	Completed bool
	Next      *entity.StepRecord
}

// Engine is the procedure state machine. The current step is never cached:
// every operation derives it from freshly loaded store state, so a
// concurrent writer's update is always observed before validation.
type Engine struct {
	store    StepStore
	notifier notification.Notifier
	logger   *zap.Logger
}

// NewEngine creates a procedure engine.
func NewEngine(store StepStore, notifier notification.Notifier, logger *zap.Logger) *Engine {
	if notifier == nil {
		notifier = notification.Noop{}
	}
	return &Engine{store: store, notifier: notifier, logger: logger}
}

// CurrentStep initializes the instance from the catalog if it has no rows
// yet, then returns the lowest-numbered step not marked done. All steps
// done means the instance is Completed.
func (e *Engine) CurrentStep(ctx context.Context, key entity.InstanceKey) (*CurrentState, error) {
	key = key.Normalized()

	def := domain.Lookup(key.CostType)
	if def == nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCostType, key.CostType)
	}

	if err := e.store.Initialize(ctx, key, def.Steps); err != nil {
		return nil, err
	}

	records, err := e.store.Load(ctx, key)
	if err != nil {
		return nil, err
	}

	state := &CurrentState{TotalSteps: len(records)}
	if rec := firstPending(records); rec != nil {
		state.Record = rec
	} else {
		state.Completed = true
	}
	return state, nil
}

// IsAuthorized reports whether the department may act on the record. Plain
// equality: no delegation, no escalation.
func (e *Engine) IsAuthorized(record *entity.StepRecord, department string) bool {
	return record != nil && department != "" && record.Department == department
}

// SetStatus writes a new status to one step. The step must be owned by the
// acting department, and must be the current step or the step immediately
// before it; steps the instance advanced past are immutable, steps not yet
// reached are not actionable. No auto-advance happens here.
func (e *Engine) SetStatus(ctx context.Context, key entity.InstanceKey, stepNo int, status, department string) error {
	key = key.Normalized()

	if !entity.ValidStatus(status) {
		return &domain.InvalidStatusError{Status: status}
	}

	records, err := e.store.Load(ctx, key)
	if err != nil {
		return err
	}

	rec := findStep(records, stepNo)
	if rec == nil {
		return &domain.StepNotFoundError{StepNo: stepNo}
	}
	if !e.IsAuthorized(rec, department) {
		return &domain.UnauthorizedError{StepNo: stepNo, Required: rec.Department, Actor: department}
	}

	pending := firstPending(records)
	if pending == nil {
		// Completed is terminal; only administrative delete touches it.
		return &domain.StepFinalizedError{StepNo: stepNo, Current: lastStepNo(records) + 1}
	}
	switch {
	case stepNo > pending.StepNo:
		return &domain.StepNotActionableError{StepNo: stepNo, Current: pending.StepNo}
	case stepNo < pending.StepNo-1:
		return &domain.StepFinalizedError{StepNo: stepNo, Current: pending.StepNo}
	}

	if err := e.store.UpdateStatus(ctx, key, stepNo, status); err != nil {
		return err
	}

	e.logger.Info("Step status updated",
		zap.String("key", key.String()),
		zap.Int("step_no", stepNo),
		zap.String("status", status),
		zap.String("department", department))
	return nil
}

// RecordAmount writes a monetary amount into the field the policy maps to
// this step. It never changes status. Zero is a legal amount and counts as
// explicitly recorded.
func (e *Engine) RecordAmount(ctx context.Context, key entity.InstanceKey, stepNo int, field string, amount int64, department string) error {
	key = key.Normalized()

	if !domain.AcceptsAmount(key.CostType, stepNo, field) {
		return &domain.InvalidFieldError{CostType: key.CostType, StepNo: stepNo, Field: field}
	}
	if amount < 0 {
		return &domain.InvalidAmountError{Field: field, Amount: amount}
	}

	records, err := e.store.Load(ctx, key)
	if err != nil {
		return err
	}

	rec := findStep(records, stepNo)
	if rec == nil {
		return &domain.StepNotFoundError{StepNo: stepNo}
	}
	if !e.IsAuthorized(rec, department) {
		return &domain.UnauthorizedError{StepNo: stepNo, Required: rec.Department, Actor: department}
	}

	if err := e.store.UpdateAmount(ctx, key, stepNo, field, amount); err != nil {
		return err
	}

	e.logger.Info("Step amount recorded",
		zap.String("key", key.String()),
		zap.Int("step_no", stepNo),
		zap.String("field", field),
		zap.Int64("amount", amount))
	return nil
}

// Advance confirms the transition past stepNo. Preconditions are checked
// against freshly loaded rows: the step must exist, be done, and have its
// policy-required amount recorded at least once. Nothing is written — once
// the step is done, the next step is current purely by derivation — so
// advancing the final step is an idempotent Completed outcome.
func (e *Engine) Advance(ctx context.Context, key entity.InstanceKey, stepNo int) (*Advanced, error) {
	key = key.Normalized()

	records, err := e.store.Load(ctx, key)
	if err != nil {
		return nil, err
	}

	rec := findStep(records, stepNo)
	if rec == nil {
		return nil, &domain.StepNotFoundError{StepNo: stepNo}
	}
	if rec.Status != entity.StatusDone {
		return nil, &domain.PrematureAdvanceError{StepNo: stepNo, Status: rec.Status}
	}
	if field, required := domain.RequiredAmountField(key.CostType, stepNo); required && !rec.AmountSet(field) {
		return nil, &domain.MissingAmountError{StepNo: stepNo, Field: field}
	}

	next := findStep(records, stepNo+1)
	if next == nil {
		e.logger.Info("Procedure completed",
			zap.String("key", key.String()), zap.Int("final_step", stepNo))
		return &Advanced{Completed: true}, nil
	}

	e.notifyAdvanced(ctx, key, next)

	e.logger.Info("Procedure advanced",
		zap.String("key", key.String()),
		zap.Int("from_step", stepNo),
		zap.Int("to_step", next.StepNo),
		zap.String("department", next.Department))
	return &Advanced{Next: next}, nil
}

// notifyAdvanced tells the next department its step is actionable.
// Best-effort: delivery failure is logged, never surfaced.
func (e *Engine) notifyAdvanced(ctx context.Context, key entity.InstanceKey, next *entity.StepRecord) {
	label := key.CostType
	if def := domain.Lookup(key.CostType); def != nil {
		label = def.Label
	}

	notice := notification.StepAdvanced{
		Site:       key.Site,
		Year:       key.Year,
		Month:      key.Month,
		CostType:   key.CostType,
		CostLabel:  label,
		StepNo:     next.StepNo,
		Task:       next.Task,
		Department: next.Department,
	}
	if err := e.notifier.StepAdvanced(ctx, notice); err != nil {
		e.logger.Warn("Failed to deliver step notice",
			zap.String("key", key.String()),
			zap.Int("step_no", next.StepNo),
			zap.Error(err))
	}
}

// firstPending returns the lowest-numbered record not marked done. Records
// are stored and loaded in step order.
func firstPending(records []*entity.StepRecord) *entity.StepRecord {
	for _, rec := range records {
		if rec.Status != entity.StatusDone {
			return rec
		}
	}
	return nil
}

func findStep(records []*entity.StepRecord, stepNo int) *entity.StepRecord {
	for _, rec := range records {
		if rec.StepNo == stepNo {
			return rec
		}
	}
	return nil
}

func lastStepNo(records []*entity.StepRecord) int {
	if len(records) == 0 {
		return 0
	}
	return records[len(records)-1].StepNo
}
