package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/donkihote1489/site-cost-manager/internal/domain/entity"
	"github.com/donkihote1489/site-cost-manager/internal/domain/workflow"
	"github.com/donkihote1489/site-cost-manager/pkg/database"
	"go.uber.org/zap"
)

const stepColumns = `site, year, month, cost_type, step_no, task, department, status,
	progress_payment, labor_cost, input_cost`

// StepRepository is the durable store for procedure step records. All key
// lookups and writes normalize the month to its two-digit form; rows written
// under "7" and read under "07" are the same rows.
type StepRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewStepRepository creates a step repository.
func NewStepRepository(db *database.DB, logger *zap.Logger) *StepRepository {
	return &StepRepository{db: db, logger: logger}
}

// Initialize inserts one record per template for the instance, skipping any
// (key, step_no) that already exists. Re-initializing an instance never
// overwrites recorded progress.
func (r *StepRepository) Initialize(ctx context.Context, key entity.InstanceKey, templates []workflow.StepTemplate) error {
	key = key.Normalized()

	err := r.db.WithTransaction(func(tx *sql.Tx) error {
		for _, tpl := range templates {
			_, err := tx.ExecContext(ctx, `
				INSERT OR IGNORE INTO procedure_steps
					(site, year, month, cost_type, step_no, task, department, status)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			`, key.Site, key.Year, key.Month, key.CostType, tpl.StepNo, tpl.Task, tpl.Department, entity.StatusInProgress)
			if err != nil {
				return fmt.Errorf("insert step %d: %w", tpl.StepNo, err)
			}
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to initialize procedure steps",
			zap.String("key", key.String()), zap.Error(err))
		return &workflow.StorageError{Op: "initialize", Err: err}
	}
	return nil
}

// Load returns the instance's records ordered by step number. An unknown
// key yields an empty slice, not an error.
func (r *StepRepository) Load(ctx context.Context, key entity.InstanceKey) ([]*entity.StepRecord, error) {
	key = key.Normalized()

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+stepColumns+`
		FROM procedure_steps
		WHERE site = ? AND year = ? AND month = ? AND cost_type = ?
		ORDER BY step_no
	`, key.Site, key.Year, key.Month, key.CostType)
	if err != nil {
		r.logger.Error("Failed to load procedure steps",
			zap.String("key", key.String()), zap.Error(err))
		return nil, &workflow.StorageError{Op: "load", Err: err}
	}
	defer rows.Close()

	var records []*entity.StepRecord
	for rows.Next() {
		rec, err := scanStep(rows)
		if err != nil {
			return nil, &workflow.StorageError{Op: "load", Err: err}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &workflow.StorageError{Op: "load", Err: err}
	}
	return records, nil
}

// Get returns a single step record, or nil if no such row exists.
func (r *StepRepository) Get(ctx context.Context, key entity.InstanceKey, stepNo int) (*entity.StepRecord, error) {
	key = key.Normalized()

	row := r.db.QueryRowContext(ctx, `
		SELECT `+stepColumns+`
		FROM procedure_steps
		WHERE site = ? AND year = ? AND month = ? AND cost_type = ? AND step_no = ?
	`, key.Site, key.Year, key.Month, key.CostType, stepNo)

	rec, err := scanStep(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get procedure step",
			zap.String("key", key.String()), zap.Int("step_no", stepNo), zap.Error(err))
		return nil, &workflow.StorageError{Op: "get", Err: err}
	}
	return rec, nil
}

// UpdateStatus sets the status of one step row. A single-row UPDATE, so
// concurrent writers follow last-write-wins.
func (r *StepRepository) UpdateStatus(ctx context.Context, key entity.InstanceKey, stepNo int, status string) error {
	key = key.Normalized()

	_, err := r.db.ExecContext(ctx, `
		UPDATE procedure_steps
		SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE site = ? AND year = ? AND month = ? AND cost_type = ? AND step_no = ?
	`, status, key.Site, key.Year, key.Month, key.CostType, stepNo)
	if err != nil {
		r.logger.Error("Failed to update step status",
			zap.String("key", key.String()), zap.Int("step_no", stepNo),
			zap.String("status", status), zap.Error(err))
		return &workflow.StorageError{Op: "update status", Err: err}
	}
	return nil
}

// UpdateAmount records an amount into one step row. The column is resolved
// through a fixed switch; an unknown field name can never reach the SQL text.
func (r *StepRepository) UpdateAmount(ctx context.Context, key entity.InstanceKey, stepNo int, field string, amount int64) error {
	key = key.Normalized()

	column, err := amountColumn(field)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE procedure_steps
		SET `+column+` = ?, updated_at = CURRENT_TIMESTAMP
		WHERE site = ? AND year = ? AND month = ? AND cost_type = ? AND step_no = ?
	`, amount, key.Site, key.Year, key.Month, key.CostType, stepNo)
	if err != nil {
		r.logger.Error("Failed to update step amount",
			zap.String("key", key.String()), zap.Int("step_no", stepNo),
			zap.String("field", field), zap.Error(err))
		return &workflow.StorageError{Op: "update amount", Err: err}
	}
	return nil
}

// Aggregate sums the recorded amounts per (site, year, month) across all
// cost types and steps, for the reporting layer.
func (r *StepRepository) Aggregate(ctx context.Context) ([]*entity.PeriodSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT site, year, month,
			COALESCE(SUM(progress_payment), 0),
			COALESCE(SUM(labor_cost), 0),
			COALESCE(SUM(input_cost), 0)
		FROM procedure_steps
		GROUP BY site, year, month
		ORDER BY site, year, month
	`)
	if err != nil {
		r.logger.Error("Failed to aggregate amounts", zap.Error(err))
		return nil, &workflow.StorageError{Op: "aggregate", Err: err}
	}
	defer rows.Close()

	var summaries []*entity.PeriodSummary
	for rows.Next() {
		var s entity.PeriodSummary
		if err := rows.Scan(&s.Site, &s.Year, &s.Month,
			&s.ProgressPayment, &s.LaborCost, &s.InputCost); err != nil {
			return nil, &workflow.StorageError{Op: "aggregate", Err: err}
		}
		summaries = append(summaries, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, &workflow.StorageError{Op: "aggregate", Err: err}
	}
	return summaries, nil
}

// DeletePeriod removes every record for a (site, year, month), across all
// cost types. Administrative cleanup only.
func (r *StepRepository) DeletePeriod(ctx context.Context, site, year, month string) error {
	month = entity.NormalizeMonth(month)

	result, err := r.db.ExecContext(ctx, `
		DELETE FROM procedure_steps
		WHERE site = ? AND year = ? AND month = ?
	`, site, year, month)
	if err != nil {
		r.logger.Error("Failed to delete period",
			zap.String("site", site), zap.String("year", year),
			zap.String("month", month), zap.Error(err))
		return &workflow.StorageError{Op: "delete period", Err: err}
	}

	if n, err := result.RowsAffected(); err == nil {
		r.logger.Info("Deleted period records",
			zap.String("site", site), zap.String("year", year),
			zap.String("month", month), zap.Int64("rows", n))
	}
	return nil
}

// amountColumn maps an amount field name to its column. The field names
// double as column names, but only through this whitelist.
func amountColumn(field string) (string, error) {
	switch field {
	case entity.FieldProgressPayment, entity.FieldLaborCost, entity.FieldInputCost:
		return field, nil
	}
	return "", fmt.Errorf("unknown amount field %q", field)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanStep(row rowScanner) (*entity.StepRecord, error) {
	var rec entity.StepRecord
	err := row.Scan(
		&rec.Site, &rec.Year, &rec.Month, &rec.CostType, &rec.StepNo,
		&rec.Task, &rec.Department, &rec.Status,
		&rec.ProgressPayment, &rec.LaborCost, &rec.InputCost,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
