package entity

import (
	"database/sql"
	"fmt"
	"strconv"
)

// Department names are the authorization unit. The values are the exact
// strings used by the organization, so they double as display labels.
const (
	DeptSite              = "현장"
	DeptHeadOfficeAffairs = "본사 공무팀"
	DeptManagementSupport = "경영지원부"

	// RoleAdmin can log in and run administrative cleanup but owns no
	// workflow steps.
	RoleAdmin = "관리자"
)

// Step status values. A freshly initialized step is StatusInProgress; only
// the engine's validated operations move it to StatusDone.
const (
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

// Cost-type identifiers for the four procedures in the catalog.
const (
	CostTypeContract         = "contract-execution"
	CostTypeProgressBilling  = "progress-billing"
	CostTypeLaborInput       = "labor-input-cost"
	CostTypeAdvanceGuarantee = "advance-guarantee"
)

// Amount field names. These are the only columns a step may record money
// into, and only when the amount policy maps the step to the field.
const (
	FieldProgressPayment = "progress_payment"
	FieldLaborCost       = "labor_cost"
	FieldInputCost       = "input_cost"
)

// ValidDepartment reports whether name is a step-owning department.
func ValidDepartment(name string) bool {
	switch name {
	case DeptSite, DeptHeadOfficeAffairs, DeptManagementSupport:
		return true
	}
	return false
}

// ValidStatus reports whether s is a recognized step status.
func ValidStatus(s string) bool {
	return s == StatusInProgress || s == StatusDone
}

// InstanceKey identifies one workflow instance: a procedure of one cost
// type running for a site in a given month.
type InstanceKey struct {
	Site     string
	Year     string
	Month    string
	CostType string
}

// NewInstanceKey builds a key with the month normalized. Every caller that
// constructs a key from user input must go through this so that "7" and
// "07" address the same rows.
func NewInstanceKey(site, year, month, costType string) InstanceKey {
	return InstanceKey{
		Site:     site,
		Year:     year,
		Month:    NormalizeMonth(month),
		CostType: costType,
	}
}

// Normalized returns a copy of the key with the month zero-padded.
func (k InstanceKey) Normalized() InstanceKey {
	k.Month = NormalizeMonth(k.Month)
	return k
}

func (k InstanceKey) String() string {
	return fmt.Sprintf("%s/%s-%s/%s", k.Site, k.Year, NormalizeMonth(k.Month), k.CostType)
}

// NormalizeMonth zero-pads a numeric month to two digits. Non-numeric input
// is returned unchanged; the store will simply find no rows for it.
func NormalizeMonth(month string) string {
	n, err := strconv.Atoi(month)
	if err != nil {
		return month
	}
	return fmt.Sprintf("%02d", n)
}

// StepRecord is one durable row of a workflow instance. Amount columns are
// NULL until an amount is explicitly recorded, which is how the engine
// distinguishes "never set" from "set to zero".
type StepRecord struct {
	Site     string
	Year     string
	Month    string
	CostType string
	StepNo   int

	Task       string
	Department string
	Status     string

	ProgressPayment sql.NullInt64
	LaborCost       sql.NullInt64
	InputCost       sql.NullInt64
}

// Key returns the instance key this record belongs to.
func (r *StepRecord) Key() InstanceKey {
	return InstanceKey{Site: r.Site, Year: r.Year, Month: r.Month, CostType: r.CostType}
}

// Amount returns the recorded value for the named field, zero if unset.
func (r *StepRecord) Amount(field string) int64 {
	if v, ok := r.amountColumn(field); ok && v.Valid {
		return v.Int64
	}
	return 0
}

// AmountSet reports whether the named field has been explicitly recorded
// at least once for this step.
func (r *StepRecord) AmountSet(field string) bool {
	v, ok := r.amountColumn(field)
	return ok && v.Valid
}

func (r *StepRecord) amountColumn(field string) (sql.NullInt64, bool) {
	switch field {
	case FieldProgressPayment:
		return r.ProgressPayment, true
	case FieldLaborCost:
		return r.LaborCost, true
	case FieldInputCost:
		return r.InputCost, true
	}
	return sql.NullInt64{}, false
}

// PeriodSummary is one row of the reporting aggregate: summed amounts for a
// (site, year, month) across all cost types and steps.
type PeriodSummary struct {
	Site            string
	Year            string
	Month           string
	ProgressPayment int64
	LaborCost       int64
	InputCost       int64
}
