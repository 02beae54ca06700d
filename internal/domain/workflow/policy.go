package workflow

import (
	"github.com/donkihote1489/site-cost-manager/internal/domain/entity"
)

type policyKey struct {
	costType string
	stepNo   int
}

// amountPolicy maps the steps that accept monetary input to the single
// field each one records. Any (cost type, step) pair absent from this table
// accepts status changes only.
var amountPolicy = map[policyKey]string{
	{entity.CostTypeProgressBilling, 3}: entity.FieldProgressPayment,
	{entity.CostTypeLaborInput, 3}:      entity.FieldLaborCost,
	{entity.CostTypeLaborInput, 5}:      entity.FieldInputCost,
}

// RequiredAmountField returns the amount field a step must record before it
// can be advanced past, and whether the step requires one at all.
func RequiredAmountField(costType string, stepNo int) (string, bool) {
	field, ok := amountPolicy[policyKey{costType, stepNo}]
	return field, ok
}

// AcceptsAmount reports whether the step may record the given field.
func AcceptsAmount(costType string, stepNo int, field string) bool {
	required, ok := amountPolicy[policyKey{costType, stepNo}]
	return ok && required == field
}
