package workflow

import (
	"testing"

	"github.com/donkihote1489/site-cost-manager/internal/domain/entity"
)

func TestRequiredAmountField(t *testing.T) {
	tests := []struct {
		name     string
		costType string
		stepNo   int
		field    string
		required bool
	}{
		{"progress billing confirmation", entity.CostTypeProgressBilling, 3, entity.FieldProgressPayment, true},
		{"labor cost declaration", entity.CostTypeLaborInput, 3, entity.FieldLaborCost, true},
		{"input cost entry", entity.CostTypeLaborInput, 5, entity.FieldInputCost, true},
		{"plain status step", entity.CostTypeProgressBilling, 1, "", false},
		{"contract has no amounts", entity.CostTypeContract, 3, "", false},
		{"advance guarantee has no amounts", entity.CostTypeAdvanceGuarantee, 3, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field, required := RequiredAmountField(tt.costType, tt.stepNo)
			if required != tt.required {
				t.Fatalf("required = %v, want %v", required, tt.required)
			}
			if field != tt.field {
				t.Errorf("field = %q, want %q", field, tt.field)
			}
		})
	}
}

func TestAcceptsAmount(t *testing.T) {
	if !AcceptsAmount(entity.CostTypeProgressBilling, 3, entity.FieldProgressPayment) {
		t.Error("mapped step must accept its field")
	}
	if AcceptsAmount(entity.CostTypeProgressBilling, 3, entity.FieldLaborCost) {
		t.Error("mapped step must reject other fields")
	}
	if AcceptsAmount(entity.CostTypeProgressBilling, 2, entity.FieldProgressPayment) {
		t.Error("unmapped step must reject all fields")
	}
	if AcceptsAmount(entity.CostTypeAdvanceGuarantee, 1, entity.FieldInputCost) {
		t.Error("workflow without amount steps must reject all fields")
	}
}
