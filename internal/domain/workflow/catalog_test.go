package workflow

import (
	"testing"

	"github.com/donkihote1489/site-cost-manager/internal/domain/entity"
)

func TestCatalog_StepCounts(t *testing.T) {
	tests := []struct {
		costType string
		steps    int
	}{
		{entity.CostTypeContract, 6},
		{entity.CostTypeProgressBilling, 7},
		{entity.CostTypeLaborInput, 7},
		{entity.CostTypeAdvanceGuarantee, 4},
	}

	for _, tt := range tests {
		t.Run(tt.costType, func(t *testing.T) {
			def := Lookup(tt.costType)
			if def == nil {
				t.Fatalf("Lookup(%q) = nil", tt.costType)
			}
			if len(def.Steps) != tt.steps {
				t.Errorf("len(Steps) = %d, want %d", len(def.Steps), tt.steps)
			}
			if def.LastStepNo() != tt.steps {
				t.Errorf("LastStepNo() = %d, want %d", def.LastStepNo(), tt.steps)
			}
		})
	}
}

func TestCatalog_StepNumbersContiguous(t *testing.T) {
	for _, costType := range CostTypes() {
		def := Lookup(costType)
		if def == nil {
			t.Fatalf("Lookup(%q) = nil", costType)
		}
		for i, step := range def.Steps {
			if step.StepNo != i+1 {
				t.Errorf("%s: step at index %d has number %d", costType, i, step.StepNo)
			}
			if step.Task == "" {
				t.Errorf("%s step %d: empty task", costType, step.StepNo)
			}
			if !entity.ValidDepartment(step.Department) {
				t.Errorf("%s step %d: unknown department %q", costType, step.StepNo, step.Department)
			}
		}
	}
}

func TestCatalog_FirstStepsBelongToSite(t *testing.T) {
	// Every procedure starts with fieldwork at the construction site.
	for _, costType := range CostTypes() {
		if dept := Lookup(costType).Steps[0].Department; dept != entity.DeptSite {
			t.Errorf("%s: first step owned by %q, want %q", costType, dept, entity.DeptSite)
		}
	}
}

func TestLookup_UnknownCostType(t *testing.T) {
	if def := Lookup("demolition"); def != nil {
		t.Errorf("Lookup(unknown) = %v, want nil", def)
	}
}
