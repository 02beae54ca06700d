package workflow

import (
	"github.com/donkihote1489/site-cost-manager/internal/domain/entity"
)

// StepTemplate is one ordered stage of a procedure definition: step number
// (1-based, contiguous), the work to perform, and the owning department.
type StepTemplate struct {
	StepNo     int
	Task       string
	Department string
}

// Definition is an ordered, immutable procedure definition for one cost type.
type Definition struct {
	CostType string
	Label    string
	Steps    []StepTemplate
}

// LastStepNo returns the highest step number of the definition, zero for an
// empty definition.
func (d *Definition) LastStepNo() int {
	if len(d.Steps) == 0 {
		return 0
	}
	return d.Steps[len(d.Steps)-1].StepNo
}

// definitions is the authoritative procedure catalog. It is fixed at compile
// time; there is deliberately no way to mutate it at runtime.
var definitions = map[string]*Definition{
	entity.CostTypeContract: {
		CostType: entity.CostTypeContract,
		Label:    "계약(변경)체결",
		Steps: []StepTemplate{
			{1, "계약(변경)보고", entity.DeptSite},
			{2, "계약(변경)확인", entity.DeptHeadOfficeAffairs},
			{3, "계약 승인 요청 접수", entity.DeptSite},
			{4, "계약 진행 요청", entity.DeptHeadOfficeAffairs},
			{5, "보증 등 발행 협력사 등록", entity.DeptManagementSupport},
			{6, "Kiscon사이트 등록", entity.DeptHeadOfficeAffairs},
		},
	},
	entity.CostTypeProgressBilling: {
		CostType: entity.CostTypeProgressBilling,
		Label:    "기성금 청구 및 수금",
		Steps: []StepTemplate{
			{1, "기성 조서 작성", entity.DeptSite},
			{2, "예상 기성 확인", entity.DeptHeadOfficeAffairs},
			{3, "기성 확정", entity.DeptSite},
			{4, "발행 요청 확인", entity.DeptHeadOfficeAffairs},
			{5, "계산서 발행 협력사 등록", entity.DeptManagementSupport},
			{6, "기성금 수금", entity.DeptManagementSupport},
			{7, "Kiscon 사이트 등록", entity.DeptHeadOfficeAffairs},
		},
	},
	entity.CostTypeLaborInput: {
		CostType: entity.CostTypeLaborInput,
		Label:    "노무 및 협력업체 지급 및 투입비 입력",
		Steps: []StepTemplate{
			{1, "노무대장 작성", entity.DeptSite},
			{2, "노무대장 확인", entity.DeptHeadOfficeAffairs},
			{3, "노무비 신고", entity.DeptManagementSupport},
			{4, "보험료 확정", entity.DeptManagementSupport},
			{5, "하도급지킴이 등록 및 투입비 입력", entity.DeptSite},
			{6, "하도급지킴이 확인", entity.DeptHeadOfficeAffairs},
			{7, "지급 확인", entity.DeptManagementSupport},
		},
	},
	entity.CostTypeAdvanceGuarantee: {
		CostType: entity.CostTypeAdvanceGuarantee,
		Label:    "선금(외 기타)보증",
		Steps: []StepTemplate{
			{1, "선금 공문 접수", entity.DeptSite},
			{2, "공문 보고", entity.DeptHeadOfficeAffairs},
			{3, "보증 발행 등록", entity.DeptManagementSupport},
			{4, "Kiscon 등록", entity.DeptHeadOfficeAffairs},
		},
	},
}

// Lookup returns the definition for a cost type, or nil if the cost type is
// not part of the catalog.
func Lookup(costType string) *Definition {
	return definitions[costType]
}

// CostTypes returns the catalog's cost-type identifiers in procedure order.
func CostTypes() []string {
	return []string{
		entity.CostTypeContract,
		entity.CostTypeProgressBilling,
		entity.CostTypeLaborInput,
		entity.CostTypeAdvanceGuarantee,
	}
}
