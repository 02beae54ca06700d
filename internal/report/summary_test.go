package report

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/donkihote1489/site-cost-manager/internal/domain/entity"
)

func TestBuildRows_DerivedMetrics(t *testing.T) {
	rows := BuildRows([]*entity.PeriodSummary{
		{Site: "Site1", Year: "2025", Month: "03",
			ProgressPayment: 50000000, LaborCost: 12000000, InputCost: 30000000},
	})

	require.Len(t, rows, 1)
	assert.Equal(t, int64(20000000), rows[0].Profit)
	assert.InDelta(t, 0.4, rows[0].LaborRatio, 1e-9)
	assert.Equal(t, int64(50000000), rows[0].CumProgressPayment)
	assert.Equal(t, float64(0), rows[0].ProgressChangePct, "first month has no change rate")
}

func TestBuildRows_ZeroInputCost(t *testing.T) {
	rows := BuildRows([]*entity.PeriodSummary{
		{Site: "Site1", Year: "2025", Month: "01", LaborCost: 5000000},
	})

	require.Len(t, rows, 1)
	assert.InDelta(t, 5000000.0, rows[0].LaborRatio, 1e-9,
		"zero input cost divides by one, not by zero")
}

func TestBuildRows_CumulativeAndChangePerSite(t *testing.T) {
	rows := BuildRows([]*entity.PeriodSummary{
		// Out of order on purpose; BuildRows sorts.
		{Site: "Site1", Year: "2025", Month: "04",
			ProgressPayment: 60000000, LaborCost: 10000000, InputCost: 40000000},
		{Site: "Site2", Year: "2025", Month: "03",
			ProgressPayment: 10000000, LaborCost: 2000000, InputCost: 5000000},
		{Site: "Site1", Year: "2025", Month: "03",
			ProgressPayment: 50000000, LaborCost: 12000000, InputCost: 30000000},
	})

	require.Len(t, rows, 3)
	assert.Equal(t, "Site1", rows[0].Site)
	assert.Equal(t, "03", rows[0].Month)

	second := rows[1]
	assert.Equal(t, "04", second.Month)
	assert.Equal(t, int64(110000000), second.CumProgressPayment)
	assert.Equal(t, int64(22000000), second.CumLaborCost)
	assert.Equal(t, int64(40000000), second.CumProfit)
	assert.InDelta(t, 20.0, second.ProgressChangePct, 1e-9)
	assert.InDelta(t, 0.0, second.ProfitChangePct, 1e-9)

	// Site2 starts its own running totals.
	third := rows[2]
	assert.Equal(t, "Site2", third.Site)
	assert.Equal(t, int64(10000000), third.CumProgressPayment)
	assert.Equal(t, float64(0), third.ProgressChangePct)
}

func TestFilterSite(t *testing.T) {
	rows := BuildRows([]*entity.PeriodSummary{
		{Site: "Site1", Year: "2025", Month: "03", ProgressPayment: 1},
		{Site: "Site2", Year: "2025", Month: "03", ProgressPayment: 2},
		{Site: "Site1", Year: "2025", Month: "04", ProgressPayment: 3},
	})

	filtered := FilterSite(rows, "Site1")
	require.Len(t, filtered, 2)
	for _, r := range filtered {
		assert.Equal(t, "Site1", r.Site)
	}

	assert.Empty(t, FilterSite(rows, "Site3"))
}

func TestExporter_WritesWorkbook(t *testing.T) {
	dir := t.TempDir()
	exporter := NewExporter(dir, zap.NewNop())

	rows := BuildRows([]*entity.PeriodSummary{
		{Site: "화태백야", Year: "2025", Month: "03",
			ProgressPayment: 50000000, LaborCost: 12000000, InputCost: 30000000},
	})

	path, err := exporter.Export(rows)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	const sheet = "비용요약"
	title, err := f.GetCellValue(sheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "현장명", title)

	site, err := f.GetCellValue(sheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "화태백야", site)

	payment, err := f.GetCellValue(sheet, "D2")
	require.NoError(t, err)
	assert.Equal(t, "50000000", payment)
}
