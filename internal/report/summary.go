package report

import (
	"sort"

	"github.com/donkihote1489/site-cost-manager/internal/domain/entity"
)

// Row is one month of one site in the cost report, with the derived
// metrics the dashboard renders. Profit and ratios are computed here, by
// the reporting consumer, never by the engine.
type Row struct {
	Site  string
	Year  string
	Month string

	ProgressPayment int64
	LaborCost       int64
	InputCost       int64

	Profit     int64   // progress payment minus input cost
	LaborRatio float64 // labor cost over input cost

	CumProgressPayment int64
	CumLaborCost       int64
	CumInputCost       int64
	CumProfit          int64

	ProgressChangePct float64
	LaborChangePct    float64
	InputChangePct    float64
	ProfitChangePct   float64
}

// BuildRows derives the report rows from the store's aggregate. Rows are
// grouped per site in (year, month) order; cumulative sums and
// month-over-month change rates run within each site.
func BuildRows(summaries []*entity.PeriodSummary) []Row {
	sorted := make([]*entity.PeriodSummary, len(summaries))
	copy(sorted, summaries)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Site != b.Site {
			return a.Site < b.Site
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Month < b.Month
	})

	rows := make([]Row, 0, len(sorted))
	var prev *Row
	for _, s := range sorted {
		row := Row{
			Site:            s.Site,
			Year:            s.Year,
			Month:           s.Month,
			ProgressPayment: s.ProgressPayment,
			LaborCost:       s.LaborCost,
			InputCost:       s.InputCost,
			Profit:          s.ProgressPayment - s.InputCost,
			LaborRatio:      ratio(s.LaborCost, s.InputCost),
		}

		if prev != nil && prev.Site == s.Site {
			row.CumProgressPayment = prev.CumProgressPayment + row.ProgressPayment
			row.CumLaborCost = prev.CumLaborCost + row.LaborCost
			row.CumInputCost = prev.CumInputCost + row.InputCost
			row.CumProfit = prev.CumProfit + row.Profit
			row.ProgressChangePct = changePct(prev.ProgressPayment, row.ProgressPayment)
			row.LaborChangePct = changePct(prev.LaborCost, row.LaborCost)
			row.InputChangePct = changePct(prev.InputCost, row.InputCost)
			row.ProfitChangePct = changePct(prev.Profit, row.Profit)
		} else {
			row.CumProgressPayment = row.ProgressPayment
			row.CumLaborCost = row.LaborCost
			row.CumInputCost = row.InputCost
			row.CumProfit = row.Profit
		}

		rows = append(rows, row)
		prev = &rows[len(rows)-1]
	}
	return rows
}

// FilterSite returns the rows belonging to one site.
func FilterSite(rows []Row, site string) []Row {
	var out []Row
	for _, r := range rows {
		if r.Site == site {
			out = append(out, r)
		}
	}
	return out
}

// ratio divides labor by input, treating a zero input as 1 so an
// early-period report renders instead of dividing by zero.
func ratio(labor, input int64) float64 {
	if input == 0 {
		input = 1
	}
	return float64(labor) / float64(input)
}

// changePct is the month-over-month change rate in percent; zero when
// there is no usable previous value.
func changePct(prev, cur int64) float64 {
	if prev == 0 {
		return 0
	}
	return (float64(cur) - float64(prev)) / float64(prev) * 100
}
