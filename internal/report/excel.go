package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Exporter writes the cost summary to an Excel workbook for distribution
// outside the system.
type Exporter struct {
	outputDir string
	logger    *zap.Logger
}

// NewExporter creates an exporter writing into outputDir.
func NewExporter(outputDir string, logger *zap.Logger) *Exporter {
	return &Exporter{outputDir: outputDir, logger: logger}
}

var exportHeader = []string{
	"현장명", "연도", "월",
	"기성금", "노무비", "투입비", "손수익", "노무비비중",
	"기성금 누적", "투입비 누적", "손수익 누적",
	"기성금 증감률(%)", "투입비 증감률(%)", "손수익 증감률(%)",
}

// Export writes the rows to a timestamped xlsx file and returns its path.
func (e *Exporter) Export(rows []Row) (string, error) {
	if err := os.MkdirAll(e.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "비용요약"
	f.SetSheetName(f.GetSheetName(0), sheet)

	for col, title := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return "", fmt.Errorf("failed to compute header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return "", fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i, row := range rows {
		values := []interface{}{
			row.Site, row.Year, row.Month,
			row.ProgressPayment, row.LaborCost, row.InputCost,
			row.Profit, row.LaborRatio,
			row.CumProgressPayment, row.CumInputCost, row.CumProfit,
			row.ProgressChangePct, row.InputChangePct, row.ProfitChangePct,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return "", fmt.Errorf("failed to compute cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return "", fmt.Errorf("failed to write row %d: %w", i+1, err)
			}
		}
	}

	path := filepath.Join(e.outputDir,
		fmt.Sprintf("cost_summary_%s.xlsx", time.Now().Format("20060102_150405")))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}

	e.logger.Info("Cost summary exported",
		zap.String("path", path), zap.Int("rows", len(rows)))
	return path, nil
}
