package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"call-logs-go/internal/report"
)

const XLSXFileName = "call_logs.xlsx"

const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const xlsxSheet = "Call Logs"

// XLSX renders the full table as a single-sheet workbook with the same
// column order as the PDF export.
func XLSX(t report.Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := []interface{}{"When", "To", "From", "Duration (minutes)", "Price", "Summary"}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, row := range t.Rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []interface{}{row.When, row.To, row.From, row.DurationMinutes, row.Price, row.Summary}
		if err := f.SetSheetRow(xlsxSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	totalsCell, _ := excelize.CoordinatesToCellName(1, t.Len()+2)
	totals := []interface{}{
		"Total",
		fmt.Sprintf("%d calls", t.Totals.Calls),
		"",
		t.Totals.Minutes,
		t.Totals.Price,
		"",
	}
	if err := f.SetSheetRow(xlsxSheet, totalsCell, &totals); err != nil {
		return nil, fmt.Errorf("write totals: %w", err)
	}

	_ = f.SetColWidth(xlsxSheet, "A", "A", 12)
	_ = f.SetColWidth(xlsxSheet, "B", "C", 22)
	_ = f.SetColWidth(xlsxSheet, "D", "E", 14)
	_ = f.SetColWidth(xlsxSheet, "F", "F", 60)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
