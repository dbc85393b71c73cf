package report

import "call-logs-go/internal/types"

// Table is the full, ordered call-log report for one refresh. Rows are sorted
// by When ascending (ties keep store order) and never mutated after Build.
type Table struct {
	Rows   []types.ReportRow
	Totals Totals
}

// Totals is the roll-up line shown at the bottom of exports.
type Totals struct {
	Calls   int     `json:"calls"`
	Minutes float64 `json:"minutes"`
	Price   string  `json:"price"`
}

func (t Table) Len() int {
	return len(t.Rows)
}
