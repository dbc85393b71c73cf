package report

import "call-logs-go/internal/types"

const DefaultPageSize = 25

// PageState is the pager position for one view. It is an explicit value, not
// ambient state: transitions return the next state and never go out of range.
type PageState struct {
	Current int `json:"current"`
	Size    int `json:"size"`
}

func NewPageState(size int) PageState {
	if size < 1 {
		size = DefaultPageSize
	}
	return PageState{Current: 1, Size: size}
}

// TotalPages for n rows. An empty table still has one (empty) page.
func TotalPages(rowCount, pageSize int) int {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	pages := (rowCount + pageSize - 1) / pageSize
	if pages < 1 {
		pages = 1
	}
	return pages
}

// Next advances one page, or stays put on the last page.
func (s PageState) Next(totalPages int) PageState {
	if s.Current < totalPages {
		s.Current++
	}
	return s
}

// Prev goes back one page, or stays put on the first.
func (s PageState) Prev() PageState {
	if s.Current > 1 {
		s.Current--
	}
	return s
}

// Clamp pins the state inside [1, totalPages]. Run after every refresh so a
// shrunken table can never leave the pager pointing past the end.
func (s PageState) Clamp(totalPages int) PageState {
	if totalPages < 1 {
		totalPages = 1
	}
	if s.Current > totalPages {
		s.Current = totalPages
	}
	if s.Current < 1 {
		s.Current = 1
	}
	return s
}

// LabeledRow pairs a report row with its continuous 1-based display number.
type LabeledRow struct {
	Label int `json:"row"`
	types.ReportRow
}

// PageView is one displayable window over the table.
type PageView struct {
	Page       int          `json:"page"`
	TotalPages int          `json:"total_pages"`
	TotalRows  int          `json:"total_rows"`
	Rows       []LabeledRow `json:"rows"`
}

// PageOf slices the table for the given state. Labels continue across pages:
// row i of page p is numbered (p-1)*size + i.
func PageOf(t Table, s PageState) PageView {
	total := TotalPages(t.Len(), s.Size)
	s = s.Clamp(total)

	start := (s.Current - 1) * s.Size
	end := start + s.Size
	if end > t.Len() {
		end = t.Len()
	}
	if start > t.Len() {
		start = t.Len()
	}

	rows := make([]LabeledRow, 0, end-start)
	for i := start; i < end; i++ {
		rows = append(rows, LabeledRow{Label: i + 1, ReportRow: t.Rows[i]})
	}
	return PageView{Page: s.Current, TotalPages: total, TotalRows: t.Len(), Rows: rows}
}
