package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"call-logs-go/internal/report"
)

// PDFFileName is the download name offered to the user.
const PDFFileName = "call_logs.pdf"

// PDFContentType for the export response.
const PDFContentType = "application/pdf"

// Fixed column layout, landscape A4 (277mm usable). Summary gets the rest
// and is the only column that wraps.
var pdfColumns = []struct {
	title string
	width float64
}{
	{"When", 24},
	{"To", 45},
	{"From", 45},
	{"Duration (minutes)", 32},
	{"Price", 18},
	{"Summary", 113},
}

const (
	pdfMarginLeft = 10.0
	pdfMarginTop  = 10.0
	pdfLineHeight = 5.0
	pdfBreakAt    = 195.0
)

// PDF renders the entire table, independent of the current page, as a
// bordered table with a repeated header and a totals line.
func PDF(t report.Table) ([]byte, error) {
	doc := buildPDF(t, true)
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func buildPDF(t report.Table, compress bool) *gofpdf.Fpdf {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetCompression(compress)
	pdf.SetMargins(pdfMarginLeft, pdfMarginTop, pdfMarginLeft)
	pdf.SetAutoPageBreak(false, 0)
	// core fonts are cp1252; sanitizeCell has already replaced anything
	// outside that set
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdfHeader(pdf)

	for _, row := range t.Rows {
		summaryLines := pdf.SplitText(tr(sanitizeCell(row.Summary)), pdfColumns[5].width-2)
		if len(summaryLines) == 0 {
			summaryLines = []string{""}
		}
		rowH := pdfLineHeight * float64(len(summaryLines))

		if pdf.GetY()+rowH > pdfBreakAt {
			pdf.AddPage()
			pdfHeader(pdf)
		}

		y := pdf.GetY()
		x := pdfMarginLeft
		cells := []string{
			row.When,
			row.To,
			row.From,
			fmt.Sprintf("%.2f", row.DurationMinutes),
			row.Price,
		}
		for i, cell := range cells {
			pdf.SetXY(x, y)
			pdf.CellFormat(pdfColumns[i].width, rowH, tr(sanitizeCell(cell)), "1", 0, "L", false, 0, "")
			x += pdfColumns[i].width
		}

		pdf.SetXY(x, y)
		pdf.CellFormat(pdfColumns[5].width, rowH, "", "1", 0, "L", false, 0, "")
		for i, line := range summaryLines {
			pdf.SetXY(x+1, y+float64(i)*pdfLineHeight)
			pdf.CellFormat(pdfColumns[5].width-2, pdfLineHeight, line, "", 0, "L", false, 0, "")
		}
		pdf.SetXY(pdfMarginLeft, y+rowH)
	}

	pdfTotals(pdf, t.Totals)
	return pdf
}

func pdfHeader(pdf *gofpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	pdf.SetXY(pdfMarginLeft, pdf.GetY())
	for _, col := range pdfColumns {
		pdf.CellFormat(col.width, 7, col.title, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 9)
}

func pdfTotals(pdf *gofpdf.Fpdf, totals report.Totals) {
	if pdf.GetY()+7 > pdfBreakAt {
		pdf.AddPage()
		pdfHeader(pdf)
	}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetXY(pdfMarginLeft, pdf.GetY())
	pdf.CellFormat(pdfColumns[0].width, 7, "Total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(pdfColumns[1].width+pdfColumns[2].width, 7, fmt.Sprintf("%d calls", totals.Calls), "1", 0, "L", false, 0, "")
	pdf.CellFormat(pdfColumns[3].width, 7, fmt.Sprintf("%.2f", totals.Minutes), "1", 0, "L", false, 0, "")
	pdf.CellFormat(pdfColumns[4].width, 7, totals.Price, "1", 0, "L", false, 0, "")
	pdf.CellFormat(pdfColumns[5].width, 7, "", "1", 0, "L", false, 0, "")
}

// sanitizeCell keeps the export alive when a record carries text outside the
// core-font character set: anything the PDF cannot encode becomes '?' for
// that cell only.
func sanitizeCell(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\t':
			b.WriteRune(' ')
		case r >= 32 && r < 127:
			b.WriteRune(r)
		case r >= 0xA0 && r <= 0xFF:
			b.WriteRune(r)
		default:
			b.WriteRune('?')
		}
	}
	return b.String()
}
