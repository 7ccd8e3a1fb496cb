package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Classification lists are wide (rank through category), so pages are laid
// out in landscape.
const pdfUsableWidth = 277.0

// PDFExporter renders classification tables into a paged PDF.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document from the table. Column widths follow the
// column weights; the header row repeats on every page.
func (e *PDFExporter) Render(table Table) ([]byte, error) {
	if len(table.Columns) == 0 {
		return nil, fmt.Errorf("pdf requires at least one column")
	}

	widths := columnWidths(table.Columns)

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)

	writeHeader := func() {
		if table.Title != "" {
			pdf.SetFont("Arial", "B", 14)
			pdf.CellFormat(0, 10, strings.ToUpper(table.Title), "", 1, "C", false, 0, "")
			pdf.Ln(3)
		}
		pdf.SetFont("Arial", "B", 10)
		for i, col := range table.Columns {
			pdf.CellFormat(widths[i], 8, col.Name, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
	}

	pdf.SetHeaderFunc(writeHeader)
	pdf.AddPage()

	for i, row := range table.Rows {
		if len(row) != len(table.Columns) {
			return nil, fmt.Errorf("pdf row %d has %d cells, want %d", i+1, len(row), len(table.Columns))
		}
		for j, value := range row {
			pdf.CellFormat(widths[j], 7, value, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func columnWidths(columns []Column) []float64 {
	totalWeight := 0.0
	for _, col := range columns {
		if col.Weight > 0 {
			totalWeight += col.Weight
		} else {
			totalWeight += 1
		}
	}

	widths := make([]float64, len(columns))
	for i, col := range columns {
		weight := col.Weight
		if weight <= 0 {
			weight = 1
		}
		widths[i] = pdfUsableWidth * weight / totalWeight
	}
	return widths
}
