package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// Section groups labeled values under one heading in the summary.
type Section struct {
	Title string
	Rows  []Row
}

// Row is a single label/value line.
type Row struct {
	Label string
	Value string
}

// SummaryExporter renders a label/value summary document.
type SummaryExporter struct{}

// NewSummaryExporter constructs a summary exporter.
func NewSummaryExporter() *SummaryExporter {
	return &SummaryExporter{}
}

// Render creates an A4 summary with one block per section. Empty values keep
// their row so the reader can see which fields were left blank.
func (e *SummaryExporter) Render(title string, sections []Section) ([]byte, error) {
	if len(sections) == 0 {
		return nil, fmt.Errorf("summary requires at least one section")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(title), "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}

	for _, sec := range sections {
		pdf.SetFont("Arial", "B", 11)
		pdf.SetFillColor(235, 235, 235)
		pdf.CellFormat(0, 8, tr(sec.Title), "", 1, "L", true, 0, "")
		pdf.Ln(1)

		for _, row := range sec.Rows {
			pdf.SetFont("Arial", "B", 9)
			y := pdf.GetY()
			pdf.CellFormat(60, 6, tr(row.Label), "", 0, "", false, 0, "")
			pdf.SetFont("Arial", "", 9)
			pdf.SetXY(70, y)
			pdf.MultiCell(130, 6, tr(row.Value), "", "", false)
		}
		pdf.Ln(3)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
