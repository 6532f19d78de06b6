// Package report renders admin summaries as printable PDF documents.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Row is one label/value line of a section
type Row struct {
	Label string
	Value string
}

// Section is a titled table. An unavailable section prints a note in place
// of its rows.
type Section struct {
	Heading     string
	Rows        []Row
	Unavailable bool
}

type Report struct {
	Title     string
	Subtitle  string
	Generated time.Time
	Sections  []Section
}

const (
	pageMargin = 18.0
	labelWidth = 110.0
	rowHeight  = 8.0
)

// WritePDF lays the report out on A4 pages and writes it to w
func (r Report) WritePDF(w io.Writer) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin+6)
	pdf.SetTitle(r.Title, true)
	pdf.SetCreator("CampusConnect", true)
	pdf.SetCreationDate(r.Generated)

	// Core fonts are cp1252; names and cities may carry accents
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-pageMargin)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(140, 140, 140)
		pdf.CellFormat(0, 6, fmt.Sprintf("Generated %s", r.Generated.Format("02 Jan 2006 15:04 MST")), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(30, 27, 75)
	pdf.CellFormat(0, 12, tr(r.Title), "", 1, "L", false, 0, "")
	if r.Subtitle != "" {
		pdf.SetFont("Helvetica", "", 11)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(0, 7, tr(r.Subtitle), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	for _, s := range r.Sections {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.SetTextColor(79, 70, 229)
		pdf.CellFormat(0, 9, tr(s.Heading), "", 1, "L", false, 0, "")

		pdf.SetFont("Helvetica", "", 11)
		pdf.SetDrawColor(229, 231, 235)
		switch {
		case s.Unavailable:
			pdf.SetTextColor(185, 28, 28)
			pdf.CellFormat(0, rowHeight, "Unavailable when this report was generated", "", 1, "L", false, 0, "")
		case len(s.Rows) == 0:
			pdf.SetTextColor(120, 120, 120)
			pdf.CellFormat(0, rowHeight, "No data", "", 1, "L", false, 0, "")
		default:
			pdf.SetTextColor(31, 41, 55)
			for i, row := range s.Rows {
				fill := i%2 == 0
				pdf.SetFillColor(249, 250, 251)
				pdf.CellFormat(labelWidth, rowHeight, tr(row.Label), "B", 0, "L", fill, 0, "")
				pdf.CellFormat(0, rowHeight, tr(row.Value), "B", 1, "R", fill, 0, "")
			}
		}
		pdf.Ln(5)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
