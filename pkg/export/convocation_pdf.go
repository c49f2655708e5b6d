package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// ConvocationDuty is one supervision duty line on a convocation.
type ConvocationDuty struct {
	Date   string
	Period string
	Start  string
	End    string
	Room   string
	Role   string
}

// Convocation is a per-staff duty summons, one page per staff member.
type Convocation struct {
	StaffName string
	Grade     string
	Session   string
	Duties    []ConvocationDuty
}

// ConvocationExporter renders convocation documents.
type ConvocationExporter struct{}

// NewConvocationExporter constructs a convocation exporter.
func NewConvocationExporter() *ConvocationExporter {
	return &ConvocationExporter{}
}

// Render produces a single PDF with one page per convocation.
func (e *ConvocationExporter) Render(convocations []Convocation) ([]byte, error) {
	if len(convocations) == 0 {
		return nil, fmt.Errorf("no convocations to render")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)

	for _, conv := range convocations {
		pdf.AddPage()

		pdf.SetFont("Arial", "B", 16)
		pdf.CellFormat(0, 10, "SUPERVISION DUTY NOTICE", "", 1, "C", false, 0, "")
		pdf.Ln(4)

		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(0, 7, fmt.Sprintf("Session: %s", conv.Session), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 7, fmt.Sprintf("Staff member: %s", conv.StaffName), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 7, fmt.Sprintf("Grade: %s", conv.Grade), "", 1, "L", false, 0, "")
		pdf.Ln(6)

		headers := []string{"Date", "Period", "Start", "End", "Room", "Role"}
		widths := []float64{35, 25, 25, 25, 40, 30}

		pdf.SetFont("Arial", "B", 10)
		for i, h := range headers {
			pdf.CellFormat(widths[i], 8, h, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 10)
		for _, duty := range conv.Duties {
			cells := []string{duty.Date, duty.Period, duty.Start, duty.End, duty.Room, duty.Role}
			for i, v := range cells {
				pdf.CellFormat(widths[i], 7, v, "1", 0, "", false, 0, "")
			}
			pdf.Ln(-1)
		}

		pdf.Ln(10)
		pdf.SetFont("Arial", "I", 9)
		pdf.CellFormat(0, 6, "Please report to the room fifteen minutes before the start time.", "", 1, "L", false, 0, "")
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render convocation pdf: %w", err)
	}
	return buf.Bytes(), nil
}
