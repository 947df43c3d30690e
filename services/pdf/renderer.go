package pdfsvc

import (
	"bytes"

	"github.com/jung-kurt/gofpdf"
	"github.com/pkg/errors"

	"github.com/reportube/reportube/core/report"
)

// grid column widths, matching the x positions in the report layout
var colWidths = []float64{
	report.ColCA - report.ColSubject,                       // subject
	report.ColExam - report.ColCA,                          // ca
	report.ColTotal - report.ColExam,                       // exam
	report.ColGrade - report.ColTotal,                      // total
	report.ColRemark - report.ColGrade,                     // grade
	report.Margin + report.ContentWidth - report.ColRemark, // remark
}

type renderer struct{}

var _ report.Renderer = (*renderer)(nil)

// NewRenderer returns a report.Renderer that serializes report documents to
// A4 portrait PDFs.
func NewRenderer() *renderer {
	return &renderer{}
}

func (r *renderer) Render(doc report.Document) ([]byte, error) {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(report.Margin, report.Margin, report.Margin)
	pdf.SetAutoPageBreak(true, report.Margin)
	pdf.AddPage()

	r.drawHeader(pdf, doc.Header)
	r.drawInfo(pdf, doc.Info)
	r.drawGrid(pdf, doc.Grid)
	r.drawSummary(pdf, doc.Summary)
	r.drawFooter(pdf, doc.Footer)

	var buff bytes.Buffer
	if err := pdf.Output(&buff); err != nil {
		return nil, errors.Wrap(err, "writing pdf")
	}
	return buff.Bytes(), nil
}

func (r *renderer) drawHeader(pdf *gofpdf.Fpdf, h report.Header) {
	pdf.SetFont("Helvetica", "B", 24)
	pdf.CellFormat(report.ContentWidth, 28, h.Institution, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(report.ContentWidth, 14, h.Subtitle, "", 1, "C", false, 0, "")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(report.ContentWidth, 14, h.PeriodLine, "", 1, "C", false, 0, "")
	pdf.Ln(14)

	// rule under the header
	y := pdf.GetY()
	pdf.SetDrawColor(0, 0, 0)
	pdf.Line(report.Margin, y, report.Margin+report.ContentWidth, y)
	pdf.Ln(12)
}

func (r *renderer) drawInfo(pdf *gofpdf.Fpdf, info report.InfoBlock) {
	pdf.SetFont("Helvetica", "BU", 12)
	pdf.CellFormat(report.ContentWidth, 16, info.Title, "", 1, "L", false, 0, "")
	pdf.Ln(4)

	top := pdf.GetY()
	labelX, valueX := report.Margin, 80.0
	rightLabelX, rightValueX := 270.0, 320.0

	pdf.SetFontSize(10)
	for i, f := range info.Left {
		y := top + float64(i)*report.InfoRowOffset
		pdf.SetFont("Helvetica", "B", 10)
		pdf.Text(labelX, y+10, f.Label)
		pdf.SetFont("Helvetica", "", 10)
		pdf.Text(valueX, y+10, f.Value)
	}
	for i, f := range info.Right {
		y := top + float64(i)*report.InfoRowOffset
		pdf.SetFont("Helvetica", "B", 10)
		pdf.Text(rightLabelX, y+10, f.Label)
		pdf.SetFont("Helvetica", "", 10)
		pdf.Text(rightValueX, y+10, f.Value)
	}

	rows := len(info.Left)
	if len(info.Right) > rows {
		rows = len(info.Right)
	}
	pdf.SetY(top + float64(rows)*report.InfoRowOffset + 20)
}

func (r *renderer) drawGrid(pdf *gofpdf.Fpdf, grid report.Grid) {
	pdf.SetFont("Helvetica", "BU", 12)
	pdf.CellFormat(report.ContentWidth, 16, grid.Title, "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// header row
	pdf.SetFillColor(74, 85, 104)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetDrawColor(74, 85, 104)
	pdf.SetFont("Helvetica", "B", 10)
	r.drawRow(pdf, grid.HeaderRow, true)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 9)
	for _, row := range grid.Rows {
		if row.Shaded {
			pdf.SetFillColor(247, 250, 252)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		r.drawRow(pdf, row, true)
	}
	pdf.Ln(20)
}

func (r *renderer) drawRow(pdf *gofpdf.Fpdf, row report.GridRow, fill bool) {
	cells := []struct {
		text  string
		align string
	}{
		{row.Subject, "L"},
		{row.CA, "C"},
		{row.Exam, "C"},
		{row.Total, "C"},
		{row.Grade, "C"},
		{row.Remark, "L"},
	}
	for i, c := range cells {
		border := "TB"
		if i == 0 {
			border = "LTB"
		} else if i == len(cells)-1 {
			border = "RTB"
		}
		pdf.CellFormat(colWidths[i], report.GridRowHeight, " "+c.text, border, 0, c.align, fill, 0, "")
	}
	pdf.Ln(-1)
}

func (r *renderer) drawSummary(pdf *gofpdf.Fpdf, s report.SummaryBox) {
	top := pdf.GetY()

	// fixed-size box regardless of content
	pdf.SetFillColor(247, 250, 252)
	pdf.SetDrawColor(74, 85, 104)
	pdf.Rect(report.Margin, top, report.ContentWidth, report.SummaryHeight, "FD")

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Text(report.Margin+10, top+22, s.Title)

	leftX, rightX := report.Margin+10, 320.0
	lineY := top + 45
	for i, f := range s.Left {
		y := lineY + float64(i)*20
		pdf.SetFont("Helvetica", "B", 10)
		pdf.Text(leftX, y, f.Label)
		pdf.SetFont("Helvetica", "", 10)
		pdf.Text(leftX+100, y, f.Value)
	}
	for i, f := range s.Right {
		y := lineY + float64(i)*20
		pdf.SetFont("Helvetica", "B", 10)
		pdf.Text(rightX, y, f.Label)
		pdf.SetFont("Helvetica", "", 10)
		pdf.Text(rightX+100, y, f.Value)
	}

	pdf.SetY(top + report.SummaryHeight + 15)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(report.ContentWidth, 14, "Class Teacher's Comment:", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(report.ContentWidth, 12, s.TeacherComment, "", "J", false)
	pdf.Ln(20)

	signY := pdf.GetY()
	pdf.SetFont("Helvetica", "", 9)
	sigX := []float64{80.0, 340.0}
	for i, sig := range s.Signatures {
		if i >= len(sigX) {
			break
		}
		pdf.Text(sigX[i], signY, "_____________________")
		pdf.Text(sigX[i], signY+15, sig)
	}
}

func (r *renderer) drawFooter(pdf *gofpdf.Fpdf, f report.Footer) {
	bottomY := 770.0

	pdf.SetTextColor(102, 102, 102)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetXY(report.Margin, bottomY)
	pdf.CellFormat(report.ContentWidth, 10, f.GeneratedLine, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(report.Margin, bottomY+15)
	pdf.CellFormat(report.ContentWidth, 10, f.GradingKey, "", 1, "C", false, 0, "")
}
