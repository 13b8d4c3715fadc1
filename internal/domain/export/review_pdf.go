// Package export renders finalized records as printable documents. It only
// reads; nothing here changes stored state.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/carlpacpaco9-design/HRIS-sub001/internal/domain/review"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/shared/apperror"
)

var ErrNotFinalized = apperror.Validation("not_finalized", "only finalized IPCRs can be exported")

// ReviewPDF writes the IPCR form for a finalized document: outputs grouped
// by category with their Q, E, T and average ratings, then the final rating.
func ReviewPDF(w io.Writer, doc review.Document) error {
	if doc.Status != review.StatusFinalized {
		return ErrNotFinalized
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("IPCR "+doc.PeriodName, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "Individual Performance Commitment and Review", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Employee: %s", doc.EmployeeName)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Rating period: %s", doc.PeriodName)), "", 1, "L", false, 0, "")
	if doc.FinalizedAt != nil {
		pdf.CellFormat(0, 6, "Finalized: "+doc.FinalizedAt.Format("January 2, 2006"), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	widths := []float64{60, 60, 70, 15, 15, 15, 22}
	headers := []string{"Major Final Output", "Success Indicator", "Actual Accomplishments", "Q", "E", "T", "Average"}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	for _, group := range review.GroupByCategory(doc.Outputs) {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(sum(widths), 6, tr(group.Category), "1", 1, "L", true, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		for _, out := range group.Outputs {
			cells := []string{
				tr(out.MajorFinalOutput),
				tr(out.SuccessIndicatorTarget),
				tr(out.ActualAccomplishments),
				score(out.Ratings.Quantity),
				score(out.Ratings.Efficiency),
				score(out.Ratings.Timeliness),
				average(out.RatingAverage),
			}
			row(pdf, widths, cells)
		}
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Final average rating: %s (%s)", average(doc.FinalAverageRating), doc.AdjectivalRating), "", 1, "L", false, 0, "")
	if doc.ReviewComments != "" {
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, tr("Reviewer comments: "+doc.ReviewComments), "", "L", false)
	}
	if doc.FinalRemarks != "" {
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, tr("Final remarks: "+doc.FinalRemarks), "", "L", false)
	}
	footer(pdf)
	return pdf.Output(w)
}

// row draws one table row, wrapping long text so every cell in the row has
// the same height.
func row(pdf *gofpdf.Fpdf, widths []float64, cells []string) {
	const lineHeight = 5
	lines := 1
	for i, text := range cells {
		if n := len(pdf.SplitText(text, widths[i]-2)); n > lines {
			lines = n
		}
	}
	height := float64(lines) * lineHeight
	if _, pageHeight := pdf.GetPageSize(); pdf.GetY()+height > pageHeight-15 {
		pdf.AddPage()
	}

	x, y := pdf.GetXY()
	for i, text := range cells {
		pdf.Rect(x, y, widths[i], height, "D")
		pdf.SetXY(x, y)
		align := "L"
		if i >= 3 {
			align = "C"
		}
		pdf.MultiCell(widths[i], lineHeight, text, "", align, false)
		x += widths[i]
	}
	left, _, _, _ := pdf.GetMargins()
	pdf.SetXY(left, y+height)
}

func footer(pdf *gofpdf.Fpdf) {
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 5, "Generated "+time.Now().Format("2006-01-02 15:04"), "", 1, "R", false, 0, "")
}

func score(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

func average(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}
