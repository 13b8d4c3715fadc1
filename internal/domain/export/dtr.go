package export

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/carlpacpaco9-design/HRIS-sub001/internal/domain/attendance"
)

const dtrSheet = "DTR"

var dtrHeaders = []string{"Date", "Day", "AM Arrival", "AM Departure", "PM Arrival", "PM Departure", "Undertime (h)", "Undertime (m)", "Remarks"}

// dtrRows lists every calendar day of the month, blank where nothing was
// logged, the way the paper form is laid out.
func dtrRows(report attendance.MonthlyReport) ([][]any, error) {
	month, err := attendance.ParseMonth(report.Summary.Month)
	if err != nil {
		return nil, fmt.Errorf("dtr export: %w", err)
	}
	byDate := make(map[string]attendance.Log, len(report.Logs))
	for _, log := range report.Logs {
		byDate[log.Date.Format(time.DateOnly)] = log
	}

	rows := make([][]any, 0, 31)
	for day := month.First(); day.Month() == month.Month; day = day.AddDate(0, 0, 1) {
		r := []any{day.Format("02"), day.Format("Mon"), "", "", "", "", "", "", ""}
		if log, ok := byDate[day.Format(time.DateOnly)]; ok {
			r[2] = punch(log.Punches.AMArrival)
			r[3] = punch(log.Punches.AMDeparture)
			r[4] = punch(log.Punches.PMArrival)
			r[5] = punch(log.Punches.PMDeparture)
			r[6] = log.UndertimeHours
			r[7] = log.UndertimeMinutes
			r[8] = log.Remarks
		}
		rows = append(rows, r)
	}
	return rows, nil
}

func DTRPDF(w io.Writer, report attendance.MonthlyReport) error {
	rows, err := dtrRows(report)
	if err != nil {
		return err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("DTR "+report.Summary.Month, true)
	pdf.SetAutoPageBreak(true, 10)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "Daily Time Record", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, tr("Employee: "+report.Employee.Name), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Month: "+report.Summary.Month, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	widths := []float64{12, 12, 20, 22, 20, 22, 22, 22, 38}
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range dtrHeaders {
		pdf.CellFormat(widths[i], 6, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, r := range rows {
		for i, v := range r {
			align := "C"
			if i == len(r)-1 {
				align = "L"
			}
			pdf.CellFormat(widths[i], 5.5, tr(fmt.Sprint(v)), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	s := report.Summary
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Working days: %d   Days logged: %d   Days absent: %d", s.WorkingDays, s.DaysLogged, s.DaysAbsent), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Total undertime: %dh %dm over %d day(s)", s.UndertimeHours, s.UndertimeMinutes, s.DaysWithUndertime), "", 1, "L", false, 0, "")
	footer(pdf)
	return pdf.Output(w)
}

func DTRWorkbook(w io.Writer, report attendance.MonthlyReport) error {
	rows, err := dtrRows(report)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", dtrSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(dtrSheet, "A1", &[]string{"Employee", report.Employee.Name, "Month", report.Summary.Month}); err != nil {
		return err
	}
	if err := f.SetSheetRow(dtrSheet, "A3", &dtrHeaders); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(dtrSheet, "A3", "I3", bold); err != nil {
		return err
	}

	rowNum := 4
	for _, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(dtrSheet, cell, &r); err != nil {
			return err
		}
		rowNum++
	}

	s := report.Summary
	totals := [][]any{
		{"Working days", s.WorkingDays},
		{"Days logged", s.DaysLogged},
		{"Days absent", s.DaysAbsent},
		{"Total undertime (minutes)", s.TotalUndertime},
	}
	rowNum++
	for _, t := range totals {
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(dtrSheet, cell, &t); err != nil {
			return err
		}
		rowNum++
	}
	if err := f.SetColWidth(dtrSheet, "C", "H", 14); err != nil {
		return err
	}
	return f.Write(w)
}

func punch(t *attendance.TimeOfDay) string {
	if t == nil {
		return ""
	}
	return t.String()
}
