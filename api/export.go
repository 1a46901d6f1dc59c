/*
export.go - Roster export to spreadsheet

PURPOSE:
  Renders a shift range as an .xlsx workbook for managers who live
  in spreadsheets. One row per shift, ordered by start time.

SEE ALSO:
  - handlers.go: Error mapping and shared helpers
  - server.go: Route registration (GET /api/shifts/export)
*/
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/warp/rota-engine/rota"
	"github.com/xuri/excelize/v2"
)

// ExportShifts streams the shifts in [start, end) as an .xlsx roster.
func (h *Handler) ExportShifts(w http.ResponseWriter, r *http.Request) {
	rng, ok := h.parseRange(w, r)
	if !ok {
		return
	}
	shifts, err := h.Shifts.Query(r.Context(), rng, nil)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	data, err := exportRosterXLSX(shifts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build export")
		return
	}

	filename := fmt.Sprintf("roster_%s_%s.xlsx",
		rng.Start.Format("2006-01-02"), rng.End.Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func exportRosterXLSX(shifts []rota.Shift) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Roster"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	header := []string{"Date", "Week", "Title", "Start", "End", "Hours", "Status", "Type", "Assigned To", "Location", "Worked Hours"}
	for c, v := range header {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		_ = f.SetCellValue(sheet, cell, v)
	}
	for r, s := range shifts {
		row := r + 2
		assignee := ""
		if s.UserID != nil {
			assignee = string(*s.UserID)
		}
		hours, _ := s.DurationHours().Float64()
		worked := ""
		if wh := s.WorkedHours(); !wh.IsZero() {
			worked = wh.StringFixed(2)
		}
		values := []any{
			rota.DayKey(s.StartTime),
			rota.ISOWeekKey(s.StartTime),
			s.Title,
			s.StartTime.Format(time.RFC3339),
			s.EndTime.Format(time.RFC3339),
			hours,
			string(s.Status),
			string(s.Type),
			assignee,
			s.Location.Name,
			worked,
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 12)
	_ = f.SetColWidth(sheet, "B", "B", 10)
	_ = f.SetColWidth(sheet, "C", "C", 28)
	_ = f.SetColWidth(sheet, "D", "E", 22)
	_ = f.SetColWidth(sheet, "F", "F", 8)
	_ = f.SetColWidth(sheet, "G", "H", 14)
	_ = f.SetColWidth(sheet, "I", "I", 18)
	_ = f.SetColWidth(sheet, "J", "J", 24)
	_ = f.SetColWidth(sheet, "K", "K", 12)

	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#1F2937"}, Pattern: 1},
	})
	_ = f.SetCellStyle(sheet, "A1", "K1", style)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
