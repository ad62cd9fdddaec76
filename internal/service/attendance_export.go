package service

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

// ExportMonthlyRecap renders the monthly recap as an .xlsx workbook:
// a header row, then one row per student with per-status counts.
func (s *AttendanceService) ExportMonthlyRecap(ctx context.Context, year int, month time.Month) (*excelize.File, string, error) {
	recaps, err := s.MonthlyRecap(ctx, year, month)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	const sheet = "Rekap Kehadiran"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"No", "Nama Siswa", "Hadir", "Izin", "Alfa"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		f.SetCellStyle(sheet, "A1", "E1", headerStyle)
	}

	for i, recap := range recaps {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), i+1)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), recap.StudentName)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), recap.Present)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), recap.Excused)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), recap.Absent)
	}

	f.SetColWidth(sheet, "B", "B", 32)

	filename := fmt.Sprintf("attendance-%d-%02d.xlsx", year, int(month))
	return f, filename, nil
}
