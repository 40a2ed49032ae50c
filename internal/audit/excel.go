// Package audit exports the validation audit log as a spreadsheet.
package audit

import (
	"fmt"
	"io"

	"appointment/internal/models"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Validations"

var columns = []string{"ID", "Created at", "Request ID", "Doctor", "Timeslot", "Normalized", "Outcome", "Message"}

// WriteValidations renders records into an .xlsx workbook on w.
func WriteValidations(w io.Writer, records []models.ValidationRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := writeRow(f, 1, toRow(columns)); err != nil {
		return err
	}
	if err := styleHeader(f); err != nil {
		return err
	}

	for i, rec := range records {
		row := []any{
			rec.ID,
			rec.CreatedAt.Format("2006-01-02 15:04:05"),
			rec.RequestID,
			rec.DoctorID,
			rec.Timeslot,
			rec.Normalized,
			rec.Outcome,
			rec.Message,
		}
		if err := writeRow(f, i+2, row); err != nil {
			return err
		}
	}

	return f.Write(w)
}

func styleHeader(f *excelize.File) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	endCell, err := excelize.CoordinatesToCellName(len(columns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", endCell, style); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, rowNum int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", rowNum, err)
	}
	return nil
}

func toRow(values []string) []any {
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = v
	}
	return row
}
