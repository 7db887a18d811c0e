package instructor

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/learnflow/learnflow/internal/mastery"
)

// SheetName is the worksheet the export writes to.
const SheetName = "Struggles"

var exportHeaders = []string{"User", "Module", "Type", "Label", "Details", "Detected At", "Resolved"}

// WriteWorkbook writes the alerts as an xlsx workbook with one row per
// alert.
func WriteWorkbook(w io.Writer, rows []mastery.StruggleClassification) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for i, h := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	if err := f.SetCellStyle(SheetName, "A1", lastHeader, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, c := range rows {
		var detectedAt any = ""
		if !c.Alert.Timestamp.IsZero() {
			detectedAt = c.Alert.Timestamp.UTC()
		}
		values := []any{
			c.Alert.UserID,
			c.Alert.ModuleID,
			c.Alert.StruggleType,
			c.Label,
			formatDetails(c.Details),
			detectedAt,
			c.Alert.Resolved,
		}
		for j, v := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(SheetName, cell, v); err != nil {
				return fmt.Errorf("write row %d: %w", i+1, err)
			}
		}
	}

	if err := f.SetColWidth(SheetName, "A", "G", 20); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func formatDetails(rows []mastery.DetailRow) string {
	parts := make([]string, 0, len(rows))
	for _, r := range rows {
		parts = append(parts, r.Label+": "+r.Value)
	}
	return strings.Join(parts, "; ")
}
