// Package report renders assignment data as an Excel workbook.
package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"substation-maintenance/internal/model"
	"substation-maintenance/internal/parse"
	"substation-maintenance/internal/store"
)

// Sheet names, in workbook order.
const (
	AssignmentsSheet = "Assignments"
	WorkloadSheet    = "Workload"
)

const timeLayout = "2006-01-02 15:04"

var assignmentHeader = []string{
	"Assignment", "Created", "Task", "Status", "Description", "Deadline",
	"Employee", "Phone", "Node index", "Node", "Motor power, kW",
}

var assignmentWidths = []float64{12, 18, 8, 14, 40, 18, 26, 16, 14, 24, 16}

var workloadHeader = []string{
	"Employee", "Total", "Pending", "In progress", "Completed", "Canceled",
}

var workloadWidths = []float64{26, 10, 10, 12, 12, 10}

// Workbook builds the assignments and workload sheets. Assignments must have
// their Doer, Task and Node (with Motor) preloaded where present.
func Workbook(assignments []model.Assignment, workloads []store.EmployeeWorkload) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(AssignmentsSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if _, err := f.NewSheet(WorkloadSheet); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeHeader(f, AssignmentsSheet, assignmentHeader, assignmentWidths, headerStyle); err != nil {
		return nil, err
	}
	for i, a := range assignments {
		if err := writeRow(f, AssignmentsSheet, i+2, assignmentRow(a)); err != nil {
			return nil, err
		}
	}

	if err := writeHeader(f, WorkloadSheet, workloadHeader, workloadWidths, headerStyle); err != nil {
		return nil, err
	}
	for i, w := range workloads {
		row := []any{w.FirstName + " " + w.LastName, w.Total, w.Pending, w.InProgress, w.Completed, w.Canceled}
		if err := writeRow(f, WorkloadSheet, i+2, row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func assignmentRow(a model.Assignment) []any {
	row := []any{a.ID, a.CreatedAt.Format(timeLayout), a.TaskID, "", "", "", "", "", "", "", ""}
	if t := a.Task; t != nil {
		row[3] = t.Status.Label()
		row[4] = t.Description
		row[5] = formatTime(t.Deadline)
	}
	if d := a.Doer; d != nil {
		row[6] = d.FullName()
		row[7] = d.Phone
	}
	if n := a.Node; n != nil {
		row[8] = n.Index
		row[9] = n.Name
		if n.Motor != nil {
			row[10] = parse.FormatPower(n.Motor.Power)
		}
	}
	return row
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(timeLayout)
}

func writeHeader(f *excelize.File, sheet string, header []string, widths []float64, style int) error {
	for col, title := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}

		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return fmt.Errorf("failed to convert column number: %w", err)
		}
		if col < len(widths) {
			if err := f.SetColWidth(sheet, name, name, widths[col]); err != nil {
				return fmt.Errorf("failed to set column width: %w", err)
			}
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to convert coordinates: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", row, sheet, err)
	}
	return nil
}
