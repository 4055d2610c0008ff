// Package sheet exports the card register as an Excel workbook.
package sheet

import (
	"fmt"
	"io"

	"github.com/ukydev/office-duty-card/internal/models"
	"github.com/xuri/excelize/v2"
)

// SheetName is the single worksheet of the export.
const SheetName = "Cards"

// Filename is the download name of the export.
const Filename = "office-duty-cards.xlsx"

const dateLayout = "02/01/2006"

// Headers returns the column titles in order.
func Headers() []string {
	var headers []string
	for _, f := range (models.EmployeeRecord{}).Fields() {
		if f.Key == "photo" {
			continue
		}
		headers = append(headers, f.Label)
	}
	for _, f := range (models.VehicleRecord{}).Fields() {
		headers = append(headers, f.Label)
	}
	return append(headers, "Photo URL", "Created")
}

func rowValues(c models.Card) []interface{} {
	var values []interface{}
	for _, f := range c.Employee.Fields() {
		if f.Key == "photo" {
			continue
		}
		values = append(values, f.Value)
	}
	for _, f := range c.Vehicle.Fields() {
		values = append(values, f.Value)
	}
	created := ""
	if !c.CreatedAt.IsZero() {
		created = c.CreatedAt.Format(dateLayout)
	}
	return append(values, c.Employee.PhotoURL, created)
}

// WriteCards writes cards, one per row under a bold header, to w.
func WriteCards(w io.Writer, cards []models.Card) error {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(SheetName); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}
	index, err := f.GetSheetIndex(SheetName)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#FDE2E2"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	headers := Headers()
	headerRow := make([]interface{}, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &headerRow); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to set header style: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "A", lastCol, 18); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	for i, c := range cards {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := rowValues(c)
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze panes: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
