package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// SheetName is the single worksheet of the spreadsheet export.
const SheetName = "weather"

// XLSXContentType is the MIME type of WriteXLSX output.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WriteXLSX serialises the table as a one-sheet workbook. An empty table
// yields a workbook holding only the header row.
func WriteXLSX(t *Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}

	dateFmt := "yyyy-mm-dd hh:mm:ss"
	tsStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
	if err != nil {
		return nil, fmt.Errorf("creating timestamp style: %w", err)
	}

	for i, row := range t.Rows {
		r := i + 2
		tsCell, _ := excelize.CoordinatesToCellName(1, r)
		if err := f.SetCellValue(SheetName, tsCell, row.Timestamp); err != nil {
			return nil, fmt.Errorf("writing row %d: %w", r, err)
		}
		if err := f.SetCellStyle(SheetName, tsCell, tsCell, tsStyle); err != nil {
			return nil, fmt.Errorf("styling row %d: %w", r, err)
		}
		for col, v := range []*float64{row.Temperature, row.Humidity} {
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(col+2, r)
			if err := f.SetCellFloat(SheetName, cell, *v, -1, 64); err != nil {
				return nil, fmt.Errorf("writing row %d: %w", r, err)
			}
		}
	}

	if err := f.SetColWidth(SheetName, "A", "A", 20); err != nil {
		return nil, fmt.Errorf("sizing columns: %w", err)
	}
	if err := f.SetColWidth(SheetName, "B", "C", 22); err != nil {
		return nil, fmt.Errorf("sizing columns: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encoding workbook: %w", err)
	}
	return buf.Bytes(), nil
}
