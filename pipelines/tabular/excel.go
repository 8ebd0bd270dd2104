// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package tabular

import (
	"bytes"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// parseXLSX reads an XLSX workbook, returning rows from the first sheet
// that holds any data rows.
func parseXLSX(content []byte) ([]Row, error) {
	workbook, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, &ErrParse{Op: "open xlsx", Err: err}
	}
	defer workbook.Close()

	for _, sheet := range workbook.GetSheetList() {
		cells, err := workbook.GetRows(sheet)
		if err != nil {
			return nil, &ErrParse{Op: "read xlsx sheet", Err: err}
		}
		if len(cells) < 2 {
			continue
		}
		if rows := rowsFromCells(cells[0], cells[1:]); len(rows) > 0 {
			return rows, nil
		}
	}

	return nil, &ErrNoData{Source: "Excel file"}
}

// parseXLS reads a legacy XLS workbook, returning rows from the first
// sheet that holds any data rows.
func parseXLS(content []byte) ([]Row, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(content), "utf-8")
	if err != nil {
		return nil, &ErrParse{Op: "open xls", Err: err}
	}

	for i := 0; i < workbook.NumSheets(); i++ {
		sheet := workbook.GetSheet(i)
		if sheet == nil || sheet.MaxRow == 0 {
			continue
		}

		header := readXLSRow(sheet.Row(0))
		var data [][]string
		for r := 1; r <= int(sheet.MaxRow); r++ {
			row := sheet.Row(r)
			if row == nil {
				continue
			}
			data = append(data, readXLSRow(row))
		}
		if len(data) == 0 {
			continue
		}
		if rows := rowsFromCells(header, data); len(rows) > 0 {
			return rows, nil
		}
	}

	return nil, &ErrNoData{Source: "Excel file"}
}

// readXLSRow copies a sheet row into a dense cell slice. Cells before
// FirstCol are blank in the source and stay "".
func readXLSRow(row *xls.Row) []string {
	if row == nil {
		return nil
	}
	cells := make([]string, row.LastCol())
	for c := row.FirstCol(); c < row.LastCol(); c++ {
		cells[c] = row.Col(c)
	}
	return cells
}
