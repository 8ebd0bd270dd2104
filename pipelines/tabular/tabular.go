// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package tabular parses uploaded spreadsheet bytes into rows, each row a
// mapping from column header to cell value. Supported formats are CSV
// (UTF-8, UTF-8 with BOM, GB18030, GBK), XLSX, and legacy XLS.
package tabular

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Row maps a column header to a cell value. Headers are used exactly as
// they appear in the source; cells missing from short rows are "".
type Row = map[string]string

// ErrUnsupportedFormat is returned when a filename is neither a
// recognized spreadsheet nor handled upstream as an archive.
type ErrUnsupportedFormat struct {
	Filename string
}

func (e *ErrUnsupportedFormat) Error() string {
	return fmt.Sprintf("unsupported file type %q: only .xlsx/.xls/.csv files are supported", e.Filename)
}

// ErrParse is returned when recognized bytes cannot be read as a table.
type ErrParse struct {
	Op  string // open, read, decode
	Err error
}

func (e *ErrParse) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Op, e.Err)
}

func (e *ErrParse) Unwrap() error {
	return e.Err
}

// ErrNoData is returned when a file parses cleanly but holds no data rows.
type ErrNoData struct {
	Source string
}

func (e *ErrNoData) Error() string {
	return fmt.Sprintf("%s contains no data rows", e.Source)
}

// Parse converts spreadsheet bytes into rows, dispatching on the file
// extension of filename.
func Parse(filename string, content []byte) ([]Row, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return parseCSV(content)
	case ".xlsx":
		return parseXLSX(content)
	case ".xls":
		return parseXLS(content)
	default:
		return nil, &ErrUnsupportedFormat{Filename: filename}
	}
}

// rowsFromCells converts a header row plus data rows into Row maps.
// Columns with a blank header are dropped; short rows pad with "".
func rowsFromCells(header []string, data [][]string) []Row {
	rows := make([]Row, 0, len(data))
	for _, cells := range data {
		row := make(Row, len(header))
		for i, name := range header {
			if name == "" {
				continue
			}
			if i < len(cells) {
				row[name] = cells[i]
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows
}
