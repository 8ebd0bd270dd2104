// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeText converts raw CSV bytes to a UTF-8 string. UTF-8 (with or
// without BOM) is tried first, then GB18030, then GBK, matching the
// encodings fault-report exports are seen in.
func decodeText(content []byte) (string, error) {
	content = bytes.TrimPrefix(content, utf8BOM)
	if utf8.Valid(content) {
		return string(content), nil
	}
	for _, enc := range []encoding.Encoding{simplifiedchinese.GB18030, simplifiedchinese.GBK} {
		decoded, err := enc.NewDecoder().Bytes(content)
		if err == nil && utf8.Valid(decoded) {
			return string(decoded), nil
		}
	}
	return "", fmt.Errorf("content is not UTF-8, GB18030, or GBK")
}

func parseCSV(content []byte) ([]Row, error) {
	text, err := decodeText(content)
	if err != nil {
		return nil, &ErrParse{Op: "decode csv", Err: err}
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1 // rows may be shorter than the header

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &ErrNoData{Source: "CSV file"}
	}
	if err != nil {
		return nil, &ErrParse{Op: "read csv header", Err: err}
	}

	var data [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ErrParse{Op: "read csv", Err: err}
		}
		data = append(data, record)
	}
	if len(data) == 0 {
		return nil, &ErrNoData{Source: "CSV file"}
	}

	return rowsFromCells(header, data), nil
}
