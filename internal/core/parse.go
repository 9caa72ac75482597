package core

// parse.go turns an uploaded CSV or spreadsheet byte stream into a
// ParsedFile: the ordered header set plus all data rows. Fully empty
// lines are skipped and short rows are padded to the header width so
// downstream code can index cells positionally.

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sentinel errors for the input-rejection taxonomy. MapError translates
// them to user-facing messages with support codes.
var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrFileTooLarge    = errors.New("file too large")
	ErrEmptyFile       = errors.New("empty file")
	ErrNoDataRows      = errors.New("no data rows after header")
)

// Format identifies how an uploaded file will be parsed.
type Format int

const (
	FormatCSV Format = iota
	FormatWorkbook
)

// Accepted spreadsheet MIME types, as declared by browsers for .xlsx/.xls.
var workbookMIMETypes = map[string]bool{
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"application/vnd.ms-excel": true,
}

// DetectFormat decides how to parse a file from its name and declared
// MIME type. The extension wins when present; the MIME type is a
// fallback for files uploaded without one.
func DetectFormat(fileName, contentType string) (Format, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx", ".xls":
		return FormatWorkbook, nil
	}

	mime := contentType
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	mime = strings.TrimSpace(strings.ToLower(mime))

	switch {
	case mime == "text/csv":
		return FormatCSV, nil
	case workbookMIMETypes[mime]:
		return FormatWorkbook, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnsupportedType, fileName)
}

// ParseFile parses an uploaded file into headers and rows. maxSize
// bounds how many bytes are read (0 disables the check); exceeding it
// returns ErrFileTooLarge.
func ParseFile(fileName, contentType string, r io.Reader, maxSize int64) (*ParsedFile, error) {
	format, err := DetectFormat(fileName, contentType)
	if err != nil {
		return nil, err
	}

	if maxSize > 0 {
		r = newLimitReader(r, maxSize)
	}

	switch format {
	case FormatWorkbook:
		return parseWorkbook(r)
	default:
		return parseCSV(r)
	}
}

// parseCSV reads a comma-separated stream with a header row. The input
// is sanitized (BOM, invalid UTF-8) before parsing. Rows may be ragged;
// they are padded to the header width.
func parseCSV(r io.Reader) (*ParsedFile, error) {
	cr := csv.NewReader(newSanitizeReader(r))
	cr.FieldsPerRecord = -1 // tolerate ragged rows

	parsed := &ParsedFile{}
	haveHeader := false

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if errors.Is(err, ErrFileTooLarge) {
				return nil, ErrFileTooLarge
			}
			return nil, fmt.Errorf("parse CSV: %w", err)
		}

		if isEmptyRow(record) {
			continue
		}

		if !haveHeader {
			parsed.Headers = append(HeaderSet{}, record...)
			haveHeader = true
			continue
		}

		parsed.Rows = append(parsed.Rows, padRow(record, len(parsed.Headers)))
	}

	if !haveHeader {
		return nil, ErrEmptyFile
	}

	return parsed, nil
}

// parseWorkbook reads the first sheet of an XLSX workbook. The header is
// derived from the first non-empty row. Legacy binary .xls files are not
// readable here and surface as a parsing error.
func parseWorkbook(r io.Reader) (*ParsedFile, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		if errors.Is(err, ErrFileTooLarge) {
			return nil, ErrFileTooLarge
		}
		return nil, fmt.Errorf("parse spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("parse spreadsheet: %w", err)
	}

	parsed := &ParsedFile{SheetName: sheets[0]}
	for _, record := range rows {
		if isEmptyRow(record) {
			continue
		}
		if parsed.Headers == nil {
			parsed.Headers = append(HeaderSet{}, record...)
			continue
		}
		parsed.Rows = append(parsed.Rows, padRow(record, len(parsed.Headers)))
	}

	if parsed.Headers == nil {
		return nil, ErrEmptyFile
	}

	return parsed, nil
}

// isEmptyRow reports whether every cell is blank after trimming.
func isEmptyRow(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// padRow extends a short record with empty cells so it matches the
// header width. Extra trailing cells are kept as-is.
func padRow(record []string, width int) Row {
	row := Row(record)
	for len(row) < width {
		row = append(row, "")
	}
	return row
}
