package core

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// ============================================================================
// Format Detection Tests
// ============================================================================

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name        string
		fileName    string
		contentType string
		want        Format
		wantErr     bool
	}{
		{
			name:     "csv extension",
			fileName: "products.csv",
			want:     FormatCSV,
		},
		{
			name:     "csv extension uppercase",
			fileName: "PRODUCTS.CSV",
			want:     FormatCSV,
		},
		{
			name:     "xlsx extension",
			fileName: "products.xlsx",
			want:     FormatWorkbook,
		},
		{
			name:     "xls extension",
			fileName: "legacy.xls",
			want:     FormatWorkbook,
		},
		{
			name:        "extension wins over mime",
			fileName:    "products.csv",
			contentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			want:        FormatCSV,
		},
		{
			name:        "csv mime fallback",
			fileName:    "upload",
			contentType: "text/csv",
			want:        FormatCSV,
		},
		{
			name:        "csv mime with charset parameter",
			fileName:    "upload",
			contentType: "text/csv; charset=utf-8",
			want:        FormatCSV,
		},
		{
			name:        "xlsx mime fallback",
			fileName:    "upload",
			contentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			want:        FormatWorkbook,
		},
		{
			name:     "unsupported extension",
			fileName: "products.pdf",
			wantErr:  true,
		},
		{
			name:        "unsupported mime",
			fileName:    "upload",
			contentType: "application/json",
			wantErr:     true,
		},
		{
			name:     "no extension no mime",
			fileName: "upload",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.fileName, tt.contentType)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedType) {
					t.Errorf("got err %v, want ErrUnsupportedType", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got format %v, want %v", got, tt.want)
			}
		})
	}
}

// ============================================================================
// CSV Parsing Tests
// ============================================================================

func TestParseFile_CSV(t *testing.T) {
	t.Run("headers and rows in file order", func(t *testing.T) {
		input := "SKU,Product Name,Qty\nA1,Widget,10\nB2,Gadget,5\n"
		parsed, err := ParseFile("products.csv", "", strings.NewReader(input), 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		wantHeaders := []string{"SKU", "Product Name", "Qty"}
		if len(parsed.Headers) != len(wantHeaders) {
			t.Fatalf("got %d headers, want %d", len(parsed.Headers), len(wantHeaders))
		}
		for i, h := range wantHeaders {
			if parsed.Headers[i] != h {
				t.Errorf("header[%d] = %q, want %q", i, parsed.Headers[i], h)
			}
		}

		if parsed.RowCount() != 2 {
			t.Fatalf("got %d rows, want 2", parsed.RowCount())
		}
		if parsed.Rows[0][0] != "A1" || parsed.Rows[1][0] != "B2" {
			t.Errorf("row order not preserved: %v", parsed.Rows)
		}
	})

	t.Run("empty lines skipped", func(t *testing.T) {
		input := "\nSKU,Name\n\nA1,Widget\n,\nB2,Gadget\n\n"
		parsed, err := ParseFile("products.csv", "", strings.NewReader(input), 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if parsed.Headers[0] != "SKU" {
			t.Errorf("header = %q, want SKU", parsed.Headers[0])
		}
		if parsed.RowCount() != 2 {
			t.Errorf("got %d rows, want 2", parsed.RowCount())
		}
	})

	t.Run("BOM stripped from first header", func(t *testing.T) {
		input := "\xEF\xBB\xBFSKU,Name\nA1,Widget\n"
		parsed, err := ParseFile("products.csv", "", strings.NewReader(input), 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if parsed.Headers[0] != "SKU" {
			t.Errorf("header = %q, want SKU", parsed.Headers[0])
		}
	})

	t.Run("short rows padded to header width", func(t *testing.T) {
		input := "SKU,Name,Qty\nA1,Widget\n"
		parsed, err := ParseFile("products.csv", "", strings.NewReader(input), 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(parsed.Rows[0]) != 3 {
			t.Fatalf("got row width %d, want 3", len(parsed.Rows[0]))
		}
		if parsed.Rows[0][2] != "" {
			t.Errorf("padded cell = %q, want empty", parsed.Rows[0][2])
		}
	})

	t.Run("quoted cells with commas", func(t *testing.T) {
		input := "SKU,Name\nA1,\"Widget, large\"\n"
		parsed, err := ParseFile("products.csv", "", strings.NewReader(input), 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if parsed.Rows[0][1] != "Widget, large" {
			t.Errorf("cell = %q", parsed.Rows[0][1])
		}
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := ParseFile("products.csv", "", strings.NewReader(""), 0)
		if !errors.Is(err, ErrEmptyFile) {
			t.Errorf("got %v, want ErrEmptyFile", err)
		}
	})

	t.Run("header only yields zero rows", func(t *testing.T) {
		parsed, err := ParseFile("products.csv", "", strings.NewReader("SKU,Name\n"), 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if parsed.RowCount() != 0 {
			t.Errorf("got %d rows, want 0", parsed.RowCount())
		}
	})

	t.Run("file over size limit", func(t *testing.T) {
		input := "SKU,Name\nA1,Widget\nB2,Gadget\n"
		_, err := ParseFile("products.csv", "", strings.NewReader(input), 10)
		if !errors.Is(err, ErrFileTooLarge) {
			t.Errorf("got %v, want ErrFileTooLarge", err)
		}
	})

	t.Run("unsupported type", func(t *testing.T) {
		_, err := ParseFile("products.pdf", "application/pdf", strings.NewReader("x"), 0)
		if !errors.Is(err, ErrUnsupportedType) {
			t.Errorf("got %v, want ErrUnsupportedType", err)
		}
	})
}

// ============================================================================
// Workbook Parsing Tests
// ============================================================================

// buildWorkbook creates an in-memory XLSX with the given rows on the
// default sheet.
func buildWorkbook(t *testing.T, rows [][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func TestParseFile_Workbook(t *testing.T) {
	t.Run("first sheet headers and rows", func(t *testing.T) {
		data := buildWorkbook(t, [][]any{
			{"Part #", "Description", "On Hand"},
			{"A1", "Widget", 10},
			{"B2", "Gadget", 5},
		})

		parsed, err := ParseFile("products.xlsx", "", bytes.NewReader(data), 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if parsed.SheetName == "" {
			t.Error("sheet name not recorded")
		}
		if parsed.Headers[0] != "Part #" {
			t.Errorf("header = %q, want Part #", parsed.Headers[0])
		}
		if parsed.RowCount() != 2 {
			t.Fatalf("got %d rows, want 2", parsed.RowCount())
		}
		if parsed.Rows[0][2] != "10" {
			t.Errorf("numeric cell = %q, want 10", parsed.Rows[0][2])
		}
	})

	t.Run("empty workbook", func(t *testing.T) {
		data := buildWorkbook(t, nil)
		_, err := ParseFile("empty.xlsx", "", bytes.NewReader(data), 0)
		if !errors.Is(err, ErrEmptyFile) {
			t.Errorf("got %v, want ErrEmptyFile", err)
		}
	})

	t.Run("not a workbook", func(t *testing.T) {
		_, err := ParseFile("fake.xlsx", "", strings.NewReader("not a zip"), 0)
		if err == nil {
			t.Fatal("expected error for invalid workbook")
		}
		if !strings.Contains(err.Error(), "parse spreadsheet") {
			t.Errorf("got %v, want parse spreadsheet error", err)
		}
	})
}

// ============================================================================
// Helper Tests
// ============================================================================

func TestIsEmptyRow(t *testing.T) {
	tests := []struct {
		name   string
		record []string
		want   bool
	}{
		{"no cells", []string{}, true},
		{"blank cells", []string{"", "  ", "\t"}, true},
		{"one value", []string{"", "x", ""}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isEmptyRow(tt.record); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPadRow(t *testing.T) {
	row := padRow([]string{"a"}, 3)
	if len(row) != 3 {
		t.Fatalf("got width %d, want 3", len(row))
	}

	// Extra trailing cells are kept
	row = padRow([]string{"a", "b", "c", "d"}, 3)
	if len(row) != 4 {
		t.Errorf("got width %d, want 4", len(row))
	}
}
