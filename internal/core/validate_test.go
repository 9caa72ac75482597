package core

import (
	"strings"
	"testing"
)

// ============================================================================
// ResolveMapping Tests
// ============================================================================

func TestResolveMapping(t *testing.T) {
	schema := testSchema()
	headers := HeaderSet{"SKU", "Product Name", "Qty"}

	t.Run("maps fields to column indices", func(t *testing.T) {
		resolved, err := ResolveMapping(schema, FieldMapping{
			"sku": "SKU", "name": "Product Name", "quantity": "Qty",
		}, headers)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := ResolvedMapping{"sku": 0, "name": 1, "quantity": 2, "cost": -1}
		for f, i := range want {
			if resolved[f] != i {
				t.Errorf("resolved[%s] = %d, want %d", f, resolved[f], i)
			}
		}
	})

	t.Run("unmapped field resolves to -1", func(t *testing.T) {
		resolved, err := ResolveMapping(schema, FieldMapping{"sku": "SKU"}, headers)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resolved["name"] != -1 {
			t.Errorf("resolved[name] = %d, want -1", resolved["name"])
		}
	})

	t.Run("unknown header rejected", func(t *testing.T) {
		_, err := ResolveMapping(schema, FieldMapping{"sku": "Nonexistent"}, headers)
		if err == nil {
			t.Fatal("expected error for unknown header")
		}
		if !strings.Contains(err.Error(), "not found in file") {
			t.Errorf("got %v, want not-found error", err)
		}
	})

	t.Run("duplicate header uses first occurrence", func(t *testing.T) {
		resolved, err := ResolveMapping(schema, FieldMapping{"sku": "SKU"},
			HeaderSet{"SKU", "Name", "SKU"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resolved["sku"] != 0 {
			t.Errorf("resolved[sku] = %d, want 0", resolved["sku"])
		}
	})
}

// ============================================================================
// Partition Tests
// ============================================================================

func TestPartition(t *testing.T) {
	schema := testSchema()
	headers := HeaderSet{"SKU", "Product Name", "Qty"}
	resolved, err := ResolveMapping(schema, FieldMapping{
		"sku": "SKU", "name": "Product Name", "quantity": "Qty",
	}, headers)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	tests := []struct {
		name       string
		row        Row
		wantValid  bool
		wantReason string
	}{
		{
			name:      "complete row is valid",
			row:       Row{"A1", "Widget", "10"},
			wantValid: true,
		},
		{
			name:       "empty sku",
			row:        Row{"", "Widget", "10"},
			wantReason: "Missing SKU or Product Name",
		},
		{
			name:       "empty name",
			row:        Row{"A1", "", "10"},
			wantReason: "Missing SKU or Product Name",
		},
		{
			name:       "whitespace-only sku",
			row:        Row{"   ", "Widget", "10"},
			wantReason: "Missing SKU or Product Name",
		},
		{
			name:       "non-numeric quantity",
			row:        Row{"A1", "Widget", "abc"},
			wantReason: "Quantity must be a number",
		},
		{
			name:       "empty quantity",
			row:        Row{"A1", "Widget", ""},
			wantReason: "Quantity must be a number",
		},
		{
			name:       "missing sku reported before bad quantity",
			row:        Row{"", "Widget", "abc"},
			wantReason: "Missing SKU or Product Name",
		},
		{
			name:      "decimal quantity is valid",
			row:       Row{"A1", "Widget", "10.5"},
			wantValid: true,
		},
		{
			name:      "thousands separator tolerated",
			row:       Row{"A1", "Widget", "1,250"},
			wantValid: true,
		},
		{
			name:      "negative quantity parses",
			row:       Row{"A1", "Widget", "-3"},
			wantValid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := Partition(schema, []Row{tt.row}, resolved)

			if tt.wantValid {
				if len(outcome.Valid) != 1 {
					t.Fatalf("row classified invalid: %v", outcome.Invalid)
				}
				return
			}

			if len(outcome.Invalid) != 1 {
				t.Fatalf("row classified valid")
			}
			if got := outcome.Invalid[0].Reason; got != tt.wantReason {
				t.Errorf("reason = %q, want %q", got, tt.wantReason)
			}
		})
	}
}

// TestPartition_TotalAndOrdered verifies every row lands in exactly one
// partition and file order is preserved within each side.
func TestPartition_TotalAndOrdered(t *testing.T) {
	schema := testSchema()
	headers := HeaderSet{"SKU", "Product Name", "Qty"}
	resolved, err := ResolveMapping(schema, FieldMapping{
		"sku": "SKU", "name": "Product Name", "quantity": "Qty",
	}, headers)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	rows := []Row{
		{"A1", "Widget", "10"},
		{"", "Broken", "5"},
		{"B2", "Gadget", "3"},
		{"C3", "Doohickey", "abc"},
		{"D4", "Gizmo", "7"},
	}

	outcome := Partition(schema, rows, resolved)

	if outcome.Total() != len(rows) {
		t.Fatalf("total = %d, want %d", outcome.Total(), len(rows))
	}
	if len(outcome.Valid) != 3 || len(outcome.Invalid) != 2 {
		t.Fatalf("split = %d/%d, want 3/2", len(outcome.Valid), len(outcome.Invalid))
	}

	// Valid side keeps file order
	wantValid := []string{"A1", "B2", "D4"}
	for i, want := range wantValid {
		if outcome.Valid[i][0] != want {
			t.Errorf("valid[%d] = %q, want %q", i, outcome.Valid[i][0], want)
		}
	}

	// Invalid side keeps file order with 1-based data row numbers
	if outcome.Invalid[0].Number != 2 || outcome.Invalid[1].Number != 4 {
		t.Errorf("invalid row numbers = %d, %d; want 2, 4",
			outcome.Invalid[0].Number, outcome.Invalid[1].Number)
	}
}

// TestPartition_UnmappedRequiredField verifies rows cannot pass when a
// required field has no column.
func TestPartition_UnmappedRequiredField(t *testing.T) {
	schema := testSchema()
	headers := HeaderSet{"SKU", "Product Name"}
	resolved, err := ResolveMapping(schema, FieldMapping{
		"sku": "SKU", "name": "Product Name",
	}, headers)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	outcome := Partition(schema, []Row{{"A1", "Widget"}}, resolved)
	if len(outcome.Invalid) != 1 {
		t.Fatal("row with unmapped quantity classified valid")
	}
	if outcome.Invalid[0].Reason != "Quantity must be a number" {
		t.Errorf("reason = %q", outcome.Invalid[0].Reason)
	}
}

// ============================================================================
// Numeric Helper Tests
// ============================================================================

func TestIsNumeric(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"10", true},
		{"10.5", true},
		{"-3", true},
		{"0", true},
		{"1,250", true},
		{"1,250.75", true},
		{"abc", false},
		{"", false},
		{"10 units", false},
		{"$5.00", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := IsNumeric(tt.input); got != tt.want {
				t.Errorf("IsNumeric(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"10", 10},
		{" 10.5 ", 10.5},
		{"1,250", 1250},
		{"", 0},
		{"abc", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseNumber(tt.input); got != tt.want {
				t.Errorf("ParseNumber(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
