package core

// validate.go partitions parsed rows into valid and invalid sets against
// the user-confirmed mapping. The mapping is resolved to column indices
// once, before row iteration, so the header universe is closed by the
// time rules run. Rules are evaluated in schema order and the first
// failing rule determines the reported reason.

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ResolvedMapping is a FieldMapping resolved against a concrete header
// set: each mapped field points at a column index. Unmapped fields and
// mapped headers missing from the file resolve to -1.
type ResolvedMapping map[Field]int

// ResolveMapping resolves mapping's header names to column positions in
// headers. Header comparison is exact on the as-written header text.
// Returns an error if the mapping names a header that does not exist in
// the file.
func ResolveMapping(schema ImportSchema, mapping FieldMapping, headers HeaderSet) (ResolvedMapping, error) {
	pos := make(map[string]int, len(headers))
	for i, h := range headers {
		if _, seen := pos[h]; !seen {
			pos[h] = i
		}
	}

	resolved := make(ResolvedMapping, len(schema.Fields))
	for _, spec := range schema.Fields {
		header := mapping[spec.Field]
		if header == "" {
			resolved[spec.Field] = -1
			continue
		}
		i, ok := pos[header]
		if !ok {
			return nil, fmt.Errorf("mapped column %q not found in file", header)
		}
		resolved[spec.Field] = i
	}

	return resolved, nil
}

// RowView exposes one row's cells by target field for rule evaluation.
type RowView struct {
	row      Row
	resolved ResolvedMapping
}

// Cell returns the trimmed cell value for a field and whether the field
// is mapped to a column present in the row.
func (rv RowView) Cell(f Field) (string, bool) {
	i, ok := rv.resolved[f]
	if !ok || i < 0 || i >= len(rv.row) {
		return "", false
	}
	return strings.TrimSpace(rv.row[i]), true
}

// Partition classifies every row as valid or invalid. All rows are
// processed independently; the partition is total, deterministic for a
// fixed mapping, and order-preserving within each side.
func Partition(schema ImportSchema, rows []Row, resolved ResolvedMapping) ValidationOutcome {
	outcome := ValidationOutcome{}

	for i, row := range rows {
		rv := RowView{row: row, resolved: resolved}

		reason := ""
		for _, rule := range schema.Rules {
			if reason = rule(rv); reason != "" {
				break
			}
		}

		if reason == "" {
			outcome.Valid = append(outcome.Valid, row)
		} else {
			outcome.Invalid = append(outcome.Invalid, InvalidRow{
				Row:    row,
				Number: i + 1,
				Reason: reason,
			})
		}
	}

	return outcome
}

// RequireFields builds a rule that fails with reason when any of the
// listed fields is unmapped, missing, or empty.
func RequireFields(reason string, fields ...Field) RowRule {
	return func(rv RowView) string {
		for _, f := range fields {
			v, ok := rv.Cell(f)
			if !ok || v == "" {
				return reason
			}
		}
		return ""
	}
}

// NumericField builds a rule that fails with reason when the field is
// unmapped, empty, or does not parse as a number.
func NumericField(reason string, field Field) RowRule {
	return func(rv RowView) string {
		v, ok := rv.Cell(field)
		if !ok || v == "" {
			return reason
		}
		if !IsNumeric(v) {
			return reason
		}
		return ""
	}
}

// OptionalPattern builds a rule that fails with reason when the field is
// mapped and non-empty but does not match re. Empty or unmapped values
// pass.
func OptionalPattern(reason string, field Field, re *regexp.Regexp) RowRule {
	return func(rv RowView) string {
		v, ok := rv.Cell(field)
		if !ok || v == "" {
			return ""
		}
		if !re.MatchString(v) {
			return reason
		}
		return ""
	}
}

// IsNumeric reports whether s parses as a decimal number. Thousands
// separators are tolerated; currency symbols are not.
func IsNumeric(s string) bool {
	s = strings.ReplaceAll(s, ",", "")
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// ParseNumber parses a numeric cell, returning 0 for empty or invalid
// input. Used when projecting optional numeric fields like cost.
func ParseNumber(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
