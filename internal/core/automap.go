package core

// automap.go suggests a FieldMapping from the parsed headers. The
// suggestion is advisory: the user can override every field before
// validation runs.

import (
	"fmt"
	"strings"
)

// MappingSuggestion is the auto-mapper output: the suggested mapping
// plus advisory warnings for required fields that found no header.
type MappingSuggestion struct {
	Mapping  FieldMapping `json:"mapping"`
	Warnings []string     `json:"warnings,omitempty"`
}

// AutoMap heuristically matches source headers to the schema's target
// fields. For each field, the first header (in original order) whose
// lowercased, trimmed text contains any of the field's aliases wins;
// fields with no matching header are left empty. Fields are matched
// independently, so the same header can satisfy more than one field.
//
// The result is deterministic for a given header set and schema.
func AutoMap(schema ImportSchema, headers HeaderSet) MappingSuggestion {
	mapping := make(FieldMapping, len(schema.Fields))

	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = strings.ToLower(strings.TrimSpace(h))
	}

	for _, spec := range schema.Fields {
		mapping[spec.Field] = matchHeader(spec, headers, normalized)
	}

	var warnings []string
	for _, f := range schema.RequiredFields() {
		if mapping[f] == "" {
			warnings = append(warnings, fmt.Sprintf("no column matched required field %q", f))
		}
	}

	return MappingSuggestion{Mapping: mapping, Warnings: warnings}
}

// matchHeader returns the first header containing any alias of the
// field, or "" when nothing matches. The field's own label counts as an
// alias.
func matchHeader(spec FieldSpec, headers HeaderSet, normalized []string) string {
	aliases := make([]string, 0, len(spec.Aliases)+2)
	aliases = append(aliases, spec.Aliases...)
	aliases = append(aliases, strings.ToLower(string(spec.Field)), strings.ToLower(spec.Label))

	for i, h := range normalized {
		if h == "" {
			continue
		}
		for _, alias := range aliases {
			if alias != "" && strings.Contains(h, alias) {
				return headers[i]
			}
		}
	}
	return ""
}
