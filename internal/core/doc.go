// Package core provides the business logic for the tabular import wizard.
//
// This package is the heart of the import service, containing all domain
// logic independent of any UI or transport layer. It can be driven by web
// handlers, CLI tools, or tests without modification.
//
// # Architecture
//
// The package is organized around the import pipeline:
//
//   - File Parsing: CSV and XLSX byte streams become an ordered header
//     set plus row records ([ParseFile]).
//   - Header Auto-Mapping: parsed headers are matched against a target
//     schema's alias table to suggest a [FieldMapping] ([AutoMap]).
//   - Row Validation: the confirmed mapping partitions rows into valid
//     and invalid sets with per-row reasons ([Partition]).
//   - Submission: the valid partition is projected onto the schema's
//     field names and posted to the backend import endpoint as one batch.
//
// # Schema Registry
//
// Import schemas are registered at init time using [RegisterSchema]. Each
// [ImportSchema] carries the target fields, their header aliases, and the
// ordered row rules used during validation:
//
//	core.RegisterSchema(core.ImportSchema{
//	    Key:    "inventory",
//	    Label:  "Inventory",
//	    Fields: []core.FieldSpec{...},
//	    Rules:  []core.RowRule{...},
//	})
//
// # Wizard Sessions
//
// A [Service] owns one [Wizard] per session, keyed by UUID. The wizard is
// an explicit state machine:
//
//	Upload → Mapping → Review → Importing → (Done | Failed)
//
// All transitions are caller-triggered; there is no automatic retry. A
// [Notifier] observes terminal outcomes so presentation concerns stay out
// of the state machine itself.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - FILE001-FILE006: File errors (type, size, encoding, parse)
//   - MAP001-MAP002: Mapping errors
//   - VAL001-VAL002: Validation errors
//   - SUB001-SUB004: Submission errors
//   - SES001-SES002: Session errors
package core
