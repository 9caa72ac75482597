package core

import (
	"fmt"
	"sort"
	"sync"
)

// FieldSpec describes one target field of an import schema.
type FieldSpec struct {
	Field    Field    // Target field key, used in the wire payload
	Label    string   // Display name: "Product Name"
	Required bool     // Field should be mapped for rows to validate
	Numeric  bool     // Values must parse as numbers
	Aliases  []string // Lowercased substrings matched against source headers
}

// RowRule classifies a row against a schema rule. It returns the
// user-facing reason when the row fails, or "" when it passes. Rules run
// in schema order and the first failure wins.
type RowRule func(rv RowView) string

// ImportSchema defines everything needed to import one kind of file:
// the target fields, their header aliases, and the ordered validation
// rules.
type ImportSchema struct {
	Key    string // Unique identifier: "inventory"
	Label  string // Display name: "Inventory"
	Fields []FieldSpec
	Rules  []RowRule
}

// FieldKeys returns the schema's field keys in declaration order.
func (s ImportSchema) FieldKeys() []Field {
	keys := make([]Field, len(s.Fields))
	for i, f := range s.Fields {
		keys[i] = f.Field
	}
	return keys
}

// RequiredFields returns the keys of all required fields in declaration order.
func (s ImportSchema) RequiredFields() []Field {
	var keys []Field
	for _, f := range s.Fields {
		if f.Required {
			keys = append(keys, f.Field)
		}
	}
	return keys
}

var (
	schemaRegistry   = make(map[string]ImportSchema)
	schemaRegistryMu sync.RWMutex
)

// RegisterSchema adds an import schema to the registry.
// Panics if a schema with the same key is already registered.
func RegisterSchema(s ImportSchema) {
	schemaRegistryMu.Lock()
	defer schemaRegistryMu.Unlock()

	if _, exists := schemaRegistry[s.Key]; exists {
		panic(fmt.Sprintf("schema already registered: %s", s.Key))
	}

	schemaRegistry[s.Key] = s
}

// SchemaByKey returns a registered schema.
// Returns false if not found.
func SchemaByKey(key string) (ImportSchema, bool) {
	schemaRegistryMu.RLock()
	defer schemaRegistryMu.RUnlock()

	s, ok := schemaRegistry[key]
	return s, ok
}

// Schemas returns all registered schemas, sorted by key for consistent
// ordering.
func Schemas() []ImportSchema {
	schemaRegistryMu.RLock()
	defer schemaRegistryMu.RUnlock()

	result := make([]ImportSchema, 0, len(schemaRegistry))
	for _, s := range schemaRegistry {
		result = append(result, s)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Key < result[j].Key
	})

	return result
}

// SchemaCount returns the number of registered schemas.
func SchemaCount() int {
	schemaRegistryMu.RLock()
	defer schemaRegistryMu.RUnlock()
	return len(schemaRegistry)
}

// ClearSchemas removes all registered schemas.
// Primarily useful for testing.
func ClearSchemas() {
	schemaRegistryMu.Lock()
	defer schemaRegistryMu.Unlock()
	schemaRegistry = make(map[string]ImportSchema)
}
