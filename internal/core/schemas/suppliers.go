package schemas

import (
	"regexp"

	"github.com/arvo-app/importer/internal/core"
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Suppliers covers vendor contact lists. Email and phone are optional;
// only a malformed email fails a row.
func init() {
	core.RegisterSchema(core.ImportSchema{
		Key:   "suppliers",
		Label: "Suppliers",
		Fields: []core.FieldSpec{
			{
				Field:    "name",
				Label:    "Supplier Name",
				Required: true,
				Aliases:  []string{"supplier", "vendor", "company", "name"},
			},
			{
				Field:   "email",
				Label:   "Email",
				Aliases: []string{"email", "e-mail", "contact"},
			},
			{
				Field:   "phone",
				Label:   "Phone",
				Aliases: []string{"phone", "tel", "mobile"},
			},
			{
				Field:   "terms",
				Label:   "Payment Terms",
				Aliases: []string{"terms", "payment"},
			},
		},
		Rules: []core.RowRule{
			core.RequireFields("Missing Supplier Name", "name"),
			core.OptionalPattern("Invalid email address", "email", emailRe),
		},
	})
}
