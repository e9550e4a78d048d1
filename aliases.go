package databind

import (
	"github.com/goliatone/go-databind/pkg/record"
	"github.com/goliatone/go-databind/pkg/render"
)

// Record is the canonical record shape; aliased via the root package for
// convenience.
type Record = record.Record

// FormPair is one ordered entry of a flat form-style encoding.
type FormPair = record.FormPair

// Diagnostic describes a soft rendering condition.
type Diagnostic = render.Diagnostic

// Sanitizer cleans bound content values; *bluemonday.Policy satisfies it.
type Sanitizer = render.Sanitizer

// AssignFunc writes a bound scalar value onto an output node.
type AssignFunc = render.AssignFunc

// ParseForm decodes a query-string style encoding preserving encounter
// order.
func ParseForm(query string) []FormPair {
	return record.ParseForm(query)
}
