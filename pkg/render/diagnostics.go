package render

import "fmt"

// Kind classifies a soft rendering condition. Only configuration errors
// abort an operation; everything here is absorbed locally and reported so
// batch rendering stays best-effort.
type Kind string

const (
	// KindNoMatch: a record had no applicable structural root.
	KindNoMatch Kind = "no-match"
	// KindShapeMismatch: an array binding received a non-sequence value,
	// or a scope boundary received a non-object value.
	KindShapeMismatch Kind = "shape-mismatch"
	// KindConstraintError: a constraint expression failed to parse.
	KindConstraintError Kind = "constraint-error"
	// KindUnresolvedReference: an identifier reference had no matching
	// record in the batch.
	KindUnresolvedReference Kind = "unresolved-reference"
	// KindDepthExceeded: recursion passed the configured guard, usually
	// self-referential data.
	KindDepthExceeded Kind = "depth-exceeded"
)

// Diagnostic describes one soft condition encountered during a render.
type Diagnostic struct {
	Kind     Kind
	Property string
	Message  string
}

func (d Diagnostic) String() string {
	if d.Property == "" {
		return fmt.Sprintf("%s: %s", d.Kind, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", d.Kind, d.Property, d.Message)
}

// Sink receives diagnostics as they are emitted.
type Sink interface {
	Report(Diagnostic)
}

// Collector is a Sink that accumulates diagnostics in emission order. Use
// one per render call; it is not safe for concurrent use.
type Collector struct {
	diags []Diagnostic
}

// Report appends a diagnostic.
func (c *Collector) Report(d Diagnostic) {
	c.diags = append(c.diags, d)
}

// Diagnostics returns everything collected so far.
func (c *Collector) Diagnostics() []Diagnostic {
	return c.diags
}

// discardSink drops everything; used when no sink is configured.
type discardSink struct{}

func (discardSink) Report(Diagnostic) {}
