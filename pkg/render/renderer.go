// Package render walks a cached structural description in lock-step with a
// record and produces output nodes: cloning binding points, expanding
// arrays, fanning repeatable filter patterns out over the batch, and
// substituting attribute placeholders. All output structure derives from
// the structural tree; the template itself is never mutated.
package render

import (
	"regexp"

	"golang.org/x/net/html"

	"github.com/goliatone/go-databind/pkg/constraint"
	"github.com/goliatone/go-databind/pkg/dom"
	"github.com/goliatone/go-databind/pkg/record"
	"github.com/goliatone/go-databind/pkg/structure"
)

// DefaultMaxDepth bounds the render recursion. Self-referential batches
// (a record whose references lead back into an ancestor render) trip the
// guard and surface as a depth-exceeded diagnostic rather than unbounded
// recursion.
const DefaultMaxDepth = 64

// Sanitizer cleans record values before they are written as node content.
// *bluemonday.Policy satisfies it.
type Sanitizer interface {
	Sanitize(string) string
}

// Context carries per-call render state. It is built fresh for every call;
// the renderer keeps no batch state between calls.
type Context struct {
	// Root is the record selected for the current top-level render.
	Root record.Record
	// Current is the record in scope at the current recursion depth.
	Current record.Record
	// All is the full batch, used for reference resolution and filter
	// fan-out, in input order.
	All []record.Record
	// SourceBase is the base location the records were extracted from,
	// when they came from an external document.
	SourceBase string
	// TargetBase is the base location of the tree being rendered into,
	// used when SourceBase is empty.
	TargetBase string
}

func (c Context) base() string {
	if c.SourceBase != "" {
		return c.SourceBase
	}
	return c.TargetBase
}

// Option customises a Renderer.
type Option func(*Renderer)

// WithSink routes soft diagnostics to the given sink.
func WithSink(sink Sink) Option {
	return func(r *Renderer) {
		if sink != nil {
			r.sink = sink
		}
	}
}

// WithSanitizer runs bound content values through the given sanitizer.
func WithSanitizer(s Sanitizer) Option {
	return func(r *Renderer) {
		r.sanitizer = s
	}
}

// WithMaxDepth overrides the recursion guard.
func WithMaxDepth(depth int) Option {
	return func(r *Renderer) {
		if depth > 0 {
			r.maxDepth = depth
		}
	}
}

// WithAssigners replaces the leaf-value assignment table.
func WithAssigners(a *Assigners) Option {
	return func(r *Renderer) {
		if a != nil {
			r.assigners = a
		}
	}
}

// Renderer is the recursive binding core. A Renderer is stateless across
// calls and safe for concurrent use as long as its sink is.
type Renderer struct {
	assigners *Assigners
	sanitizer Sanitizer
	maxDepth  int
	sink      Sink
}

// New constructs a Renderer with the default assignment table and
// recursion guard.
func New(options ...Option) *Renderer {
	r := &Renderer{
		assigners: NewAssigners(),
		maxDepth:  DefaultMaxDepth,
		sink:      discardSink{},
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Assigners exposes the assignment table so callers can register
// additional element kinds.
func (r *Renderer) Assigners() *Assigners {
	return r.assigners
}

// Render binds one record against a structural root. The second return is
// false when the node was omitted entirely (failed constraint at the root,
// or depth guard).
func (r *Renderer) Render(root *structure.Node, rec record.Record, ctx Context) (*html.Node, bool) {
	nodes := r.RenderAll(root, rec, ctx)
	if len(nodes) == 0 {
		return nil, false
	}
	return nodes[0], true
}

// RenderAll binds one record against a structural root and returns every
// produced node: an array expansion or filter fan-out at the root yields
// several siblings.
func (r *Renderer) RenderAll(root *structure.Node, rec record.Record, ctx Context) []*html.Node {
	if root == nil {
		return nil
	}
	if ctx.Root == nil {
		ctx.Root = rec
	}
	ctx.Current = rec
	return r.renderNode(root, rec, ctx, 0)
}

// RenderBatch renders every record against its selected root, in input
// order. Records with no applicable root are skipped with a diagnostic and
// elided from the output.
func (r *Renderer) RenderBatch(roots []*structure.Node, records []record.Record, ctx Context) []*html.Node {
	out := make([]*html.Node, 0, len(records))
	if ctx.All == nil {
		ctx.All = records
	}
	for _, rec := range records {
		root, ok := SelectRoot(rec, roots)
		if !ok {
			r.report(KindNoMatch, "", "record has no applicable structural root")
			continue
		}
		out = append(out, r.RenderAll(root, rec, ctx)...)
	}
	return out
}

func (r *Renderer) report(kind Kind, property, message string) {
	r.sink.Report(Diagnostic{Kind: kind, Property: property, Message: message})
}

// renderNode processes one structural node and returns zero or more output
// nodes: zero when gated out, several for array expansion or filter
// fan-out, one otherwise.
func (r *Renderer) renderNode(s *structure.Node, rec record.Record, ctx Context, depth int) []*html.Node {
	if depth > r.maxDepth {
		r.report(KindDepthExceeded, s.BindingProperty, "render recursion exceeded the depth guard")
		return nil
	}

	// A scope filter makes the node a repeatable pattern over the batch:
	// one clone per record whose filtered property references the current
	// record's identifier, in batch order.
	if s.ScopeFilterProperty != "" {
		return r.renderFilter(s, rec, ctx, depth)
	}

	if s.ConstraintExpression != "" {
		result, err := constraint.Evaluate(s.ConstraintExpression, constraint.Context{
			Record:  rec,
			ScopeID: rec.ID(),
			All:     ctx.All,
		})
		if err != nil {
			r.report(KindConstraintError, s.BindingProperty, err.Error())
			return nil
		}
		if result.Unresolved {
			r.report(KindUnresolvedReference, s.BindingProperty, "constraint reference did not resolve")
			return nil
		}
		if !result.OK {
			return nil
		}
		if result.Replacement != nil {
			rec = result.Replacement
		}
	}

	if s.IsArrayBinding {
		return r.renderArray(s, rec, ctx, depth)
	}
	return []*html.Node{r.renderSingle(s, rec, ctx, depth)}
}

// renderFilter fans a filter-pattern node out over the batch.
func (r *Renderer) renderFilter(s *structure.Node, rec record.Record, ctx Context, depth int) []*html.Node {
	scopeID := rec.ID()
	if scopeID == "" {
		return nil
	}
	var out []*html.Node
	for _, candidate := range ctx.All {
		if !constraint.MatchesFilter(candidate, s.ScopeFilterProperty, scopeID) {
			continue
		}
		if s.ConstraintExpression != "" {
			result, err := constraint.Evaluate(s.ConstraintExpression, constraint.Context{
				Record:  candidate,
				ScopeID: scopeID,
				All:     ctx.All,
			})
			if err != nil {
				r.report(KindConstraintError, s.ScopeFilterProperty, err.Error())
				continue
			}
			if !result.OK {
				continue
			}
		}
		next := ctx
		next.Current = candidate
		out = append(out, r.renderSingle(s, candidate, next, depth))
	}
	return out
}

// renderArray replaces an array-binding node with one clone per sequence
// element. Object elements descend into children; scalar elements take the
// leaf-value rule. The array marker is stripped from the binding name on
// output.
func (r *Renderer) renderArray(s *structure.Node, rec record.Record, ctx Context, depth int) []*html.Node {
	value, ok := rec.Get(s.BindingProperty)
	if !ok {
		return nil
	}
	seq, isSeq := value.([]any)
	if !isSeq {
		r.report(KindShapeMismatch, s.BindingProperty, "array binding received a non-sequence value")
		return nil
	}

	out := make([]*html.Node, 0, len(seq))
	for _, element := range seq {
		var clone *html.Node
		if nested, isRecord := element.(record.Record); isRecord {
			next := ctx
			next.Current = nested
			clone = r.renderShell(s, nested, next, depth, true)
			r.substituteAttrs(clone, s, nested)
			r.attachItemID(clone, s, nested, ctx)
		} else {
			clone = r.renderShell(s, rec, ctx, depth, false)
			r.substituteAttrs(clone, s, rec)
			r.assignValue(clone, element)
		}
		dom.SetAttr(clone, dom.AttrProp, s.BindingProperty)
		out = append(out, clone)
	}
	return out
}

// renderSingle produces exactly one output node for a non-repeating
// structural node.
func (r *Renderer) renderSingle(s *structure.Node, rec record.Record, ctx Context, depth int) *html.Node {
	active := rec
	var out *html.Node

	switch {
	case s.BindingProperty == "":
		// Unbound nodes propagate the active record downward.
		out = r.renderShell(s, rec, ctx, depth, true)
	default:
		value, ok := rec.Get(s.BindingProperty)
		if !ok {
			// Missing property: binding attribute stays, value unset.
			out = r.renderShell(s, rec, ctx, depth, true)
			break
		}
		switch v := value.(type) {
		case record.Record:
			if !s.IsScopeBoundary {
				r.report(KindShapeMismatch, s.BindingProperty, "object value for a non-scope binding")
				out = r.renderShell(s, rec, ctx, depth, false)
				break
			}
			active = v
			next := ctx
			next.Current = v
			out = r.renderShell(s, v, next, depth, true)
		case []any:
			r.report(KindShapeMismatch, s.BindingProperty, "sequence value for a scalar binding")
			out = r.renderShell(s, rec, ctx, depth, false)
		default:
			out = r.renderShell(s, rec, ctx, depth, false)
			r.assignValue(out, v)
		}
	}

	r.substituteAttrs(out, s, active)
	r.attachItemID(out, s, active, ctx)
	return out
}

// renderShell clones the structural node's source element. Element
// children are derived through the structural description when recurse is
// set (they stay verbatim clones otherwise, for leaf assignments);
// non-element children are always copied in place so text layout survives.
func (r *Renderer) renderShell(s *structure.Node, rec record.Record, ctx Context, depth int, recurse bool) *html.Node {
	out := dom.CloneShallow(s.Source)
	dom.RemoveAttr(out, dom.AttrFilter)
	dom.RemoveAttr(out, dom.AttrConstraint)

	elementIdx := 0
	for c := s.Source.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			out.AppendChild(dom.Clone(c))
			continue
		}
		if !recurse || elementIdx >= len(s.Children) {
			out.AppendChild(dom.Clone(c))
			elementIdx++
			continue
		}
		next := ctx
		next.Current = rec
		for _, rendered := range r.renderNode(s.Children[elementIdx], rec, next, depth+1) {
			out.AppendChild(rendered)
		}
		elementIdx++
	}
	return out
}

// assignValue writes a scalar through the per-kind assignment table,
// sanitizing content-surface values when a sanitizer is configured.
func (r *Renderer) assignValue(n *html.Node, value any) {
	text := stringify(value)
	if r.sanitizer != nil && r.assigners.usesContent(dom.Tag(n)) {
		text = r.sanitizer.Sanitize(text)
	}
	r.assigners.Apply(n, text)
}

var placeholderPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// substituteAttrs expands ${name} placeholders in the node's templated
// attributes against the active record. Unresolved placeholders stay
// verbatim.
func (r *Renderer) substituteAttrs(n *html.Node, s *structure.Node, rec record.Record) {
	for name, tmpl := range s.AttributeTemplates {
		if name == dom.AttrFilter || name == dom.AttrConstraint {
			continue
		}
		expanded := placeholderPattern.ReplaceAllStringFunc(tmpl, func(match string) string {
			prop := match[2 : len(match)-1]
			value, ok := rec.Get(prop)
			if !ok {
				return match
			}
			return stringify(value)
		})
		dom.SetAttr(n, name, expanded)
	}
}

// attachItemID stamps the identifier reference onto scope boundaries whose
// active record carries one: <base>#<id>, preferring the base of the
// originating data over the render target's.
func (r *Renderer) attachItemID(n *html.Node, s *structure.Node, rec record.Record, ctx Context) {
	if !s.IsScopeBoundary {
		return
	}
	id := rec.ID()
	if id == "" {
		return
	}
	dom.SetAttr(n, dom.AttrID, ctx.base()+dom.RefMarker+id)
}
