// Package structure builds the cached structural description of a template
// tree: one immutable Node per template element capturing its binding
// behaviour. The description is produced once per registered template and
// reused read-only by every render call.
package structure

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/goliatone/go-databind/pkg/dom"
)

// Node describes the binding behaviour of one template element. Children
// are positionally aligned with the source element's element children at
// analysis time; the renderer derives all output structure from this tree
// and never re-reads the live template.
type Node struct {
	// Source is the template element the description was built from. The
	// renderer clones it; it is never mutated.
	Source *html.Node

	// BindingProperty is the property this node binds to, with any array
	// marker already stripped.
	BindingProperty string

	// IsArrayBinding marks an array-expansion point: the node is the
	// repeatable pattern for each sequence element.
	IsArrayBinding bool

	// IsScopeBoundary marks a node that opens a nested record context.
	IsScopeBoundary bool

	// DeclaredType is the verbatim itemtype value used for root selection.
	DeclaredType string

	// ScopeFilterProperty is the data-filter shorthand: include records
	// whose named property references the enclosing record's identifier.
	ScopeFilterProperty string

	// ConstraintExpression is the data-constraint expression gating this
	// node, stored verbatim.
	ConstraintExpression string

	// AttributeTemplates holds every attribute whose value contains at
	// least one ${name} placeholder, verbatim, for render-time
	// substitution.
	AttributeTemplates map[string]string

	// Children in document order.
	Children []*Node
}

// Analyze walks a template element once and produces its structural
// description. Pure function of the input tree; callers memoise the result.
func Analyze(root *html.Node) *Node {
	if root == nil || root.Type != html.ElementNode {
		return nil
	}

	node := &Node{Source: root}

	if prop, ok := dom.Attr(root, dom.AttrProp); ok {
		name := strings.TrimSpace(prop)
		if strings.HasSuffix(name, dom.ArrayMarker) {
			node.IsArrayBinding = true
			name = strings.TrimSuffix(name, dom.ArrayMarker)
		}
		node.BindingProperty = name
	}

	node.IsScopeBoundary = dom.HasAttr(root, dom.AttrScope)

	if itemtype, ok := dom.Attr(root, dom.AttrType); ok {
		node.DeclaredType = strings.TrimSpace(itemtype)
	}
	if filter, ok := dom.Attr(root, dom.AttrFilter); ok {
		node.ScopeFilterProperty = strings.TrimSpace(filter)
	}
	if expr, ok := dom.Attr(root, dom.AttrConstraint); ok {
		node.ConstraintExpression = strings.TrimSpace(expr)
	}

	for _, attr := range root.Attr {
		if !strings.Contains(attr.Val, "${") {
			continue
		}
		if node.AttributeTemplates == nil {
			node.AttributeTemplates = map[string]string{}
		}
		node.AttributeTemplates[attr.Key] = attr.Val
	}

	for _, child := range dom.Elements(root) {
		if analyzed := Analyze(child); analyzed != nil {
			node.Children = append(node.Children, analyzed)
		}
	}
	return node
}

// AnalyzeAll analyzes a sequence of candidate roots in document order.
func AnalyzeAll(roots []*html.Node) []*Node {
	out := make([]*Node, 0, len(roots))
	for _, root := range roots {
		if analyzed := Analyze(root); analyzed != nil {
			out = append(out, analyzed)
		}
	}
	return out
}
