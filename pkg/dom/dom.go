// Package dom wraps golang.org/x/net/html with the small set of tree
// operations the binding engine needs: subtree cloning, attribute access,
// text content, ordered element traversal, and base-location tracking.
//
// Nodes are plain *html.Node values so callers can interoperate with any
// other x/net/html based tooling; Document carries the base location the
// tree was parsed from.
package dom

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document pairs a parsed tree with the base location it originated from.
// Base is used when the engine stamps identifier references onto output
// nodes (itemid="<base>#<id>").
type Document struct {
	Root *html.Node
	Base string
}

// ParseDocument parses a full HTML document. The base location is recorded
// verbatim; pass an empty string for in-memory sources.
func ParseDocument(r io.Reader, base string) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse document: %w", err)
	}
	return &Document{Root: root, Base: base}, nil
}

// ParseFragment parses markup as body content and returns the top-level
// nodes in document order.
func ParseFragment(src string) ([]*html.Node, error) {
	body := &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	}
	nodes, err := html.ParseFragment(strings.NewReader(src), body)
	if err != nil {
		return nil, fmt.Errorf("dom: parse fragment: %w", err)
	}
	// Whitespace-only top-level text nodes are formatting artifacts of the
	// source markup, not content; keeping them would make nodes[0] a text
	// node for any indented fragment.
	out := nodes[:0]
	for _, n := range nodes {
		if n.Type == html.TextNode && strings.TrimSpace(n.Data) == "" {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

// Render serialises a node subtree back to markup.
func Render(n *html.Node) (string, error) {
	var sb strings.Builder
	if err := html.Render(&sb, n); err != nil {
		return "", fmt.Errorf("dom: render: %w", err)
	}
	return sb.String(), nil
}

// Clone deep-copies a subtree. The copy has no parent or siblings so it can
// be appended anywhere.
func Clone(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	out := CloneShallow(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out.AppendChild(Clone(c))
	}
	return out
}

// CloneShallow copies a single node (type, tag, attributes) without its
// children.
func CloneShallow(n *html.Node) *html.Node {
	out := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		out.Attr = make([]html.Attribute, len(n.Attr))
		copy(out.Attr, n.Attr)
	}
	return out
}

// Tag returns the lower-case element name, or the empty string for
// non-element nodes.
func Tag(n *html.Node) string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}
	return strings.ToLower(n.Data)
}

// Attr returns the value of a named attribute and whether it is present.
func Attr(n *html.Node, name string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// HasAttr reports whether the attribute is present, regardless of value.
// Boolean markers such as itemscope are typically value-less.
func HasAttr(n *html.Node, name string) bool {
	_, ok := Attr(n, name)
	return ok
}

// SetAttr sets or replaces a named attribute.
func SetAttr(n *html.Node, name, value string) {
	for i := range n.Attr {
		if n.Attr[i].Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

// RemoveAttr deletes a named attribute if present.
func RemoveAttr(n *html.Node, name string) {
	for i := range n.Attr {
		if n.Attr[i].Key == name {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// Text concatenates the text descendants of a node, trimmed of surrounding
// whitespace.
func Text(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if n != nil {
		walk(n)
	}
	return strings.TrimSpace(sb.String())
}

// SetText replaces a node's children with a single text node.
func SetText(n *html.Node, text string) {
	for n.FirstChild != nil {
		n.RemoveChild(n.FirstChild)
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// Elements returns the element children of a node in document order.
func Elements(n *html.Node) []*html.Node {
	var out []*html.Node
	if n == nil {
		return out
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// FindFirst walks a subtree depth-first and returns the first node the
// predicate accepts.
func FindFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n == nil {
		return nil
	}
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := FindFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

// FindAll walks a subtree depth-first and collects every node the predicate
// accepts, in document order.
func FindAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if match(node) {
			out = append(out, node)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if n != nil {
		walk(n)
	}
	return out
}

// FirstByTag returns the first descendant element with the given name.
func FirstByTag(n *html.Node, tag string) *html.Node {
	return FindFirst(n, func(node *html.Node) bool {
		return Tag(node) == tag
	})
}
