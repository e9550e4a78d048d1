package dom

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func parseOne(t *testing.T, src string) *html.Node {
	t.Helper()
	nodes, err := ParseFragment(src)
	if err != nil {
		t.Fatalf("ParseFragment returned error: %v", err)
	}
	if len(nodes) == 0 {
		t.Fatalf("expected at least one node for %q", src)
	}
	return nodes[0]
}

func TestAttrRoundTrip(t *testing.T) {
	t.Parallel()

	n := parseOne(t, `<div class="card" itemscope></div>`)

	if got, ok := Attr(n, "class"); !ok || got != "card" {
		t.Fatalf("Attr(class) = %q, %v", got, ok)
	}
	if !HasAttr(n, "itemscope") {
		t.Fatalf("expected itemscope to be present")
	}

	SetAttr(n, "class", "panel")
	if got, _ := Attr(n, "class"); got != "panel" {
		t.Fatalf("SetAttr did not replace: %q", got)
	}

	SetAttr(n, "role", "listitem")
	if got, _ := Attr(n, "role"); got != "listitem" {
		t.Fatalf("SetAttr did not add: %q", got)
	}

	RemoveAttr(n, "role")
	if HasAttr(n, "role") {
		t.Fatalf("RemoveAttr left the attribute behind")
	}
}

func TestTextAndSetText(t *testing.T) {
	t.Parallel()

	n := parseOne(t, `<p>  hello <b>world</b>  </p>`)
	if got := Text(n); got != "hello world" {
		t.Fatalf("Text = %q", got)
	}

	SetText(n, "replaced")
	if got := Text(n); got != "replaced" {
		t.Fatalf("SetText = %q", got)
	}
	if len(Elements(n)) != 0 {
		t.Fatalf("SetText should drop element children")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	t.Parallel()

	n := parseOne(t, `<ul id="src"><li>a</li><li>b</li></ul>`)
	clone := Clone(n)

	SetAttr(clone, "id", "copy")
	SetText(clone, "emptied")

	if got, _ := Attr(n, "id"); got != "src" {
		t.Fatalf("mutating the clone changed the source attr: %q", got)
	}
	if len(Elements(n)) != 2 {
		t.Fatalf("mutating the clone changed the source children")
	}
	if clone.Parent != nil {
		t.Fatalf("clone should be detached")
	}
}

func TestElementsOrder(t *testing.T) {
	t.Parallel()

	n := parseOne(t, `<div>text<span>1</span> more <em>2</em><i>3</i></div>`)
	var tags []string
	for _, el := range Elements(n) {
		tags = append(tags, Tag(el))
	}
	if strings.Join(tags, ",") != "span,em,i" {
		t.Fatalf("Elements order = %v", tags)
	}
}

func TestRenderSerializes(t *testing.T) {
	t.Parallel()

	n := parseOne(t, `<span itemprop="name">Jane</span>`)
	out, err := Render(n)
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if out != `<span itemprop="name">Jane</span>` {
		t.Fatalf("Render = %q", out)
	}
}

func TestFindFirstAndAll(t *testing.T) {
	t.Parallel()

	n := parseOne(t, `<div><p class="x">1</p><span><p class="x">2</p></span></div>`)
	match := func(node *html.Node) bool {
		v, _ := Attr(node, "class")
		return v == "x"
	}

	first := FindFirst(n, match)
	if first == nil || Text(first) != "1" {
		t.Fatalf("FindFirst picked the wrong node")
	}
	if got := len(FindAll(n, match)); got != 2 {
		t.Fatalf("FindAll = %d nodes, want 2", got)
	}
}

func TestParseDocumentKeepsBase(t *testing.T) {
	t.Parallel()

	doc, err := ParseDocument(strings.NewReader(`<html><body><p>x</p></body></html>`), "https://data.example/page.html")
	if err != nil {
		t.Fatalf("ParseDocument returned error: %v", err)
	}
	if doc.Base != "https://data.example/page.html" {
		t.Fatalf("Base = %q", doc.Base)
	}
	if FirstByTag(doc.Root, "p") == nil {
		t.Fatalf("expected to find the paragraph")
	}
}
