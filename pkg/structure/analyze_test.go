package structure

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-databind/pkg/dom"
)

func analyzeFragment(t *testing.T, src string) *Node {
	t.Helper()
	nodes, err := dom.ParseFragment(src)
	if err != nil {
		t.Fatalf("ParseFragment returned error: %v", err)
	}
	node := Analyze(nodes[0])
	if node == nil {
		t.Fatalf("Analyze returned nil for %q", src)
	}
	return node
}

func TestAnalyzeCapturesBinding(t *testing.T) {
	t.Parallel()

	node := analyzeFragment(t, `<span itemprop="name"></span>`)
	if node.BindingProperty != "name" || node.IsArrayBinding {
		t.Fatalf("binding = %q array=%v", node.BindingProperty, node.IsArrayBinding)
	}
	if node.IsScopeBoundary {
		t.Fatalf("plain binding must not open a scope")
	}
}

func TestAnalyzeStripsArrayMarker(t *testing.T) {
	t.Parallel()

	node := analyzeFragment(t, `<li itemprop="tags[]"></li>`)
	if !node.IsArrayBinding {
		t.Fatalf("expected an array binding")
	}
	if node.BindingProperty != "tags" {
		t.Fatalf("marker not stripped: %q", node.BindingProperty)
	}
}

func TestAnalyzeScopeTypeFilterConstraint(t *testing.T) {
	t.Parallel()

	node := analyzeFragment(t, `<div itemscope itemtype="https://example.org/vocab/Person" data-filter="assignee" data-constraint='status == "open"'></div>`)
	if !node.IsScopeBoundary {
		t.Fatalf("itemscope not captured")
	}
	if node.DeclaredType != "https://example.org/vocab/Person" {
		t.Fatalf("DeclaredType = %q", node.DeclaredType)
	}
	if node.ScopeFilterProperty != "assignee" {
		t.Fatalf("ScopeFilterProperty = %q", node.ScopeFilterProperty)
	}
	if node.ConstraintExpression != `status == "open"` {
		t.Fatalf("ConstraintExpression = %q", node.ConstraintExpression)
	}
}

func TestAnalyzeAttributeTemplates(t *testing.T) {
	t.Parallel()

	node := analyzeFragment(t, `<a href="/users/${id}?tab=${tab}" title="static" itemprop="name"></a>`)
	want := map[string]string{"href": "/users/${id}?tab=${tab}"}
	if diff := cmp.Diff(want, node.AttributeTemplates); diff != "" {
		t.Fatalf("templates mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzeChildrenDocumentOrder(t *testing.T) {
	t.Parallel()

	node := analyzeFragment(t, `<div>
		<span itemprop="a"></span>
		text in between
		<em itemprop="b"></em>
		<i></i>
	</div>`)
	if len(node.Children) != 3 {
		t.Fatalf("got %d children, want one per element child", len(node.Children))
	}
	if node.Children[0].BindingProperty != "a" || node.Children[1].BindingProperty != "b" {
		t.Fatalf("children out of order: %+v", node.Children)
	}
	if node.Children[2].BindingProperty != "" {
		t.Fatalf("unannotated child should have no binding")
	}
}

func TestAnalyzeAllSkipsNonElements(t *testing.T) {
	t.Parallel()

	nodes, err := dom.ParseFragment(`<p itemprop="a"></p><p itemprop="b"></p>`)
	if err != nil {
		t.Fatalf("ParseFragment returned error: %v", err)
	}
	analyzed := AnalyzeAll(nodes)
	if len(analyzed) != 2 {
		t.Fatalf("got %d roots", len(analyzed))
	}
	if Analyze(nil) != nil {
		t.Fatalf("Analyze(nil) must be nil")
	}
}
