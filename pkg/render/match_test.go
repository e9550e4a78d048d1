package render

import (
	"testing"

	"github.com/goliatone/go-databind/pkg/record"
	"github.com/goliatone/go-databind/pkg/structure"
)

func typedRoot(declared string) *structure.Node {
	return &structure.Node{DeclaredType: declared}
}

func TestSelectRootExactFirstMatch(t *testing.T) {
	t.Parallel()

	person := typedRoot("https://example.org/vocab/Person")
	personDupe := typedRoot("https://example.org/vocab/Person")
	task := typedRoot("https://example.org/vocab/Task")
	roots := []*structure.Node{person, personDupe, task}

	rec := record.Record{
		"@type":    "Person",
		"@context": "https://example.org/vocab",
	}
	selected, ok := SelectRoot(rec, roots)
	if !ok || selected != person {
		t.Fatalf("expected the first exact match")
	}
}

func TestSelectRootTypedRecordWithoutMatchIsSkipped(t *testing.T) {
	t.Parallel()

	roots := []*structure.Node{typedRoot("https://example.org/vocab/Task"), typedRoot("")}
	rec := record.Record{
		"@type":    "Person",
		"@context": "https://example.org/vocab",
	}
	if _, ok := SelectRoot(rec, roots); ok {
		t.Fatalf("a typed record with no exact match must be unmatched while typed roots exist")
	}
}

func TestSelectRootUntypedRecordPicksUntypedRoot(t *testing.T) {
	t.Parallel()

	fallback := typedRoot("")
	roots := []*structure.Node{typedRoot("https://example.org/vocab/Task"), fallback}

	selected, ok := SelectRoot(record.Record{"n": 1}, roots)
	if !ok || selected != fallback {
		t.Fatalf("expected the untyped root")
	}

	if _, ok := SelectRoot(record.Record{"n": 1}, roots[:1]); ok {
		t.Fatalf("no untyped root available: record must be unmatched")
	}
}

func TestSelectRootTypeWithoutContextIsUntyped(t *testing.T) {
	t.Parallel()

	typed := typedRoot("https://example.org/vocab/Person")
	fallback := typedRoot("")
	rec := record.Record{"@type": "Person"}

	selected, ok := SelectRoot(rec, []*structure.Node{typed, fallback})
	if !ok || selected != fallback {
		t.Fatalf("@type without @context must match only an untyped root")
	}
}

func TestSelectRootNoTypedRootsAppliesUniversally(t *testing.T) {
	t.Parallel()

	only := typedRoot("")
	rec := record.Record{
		"@type":    "Person",
		"@context": "https://example.org/vocab",
	}
	selected, ok := SelectRoot(rec, []*structure.Node{only})
	if !ok || selected != only {
		t.Fatalf("with no typed roots the untyped root applies regardless of record type")
	}

	if _, ok := SelectRoot(rec, nil); ok {
		t.Fatalf("no roots at all: unmatched")
	}
}
