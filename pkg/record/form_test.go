package record

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseFormPreservesOrder(t *testing.T) {
	t.Parallel()

	pairs := ParseForm("b=2&a=1&b=3")
	want := []FormPair{
		{Path: "b", Value: "2"},
		{Path: "a", Value: "1"},
		{Path: "b", Value: "3"},
	}
	if diff := cmp.Diff(want, pairs); diff != "" {
		t.Fatalf("pair order mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFormUnescapes(t *testing.T) {
	t.Parallel()

	pairs := ParseForm("?greeting=hello+world&note=a%26b")
	if pairs[0].Value != "hello world" {
		t.Fatalf("plus not decoded: %q", pairs[0].Value)
	}
	if pairs[1].Value != "a&b" {
		t.Fatalf("escape not decoded: %q", pairs[1].Value)
	}
}

func TestFromFormNestsDottedPaths(t *testing.T) {
	t.Parallel()

	rec := FromForm(ParseForm("a.b=1&a.c=2&d=3"))
	want := Record{
		"a": Record{"b": "1", "c": "2"},
		"d": "3",
	}
	if diff := cmp.Diff(want, rec); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestFromFormArrayMarkers(t *testing.T) {
	t.Parallel()

	rec := FromForm(ParseForm("tags[]=a&tags[]=b&slots[1]=x"))
	if diff := cmp.Diff([]any{"a", "b"}, rec["tags"]); diff != "" {
		t.Fatalf("append marker mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]any{nil, "x"}, rec["slots"]); diff != "" {
		t.Fatalf("indexed marker mismatch (-want +got):\n%s", diff)
	}
}

func TestFromFormIndexedNestedRecords(t *testing.T) {
	t.Parallel()

	rec := FromForm(ParseForm("items[0].name=a&items[0].qty=2&items[1].name=b"))
	want := Record{
		"items": []any{
			Record{"name": "a", "qty": "2"},
			Record{"name": "b"},
		},
	}
	if diff := cmp.Diff(want, rec); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestFromFormRepeatedKeysAccumulate(t *testing.T) {
	t.Parallel()

	rec := FromForm(ParseForm("x=1&x=2&x=3"))
	if diff := cmp.Diff([]any{"1", "2", "3"}, rec["x"]); diff != "" {
		t.Fatalf("accumulation mismatch (-want +got):\n%s", diff)
	}
}

func TestFromFormEmptyInput(t *testing.T) {
	t.Parallel()

	if rec := FromForm(nil); len(rec) != 0 {
		t.Fatalf("expected empty record, got %v", rec)
	}
	if pairs := ParseForm("  "); pairs != nil {
		t.Fatalf("expected no pairs, got %v", pairs)
	}
}
