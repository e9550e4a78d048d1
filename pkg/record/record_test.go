package record

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestQualifiedTypeBothOrNeither(t *testing.T) {
	t.Parallel()

	full := Record{KeyType: "Person", KeyContext: "https://example.org/vocab"}
	if got, ok := full.QualifiedType(); !ok || got != "https://example.org/vocab/Person" {
		t.Fatalf("QualifiedType = %q, %v", got, ok)
	}

	for name, rec := range map[string]Record{
		"type only":    {KeyType: "Person"},
		"context only": {KeyContext: "https://example.org/vocab"},
		"neither":      {},
	} {
		if _, ok := rec.QualifiedType(); ok {
			t.Fatalf("%s: expected no qualified type", name)
		}
	}
}

func TestResolveFirstMatch(t *testing.T) {
	t.Parallel()

	all := []Record{
		{KeyID: "a", "n": 1},
		{KeyID: "b", "n": 2},
		{KeyID: "b", "n": 3},
	}

	rec, ok := Resolve("#b", all)
	if !ok {
		t.Fatalf("expected #b to resolve")
	}
	if rec["n"] != 2 {
		t.Fatalf("Resolve picked %v, want the first match", rec["n"])
	}

	if _, ok := Resolve("#missing", all); ok {
		t.Fatalf("expected #missing to stay unresolved")
	}
	if _, ok := Resolve("#", all); ok {
		t.Fatalf("expected a bare marker to stay unresolved")
	}
}

func TestIsReference(t *testing.T) {
	t.Parallel()

	if !IsReference("#johndoe") {
		t.Fatalf("expected #johndoe to be a reference")
	}
	if IsReference("johndoe") || IsReference("#") || IsReference(42) {
		t.Fatalf("non-references misclassified")
	}
}

func TestNormalizeNestedMap(t *testing.T) {
	t.Parallel()

	records, batch := Normalize(map[string]any{
		"name": "Jane",
		"address": map[string]any{
			"city": "Lisbon",
		},
		"tags": []any{"a", map[string]any{"b": 1}},
	})
	if batch {
		t.Fatalf("single map should not be a batch")
	}
	if len(records) != 1 {
		t.Fatalf("got %d records", len(records))
	}

	want := Record{
		"name":    "Jane",
		"address": Record{"city": "Lisbon"},
		"tags":    []any{"a", Record{"b": 1}},
	}
	if diff := cmp.Diff(want, records[0]); diff != "" {
		t.Fatalf("normalized record mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeBatch(t *testing.T) {
	t.Parallel()

	records, batch := Normalize([]map[string]any{
		{"n": 1},
		{"n": 2},
	})
	if !batch {
		t.Fatalf("slice input should be a batch")
	}
	if len(records) != 2 || records[0]["n"] != 1 || records[1]["n"] != 2 {
		t.Fatalf("batch order lost: %v", records)
	}
}

func TestNormalizeUnknownInput(t *testing.T) {
	t.Parallel()

	records, batch := Normalize(42)
	if batch || len(records) != 1 || len(records[0]) != 0 {
		t.Fatalf("unknown input should normalize to one empty record, got %v", records)
	}

	records, batch = Normalize(nil)
	if batch || len(records) != 1 || len(records[0]) != 0 {
		t.Fatalf("nil input should normalize to one empty record, got %v", records)
	}
}
