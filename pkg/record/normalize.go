package record

import (
	"reflect"
	"strings"

	"golang.org/x/net/html"

	"github.com/goliatone/go-databind/pkg/dom"
)

// Normalize converts any supported input into canonical records. The batch
// flag distinguishes sequence inputs from single-record inputs so callers
// can honour the single-node versus node-sequence output contract.
//
// Supported inputs: Record, map[string]any, slices of either, []any,
// microdata-annotated *html.Node or *dom.Document, []FormPair, and a raw
// form-encoded string. Anything else normalises to a single empty Record.
func Normalize(input any) (records []Record, batch bool) {
	switch v := input.(type) {
	case nil:
		return []Record{{}}, false
	case Record:
		return []Record{normalizeRecord(v)}, false
	case map[string]any:
		return []Record{normalizeRecord(v)}, false
	case []Record:
		out := make([]Record, 0, len(v))
		for _, rec := range v {
			out = append(out, normalizeRecord(rec))
		}
		return out, true
	case []map[string]any:
		out := make([]Record, 0, len(v))
		for _, rec := range v {
			out = append(out, normalizeRecord(rec))
		}
		return out, true
	case []any:
		out := make([]Record, 0, len(v))
		for _, item := range v {
			nested, _ := Normalize(item)
			out = append(out, nested...)
		}
		return out, true
	case *dom.Document:
		return FromDocument(v), true
	case *html.Node:
		return []Record{FromNode(v)}, false
	case []FormPair:
		return []Record{FromForm(v)}, false
	case string:
		return []Record{FromForm(ParseForm(v))}, false
	default:
		return []Record{{}}, false
	}
}

// normalizeRecord deep-normalises nested values so every mapping below the
// root is a Record and every sequence is []any.
func normalizeRecord(in map[string]any) Record {
	out := make(Record, len(in))
	for key, value := range in {
		out[key] = normalizeValue(value)
	}
	return out
}

func normalizeValue(value any) any {
	switch v := value.(type) {
	case Record:
		return normalizeRecord(v)
	case map[string]any:
		return normalizeRecord(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalizeValue(item)
		}
		return out
	case []byte:
		// Byte blobs are scalar values, not sequences.
		return value
	}
	// Any other slice kind ([]Record, []string, []int, ...) canonicalises
	// to []any element-wise, preserving order.
	if rv := reflect.ValueOf(value); rv.Kind() == reflect.Slice {
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = normalizeValue(rv.Index(i).Interface())
		}
		return out
	}
	return value
}

// FromDocument extracts every top-level microdata item from a parsed
// document, in document order. Items nested inside another item become
// nested records of their parent, not separate batch entries.
func FromDocument(doc *dom.Document) []Record {
	if doc == nil || doc.Root == nil {
		return nil
	}
	var out []Record
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && dom.HasAttr(n, dom.AttrScope) {
			out = append(out, FromNode(n))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc.Root)
	return out
}

// FromNode converts one microdata item element into a Record: itemtype
// splits into @context and @type at the last separator, itemid (marker
// stripped) becomes @id, and each descendant itemprop contributes one
// property. A repeated property name promotes the value to a sequence; an
// itemscope property contributes a nested Record.
func FromNode(n *html.Node) Record {
	rec := Record{}
	if n == nil {
		return rec
	}
	if !dom.HasAttr(n, dom.AttrScope) {
		if item := dom.FindFirst(n, func(node *html.Node) bool {
			return node.Type == html.ElementNode && dom.HasAttr(node, dom.AttrScope)
		}); item != nil {
			return FromNode(item)
		}
		return rec
	}

	if itemtype, ok := dom.Attr(n, dom.AttrType); ok {
		ctx, typ := splitType(itemtype)
		if typ != "" {
			rec[KeyType] = typ
		}
		if ctx != "" {
			rec[KeyContext] = ctx
		}
	}
	if itemid, ok := dom.Attr(n, dom.AttrID); ok {
		if id := RefID(strings.TrimSpace(itemid)); id != "" {
			rec[KeyID] = id
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectProperties(c, rec)
	}
	return rec
}

// collectProperties walks a property subtree. Descent stops at nested
// itemscope boundaries: their properties belong to the nested record.
func collectProperties(n *html.Node, rec Record) {
	if n.Type != html.ElementNode {
		return
	}
	if prop, ok := dom.Attr(n, dom.AttrProp); ok {
		name := strings.TrimSuffix(strings.TrimSpace(prop), dom.ArrayMarker)
		if name != "" {
			var value any
			if dom.HasAttr(n, dom.AttrScope) {
				value = FromNode(n)
			} else {
				value = propertyValue(n)
			}
			addProperty(rec, name, value)
		}
		if dom.HasAttr(n, dom.AttrScope) {
			return
		}
	} else if dom.HasAttr(n, dom.AttrScope) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectProperties(c, rec)
	}
}

// addProperty assigns a property; the first occurrence stays scalar, a
// repeat promotes it to a sequence in encounter order.
func addProperty(rec Record, name string, value any) {
	existing, ok := rec[name]
	if !ok {
		rec[name] = value
		return
	}
	if seq, isSeq := existing.([]any); isSeq {
		rec[name] = append(seq, value)
		return
	}
	rec[name] = []any{existing, value}
}

// propertyValue reads a leaf property the way microdata consumers do:
// value-carrying elements expose their dedicated surface, everything else
// contributes trimmed text content.
func propertyValue(n *html.Node) any {
	read := func(attr string) (string, bool) {
		v, ok := dom.Attr(n, attr)
		if !ok || strings.TrimSpace(v) == "" {
			return "", false
		}
		return v, true
	}
	switch dom.Tag(n) {
	case "input", "option", "meter", "progress", "data":
		if v, ok := read("value"); ok {
			return v
		}
	case "time":
		if v, ok := read("datetime"); ok {
			return v
		}
	case "img", "audio", "video", "source", "iframe", "embed", "track":
		if v, ok := read("src"); ok {
			return v
		}
	case "a", "area", "link":
		if v, ok := read("href"); ok {
			return v
		}
	case "object":
		if v, ok := read("data"); ok {
			return v
		}
	}
	return dom.Text(n)
}

// splitType divides an itemtype value at the last path separator. The
// final segment is the bare type, the prefix its context. A value with no
// separator yields a bare type and no context.
func splitType(itemtype string) (ctx, typ string) {
	full := strings.TrimSpace(itemtype)
	if full == "" {
		return "", ""
	}
	idx := strings.LastIndex(full, TypeSeparator)
	if idx < 0 {
		return "", full
	}
	return full[:idx], full[idx+len(TypeSeparator):]
}
