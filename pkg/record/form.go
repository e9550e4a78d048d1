package record

import (
	"net/url"
	"strconv"
	"strings"
)

// FormPair is one entry of a flat form-style encoding: a dotted path and
// its raw value. Pair order is significant; repeated paths accumulate into
// sequences in encounter order.
type FormPair struct {
	Path  string
	Value string
}

// ParseForm decodes a query-string style encoding ("a.b=1&tags[]=x")
// preserving encounter order, which url.Values cannot do. Undecodable
// escapes keep the raw text rather than dropping the pair.
func ParseForm(query string) []FormPair {
	query = strings.TrimSpace(strings.TrimPrefix(query, "?"))
	if query == "" {
		return nil
	}
	var pairs []FormPair
	for _, chunk := range strings.FieldsFunc(query, func(r rune) bool {
		return r == '&' || r == ';'
	}) {
		key, value, _ := strings.Cut(chunk, "=")
		key = unescape(key)
		if key == "" {
			continue
		}
		pairs = append(pairs, FormPair{Path: key, Value: unescape(value)})
	}
	return pairs
}

func unescape(s string) string {
	out, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return out
}

// FromForm builds a nested Record from ordered path/value pairs. Dotted
// segments nest ("a.b" -> {a:{b:v}}), a trailing "[]" or "[N]" marker
// builds or extends a sequence at that path, and repeated plain keys
// accumulate into a sequence.
func FromForm(pairs []FormPair) Record {
	root := Record{}
	for _, pair := range pairs {
		segments := strings.Split(strings.TrimSpace(pair.Path), ".")
		if len(segments) == 0 || segments[0] == "" {
			continue
		}
		assignPath(root, segments, pair.Value)
	}
	return root
}

func assignPath(rec Record, segments []string, value string) {
	name, index, isArray := splitSegment(segments[0])
	if name == "" {
		return
	}
	last := len(segments) == 1

	if !isArray {
		if last {
			addProperty(rec, name, value)
			return
		}
		child, ok := rec[name].(Record)
		if !ok {
			child = Record{}
			rec[name] = child
		}
		assignPath(child, segments[1:], value)
		return
	}

	seq, _ := rec[name].([]any)
	if last {
		seq = placeAt(seq, index, value)
		rec[name] = seq
		return
	}

	// Intermediate array segment: the addressed element is a nested
	// record. An unindexed marker starts a fresh element per pair.
	var child Record
	if index >= 0 && index < len(seq) {
		if existing, ok := seq[index].(Record); ok {
			child = existing
		} else {
			child = Record{}
			seq[index] = child
		}
	} else {
		child = Record{}
		seq = placeAt(seq, index, child)
	}
	rec[name] = seq
	assignPath(child, segments[1:], value)
}

// placeAt appends for the unindexed marker (index < 0) and pads with nil
// entries when an explicit index lands past the end.
func placeAt(seq []any, index int, value any) []any {
	if index < 0 {
		return append(seq, value)
	}
	for len(seq) <= index {
		seq = append(seq, nil)
	}
	seq[index] = value
	return seq
}

// splitSegment splits "tags[]" / "tags[2]" / "tags" into the bare name,
// the explicit index (-1 when absent), and whether an array marker was
// present at all.
func splitSegment(segment string) (name string, index int, isArray bool) {
	segment = strings.TrimSpace(segment)
	open := strings.IndexByte(segment, '[')
	if open < 0 || !strings.HasSuffix(segment, "]") {
		return segment, -1, false
	}
	name = segment[:open]
	inner := segment[open+1 : len(segment)-1]
	if inner == "" {
		return name, -1, true
	}
	n, err := strconv.Atoi(inner)
	if err != nil || n < 0 {
		return name, -1, true
	}
	return name, n, true
}
