// Package record defines the canonical record shape consumed by the
// renderer and the normaliser that produces it from heterogeneous inputs:
// plain maps, ordered sequences, microdata-annotated markup, and flat
// form-style path/value encodings.
package record

import (
	"strings"
)

// Reserved record keys. They never bind to template properties directly;
// the matcher and resolver consume them.
const (
	// KeyType holds the bare type name (microdata itemtype final segment).
	KeyType = "@type"
	// KeyContext holds the namespace prefix the type was declared under.
	KeyContext = "@context"
	// KeyID holds an identifier unique within a render batch.
	KeyID = "@id"
)

// TypeSeparator joins @context and @type into a qualified type.
const TypeSeparator = "/"

// Record is an order-irrelevant mapping from property name to value. Values
// are scalars (string, number, bool), nested Records, or []any sequences.
type Record map[string]any

// Type returns the bare type name, if any.
func (r Record) Type() string {
	return r.stringKey(KeyType)
}

// Context returns the type namespace, if any.
func (r Record) Context() string {
	return r.stringKey(KeyContext)
}

// ID returns the record identifier, if any.
func (r Record) ID() string {
	return r.stringKey(KeyID)
}

// QualifiedType combines @context and @type. Per the both-or-neither rule a
// record with only one of the two is treated as carrying no type
// information, so ok is false.
func (r Record) QualifiedType() (string, bool) {
	typ := r.Type()
	ctx := r.Context()
	if typ == "" || ctx == "" {
		return "", false
	}
	return ctx + TypeSeparator + typ, true
}

// Get looks up a property value by name.
func (r Record) Get(name string) (any, bool) {
	v, ok := r[name]
	return v, ok
}

func (r Record) stringKey(key string) string {
	v, ok := r[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// IsReference reports whether a value is a marker-prefixed identifier
// reference ("#johndoe").
func IsReference(v any) bool {
	s, ok := v.(string)
	return ok && len(s) > 1 && strings.HasPrefix(s, "#")
}

// RefID strips the reference marker. Returns the input unchanged when no
// marker is present.
func RefID(ref string) string {
	return strings.TrimPrefix(ref, "#")
}

// Resolve finds the record in all whose @id matches the marker-stripped
// reference. First match in slice order wins.
func Resolve(ref string, all []Record) (Record, bool) {
	id := RefID(strings.TrimSpace(ref))
	if id == "" {
		return nil, false
	}
	for _, rec := range all {
		if rec.ID() == id {
			return rec, true
		}
	}
	return nil, false
}
