package render

import (
	"github.com/goliatone/go-databind/pkg/record"
	"github.com/goliatone/go-databind/pkg/structure"
)

// SelectRoot picks the structural root that applies to a record.
//
// Selection is deterministic and first-match, in root document order:
// a record carrying both @type and @context matches the first root whose
// declared type equals its qualified type exactly; a record with no usable
// type information matches the first root that declares no type. A typed
// record that matches nothing while typed roots exist is unmatched;
// callers skip it, they do not fail. When no root declares a type at all,
// the first root applies to every record regardless of its type fields.
func SelectRoot(rec record.Record, roots []*structure.Node) (*structure.Node, bool) {
	anyTyped := false
	for _, root := range roots {
		if root.DeclaredType != "" {
			anyTyped = true
			break
		}
	}
	if !anyTyped {
		if len(roots) == 0 {
			return nil, false
		}
		return roots[0], true
	}

	if qualified, ok := rec.QualifiedType(); ok {
		for _, root := range roots {
			if root.DeclaredType == qualified {
				return root, true
			}
		}
		return nil, false
	}

	for _, root := range roots {
		if root.DeclaredType == "" {
			return root, true
		}
	}
	return nil, false
}
