package dom

// Microdata binding vocabulary. These are the attributes the engine reads
// from template trees and annotated source documents.
const (
	// AttrProp marks a binding point; its value names the bound property.
	AttrProp = "itemprop"
	// AttrScope marks a scope boundary introducing a nested record context.
	AttrScope = "itemscope"
	// AttrType declares the qualified type a structural root applies to.
	AttrType = "itemtype"
	// AttrID carries a record identifier.
	AttrID = "itemid"
	// AttrFilter is the scope-filter shorthand: include records whose named
	// property references the enclosing record's identifier.
	AttrFilter = "data-filter"
	// AttrConstraint carries a general boolean constraint expression.
	AttrConstraint = "data-constraint"
)

// ArrayMarker suffixes a binding property name to mark an array-expansion
// point (itemprop="tags[]").
const ArrayMarker = "[]"

// RefMarker prefixes identifier references (itemid="#johndoe").
const RefMarker = "#"
