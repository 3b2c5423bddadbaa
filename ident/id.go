// Package ident defines the compact, cheaply-copyable identifiers used
// to name ingredient instances throughout ripple, grounded on the
// teacher's internal/graph/graph.go NodeID/EdgeID naming but restructured
// to "ingredient index + dense intra-ingredient index".
package ident

import "fmt"

// Index is the stable small integer a Storage assigns to an ingredient
// at registration time.
type Index uint32

// Id uniquely names one key within one ingredient: the ingredient's
// Index plus a dense, ingredient-local integer. It is small, comparable,
// and safe to use as a map key or to embed in a DependencyEdge.
type Id struct {
	Ingredient Index
	Local      uint32
}

func (id Id) String() string {
	return fmt.Sprintf("#%d:%d", id.Ingredient, id.Local)
}

// Nil is the zero-value Id, used as a sentinel "no id" where an absent
// edge target needs to be distinguished from a real one (ingredient 0,
// local 0 is reserved for the Storage's own bookkeeping ingredient and
// is never handed out as a real key).
var Nil = Id{}

// IsNil reports whether this is the sentinel zero Id.
func (id Id) IsNil() bool {
	return id == Nil
}
