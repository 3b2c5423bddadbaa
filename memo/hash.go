package memo

import (
	"fmt"
	"hash/fnv"

	"github.com/rippledb/ripple/ident"
)

// hashAny picks a shard for key. ident.Id (the key type every built-in
// ingredient in package query uses) is hashed directly for speed; any
// other comparable key type falls back to hashing its formatted value,
// which is correct (if not maximally fast) for the handful of shard
// buckets this table uses.
func hashAny[K comparable](key K) uint32 {
	if id, ok := any(key).(ident.Id); ok {
		return uint32(id.Ingredient)*2654435761 + id.Local
	}
	h := fnv.New32a()
	fmt.Fprintf(h, "%v", key)
	return h.Sum32()
}
