package cycle

// Drive runs the fixpoint iteration loop for a Fixpoint-strategy cycle
// head. execute computes one round's new value given the round's
// starting provisional value; fn is the user's cycle_fn. A round
// terminates iteration when fn returns a Fallback decision, or when fn
// returns Iterate but the new value equals the round's starting value
// under equal, whichever comes first. Drive has no iteration cap of its
// own: the caller's cycle_fn is the sole source of termination.
func Drive[V any](seed V, execute func(provisional V) V, fn func(value V, count int) Decision[V], equal func(a, b V) bool) (final V, rounds int) {
	provisional := seed
	count := 0
	for {
		count++
		next := execute(provisional)
		decision := fn(next, count)
		if !decision.ShouldIterate() {
			return decision.FallbackValue(), count
		}
		if equal(next, provisional) {
			return next, count
		}
		provisional = next
	}
}
