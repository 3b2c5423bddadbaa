package cycle

// Decision is what a Fixpoint ingredient's cycle_fn callback returns for
// one round: either "keep iterating" or "stop now, with this value".
type Decision[V any] struct {
	iterate  bool
	fallback V
}

// Iterate signals that the head should execute another round. The round
// still terminates if the newly computed value equals the round's
// starting provisional value.
func Iterate[V any]() Decision[V] {
	return Decision[V]{iterate: true}
}

// Fallback signals immediate convergence on v, regardless of equality.
func Fallback[V any](v V) Decision[V] {
	return Decision[V]{iterate: false, fallback: v}
}

// ShouldIterate reports whether this decision asked for another round.
func (d Decision[V]) ShouldIterate() bool {
	return d.iterate
}

// FallbackValue returns the value carried by a Fallback decision. Only
// meaningful when ShouldIterate is false.
func (d Decision[V]) FallbackValue() V {
	return d.fallback
}
