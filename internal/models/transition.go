package models

// TransitionTable maps a current state to the set of states it may move to.
// States without an entry are terminal.
type TransitionTable[S ~string] map[S][]S

// Allows reports whether the edge from -> to exists.
func (t TransitionTable[S]) Allows(from, to S) bool {
	for _, next := range t[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Next returns a copy of the states reachable from the given state.
func (t TransitionTable[S]) Next(from S) []S {
	next := t[from]
	out := make([]S, len(next))
	copy(out, next)
	return out
}

// Terminal reports whether no edge leaves the given state.
func (t TransitionTable[S]) Terminal(from S) bool {
	return len(t[from]) == 0
}
