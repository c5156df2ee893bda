package shared

// State is implemented by the closed string enums that drive entity
// lifecycles.
type State interface {
	~string
}

// TransitionTable is a static adjacency table: for each state, the set of
// states it may move to. A state absent from the table is terminal.
type TransitionTable[S State] map[S][]S

// Allows reports whether from -> to is a listed edge.
func (t TransitionTable[S]) Allows(from, to S) bool {
	for _, s := range t[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Targets returns the legal next states of from.
func (t TransitionTable[S]) Targets(from S) []S {
	out := make([]S, len(t[from]))
	copy(out, t[from])
	return out
}

// IsTerminal reports whether from has no outgoing edges.
func (t TransitionTable[S]) IsTerminal(from S) bool {
	return len(t[from]) == 0
}

// Transition validates from -> to and returns the new state, or an
// InvalidTransition error naming both states.
func (t TransitionTable[S]) Transition(entity string, from, to S) (S, error) {
	if !t.Allows(from, to) {
		return from, NewInvalidTransitionError(entity, string(from), string(to))
	}
	return to, nil
}
