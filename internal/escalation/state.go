package escalation

// State carries the two counters that survive context-window truncation.
// It is a value type; callers replace it after every decision and never
// share one across conversations.
type State struct {
	FailedAttemptsTotal int
	UnresolvedTurns     int
}

// NextState returns the state after applying decision. It never mutates
// its arguments: assistant decisions only touch the failed-attempt counter,
// user decisions only touch the unresolved counter, except that a resolved
// user turn clears both.
func NextState(state State, decision Decision) State {
	next := state

	switch d := decision.(type) {
	case DecisionAfterAssistant:
		if d.FailedAttempt {
			next.FailedAttemptsTotal++
		}
	case DecisionAfterUser:
		if d.Unresolved {
			next.UnresolvedTurns++
		} else {
			// Issue resolved, accumulated risk signal is cleared.
			next.UnresolvedTurns = 0
			next.FailedAttemptsTotal = 0
		}
	}

	return next
}
