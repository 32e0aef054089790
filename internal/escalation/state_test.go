package escalation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextState_FailedAttemptAccumulates(t *testing.T) {
	state := State{FailedAttemptsTotal: 2, UnresolvedTurns: 1}

	next := NextState(state, DecisionAfterAssistant{
		ReasonCodes:   []ReasonCode{ReasonAssistantIrrelevant},
		FailedAttempt: true,
	})

	assert.Equal(t, 3, next.FailedAttemptsTotal)
	assert.Equal(t, 1, next.UnresolvedTurns, "assistant decisions never touch unresolved turns")
	assert.Equal(t, State{FailedAttemptsTotal: 2, UnresolvedTurns: 1}, state, "input state is not mutated")
}

func TestNextState_NonFailedAttemptUnchanged(t *testing.T) {
	state := State{FailedAttemptsTotal: 2, UnresolvedTurns: 1}

	next := NextState(state, DecisionAfterAssistant{
		ReasonCodes:   []ReasonCode{ReasonTroubleshooting},
		FailedAttempt: false,
	})

	assert.Equal(t, state, next)
}

func TestNextState_UnresolvedIncrements(t *testing.T) {
	state := State{FailedAttemptsTotal: 1, UnresolvedTurns: 3}

	next := NextState(state, DecisionAfterUser{
		ReasonCodes: []ReasonCode{ReasonTroubleshooting},
		Unresolved:  true,
		Frustration: FrustrationMild,
	})

	assert.Equal(t, 4, next.UnresolvedTurns)
	assert.Equal(t, 1, next.FailedAttemptsTotal, "user decisions never increment failed attempts")
}

func TestNextState_ResolutionResetsBothCounters(t *testing.T) {
	states := []State{
		{},
		{FailedAttemptsTotal: 5, UnresolvedTurns: 2},
		{FailedAttemptsTotal: 0, UnresolvedTurns: 9},
	}

	resolved := DecisionAfterUser{
		ReasonCodes: []ReasonCode{ReasonResolvedConfirmed},
		Unresolved:  false,
		Frustration: FrustrationNone,
	}

	for _, state := range states {
		assert.Equal(t, State{}, NextState(state, resolved))
	}
}

func TestNextState_Deterministic(t *testing.T) {
	state := State{FailedAttemptsTotal: 1, UnresolvedTurns: 2}
	decision := DecisionAfterUser{
		ReasonCodes: []ReasonCode{ReasonNeedMoreInfo},
		Unresolved:  true,
		Frustration: FrustrationNone,
	}

	first := NextState(state, decision)
	second := NextState(state, decision)

	assert.Equal(t, first, second)
}
