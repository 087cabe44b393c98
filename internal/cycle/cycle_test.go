package cycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecalab/internal/automaton"
)

func TestDetectRuleZeroDies(t *testing.T) {
	a := Find(0, 31, 100)
	require.True(t, a.Died)
	assert.Equal(t, 1, a.Transient)
	assert.Equal(t, 1, a.Period)
	assert.Equal(t, 0.0, a.FinalDensity)
	assert.Equal(t, ClassDies, Classify(a))
	assert.False(t, Notable(a))
}

func TestDetectIdentityRuleIsFixedPoint(t *testing.T) {
	// rule 204 copies the centre cell, so generation 1 repeats generation 0.
	a := Find(204, 11, 100)
	require.False(t, a.Died)
	assert.Equal(t, 0, a.Transient)
	assert.Equal(t, 1, a.Period)
	assert.InDelta(t, 1.0/11.0, a.FinalDensity, 1e-12)
	assert.Equal(t, ClassShortCycle, Classify(a))
}

func TestDetectShiftRuleCyclesThroughWidth(t *testing.T) {
	// rule 170 copies the right neighbor: a lone cell travels around the ring.
	a := Find(170, 9, 100)
	assert.Equal(t, 0, a.Transient)
	assert.Equal(t, 9, a.Period)
}

func TestDetectBudgetExhausted(t *testing.T) {
	a := Find(170, 9, 3)
	assert.Equal(t, 0, a.Period)
	assert.Equal(t, 3, a.Transient)
	assert.False(t, a.Resolved())
	assert.Equal(t, ClassUnresolved, Classify(a))
	assert.True(t, Notable(a))
}

func TestDetectZeroBudget(t *testing.T) {
	a := Find(110, 7, 0)
	assert.Equal(t, Analysis{Transient: 0, Period: 0, FinalDensity: 1.0 / 7.0}, a)
}

func TestDetectDeadInitialState(t *testing.T) {
	a := Detect(110, automaton.NewState(6), 10)
	assert.True(t, a.Died)
	assert.Equal(t, 1, a.Transient)
}

func TestDetectAlwaysResolvesWithGuaranteedBudget(t *testing.T) {
	for width := 1; width <= 8; width++ {
		budget := GuaranteedBudget(width)
		for r := 0; r <= 255; r++ {
			a := Find(automaton.Rule(r), width, budget)
			if !a.Resolved() {
				t.Fatalf("rule %d width %d unresolved within %d steps: %+v", r, width, budget, a)
			}
		}
	}
}

func TestDetectSeededStatesResolve(t *testing.T) {
	budget := GuaranteedBudget(10)
	for trial := 0; trial < 3; trial++ {
		initial := automaton.Seeded(10, automaton.TrainingSeed(trial), automaton.TrainingDensity)
		for _, r := range []automaton.Rule{30, 90, 110, 150} {
			a := Detect(r, initial, budget)
			require.Truef(t, a.Resolved(), "rule %d trial %d", r, trial)
		}
	}
}

func TestGuaranteedBudget(t *testing.T) {
	assert.Equal(t, 2, GuaranteedBudget(0))
	assert.Equal(t, 9, GuaranteedBudget(3))
	assert.Greater(t, GuaranteedBudget(80), GuaranteedBudget(61))
}

func TestClassifyLongCycle(t *testing.T) {
	assert.Equal(t, ClassLongCycle, Classify(Analysis{Period: 11}))
	assert.Equal(t, ClassShortCycle, Classify(Analysis{Period: 10}))
	assert.Equal(t, "long cycle", ClassLongCycle.String())
}
