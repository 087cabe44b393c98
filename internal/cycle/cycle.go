// Package cycle runs an automaton until it revisits a state, dies, or exhausts its
// step budget.
package cycle

import (
	"math"

	"ecalab/internal/automaton"
)

// ShortCycleLimit is the largest period still classified as a short cycle.
const ShortCycleLimit = 10

// Analysis is the outcome of one detection run. Period 0 means the budget ran out
// before any repeat was seen; it never means the trajectory is aperiodic.
type Analysis struct {
	Transient    int     `json:"transient"`
	Period       int     `json:"period"`
	Died         bool    `json:"died"`
	FinalDensity float64 `json:"final_density"`
}

func (a Analysis) Resolved() bool { return a.Period > 0 }

// Detect steps initial under rule for at most maxSteps generations.
//
// A dead generation is reported as a fixed cycle of period 1 entered after k+1 steps.
// A generation equal to an earlier generation j yields transient j and period k+1-j.
func Detect(rule automaton.Rule, initial automaton.State, maxSteps int) Analysis {
	if maxSteps < 0 {
		maxSteps = 0
	}
	cur := initial.Clone()
	// generation index of every state seen so far, keyed by content
	seen := map[string]int{cur.Key(): 0}

	for step := 0; step < maxSteps; step++ {
		cur = automaton.Step(rule, cur)

		if cur.Dead() {
			return Analysis{Transient: step + 1, Period: 1, Died: true, FinalDensity: 0}
		}
		if start, ok := seen[cur.Key()]; ok {
			return Analysis{
				Transient:    start,
				Period:       step + 1 - start,
				FinalDensity: cur.Density(),
			}
		}
		seen[cur.Key()] = step + 1
	}

	return Analysis{Transient: maxSteps, Period: 0, FinalDensity: cur.Density()}
}

// Find runs Detect from the single-centre seed.
func Find(rule automaton.Rule, width, maxSteps int) Analysis {
	return Detect(rule, automaton.SingleSeed(width), maxSteps)
}

// GuaranteedBudget is a step budget that always resolves a width-cell automaton:
// 2^width distinct states plus one step. It saturates at math.MaxInt.
func GuaranteedBudget(width int) int {
	if width < 0 {
		width = 0
	}
	if width >= 62 {
		return math.MaxInt
	}
	return 1<<uint(width) + 1
}

type Class int

const (
	ClassDies Class = iota
	ClassShortCycle
	ClassLongCycle
	ClassUnresolved
)

func (c Class) String() string {
	switch c {
	case ClassDies:
		return "dies"
	case ClassShortCycle:
		return "short cycle"
	case ClassLongCycle:
		return "long cycle"
	default:
		return "unresolved"
	}
}

func Classify(a Analysis) Class {
	switch {
	case a.Died:
		return ClassDies
	case a.Period > 0 && a.Period <= ShortCycleLimit:
		return ClassShortCycle
	case a.Period > ShortCycleLimit:
		return ClassLongCycle
	default:
		return ClassUnresolved
	}
}

// Notable reports whether a survey row is worth printing: anything that did not die
// on the very first step.
func Notable(a Analysis) bool {
	return !a.Died || a.Transient > 1
}
