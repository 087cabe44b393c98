// Package infer recovers an automaton rule from observed transitions and measures how
// the recovered local mechanism generalizes compared to a global correlational
// predictor.
package infer

import "ecalab/internal/automaton"

// Transition is one observed generation step used as a training sample.
type Transition struct {
	Before automaton.State
	After  automaton.State
}

// Trial is the ordered transitions of one seeded run.
type Trial struct {
	Seed        uint64
	Transitions []Transition
}

// Sample runs trials independent training runs of rule from 50%-density seeded
// states and records every transition.
func Sample(rule automaton.Rule, width, generations, trials int) []Trial {
	out := make([]Trial, 0, trials)
	for t := 0; t < trials; t++ {
		seed := automaton.TrainingSeed(t)
		cur := automaton.Seeded(width, seed, automaton.TrainingDensity)
		trial := Trial{Seed: seed, Transitions: make([]Transition, 0, generations)}
		for g := 0; g < generations; g++ {
			next := automaton.Step(rule, cur)
			trial.Transitions = append(trial.Transitions, Transition{Before: cur, After: next})
			cur = next
		}
		out = append(out, trial)
	}
	return out
}

// Flatten concatenates the transitions of all trials in order.
func Flatten(trials []Trial) []Transition {
	n := 0
	for _, t := range trials {
		n += len(t.Transitions)
	}
	out := make([]Transition, 0, n)
	for _, t := range trials {
		out = append(out, t.Transitions...)
	}
	return out
}
