package infer

import "ecalab/internal/automaton"

// Tally accumulates observed outcomes for one neighborhood code.
type Tally struct {
	Observations int `json:"observations"`
	Ones         int `json:"ones"`
}

// P is the observed probability of a live outcome; 0.5 when nothing was observed.
func (t Tally) P() float64 {
	if t.Observations == 0 {
		return 0.5
	}
	return float64(t.Ones) / float64(t.Observations)
}

// Counts holds one tally per neighborhood code.
type Counts [automaton.NeighborhoodCount]Tally

// Count tallies every (neighborhood code, next value) pair in the trials. With
// noise > 0 an outcome is flipped when ((seed + position + running count of its code)
// mod 1000)/1000 < noise; the running count already includes the current sample. The
// decision is a pure function of its inputs, so noisy runs are reproducible.
func Count(trials []Trial, noise float64) Counts {
	var counts Counts
	for _, trial := range trials {
		for _, tr := range trial.Transitions {
			for i := range tr.Before {
				code := tr.Before.Code(i)
				counts[code].Observations++

				outcome := tr.After[i]
				if noise > 0 && flip(trial.Seed, i, counts[code].Observations, noise) {
					outcome = !outcome
				}
				if outcome {
					counts[code].Ones++
				}
			}
		}
	}
	return counts
}

func flip(seed uint64, position, observed int, noise float64) bool {
	check := float64((seed+uint64(position)+uint64(observed))%1000) / 1000
	return check < noise
}

// Rule takes a strict majority vote per code: bit c is set iff P(1|c) > 0.5, so
// ties and unobserved codes infer 0.
func (c Counts) Rule() automaton.Rule {
	var table [automaton.NeighborhoodCount]bool
	for code, t := range c {
		table[code] = t.P() > 0.5
	}
	return automaton.FromTable(table)
}

// Covered reports whether every neighborhood was observed at least once.
func (c Counts) Covered() bool {
	for _, t := range c {
		if t.Observations == 0 {
			return false
		}
	}
	return true
}

func (c Counts) Total() int {
	n := 0
	for _, t := range c {
		n += t.Observations
	}
	return n
}
