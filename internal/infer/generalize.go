package infer

import "ecalab/internal/automaton"

// ErrorRates are per-cell disagreement rates on the two out-of-distribution regimes.
type ErrorRates struct {
	Sparse float64 `json:"sparse"`
	Dense  float64 `json:"dense"`
}

type regime struct {
	seed    func(int) uint64
	density int
}

var (
	sparseRegime = regime{seed: automaton.SparseSeed, density: automaton.SparseDensity}
	denseRegime  = regime{seed: automaton.DenseSeed, density: automaton.DenseDensity}
)

// CausalErrors runs the true and the inferred rule side by side from the same
// out-of-distribution states and counts cells where the two trajectories disagree.
// Both run freely, so an early mistake keeps compounding.
func CausalErrors(truth, inferred automaton.Rule, width, generations, trials int) ErrorRates {
	return ErrorRates{
		Sparse: causalRate(truth, inferred, width, generations, trials, sparseRegime),
		Dense:  causalRate(truth, inferred, width, generations, trials, denseRegime),
	}
}

func causalRate(truth, inferred automaton.Rule, width, generations, trials int, reg regime) float64 {
	errors, total := 0, 0
	for t := 0; t < trials; t++ {
		initial := automaton.Seeded(width, reg.seed(t), reg.density)
		a := automaton.New(truth, initial)
		b := automaton.New(inferred, initial)
		for g := 0; g < generations; g++ {
			x, y := a.Step(), b.Step()
			for i := range x {
				total++
				if x[i] != y[i] {
					errors++
				}
			}
		}
	}
	return rate(errors, total)
}

func rate(errors, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(errors) / float64(total)
}

// DensityBuckets is the number of density deciles of the correlational baseline.
const DensityBuckets = 10

// Bucket maps a density in [0,1] to its decile, with density 1 folded into the top one.
func Bucket(density float64) int {
	b := int(density * DensityBuckets)
	if b > DensityBuckets-1 {
		b = DensityBuckets - 1
	}
	if b < 0 {
		b = 0
	}
	return b
}

// Baseline is a deliberately global predictor: it sees only the row's density decile
// and the cell's own value, never its neighbors.
type Baseline struct {
	Counts [DensityBuckets][2]int `json:"counts"`
	Ones   [DensityBuckets][2]int `json:"ones"`
}

// TrainBaseline learns from the clean training transitions.
func TrainBaseline(trials []Trial) Baseline {
	var b Baseline
	for _, trial := range trials {
		for _, tr := range trial.Transitions {
			bucket := Bucket(tr.Before.Density())
			for i, cell := range tr.Before {
				own := boolIndex(cell)
				b.Counts[bucket][own]++
				if tr.After[i] {
					b.Ones[bucket][own]++
				}
			}
		}
	}
	return b
}

// Predict votes live iff more than half (integer division) of the matching training
// outcomes were live; an unseen key predicts dead.
func (b Baseline) Predict(bucket int, cell bool) bool {
	own := boolIndex(cell)
	count := b.Counts[bucket][own]
	if count == 0 {
		return false
	}
	return b.Ones[bucket][own] > count/2
}

// Errors scores one-step-ahead predictions against the true rule on the
// out-of-distribution regimes.
func (b Baseline) Errors(truth automaton.Rule, width, generations, trials int) ErrorRates {
	return ErrorRates{
		Sparse: b.rate(truth, width, generations, trials, sparseRegime),
		Dense:  b.rate(truth, width, generations, trials, denseRegime),
	}
}

func (b Baseline) rate(truth automaton.Rule, width, generations, trials int, reg regime) float64 {
	errors, total := 0, 0
	for t := 0; t < trials; t++ {
		cur := automaton.Seeded(width, reg.seed(t), reg.density)
		for g := 0; g < generations; g++ {
			bucket := Bucket(cur.Density())
			next := automaton.Step(truth, cur)
			for i := range cur {
				total++
				if b.Predict(bucket, cur[i]) != next[i] {
					errors++
				}
			}
			cur = next
		}
	}
	return rate(errors, total)
}

func boolIndex(b bool) int {
	if b {
		return 1
	}
	return 0
}
