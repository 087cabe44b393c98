package entropy

import (
	"ecalab/internal/automaton"
	"ecalab/internal/stats"
)

// SurveySkip is the number of transient generations discarded before a signature is
// measured.
const SurveySkip = 50

type Class int

const (
	ClassDead Class = iota
	ClassPeriodic
	ClassFractal
	ClassComplex
	ClassChaotic
)

var classNames = [...]string{"dead", "periodic", "fractal", "complex", "chaotic"}

func (c Class) String() string {
	if c < 0 || int(c) >= len(classNames) {
		return "unknown"
	}
	return classNames[c]
}

// Classes lists every class in reporting order.
func Classes() []Class {
	return []Class{ClassDead, ClassPeriodic, ClassFractal, ClassComplex, ClassChaotic}
}

// Signature summarizes a rule's entropy after its transient has passed. NormMean and
// NormStd are divided by the block size, so both lie in [0,1].
type Signature struct {
	Rule     automaton.Rule `json:"rule"`
	Mean     float64        `json:"mean"`
	Std      float64        `json:"std"`
	NormMean float64        `json:"norm_mean"`
	NormStd  float64        `json:"norm_std"`
	Class    Class          `json:"class"`
}

// Measure skips SurveySkip generations from the single seed, then samples
// generations+1 consecutive generations.
func Measure(rule automaton.Rule, width, generations, k int) Signature {
	a := automaton.New(rule, automaton.SingleSeed(width))
	for i := 0; i < SurveySkip; i++ {
		a.Step()
	}
	values := make([]float64, 0, generations+1)
	values = append(values, Block(a.Cells(), k))
	for g := 0; g < generations; g++ {
		values = append(values, Block(a.Step(), k))
	}

	summary := stats.Summarize(values)
	sig := Signature{Rule: rule, Mean: summary.Mean, Std: summary.Std}
	if k > 0 {
		sig.NormMean = summary.Mean / float64(k)
		sig.NormStd = summary.Std / float64(k)
	}
	sig.Class = Classify(sig.NormMean, sig.NormStd)
	return sig
}

// Classify applies the thresholds in priority order; the first match wins.
func Classify(normMean, normStd float64) Class {
	switch {
	case normMean < 0.05:
		return ClassDead
	case normStd < 0.02 && normMean < 0.3:
		return ClassPeriodic
	case normStd > 0.15:
		return ClassFractal
	case normMean > 0.75 && normStd < 0.1:
		return ClassChaotic
	default:
		return ClassComplex
	}
}

// Notable reports whether a survey row is printed.
func (s Signature) Notable() bool {
	return s.Class == ClassFractal || s.Class == ClassComplex || s.Class == ClassChaotic
}
