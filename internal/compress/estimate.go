// Package compress estimates the algorithmic complexity of an automaton run by how
// well its spacetime diagram compresses.
package compress

import (
	"fmt"
	"sort"

	"ecalab/internal/automaton"
)

// Pack serializes a spacetime diagram row-major, eight cells per byte, most
// significant bit first. A trailing partial byte is zero padded.
func Pack(diagram []automaton.State) []byte {
	total := 0
	for _, row := range diagram {
		total += len(row)
	}
	out := make([]byte, (total+7)/8)
	pos := 0
	for _, row := range diagram {
		for _, cell := range row {
			if cell {
				out[pos/8] |= 1 << uint(7-pos%8)
			}
			pos++
		}
	}
	return out
}

// Estimate is the compression outcome of one run. Ratio near 0 means highly
// structured, near 1 (or above, for tiny inputs) means incompressible.
type Estimate struct {
	Rule            automaton.Rule `json:"rule"`
	Width           int            `json:"width"`
	Generations     int            `json:"generations"`
	Codec           string         `json:"codec"`
	RawBits         int            `json:"raw_bits"`
	CompressedBits  int            `json:"compressed_bits"`
	RawBytes        int            `json:"raw_bytes"`
	CompressedBytes int            `json:"compressed_bytes"`
	Ratio           float64        `json:"ratio"`
	Class           Class          `json:"class"`
}

// Measure compresses generations 0..generations of the single-seed run.
func Measure(codec Codec, rule automaton.Rule, width, generations int) (Estimate, error) {
	if codec == nil {
		codec = DefaultCodec()
	}
	diagram := automaton.Run(rule, automaton.SingleSeed(width), generations)
	raw := Pack(diagram)
	compressed, err := codec.Compress(raw)
	if err != nil {
		return Estimate{}, fmt.Errorf("compress rule %d: %w", rule, err)
	}

	est := Estimate{
		Rule:            rule,
		Width:           width,
		Generations:     len(diagram) - 1,
		Codec:           codec.Name(),
		RawBits:         width * len(diagram),
		CompressedBits:  8 * len(compressed),
		RawBytes:        len(raw),
		CompressedBytes: len(compressed),
	}
	if est.RawBits > 0 {
		est.Ratio = float64(est.CompressedBits) / float64(est.RawBits)
	}
	est.Class = Classify(est.Ratio)
	return est, nil
}

type Class int

const (
	ClassTrivial Class = iota
	ClassPeriodic
	ClassStructured
	ClassComplex
	ClassChaotic
)

var classNames = [...]string{"trivial", "periodic", "structured", "complex", "chaotic"}

func (c Class) String() string {
	if c < 0 || int(c) >= len(classNames) {
		return "unknown"
	}
	return classNames[c]
}

// Label is the survey summary label including the ratio band.
func (c Class) Label() string {
	switch c {
	case ClassTrivial:
		return "Trivial (<5%)"
	case ClassPeriodic:
		return "Periodic (5-20%)"
	case ClassStructured:
		return "Structured (20-50%)"
	case ClassComplex:
		return "Complex (50-80%)"
	default:
		return "Chaotic (>80%)"
	}
}

func Classes() []Class {
	return []Class{ClassTrivial, ClassPeriodic, ClassStructured, ClassComplex, ClassChaotic}
}

func Classify(ratio float64) Class {
	switch {
	case ratio < 0.05:
		return ClassTrivial
	case ratio < 0.20:
		return ClassPeriodic
	case ratio < 0.50:
		return ClassStructured
	case ratio < 0.80:
		return ClassComplex
	default:
		return ClassChaotic
	}
}

// Ranking orders survey estimates by ratio, most compressible first.
type Ranking struct {
	Estimates []Estimate    `json:"estimates"`
	Counts    map[Class]int `json:"counts"`
}

// Rank sorts a copy of estimates by ascending ratio; equal ratios keep input order.
func Rank(estimates []Estimate) Ranking {
	sorted := make([]Estimate, len(estimates))
	copy(sorted, estimates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Ratio < sorted[j].Ratio
	})
	counts := make(map[Class]int, len(classNames))
	for _, e := range sorted {
		counts[e.Class]++
	}
	return Ranking{Estimates: sorted, Counts: counts}
}

// MostCompressible is the first non-trivial estimate; ok is false when every rule
// is trivial.
func (r Ranking) MostCompressible() (Estimate, bool) {
	for _, e := range r.Estimates {
		if e.Class != ClassTrivial {
			return e, true
		}
	}
	return Estimate{}, false
}

func (r Ranking) LeastCompressible() (Estimate, bool) {
	if len(r.Estimates) == 0 {
		return Estimate{}, false
	}
	return r.Estimates[len(r.Estimates)-1], true
}
