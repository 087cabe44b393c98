// Package entropy measures spatial disorder of automaton generations with k-block
// Shannon entropy.
package entropy

import (
	"math"
	"sort"

	"ecalab/internal/automaton"
	"ecalab/internal/stats"
)

// Block returns the Shannon entropy, in bits, of the length-k windows of s. Every cell
// starts one window (with wraparound), so there are always len(s) samples. k=0 and
// k>len(s) return 0.
func Block(s automaton.State, k int) float64 {
	n := len(s)
	if k <= 0 || k > n {
		return 0
	}

	if k <= 20 {
		counts := make([]int, 1<<uint(k))
		for i := 0; i < n; i++ {
			counts[window(s, i, k)]++
		}
		return shannon(counts, n)
	}

	// wide windows are keyed by content instead of allocating 2^k counters
	byKey := make(map[string]int)
	w := make(automaton.State, k)
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			w[j] = s[(i+j)%n]
		}
		byKey[w.Key()]++
	}
	counts := make([]int, 0, len(byKey))
	for _, c := range byKey {
		counts = append(counts, c)
	}
	sort.Ints(counts)
	return shannon(counts, n)
}

func window(s automaton.State, start, k int) int {
	n := len(s)
	pattern := 0
	for j := 0; j < k; j++ {
		if s[(start+j)%n] {
			pattern |= 1 << uint(k-1-j)
		}
	}
	return pattern
}

func shannon(counts []int, total int) float64 {
	h := 0.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / float64(total)
		h -= p * math.Log2(p)
	}
	return h
}

// Track returns the block entropy of generations 0..generations.
func Track(rule automaton.Rule, initial automaton.State, generations, k int) []float64 {
	diagram := automaton.Run(rule, initial, generations)
	out := make([]float64, len(diagram))
	for g, s := range diagram {
		out[g] = Block(s, k)
	}
	return out
}

// Point is one generation of an entropy trace.
type Point struct {
	Generation int     `json:"generation"`
	Entropy    float64 `json:"entropy"`
	Density    float64 `json:"density"`
}

// Trace is the per-generation entropy and density of a single-seed run.
type Trace struct {
	Rule       automaton.Rule `json:"rule"`
	Width      int            `json:"width"`
	BlockSize  int            `json:"block_size"`
	Points     []Point        `json:"points"`
	Summary    stats.Summary  `json:"summary"`
	Normalized float64        `json:"normalized"`
}

func NewTrace(rule automaton.Rule, width, generations, k int) Trace {
	diagram := automaton.Run(rule, automaton.SingleSeed(width), generations)
	points := make([]Point, len(diagram))
	values := make([]float64, len(diagram))
	for g, s := range diagram {
		h := Block(s, k)
		points[g] = Point{Generation: g, Entropy: h, Density: s.Density()}
		values[g] = h
	}
	tr := Trace{Rule: rule, Width: width, BlockSize: k, Points: points, Summary: stats.Summarize(values)}
	if k > 0 {
		tr.Normalized = tr.Summary.Mean / float64(k)
	}
	return tr
}

// Series returns just the entropy values of the trace.
func (t Trace) Series() []float64 {
	out := make([]float64, len(t.Points))
	for i, p := range t.Points {
		out[i] = p.Entropy
	}
	return out
}

// Printed reports whether generation g of an n-generation trace belongs in the
// abbreviated listing: the first five, every tenth and the last.
func Printed(g, generations int) bool {
	return g <= 5 || g%10 == 0 || g == generations
}
