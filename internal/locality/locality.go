// Package locality finds the smallest neighborhood radius that explains observed
// transitions.
package locality

import (
	"math"
	"sort"
	"strings"

	"ecalab/internal/automaton"
	"ecalab/internal/infer"
)

// TrueRadius is the radius every elementary rule is defined over.
const TrueRadius = 1

const (
	DefaultMaxRadius = 4
	SampleLimit      = 3
)

// Window tallies the next center value seen for one (2r+1)-cell pattern.
type Window struct {
	Pattern string `json:"pattern"`
	Zeros   int    `json:"zeros"`
	Ones    int    `json:"ones"`
}

// Consistent reports whether the pattern always produced the same next value.
func (w Window) Consistent() bool { return w.Zeros == 0 || w.Ones == 0 }

// Pattern renders the 2r+1 cells centered on i with wraparound, left to right.
func Pattern(s automaton.State, i, r int) string {
	var b strings.Builder
	b.Grow(2*r + 1)
	for j := 0; j <= 2*r; j++ {
		if s.At(i - r + j) {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

type RadiusResult struct {
	Radius          int      `json:"radius"`
	WindowSize      int      `json:"window_size"`
	Observed        int      `json:"observed"`
	Possible        int      `json:"possible"`
	ConsistentCount int      `json:"consistent_count"`
	ConsistencyRate float64  `json:"consistency_rate"`
	Consistent      bool     `json:"consistent"`
	Inconsistent    []Window `json:"inconsistent,omitempty"`
}

// CheckRadius tabulates every radius-r window in the transitions.
func CheckRadius(transitions []infer.Transition, r int) RadiusResult {
	windows := make(map[string]*Window)
	for _, tr := range transitions {
		for i := range tr.Before {
			key := Pattern(tr.Before, i, r)
			w, ok := windows[key]
			if !ok {
				w = &Window{Pattern: key}
				windows[key] = w
			}
			if tr.After[i] {
				w.Ones++
			} else {
				w.Zeros++
			}
		}
	}

	res := RadiusResult{
		Radius:     r,
		WindowSize: 2*r + 1,
		Observed:   len(windows),
		Possible:   possible(2*r + 1),
	}
	var bad []Window
	for _, w := range windows {
		if w.Consistent() {
			res.ConsistentCount++
		} else {
			bad = append(bad, *w)
		}
	}
	if res.Observed > 0 {
		res.ConsistencyRate = float64(res.ConsistentCount) / float64(res.Observed)
	}
	res.Consistent = len(bad) == 0
	sort.Slice(bad, func(i, j int) bool { return bad[i].Pattern < bad[j].Pattern })
	if len(bad) > SampleLimit {
		bad = bad[:SampleLimit]
	}
	res.Inconsistent = bad
	return res
}

func possible(size int) int {
	if size >= 62 {
		return math.MaxInt
	}
	return 1 << uint(size)
}

// MinimalRadius checks r = 0..maxRadius and stops at the first consistent radius.
// found is false when none is consistent; results hold every radius checked.
func MinimalRadius(transitions []infer.Transition, maxRadius int) (results []RadiusResult, radius int, found bool) {
	for r := 0; r <= maxRadius; r++ {
		res := CheckRadius(transitions, r)
		results = append(results, res)
		if res.Consistent {
			return results, r, true
		}
	}
	return results, -1, false
}

type Diagnosis int

const (
	DiagnosisUnresolved Diagnosis = iota
	DiagnosisSuccess
	DiagnosisBelowTrue
	DiagnosisAboveTrue
)

func (d Diagnosis) String() string {
	switch d {
	case DiagnosisSuccess:
		return "success"
	case DiagnosisBelowTrue:
		return "effective radius below 1"
	case DiagnosisAboveTrue:
		return "larger than necessary"
	default:
		return "unresolved"
	}
}

// Diagnose compares an inferred radius against TrueRadius.
func Diagnose(radius int, found bool) Diagnosis {
	switch {
	case !found:
		return DiagnosisUnresolved
	case radius == TrueRadius:
		return DiagnosisSuccess
	case radius < TrueRadius:
		return DiagnosisBelowTrue
	default:
		return DiagnosisAboveTrue
	}
}

type Config struct {
	Rule        automaton.Rule `json:"rule"`
	Width       int            `json:"width"`
	Generations int            `json:"generations"`
	MaxRadius   int            `json:"max_radius"`
	Trials      int            `json:"trials"`
}

type Report struct {
	Config         Config         `json:"config"`
	Transitions    int            `json:"transitions"`
	Results        []RadiusResult `json:"results"`
	Radius         int            `json:"radius"`
	Found          bool           `json:"found"`
	Diagnosis      Diagnosis      `json:"diagnosis"`
	DiagnosisLabel string         `json:"diagnosis_label"`
}

// Run samples clean training transitions and infers the minimal radius.
func Run(cfg Config) Report {
	transitions := infer.Flatten(infer.Sample(cfg.Rule, cfg.Width, cfg.Generations, cfg.Trials))
	results, radius, found := MinimalRadius(transitions, cfg.MaxRadius)
	d := Diagnose(radius, found)
	return Report{
		Config:         cfg,
		Transitions:    len(transitions),
		Results:        results,
		Radius:         radius,
		Found:          found,
		Diagnosis:      d,
		DiagnosisLabel: d.String(),
	}
}
