// Package dependency determines which neighborhood positions a rule's output depends
// on, either by inspecting the rule table or from observed transitions.
package dependency

import (
	"strings"

	"ecalab/internal/automaton"
	"ecalab/internal/infer"
)

type Position int

const (
	Left Position = iota
	Center
	Right
)

var positions = [...]Position{Left, Center, Right}

func Positions() []Position { return positions[:] }

func (p Position) String() string {
	switch p {
	case Left:
		return "left"
	case Center:
		return "center"
	default:
		return "right"
	}
}

// Set is a subset of positions.
type Set uint8

func SetOf(ps ...Position) Set {
	var s Set
	for _, p := range ps {
		s |= 1 << uint(p)
	}
	return s
}

func (s Set) Has(p Position) bool { return s&(1<<uint(p)) != 0 }

func (s Set) String() string {
	if s == 0 {
		return "{}"
	}
	var parts []string
	for _, p := range positions {
		if s.Has(p) {
			parts = append(parts, p.String())
		}
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// code builds the neighborhood code with p set to v and the other two positions,
// in left-to-right order, set to a and b.
func code(p Position, v, a, b bool) int {
	switch p {
	case Left:
		return automaton.Code(v, a, b)
	case Center:
		return automaton.Code(a, v, b)
	default:
		return automaton.Code(a, b, v)
	}
}

// others enumerates the four settings of the two remaining positions.
var others = [4][2]bool{{false, false}, {false, true}, {true, false}, {true, true}}

// Direct reports the positions for which some setting of the other two makes
// flipping the position change the output.
func Direct(rule automaton.Rule) Set {
	var s Set
	for _, p := range positions {
		for _, o := range others {
			if rule.Output(code(p, false, o[0], o[1])) != rule.Output(code(p, true, o[0], o[1])) {
				s |= SetOf(p)
				break
			}
		}
	}
	return s
}

// Vote is the majority outcome observed for one neighborhood.
type Vote int

const (
	VoteUnobserved Vote = iota
	VoteZero
	VoteOne
)

func (v Vote) String() string {
	switch v {
	case VoteZero:
		return "0"
	case VoteOne:
		return "1"
	default:
		return "?"
	}
}

func vote(t infer.Tally) Vote {
	if t.Observations == 0 {
		return VoteUnobserved
	}
	if t.Ones > t.Observations-t.Ones {
		return VoteOne
	}
	return VoteZero
}

// Witness is a setting of the other two positions under which the votes for the
// position at 0 and at 1 differ.
type Witness struct {
	Others string `json:"others"`
	Vote0  Vote   `json:"vote0"`
	Vote1  Vote   `json:"vote1"`
}

type Evidence struct {
	Position  Position  `json:"position"`
	Matters   bool      `json:"matters"`
	Witnesses []Witness `json:"witnesses,omitempty"`
}

// Statistical infers the dependency set from observed counts. An unobserved
// neighborhood votes differently from any observed one, so gaps in coverage can make
// a position look relevant.
func Statistical(counts infer.Counts) (Set, [3]Evidence) {
	var (
		s        Set
		evidence [3]Evidence
	)
	for _, p := range positions {
		ev := Evidence{Position: p}
		for _, o := range others {
			v0 := vote(counts[code(p, false, o[0], o[1])])
			v1 := vote(counts[code(p, true, o[0], o[1])])
			if v0 != v1 {
				ev.Matters = true
				ev.Witnesses = append(ev.Witnesses, Witness{Others: bits(o[0]) + bits(o[1]), Vote0: v0, Vote1: v1})
			}
		}
		if ev.Matters {
			s |= SetOf(p)
		}
		evidence[p] = ev
	}
	return s, evidence
}

func bits(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
