package automaton

import "strings"

const (
	LiveGlyph = '#'
	DeadGlyph = ' '
)

// State is one generation of a toroidal row of binary cells. Index arithmetic wraps
// modulo the width.
type State []bool

// NewState returns an all-dead state; a negative width yields an empty state.
func NewState(width int) State {
	if width < 0 {
		width = 0
	}
	return make(State, width)
}

// SingleSeed returns a state with only the centre cell (width/2) alive.
func SingleSeed(width int) State {
	s := NewState(width)
	if width > 0 {
		s[width/2] = true
	}
	return s
}

// Seeded builds a deterministic pseudo-random state: cell i is alive iff
// (seed*(i+1)) mod 100 < densityPercent, with 64-bit wrapping multiplication.
func Seeded(width int, seed uint64, densityPercent int) State {
	s := NewState(width)
	for i := range s {
		s[i] = int((seed*uint64(i+1))%100) < densityPercent
	}
	return s
}

// FromBits parses a string of '1'/'#' (alive) and anything else (dead).
func FromBits(bits string) State {
	s := NewState(len(bits))
	for i := 0; i < len(bits); i++ {
		s[i] = bits[i] == '1' || bits[i] == LiveGlyph
	}
	return s
}

func (s State) Width() int { return len(s) }

// Clone returns a copy that shares no storage with s.
func (s State) Clone() State {
	out := make(State, len(s))
	copy(out, s)
	return out
}

func (s State) Population() int {
	n := 0
	for _, c := range s {
		if c {
			n++
		}
	}
	return n
}

// Density is the live fraction; an empty state has density 0.
func (s State) Density() float64 {
	if len(s) == 0 {
		return 0
	}
	return float64(s.Population()) / float64(len(s))
}

// Dead reports whether no cell is alive. An empty state is dead.
func (s State) Dead() bool {
	for _, c := range s {
		if c {
			return false
		}
	}
	return true
}

func (s State) Equal(other State) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// At returns cell i with wraparound for any integer i.
func (s State) At(i int) bool {
	n := len(s)
	return s[((i%n)+n)%n]
}

// Code returns the neighborhood code of cell i.
func (s State) Code(i int) int {
	return Code(s.At(i-1), s.At(i), s.At(i+1))
}

// Key packs the cells into a compact string usable as a map key. Two states of the
// same width share a key iff they are equal.
func (s State) Key() string {
	buf := make([]byte, (len(s)+7)/8+1)
	buf[0] = byte(len(s) % 8)
	for i, c := range s {
		if c {
			buf[1+i/8] |= 1 << uint(7-i%8)
		}
	}
	return string(buf)
}

// String renders live cells as LiveGlyph and dead cells as DeadGlyph.
func (s State) String() string {
	var b strings.Builder
	b.Grow(len(s))
	for _, c := range s {
		if c {
			b.WriteByte(LiveGlyph)
		} else {
			b.WriteByte(DeadGlyph)
		}
	}
	return b.String()
}

// Bits renders the state as '1'/'0' digits, the inverse of FromBits.
func (s State) Bits() string {
	var b strings.Builder
	b.Grow(len(s))
	for _, c := range s {
		if c {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}
