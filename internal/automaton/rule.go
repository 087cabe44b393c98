package automaton

import "fmt"

// Rule is an elementary automaton update rule. Bit i holds the next value of a cell
// whose neighborhood code is i = left<<2 | center<<1 | right.
type Rule uint8

// NeighborhoodCount is the number of distinct radius-1 neighborhoods.
const NeighborhoodCount = 8

// Code packs a (left, center, right) neighborhood, left most significant.
func Code(left, center, right bool) int {
	code := 0
	if left {
		code |= 4
	}
	if center {
		code |= 2
	}
	if right {
		code |= 1
	}
	return code
}

// Output reports the rule's next value for a neighborhood code in [0,7].
func (r Rule) Output(code int) bool {
	return (uint8(r)>>uint(code&7))&1 == 1
}

// Bit is Output as 0 or 1, for rendering truth tables.
func (r Rule) Bit(code int) uint8 {
	return (uint8(r) >> uint(code&7)) & 1
}

// Table expands the rule into its 8-entry lookup table indexed by neighborhood code.
func (r Rule) Table() [NeighborhoodCount]bool {
	var table [NeighborhoodCount]bool
	for code := range table {
		table[code] = r.Output(code)
	}
	return table
}

// FromTable packs a lookup table back into a rule byte.
func FromTable(table [NeighborhoodCount]bool) Rule {
	var r Rule
	for code, out := range table {
		if out {
			r |= 1 << uint(code)
		}
	}
	return r
}

// Binary renders the rule byte as 8 binary digits, code 7 first.
func (r Rule) Binary() string {
	return fmt.Sprintf("%08b", uint8(r))
}

// Pattern renders a neighborhood code as three binary digits, e.g. 6 -> "110".
func Pattern(code int) string {
	return fmt.Sprintf("%d%d%d", (code>>2)&1, (code>>1)&1, code&1)
}

// InterestingRule is a rule worth a closer look together with its Wolfram class.
type InterestingRule struct {
	Rule  Rule
	Class int
	Note  string
}

var interestingRules = [...]InterestingRule{
	{Rule: 30, Class: 3, Note: "chaotic"},
	{Rule: 45, Class: 3, Note: "chaotic"},
	{Rule: 60, Class: 3, Note: "chaotic (XOR)"},
	{Rule: 73, Class: 4, Note: "complex"},
	{Rule: 89, Class: 4, Note: "complex"},
	{Rule: 90, Class: 3, Note: "Sierpinski triangle"},
	{Rule: 105, Class: 3, Note: "chaotic"},
	{Rule: 106, Class: 4, Note: "complex"},
	{Rule: 110, Class: 4, Note: "Turing complete"},
	{Rule: 124, Class: 4, Note: "complex"},
	{Rule: 137, Class: 4, Note: "complex"},
	{Rule: 150, Class: 3, Note: "chaotic"},
}

// InterestingRules returns a copy of the class 3 and class 4 reference rules.
func InterestingRules() []InterestingRule {
	out := make([]InterestingRule, len(interestingRules))
	copy(out, interestingRules[:])
	return out
}

// AllRules returns every rule in ascending order.
func AllRules() []Rule {
	rules := make([]Rule, 0, 256)
	for r := 0; r <= 255; r++ {
		rules = append(rules, Rule(r))
	}
	return rules
}
