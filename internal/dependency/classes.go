package dependency

import "ecalab/internal/automaton"

// Class is one of the eight dependency subsets, in report order.
type Class struct {
	Name string `json:"name"`
	Set  Set    `json:"set"`
}

var classes = [...]Class{
	{Name: "constant", Set: 0},
	{Name: "center only", Set: SetOf(Center)},
	{Name: "left only", Set: SetOf(Left)},
	{Name: "right only", Set: SetOf(Right)},
	{Name: "left+center", Set: SetOf(Left, Center)},
	{Name: "center+right", Set: SetOf(Center, Right)},
	{Name: "left+right", Set: SetOf(Left, Right)},
	{Name: "all three", Set: SetOf(Left, Center, Right)},
}

func Classes() []Class { return classes[:] }

// ClassName returns the report label of a dependency set.
func ClassName(s Set) string {
	for _, c := range classes {
		if c.Set == s {
			return c.Name
		}
	}
	return s.String()
}

// Truth is f(l,r) with the center held at 0, as four digits f(0,0) f(0,1) f(1,0) f(1,1).
func Truth(rule automaton.Rule) string {
	var b [4]byte
	for i, o := range others {
		b[i] = '0'
		if rule.Output(automaton.Code(o[0], false, o[1])) {
			b[i] = '1'
		}
	}
	return string(b[:])
}

var booleanNames = map[string]string{
	"0000": "FALSE",
	"0001": "AND",
	"0010": "l AND NOT r",
	"0011": "l",
	"0100": "NOT l AND r",
	"0101": "r",
	"0110": "XOR",
	"0111": "OR",
	"1000": "NOR",
	"1001": "XNOR",
	"1010": "NOT r",
	"1011": "l OR NOT r",
	"1100": "NOT l",
	"1101": "NOT l OR r",
	"1110": "NAND",
	"1111": "TRUE",
}

// BooleanFunction names the two-input function of a rule that ignores its center.
// ok is false when the center matters.
func BooleanFunction(rule automaton.Rule) (name string, ok bool) {
	if Direct(rule).Has(Center) {
		return "", false
	}
	return booleanNames[Truth(rule)], true
}

type Member struct {
	Rule     automaton.Rule `json:"rule"`
	Function string         `json:"function,omitempty"`
}

type Group struct {
	Class   Class    `json:"class"`
	Members []Member `json:"members"`
}

// Classify256 groups every rule by its directly inspected dependency set. Members of
// the left+right class carry their Boolean function name.
func Classify256() []Group {
	groups := make([]Group, len(classes))
	index := make(map[Set]int, len(classes))
	for i, c := range classes {
		groups[i].Class = c
		index[c.Set] = i
	}
	for _, rule := range automaton.AllRules() {
		s := Direct(rule)
		m := Member{Rule: rule}
		if s == SetOf(Left, Right) {
			m.Function, _ = BooleanFunction(rule)
		}
		g := &groups[index[s]]
		g.Members = append(g.Members, m)
	}
	return groups
}
