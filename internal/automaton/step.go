package automaton

// Step applies the rule to every cell of s and returns the next generation. The input
// is never modified and the result never aliases it.
func Step(rule Rule, s State) State {
	n := len(s)
	next := make(State, n)
	for i := 0; i < n; i++ {
		left := s[(i+n-1)%n]
		right := s[(i+1)%n]
		next[i] = rule.Output(Code(left, s[i], right))
	}
	return next
}

// Automaton is the simulation loop around Step: it owns the current generation.
type Automaton struct {
	rule       Rule
	cells      State
	generation int
}

// New starts an automaton from a copy of initial.
func New(rule Rule, initial State) *Automaton {
	return &Automaton{rule: rule, cells: initial.Clone()}
}

func (a *Automaton) Rule() Rule { return a.rule }

func (a *Automaton) Generation() int { return a.generation }

// Cells returns the current generation. Callers must not modify it.
func (a *Automaton) Cells() State { return a.cells }

func (a *Automaton) Step() State {
	a.cells = Step(a.rule, a.cells)
	a.generation++
	return a.cells
}

// Run returns the spacetime diagram: initial plus the next generations states.
func Run(rule Rule, initial State, generations int) []State {
	if generations < 0 {
		generations = 0
	}
	diagram := make([]State, 0, generations+1)
	cur := initial.Clone()
	diagram = append(diagram, cur)
	for g := 0; g < generations; g++ {
		cur = Step(rule, cur)
		diagram = append(diagram, cur)
	}
	return diagram
}
