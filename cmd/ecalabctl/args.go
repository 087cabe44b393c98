package main

import (
	"math"
	"strconv"

	"ecalab/internal/automaton"
)

// ruleArg reads args[i] as a rule number. Missing, unparsable and out-of-range
// values fall back to def.
func ruleArg(args []string, i int, def automaton.Rule) automaton.Rule {
	if i >= len(args) {
		return def
	}
	n, err := strconv.Atoi(args[i])
	if err != nil || n < 0 || n > 255 {
		return def
	}
	return automaton.Rule(n)
}

// intArg reads args[i] as a non-negative count, falling back to def. Zero is kept:
// a zero budget or block size is a valid request.
func intArg(args []string, i, def int) int {
	if i >= len(args) {
		return def
	}
	n, err := strconv.Atoi(args[i])
	if err != nil || n < 0 {
		return def
	}
	return n
}

// noiseArg reads args[i] as a probability in [0,1], falling back to def.
func noiseArg(args []string, i int, def float64) float64 {
	if i >= len(args) {
		return def
	}
	f, err := strconv.ParseFloat(args[i], 64)
	if err != nil || math.IsNaN(f) || f < 0 || f > 1 {
		return def
	}
	return f
}
