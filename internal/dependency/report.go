package dependency

import (
	"ecalab/internal/automaton"
	"ecalab/internal/infer"
)

const (
	DefaultRule        automaton.Rule = 90
	DefaultWidth                      = 50
	DefaultGenerations                = 30
)

type Config struct {
	Rule        automaton.Rule `json:"rule"`
	Width       int            `json:"width"`
	Generations int            `json:"generations"`
	Trials      int            `json:"trials"`
}

type Report struct {
	Config   Config      `json:"config"`
	Evidence [3]Evidence `json:"evidence"`
	Inferred Set         `json:"inferred"`
	Truth    Set         `json:"truth"`
	Match    bool        `json:"match"`
}

// Infer compares the statistically inferred dependency set of clean training runs
// with the set read off the rule table.
func Infer(cfg Config) Report {
	counts := infer.Count(infer.Sample(cfg.Rule, cfg.Width, cfg.Generations, cfg.Trials), 0)
	inferred, evidence := Statistical(counts)
	truth := Direct(cfg.Rule)
	return Report{
		Config:   cfg,
		Evidence: evidence,
		Inferred: inferred,
		Truth:    truth,
		Match:    inferred == truth,
	}
}
