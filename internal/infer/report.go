package infer

import "ecalab/internal/automaton"

const (
	DefaultTrials     = 10
	DefaultEvalTrials = 5
)

type Config struct {
	Rule        automaton.Rule `json:"rule"`
	Width       int            `json:"width"`
	Generations int            `json:"generations"`
	Trials      int            `json:"trials"`
	EvalTrials  int            `json:"eval_trials"`
	Noise       float64        `json:"noise"`
}

// Neighborhood is one row of the inference table.
type Neighborhood struct {
	Code         int     `json:"code"`
	Pattern      string  `json:"pattern"`
	Observations int     `json:"observations"`
	Ones         int     `json:"ones"`
	P            float64 `json:"p"`
	Inferred     bool    `json:"inferred"`
	Actual       bool    `json:"actual"`
}

func (n Neighborhood) Correct() bool { return n.Inferred == n.Actual }

type Report struct {
	Config        Config                                    `json:"config"`
	Neighborhoods [automaton.NeighborhoodCount]Neighborhood `json:"neighborhoods"`
	Inferred      automaton.Rule                            `json:"inferred"`
	Exact         bool                                      `json:"exact"`
	Observations  int                                       `json:"observations"`
	Causal        ErrorRates                                `json:"causal"`
	Correlational ErrorRates                                `json:"correlational"`
}

// Run samples training data, infers the rule under the configured noise and
// compares causal and correlational generalization on the sparse and dense regimes.
func Run(cfg Config) Report {
	if cfg.Trials < 0 {
		cfg.Trials = 0
	}
	if cfg.EvalTrials < 0 {
		cfg.EvalTrials = 0
	}
	trials := Sample(cfg.Rule, cfg.Width, cfg.Generations, cfg.Trials)
	counts := Count(trials, cfg.Noise)
	inferred := counts.Rule()

	rep := Report{
		Config:       cfg,
		Inferred:     inferred,
		Exact:        inferred == cfg.Rule,
		Observations: counts.Total(),
	}
	for code, t := range counts {
		rep.Neighborhoods[code] = Neighborhood{
			Code:         code,
			Pattern:      automaton.Pattern(code),
			Observations: t.Observations,
			Ones:         t.Ones,
			P:            t.P(),
			Inferred:     inferred.Output(code),
			Actual:       cfg.Rule.Output(code),
		}
	}

	rep.Causal = CausalErrors(cfg.Rule, inferred, cfg.Width, cfg.Generations, cfg.EvalTrials)
	rep.Correlational = TrainBaseline(trials).Errors(cfg.Rule, cfg.Width, cfg.Generations, cfg.EvalTrials)
	return rep
}
