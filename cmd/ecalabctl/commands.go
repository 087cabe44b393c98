package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ecalab/internal/automaton"
	"ecalab/internal/entropy"
	"ecalab/internal/infer"
	"ecalab/internal/locality"
	labapi "ecalab/pkg/ecalab"
)

func (a *app) traceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "trace [rule] [width] [generations]",
		Short: "Print the space-time diagram of a rule from a single live cell",
		Args:  cobra.ArbitraryArgs,
		RunE:  a.runTrace,
	}
}

func (a *app) runTrace(cmd *cobra.Command, args []string) error {
	m := a.config.mode("trace")
	req := labapi.TraceRequest{
		Rule:        ruleArg(args, 0, m.rule(labapi.DefaultRule)),
		Width:       intArg(args, 1, orDefault(m.Width, labapi.DefaultTraceWidth)),
		Generations: intArg(args, 2, orDefault(m.Generations, labapi.DefaultTraceGenerations)),
	}
	res, err := a.client.Trace(cmd.Context(), req)
	if err != nil {
		return err
	}
	a.out().trace(res)
	return a.save(cmd, labapi.SaveRequest{
		Kind:    "trace",
		Summary: fmt.Sprintf("rule=%d width=%d gens=%d", res.Rule, res.Width, res.Generations),
		Params:  req,
		Result:  res,
		Series:  res.Series(),
		Diagram: res.Diagram,
	})
}

func (a *app) cycleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cycle [rule] [width] [max-steps]",
		Short: "Find the transient and period of a rule from a single live cell",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := a.config.mode("cycle")
			req := labapi.CycleRequest{
				Rule:     ruleArg(args, 0, m.rule(labapi.DefaultRule)),
				Width:    intArg(args, 1, orDefault(m.Width, labapi.DefaultCycleWidth)),
				MaxSteps: intArg(args, 2, bound(m.MaxSteps, labapi.DefaultCycleMaxSteps)),
			}
			res, err := a.client.Cycle(cmd.Context(), req)
			if err != nil {
				return err
			}
			a.out().cycle(res)
			return a.save(cmd, labapi.SaveRequest{
				Kind:    "cycle",
				Summary: fmt.Sprintf("rule=%d period=%d transient=%d", res.Rule, res.Analysis.Period, res.Analysis.Transient),
				Params:  req,
				Result:  res,
			})
		},
	}
}

func (a *app) analyzeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [width] [max-steps]",
		Short: "Run cycle detection for all 256 rules",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := a.config.mode("analyze")
			req := labapi.AnalyzeRequest{
				Width:    intArg(args, 0, orDefault(m.Width, labapi.DefaultAnalyzeWidth)),
				MaxSteps: intArg(args, 1, bound(m.MaxSteps, labapi.DefaultAnalyzeMaxSteps)),
			}
			res, err := a.client.Analyze(cmd.Context(), req)
			if err != nil {
				return err
			}
			a.out().analyze(res)
			return a.save(cmd, labapi.SaveRequest{
				Kind:    "analyze",
				Summary: fmt.Sprintf("width=%d max_steps=%d notable=%d", res.Width, res.MaxSteps, len(res.Notable())),
				Params:  req,
				Result:  res,
			})
		},
	}
}

func (a *app) entropyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "entropy [rule] [width] [generations] [block-size]",
		Short: "Track block entropy of a rule over time",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := a.config.mode("entropy")
			req := labapi.EntropyRequest{
				Rule:        ruleArg(args, 0, m.rule(labapi.DefaultRule)),
				Width:       intArg(args, 1, orDefault(m.Width, labapi.DefaultEntropyWidth)),
				Generations: intArg(args, 2, orDefault(m.Generations, labapi.DefaultEntropyGenerations)),
				BlockSize:   intArg(args, 3, bound(m.BlockSize, labapi.DefaultBlockSize)),
			}
			tr, err := a.client.Entropy(cmd.Context(), req)
			if err != nil {
				return err
			}
			a.out().entropy(tr)
			return a.save(cmd, labapi.SaveRequest{
				Kind:    "entropy",
				Summary: fmt.Sprintf("rule=%d mean=%.4f normalized=%.3f", tr.Rule, tr.Summary.Mean, tr.Normalized),
				Params:  req,
				Result:  tr,
				Series:  labapi.EntropySeries(tr),
			})
		},
	}
}

func (a *app) entropySurveyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "entropy-survey [width] [generations]",
		Short: "Classify all 256 rules by their entropy signature",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := a.config.mode("entropy-survey")
			req := labapi.SurveyRequest{
				Width:       intArg(args, 0, orDefault(m.Width, labapi.DefaultEntropyWidth)),
				Generations: intArg(args, 1, orDefault(m.Generations, labapi.DefaultEntropyGenerations)),
			}
			res, err := a.client.EntropySurvey(cmd.Context(), req)
			if err != nil {
				return err
			}
			a.out().entropySurvey(res)
			summary := fmt.Sprintf("width=%d chaotic=%d complex=%d",
				res.Width, res.Counts[entropy.ClassChaotic], res.Counts[entropy.ClassComplex])
			return a.save(cmd, labapi.SaveRequest{
				Kind:    "entropy-survey",
				Summary: summary,
				Params:  req,
				Result:  res,
			})
		},
	}
}

func (a *app) compressCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "compress [rule] [width] [generations]",
		Short: "Estimate the complexity of a rule by compressing its space-time diagram",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := a.config.mode("compress")
			req := labapi.CompressRequest{
				Rule:        ruleArg(args, 0, m.rule(labapi.DefaultRule)),
				Width:       intArg(args, 1, orDefault(m.Width, labapi.DefaultCompressWidth)),
				Generations: intArg(args, 2, orDefault(m.Generations, labapi.DefaultCompressGenerations)),
			}
			est, err := a.client.Compress(cmd.Context(), req)
			if err != nil {
				return err
			}
			a.out().compress(est)
			return a.save(cmd, labapi.SaveRequest{
				Kind:    "compress",
				Summary: fmt.Sprintf("rule=%d codec=%s ratio=%.3f", est.Rule, est.Codec, est.Ratio),
				Params:  req,
				Result:  est,
			})
		},
	}
}

func (a *app) compressSurveyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "compress-survey [width] [generations]",
		Short: "Rank all 256 rules by compression ratio",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := a.config.mode("compress-survey")
			req := labapi.SurveyRequest{
				Width:       intArg(args, 0, orDefault(m.Width, labapi.DefaultCompressWidth)),
				Generations: intArg(args, 1, orDefault(m.Generations, labapi.DefaultCompressGenerations)),
			}
			ranking, err := a.client.CompressSurvey(cmd.Context(), req)
			if err != nil {
				return err
			}
			a.out().compressSurvey(req, ranking)
			return a.save(cmd, labapi.SaveRequest{
				Kind:    "compress-survey",
				Summary: fmt.Sprintf("width=%d gens=%d", req.Width, req.Generations),
				Params:  req,
				Result:  ranking,
			})
		},
	}
}

func (a *app) inferCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "infer [rule] [width] [generations] [noise]",
		Short: "Recover a rule from observed transitions and test out-of-distribution generalization",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := a.config.mode("infer")
			req := labapi.InferRequest{
				Rule:        ruleArg(args, 0, m.rule(labapi.DefaultRule)),
				Width:       intArg(args, 1, orDefault(m.Width, labapi.DefaultInferWidth)),
				Generations: intArg(args, 2, orDefault(m.Generations, labapi.DefaultInferGenerations)),
				Trials:      infer.DefaultTrials,
				Noise:       noiseArg(args, 3, m.noise(0)),
			}
			rep, err := a.client.Infer(cmd.Context(), req)
			if err != nil {
				return err
			}
			a.out().infer(rep)
			return a.save(cmd, labapi.SaveRequest{
				Kind:    "infer",
				Summary: fmt.Sprintf("rule=%d inferred=%d noise=%g", rep.Config.Rule, rep.Inferred, rep.Config.Noise),
				Params:  req,
				Result:  rep,
			})
		},
	}
}

func (a *app) radiusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "radius [rule] [width] [generations] [max-radius]",
		Short: "Infer the minimal neighborhood radius of a rule from observations",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := a.config.mode("radius")
			req := labapi.RadiusRequest{
				Rule:        ruleArg(args, 0, m.rule(labapi.DefaultRule)),
				Width:       intArg(args, 1, orDefault(m.Width, labapi.DefaultRadiusWidth)),
				Generations: intArg(args, 2, orDefault(m.Generations, labapi.DefaultRadiusGenerations)),
				MaxRadius:   intArg(args, 3, bound(m.MaxRadius, locality.DefaultMaxRadius)),
				Trials:      infer.DefaultTrials,
			}
			rep, err := a.client.Radius(cmd.Context(), req)
			if err != nil {
				return err
			}
			a.out().radius(rep)
			return a.save(cmd, labapi.SaveRequest{
				Kind:    "radius",
				Summary: fmt.Sprintf("rule=%d radius=%d %s", rep.Config.Rule, rep.Radius, rep.DiagnosisLabel),
				Params:  req,
				Result:  rep,
			})
		},
	}
}

func (a *app) radiusSurveyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "radius-survey [width] [generations]",
		Short: "Infer the effective radius of all 256 rules",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := a.config.mode("radius-survey")
			req := labapi.SurveyRequest{
				Width:       intArg(args, 0, orDefault(m.Width, labapi.DefaultRadiusWidth)),
				Generations: intArg(args, 1, orDefault(m.Generations, labapi.DefaultRadiusGenerations)),
			}
			rep, err := a.client.RadiusSurvey(cmd.Context(), req)
			if err != nil {
				return err
			}
			a.out().radiusSurvey(rep)
			return a.save(cmd, labapi.SaveRequest{
				Kind:    "radius-survey",
				Summary: fmt.Sprintf("width=%d radius0=%d", rep.Width, rep.Counts[locality.BucketZero]),
				Params:  req,
				Result:  rep,
			})
		},
	}
}

func (a *app) dependencyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dependency",
		Short: "Group all 256 rules by the neighborhood positions they depend on",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			groups, err := a.client.Dependency(cmd.Context())
			if err != nil {
				return err
			}
			a.out().dependency(groups)
			return a.save(cmd, labapi.SaveRequest{
				Kind:    "dependency",
				Summary: "all rules",
				Result:  groups,
			})
		},
	}
}

func (a *app) dependencyInferCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dependency-infer [rule] [width] [generations]",
		Short: "Infer which neighborhood positions matter from observations alone",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := a.config.mode("dependency-infer")
			req := labapi.DependencyInferRequest{
				Rule:        ruleArg(args, 0, m.rule(labapi.DefaultDependencyRule)),
				Width:       intArg(args, 1, orDefault(m.Width, labapi.DefaultDependencyWidth)),
				Generations: intArg(args, 2, orDefault(m.Generations, labapi.DefaultDependencyGenerations)),
				Trials:      infer.DefaultTrials,
			}
			rep, err := a.client.DependencyInfer(cmd.Context(), req)
			if err != nil {
				return err
			}
			a.out().dependencyInfer(rep)
			return a.save(cmd, labapi.SaveRequest{
				Kind:    "dependency-infer",
				Summary: fmt.Sprintf("rule=%d inferred=%s match=%t", rep.Config.Rule, rep.Inferred, rep.Match),
				Params:  req,
				Result:  rep,
			})
		},
	}
}

func (a *app) rulesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the rules worth a closer look",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			a.out().interesting(automaton.InterestingRules())
			return nil
		},
	}
}
