package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"ecalab/internal/automaton"
	"ecalab/internal/compress"
	"ecalab/internal/cycle"
	"ecalab/internal/dependency"
	"ecalab/internal/entropy"
	"ecalab/internal/infer"
	"ecalab/internal/locality"
	labapi "ecalab/pkg/ecalab"
)

var headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#20B9B4"))

// renderer writes fixed-column reports. Headings are styled only on a terminal so
// piped output stays plain text.
type renderer struct {
	w      io.Writer
	styled bool
}

func (r renderer) heading(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	if r.styled {
		line = headingStyle.Render(line)
	}
	fmt.Fprintln(r.w, line)
}

func (r renderer) printf(format string, args ...any) {
	fmt.Fprintf(r.w, format, args...)
}

func (r renderer) line(s string) {
	fmt.Fprintln(r.w, s)
}

func (r renderer) separator(n int) {
	fmt.Fprintln(r.w, strings.Repeat("-", n))
}

// ruleColumns prints rules perRow at a time in four-character columns.
func (r renderer) ruleColumns(indent string, rules []automaton.Rule, perRow int) {
	for start := 0; start < len(rules); start += perRow {
		end := min(start+perRow, len(rules))
		var b strings.Builder
		for _, rule := range rules[start:end] {
			fmt.Fprintf(&b, "%4d", rule)
		}
		r.line(indent + b.String())
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func ruleList(rules []automaton.Rule) string {
	parts := make([]string, len(rules))
	for i, rule := range rules {
		parts[i] = fmt.Sprint(uint8(rule))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (r renderer) trace(res labapi.TraceResult) {
	r.heading("Rule %d", res.Rule)
	r.separator(res.Width)
	for _, row := range res.Diagram {
		r.line(row)
	}
	r.separator(res.Width)

	r.line("")
	r.heading("Rule %d transition table:", res.Rule)
	r.line("  neighborhood -> next")
	for code := automaton.NeighborhoodCount - 1; code >= 0; code-- {
		r.printf("      %s      ->  %d\n", automaton.Pattern(code), res.Rule.Bit(code))
	}
}

func (r renderer) cycle(res labapi.CycleResult) {
	a := res.Analysis
	r.heading("Analyzing Rule %d (width=%d, max_steps=%d)", res.Rule, res.Width, res.MaxSteps)
	r.printf("  Transient length: %d\n", a.Transient)
	if a.Resolved() {
		r.printf("  Cycle period: %d\n", a.Period)
	} else {
		r.printf("  Cycle period: not found within %d steps\n", res.MaxSteps)
	}
	r.printf("  Died: %s\n", yesNo(a.Died))
	r.printf("  Final density: %.3f\n", a.FinalDensity)
	r.printf("  Class: %s\n", res.Class)
	if !a.Resolved() && !res.Guaranteed {
		r.line("  (budget is below 2^width+1 steps; a longer run may still find the cycle)")
	}
}

func (r renderer) analyze(res labapi.AnalyzeResult) {
	r.heading("Analyzing all 256 rules (width=%d, max_steps=%d)", res.Width, res.MaxSteps)
	r.printf("%4s %10s %8s %6s %8s\n", "Rule", "Transient", "Period", "Died?", "Density")
	r.separator(50)
	for _, row := range res.Notable() {
		period := ">max"
		if row.Analysis.Resolved() {
			period = fmt.Sprint(row.Analysis.Period)
		}
		r.printf("%4d %10d %8s %6s %8.3f\n", row.Rule, row.Analysis.Transient, period, yesNo(row.Analysis.Died), row.Analysis.FinalDensity)
	}
	r.separator(50)
	r.line("Summary:")
	r.printf("  Dies immediately: %d\n", res.Counts[cycle.ClassDies])
	r.printf("  Short cycle (<=%d): %d\n", cycle.ShortCycleLimit, res.Counts[cycle.ClassShortCycle])
	r.printf("  Long cycle (>%d): %d\n", cycle.ShortCycleLimit, res.Counts[cycle.ClassLongCycle])
	r.printf("  No cycle found: %d\n", res.Counts[cycle.ClassUnresolved])
}

func (r renderer) entropy(tr entropy.Trace) {
	r.heading("Entropy analysis: Rule %d (width=%d, blocks=%d)", tr.Rule, tr.Width, tr.BlockSize)
	r.printf("Max possible entropy: %.3f bits\n", float64(tr.BlockSize))
	r.printf("%5s %8s %8s\n", "Gen", "Entropy", "Density")
	r.separator(25)
	last := len(tr.Points) - 1
	for _, p := range tr.Points {
		if entropy.Printed(p.Generation, last) {
			r.printf("%5d %8.4f %8.3f\n", p.Generation, p.Entropy, p.Density)
		}
	}
	r.separator(25)
	r.printf("Mean entropy:  %.4f\n", tr.Summary.Mean)
	r.printf("Std dev:       %.4f\n", tr.Summary.Std)
	r.printf("Range:         [%.4f, %.4f]\n", tr.Summary.Min, tr.Summary.Max)
	r.printf("Normalized:    %.1f%% of max\n", 100*tr.Normalized)
}

func (r renderer) entropySurvey(res labapi.EntropySurveyResult) {
	r.heading("Entropy survey (width=%d, gens=%d, blocks=%d)", res.Width, res.Generations, res.BlockSize)
	r.printf("%4s %7s %7s %8s\n", "Rule", "Mean", "StdDev", "Class")
	r.separator(32)
	byClass := make(map[entropy.Class][]automaton.Rule)
	for _, sig := range res.Signatures {
		byClass[sig.Class] = append(byClass[sig.Class], sig.Rule)
		if sig.Notable() {
			r.printf("%4d %7.3f %7.3f %8s\n", sig.Rule, sig.NormMean, sig.NormStd, sig.Class)
		}
	}
	r.separator(32)
	fractal := byClass[entropy.ClassFractal]
	r.line("Classification:")
	r.printf("  Dead:     %d rules\n", res.Counts[entropy.ClassDead])
	r.printf("  Periodic: %d rules\n", res.Counts[entropy.ClassPeriodic])
	r.printf("  Fractal:  %d rules (%s...)\n", len(fractal), ruleList(fractal[:min(5, len(fractal))]))
	r.printf("  Complex:  %d rules\n", res.Counts[entropy.ClassComplex])
	r.printf("  Chaotic:  %d rules (%s)\n", res.Counts[entropy.ClassChaotic], ruleList(byClass[entropy.ClassChaotic]))
}

func (r renderer) compress(est compress.Estimate) {
	r.heading("Compression analysis: Rule %d (width=%d, gens=%d)", est.Rule, est.Width, est.Generations)
	r.printf("  Codec:           %s\n", est.Codec)
	r.printf("  Raw size:        %d bits (%s)\n", est.RawBits, humanize.Bytes(uint64(est.RawBytes)))
	r.printf("  Compressed:      %d bits (%s)\n", est.CompressedBits, humanize.Bytes(uint64(est.CompressedBytes)))
	r.printf("  Ratio:           %.3f (lower = more compressible)\n", est.Ratio)
	r.printf("  Incompressible:  %.1f%%\n", est.Ratio*100)
	r.printf("  Class:           %s\n", est.Class)
}

func (r renderer) compressSurvey(req labapi.SurveyRequest, ranking compress.Ranking) {
	codec := compress.DeflateName
	if len(ranking.Estimates) > 0 {
		codec = ranking.Estimates[0].Codec
	}
	r.heading("Compression survey (width=%d, gens=%d, codec=%s)", req.Width, req.Generations, codec)
	r.printf("%4s %8s %12s\n", "Rule", "Ratio", "Class")
	r.separator(28)
	for _, e := range ranking.Estimates {
		if e.Class != compress.ClassTrivial {
			r.printf("%4d %8.3f %12s\n", e.Rule, e.Ratio, e.Class)
		}
	}
	r.separator(28)
	r.line("Classification:")
	for _, c := range compress.Classes() {
		r.printf("  %-20s %d\n", c.Label()+":", ranking.Counts[c])
	}
	r.line("")
	if e, ok := ranking.MostCompressible(); ok {
		r.printf("Most compressible: Rule %d (%.1f%%)\n", e.Rule, e.Ratio*100)
	}
	if e, ok := ranking.LeastCompressible(); ok {
		r.printf("Least compressible: Rule %d (%.1f%%)\n", e.Rule, e.Ratio*100)
	}
}

func (r renderer) infer(rep infer.Report) {
	cfg := rep.Config
	r.heading("Rule inference test (true rule=%d, width=%d, gens=%d, noise=%g)", cfg.Rule, cfg.Width, cfg.Generations, cfg.Noise)
	r.line("")
	r.line("Neighborhood observations:")
	r.line("  NHD   Count   P(1)   Inferred   True")
	r.separator(45)
	for _, n := range rep.Neighborhoods {
		mark := "✓"
		if !n.Correct() {
			mark = "✗"
		}
		r.printf("  %s   %6d   %.3f      %d          %d %s\n", n.Pattern, n.Observations, n.P, bit(n.Inferred), bit(n.Actual), mark)
	}
	r.separator(45)
	r.printf("Inferred rule: %d\n", rep.Inferred)
	r.printf("True rule:     %d\n", cfg.Rule)
	match := "MISMATCH"
	if rep.Exact {
		match = "EXACT"
	}
	r.printf("Match:         %s\n", match)

	r.line("")
	r.line("Comparison (out-of-distribution generalization):")
	r.printf("  %-22s %10s %10s\n", "Learner", "Sparse", "Dense")
	r.printf("  %-22s %9.2f%% %9.2f%%\n", "Local (causal)", rep.Causal.Sparse*100, rep.Causal.Dense*100)
	r.printf("  %-22s %9.2f%% %9.2f%%\n", "Global (correlational)", rep.Correlational.Sparse*100, rep.Correlational.Dense*100)
	r.line("")
	if rep.Exact {
		r.line("-> Rule recovery successful: learned the local mechanism, not just correlations.")
	} else {
		r.line("-> Rule recovery failed: noise or missing observations prevented exact recovery.")
	}
}

func bit(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (r renderer) radius(rep locality.Report) {
	cfg := rep.Config
	r.heading("Radius inference (true rule=%d, width=%d, gens=%d)", cfg.Rule, cfg.Width, cfg.Generations)
	r.printf("Testing radii 0 to %d...\n\n", cfg.MaxRadius)
	r.printf("Collected %d row transitions\n\n", rep.Transitions)

	for _, res := range rep.Results {
		r.printf("Radius %d (window size %d):\n", res.Radius, res.WindowSize)
		r.printf("  Unique windows observed: %d / %d possible\n", res.Observed, res.Possible)
		consistent := "NO"
		if res.Consistent {
			consistent = "YES"
		}
		r.printf("  Consistent: %s (%.1f%%)\n", consistent, res.ConsistencyRate*100)
		if !res.Consistent {
			r.printf("  Inconsistent windows: %d (examples below)\n", res.Observed-res.ConsistentCount)
			for _, w := range res.Inconsistent {
				r.printf("    %s -> 0 (%d times), 1 (%d times)\n", w.Pattern, w.Zeros, w.Ones)
			}
		}
		r.line("")
	}

	if !rep.Found {
		r.printf("-> No consistent radius up to %d\n", cfg.MaxRadius)
		return
	}
	r.printf("-> Inferred radius: %d\n", rep.Radius)
	r.printf("  (true elementary radius is %d)\n", locality.TrueRadius)
	r.printf("  %s\n", rep.DiagnosisLabel)
}

func (r renderer) radiusSurvey(rep locality.SurveyReport) {
	r.heading("Radius survey (width=%d, gens=%d)", rep.Width, rep.Generations)
	r.line("Results:")
	r.printf("  Effective radius 0: %d rules\n", rep.Counts[locality.BucketZero])
	r.printf("  Effective radius 1: %d rules\n", rep.Counts[locality.BucketOne])
	r.printf("  Effective radius >1: %d rules\n", rep.Counts[locality.BucketAbove])

	var zero, above []automaton.Rule
	for _, e := range rep.Entries {
		switch e.Bucket {
		case locality.BucketZero:
			zero = append(zero, e.Rule)
		case locality.BucketAbove:
			above = append(above, e.Rule)
		}
	}
	r.line("")
	r.line("Rules with effective radius 0:")
	r.ruleColumns("  ", zero, 16)
	if len(above) > 0 {
		r.line("")
		r.line("Rules with effective radius >1:")
		for _, rule := range above {
			r.printf("  Rule %d\n", rule)
		}
	}

	r.line("")
	r.line("Center-only check of radius-0 rules:")
	for _, ce := range rep.RadiusZero {
		if ce.CenterOnly {
			r.printf("  Rule %3d: %s\n", ce.Rule, ce.Function)
		} else {
			r.printf("  Rule %3d: table depends on a neighbor\n", ce.Rule)
		}
	}
}

func (r renderer) dependency(groups []dependency.Group) {
	r.heading("Dependency analysis for all 256 rules")
	r.line("")
	var leftRight []dependency.Member
	for _, g := range groups {
		if len(g.Members) == 0 {
			continue
		}
		rules := make([]automaton.Rule, len(g.Members))
		for i, m := range g.Members {
			rules[i] = m.Rule
		}
		r.printf("%s: %d rules\n", g.Class.Name, len(rules))
		if len(rules) <= 16 {
			r.ruleColumns("    ", rules, 8)
		} else {
			r.printf("    (first 8: %s...)\n", ruleList(rules[:8]))
		}
		r.line("")
		if g.Class.Set == dependency.SetOf(dependency.Left, dependency.Right) {
			leftRight = g.Members
		}
	}

	r.line("Center-ignoring rules (left + right only):")
	for _, m := range leftRight {
		r.printf("  Rule %3d: f(l,r) = %s (%s)\n", m.Rule, dependency.Truth(m.Rule), m.Function)
	}
}

func (r renderer) dependencyInfer(rep dependency.Report) {
	cfg := rep.Config
	r.heading("Dependency inference from observations (rule=%d)", cfg.Rule)
	r.printf("Collected %d transitions\n\n", cfg.Trials*cfg.Generations)

	for _, ev := range rep.Evidence {
		name := ev.Position.String()
		r.printf("Testing whether %s matters:\n", strings.ToUpper(name))
		others := otherPositions(ev.Position)
		for _, w := range ev.Witnesses {
			r.printf("  At (%s=%c, %s=%c): %s=0 -> %s, %s=1 -> %s (different)\n",
				others[0], w.Others[0], others[1], w.Others[1], name, w.Vote0, name, w.Vote1)
		}
		if !ev.Matters {
			r.printf("  No differences found; %s does not matter\n", strings.ToUpper(name))
		}
		r.line("")
	}

	r.printf("-> Inferred dependencies: %s\n", dependency.ClassName(rep.Inferred))
	r.line("")
	r.printf("Ground truth (rule %d = 0b%s):\n", cfg.Rule, cfg.Rule.Binary())
	r.printf("  True dependencies: %s\n", dependency.ClassName(rep.Truth))
	match := "NO"
	if rep.Match {
		match = "YES"
	}
	r.printf("  Match: %s\n", match)
}

func otherPositions(p dependency.Position) []dependency.Position {
	var out []dependency.Position
	for _, q := range dependency.Positions() {
		if q != p {
			out = append(out, q)
		}
	}
	return out
}

func (r renderer) interesting(rules []automaton.InterestingRule) {
	r.heading("Rules worth a closer look")
	for _, ir := range rules {
		r.printf("  %4d  class %d  %s\n", ir.Rule, ir.Class, ir.Note)
	}
}

func (r renderer) runs(items []labapi.RunItem) {
	if len(items) == 0 {
		r.line("no runs")
		return
	}
	r.printf("%-36s  %-16s  %-16s  %s\n", "RUN ID", "KIND", "CREATED", "SUMMARY")
	for _, it := range items {
		created := it.CreatedAtUTC
		if t, err := time.Parse(time.RFC3339Nano, it.CreatedAtUTC); err == nil {
			created = humanize.Time(t)
		}
		r.printf("%-36s  %-16s  %-16s  %s\n", it.RunID, it.Kind, created, it.Summary)
	}
}

func (r renderer) show(d labapi.RunDetail) error {
	r.heading("Run %s", d.RunID)
	r.printf("  kind:    %s\n", d.Kind)
	r.printf("  created: %s\n", d.CreatedAtUTC)
	r.printf("  source:  %s\n", d.Source)
	r.printf("  series:  %d points\n", len(d.Series))
	for _, part := range []struct {
		name string
		raw  json.RawMessage
	}{{"params", d.Params}, {"result", d.Result}} {
		if len(part.raw) == 0 {
			continue
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, part.raw, "  ", "  "); err != nil {
			return fmt.Errorf("format %s: %w", part.name, err)
		}
		r.printf("%s:\n  %s\n", part.name, buf.String())
	}
	return nil
}
