package ecalab

import (
	"context"
	"time"

	"ecalab/internal/automaton"
	"ecalab/internal/compress"
	"ecalab/internal/cycle"
	"ecalab/internal/dependency"
	"ecalab/internal/entropy"
	"ecalab/internal/infer"
	"ecalab/internal/locality"
	"ecalab/internal/model"
	"ecalab/internal/survey"
)

const (
	DefaultRule automaton.Rule = 110

	DefaultTraceWidth       = 79
	DefaultTraceGenerations = 40

	DefaultCycleWidth      = 31
	DefaultCycleMaxSteps   = 10000
	DefaultAnalyzeWidth    = 31
	DefaultAnalyzeMaxSteps = 1000

	DefaultEntropyWidth       = 79
	DefaultEntropyGenerations = 100
	DefaultBlockSize          = 3

	DefaultCompressWidth       = 79
	DefaultCompressGenerations = 200

	DefaultInferWidth       = 50
	DefaultInferGenerations = 20

	DefaultRadiusWidth       = 50
	DefaultRadiusGenerations = 20

	DefaultDependencyRule        = dependency.DefaultRule
	DefaultDependencyWidth       = dependency.DefaultWidth
	DefaultDependencyGenerations = dependency.DefaultGenerations
)

type TraceRequest struct {
	Rule        automaton.Rule
	Width       int
	Generations int
}

type TraceResult struct {
	Rule        automaton.Rule                    `json:"rule"`
	Width       int                               `json:"width"`
	Generations int                               `json:"generations"`
	Rows        []automaton.State                 `json:"-"`
	Diagram     []string                          `json:"diagram"`
	Table       [automaton.NeighborhoodCount]bool `json:"table"`
}

// Series is the per-generation population density of the trace.
func (r TraceResult) Series() []model.SeriesPoint {
	out := make([]model.SeriesPoint, len(r.Rows))
	for g, row := range r.Rows {
		out[g] = model.SeriesPoint{Generation: g, Value: float64(row.Population()), Density: row.Density()}
	}
	return out
}

func (c *Client) Trace(_ context.Context, req TraceRequest) (TraceResult, error) {
	if req.Width <= 0 {
		req.Width = DefaultTraceWidth
	}
	if req.Generations <= 0 {
		req.Generations = DefaultTraceGenerations
	}
	start := time.Now()

	rows := automaton.Run(req.Rule, automaton.SingleSeed(req.Width), req.Generations)
	diagram := make([]string, len(rows))
	for i, row := range rows {
		diagram[i] = row.String()
	}
	c.observe("trace", start, nil, "rule", req.Rule, "width", req.Width)
	return TraceResult{
		Rule:        req.Rule,
		Width:       req.Width,
		Generations: req.Generations,
		Rows:        rows,
		Diagram:     diagram,
		Table:       req.Rule.Table(),
	}, nil
}

// CycleRequest with a negative MaxSteps uses DefaultCycleMaxSteps. Zero steps is a
// valid budget and leaves the cycle unresolved.
type CycleRequest struct {
	Rule     automaton.Rule
	Width    int
	MaxSteps int
}

type CycleResult struct {
	Rule       automaton.Rule `json:"rule"`
	Width      int            `json:"width"`
	MaxSteps   int            `json:"max_steps"`
	Analysis   cycle.Analysis `json:"analysis"`
	Class      string         `json:"class"`
	Guaranteed bool           `json:"guaranteed"`
}

func (c *Client) Cycle(_ context.Context, req CycleRequest) (CycleResult, error) {
	if req.Width <= 0 {
		req.Width = DefaultCycleWidth
	}
	if req.MaxSteps < 0 {
		req.MaxSteps = DefaultCycleMaxSteps
	}
	start := time.Now()

	a := cycle.Find(req.Rule, req.Width, req.MaxSteps)
	c.observe("cycle", start, nil, "rule", req.Rule, "width", req.Width, "period", a.Period)
	return CycleResult{
		Rule:       req.Rule,
		Width:      req.Width,
		MaxSteps:   req.MaxSteps,
		Analysis:   a,
		Class:      cycle.Classify(a).String(),
		Guaranteed: req.MaxSteps >= cycle.GuaranteedBudget(req.Width),
	}, nil
}

// AnalyzeRequest follows CycleRequest: only a negative MaxSteps selects the default.
type AnalyzeRequest struct {
	Width    int
	MaxSteps int
}

type CycleRow struct {
	Rule     automaton.Rule `json:"rule"`
	Analysis cycle.Analysis `json:"analysis"`
	Class    cycle.Class    `json:"class"`
}

type AnalyzeResult struct {
	Width    int                 `json:"width"`
	MaxSteps int                 `json:"max_steps"`
	Rows     []CycleRow          `json:"rows"`
	Counts   map[cycle.Class]int `json:"counts"`
}

// Notable lists the rows that did not die on the first step.
func (r AnalyzeResult) Notable() []CycleRow {
	var out []CycleRow
	for _, row := range r.Rows {
		if cycle.Notable(row.Analysis) {
			out = append(out, row)
		}
	}
	return out
}

// Analyze runs cycle detection from the single seed for every rule.
func (c *Client) Analyze(ctx context.Context, req AnalyzeRequest) (AnalyzeResult, error) {
	if req.Width <= 0 {
		req.Width = DefaultAnalyzeWidth
	}
	if req.MaxSteps < 0 {
		req.MaxSteps = DefaultAnalyzeMaxSteps
	}
	start := time.Now()

	rows, err := survey.Rules(ctx, c.workers, func(_ context.Context, rule automaton.Rule) (CycleRow, error) {
		a := cycle.Find(rule, req.Width, req.MaxSteps)
		return CycleRow{Rule: rule, Analysis: a, Class: cycle.Classify(a)}, nil
	})
	c.observe("analyze", start, err, "width", req.Width)
	if err != nil {
		return AnalyzeResult{}, err
	}
	c.metrics.Surveyed("analyze", len(rows))

	counts := make(map[cycle.Class]int)
	for _, row := range rows {
		counts[row.Class]++
	}
	return AnalyzeResult{Width: req.Width, MaxSteps: req.MaxSteps, Rows: rows, Counts: counts}, nil
}

// EntropyRequest with a negative BlockSize uses DefaultBlockSize; k=0 measures 0 bits.
type EntropyRequest struct {
	Rule        automaton.Rule
	Width       int
	Generations int
	BlockSize   int
}

func (c *Client) Entropy(_ context.Context, req EntropyRequest) (entropy.Trace, error) {
	if req.Width <= 0 {
		req.Width = DefaultEntropyWidth
	}
	if req.Generations <= 0 {
		req.Generations = DefaultEntropyGenerations
	}
	if req.BlockSize < 0 {
		req.BlockSize = DefaultBlockSize
	}
	start := time.Now()

	tr := entropy.NewTrace(req.Rule, req.Width, req.Generations, req.BlockSize)
	c.observe("entropy", start, nil, "rule", req.Rule, "width", req.Width, "k", req.BlockSize)
	return tr, nil
}

// EntropySeries converts an entropy trace into storable points.
func EntropySeries(tr entropy.Trace) []model.SeriesPoint {
	out := make([]model.SeriesPoint, len(tr.Points))
	for i, p := range tr.Points {
		out[i] = model.SeriesPoint{Generation: p.Generation, Value: p.Entropy, Density: p.Density}
	}
	return out
}

type SurveyRequest struct {
	Width       int
	Generations int
}

type EntropySurveyResult struct {
	Width       int                   `json:"width"`
	Generations int                   `json:"generations"`
	BlockSize   int                   `json:"block_size"`
	Signatures  []entropy.Signature   `json:"signatures"`
	Counts      map[entropy.Class]int `json:"counts"`
}

func (c *Client) EntropySurvey(ctx context.Context, req SurveyRequest) (EntropySurveyResult, error) {
	if req.Width <= 0 {
		req.Width = DefaultEntropyWidth
	}
	if req.Generations <= 0 {
		req.Generations = DefaultEntropyGenerations
	}
	start := time.Now()

	sigs, err := survey.Rules(ctx, c.workers, func(_ context.Context, rule automaton.Rule) (entropy.Signature, error) {
		return entropy.Measure(rule, req.Width, req.Generations, DefaultBlockSize), nil
	})
	c.observe("entropy-survey", start, err, "width", req.Width)
	if err != nil {
		return EntropySurveyResult{}, err
	}
	c.metrics.Surveyed("entropy-survey", len(sigs))

	counts := make(map[entropy.Class]int)
	for _, s := range sigs {
		counts[s.Class]++
	}
	return EntropySurveyResult{
		Width:       req.Width,
		Generations: req.Generations,
		BlockSize:   DefaultBlockSize,
		Signatures:  sigs,
		Counts:      counts,
	}, nil
}

type CompressRequest struct {
	Rule        automaton.Rule
	Width       int
	Generations int
}

func (c *Client) Compress(_ context.Context, req CompressRequest) (compress.Estimate, error) {
	if req.Width <= 0 {
		req.Width = DefaultCompressWidth
	}
	if req.Generations <= 0 {
		req.Generations = DefaultCompressGenerations
	}
	start := time.Now()

	est, err := compress.Measure(c.codec, req.Rule, req.Width, req.Generations)
	c.observe("compress", start, err, "rule", req.Rule, "codec", c.codec.Name())
	return est, err
}

func (c *Client) CompressSurvey(ctx context.Context, req SurveyRequest) (compress.Ranking, error) {
	if req.Width <= 0 {
		req.Width = DefaultCompressWidth
	}
	if req.Generations <= 0 {
		req.Generations = DefaultCompressGenerations
	}
	start := time.Now()

	estimates, err := survey.Rules(ctx, c.workers, func(_ context.Context, rule automaton.Rule) (compress.Estimate, error) {
		return compress.Measure(c.codec, rule, req.Width, req.Generations)
	})
	c.observe("compress-survey", start, err, "width", req.Width, "codec", c.codec.Name())
	if err != nil {
		return compress.Ranking{}, err
	}
	c.metrics.Surveyed("compress-survey", len(estimates))
	return compress.Rank(estimates), nil
}

type InferRequest struct {
	Rule        automaton.Rule
	Width       int
	Generations int
	Trials      int
	Noise       float64
}

func (c *Client) Infer(_ context.Context, req InferRequest) (infer.Report, error) {
	if req.Width <= 0 {
		req.Width = DefaultInferWidth
	}
	if req.Generations <= 0 {
		req.Generations = DefaultInferGenerations
	}
	if req.Trials <= 0 {
		req.Trials = infer.DefaultTrials
	}
	if req.Noise < 0 {
		req.Noise = 0
	}
	start := time.Now()

	rep := infer.Run(infer.Config{
		Rule:        req.Rule,
		Width:       req.Width,
		Generations: req.Generations,
		Trials:      req.Trials,
		EvalTrials:  infer.DefaultEvalTrials,
		Noise:       req.Noise,
	})
	c.observe("infer", start, nil, "rule", req.Rule, "noise", req.Noise, "exact", rep.Exact)
	return rep, nil
}

// RadiusRequest with a negative MaxRadius uses locality.DefaultMaxRadius. MaxRadius 0
// checks radius 0 only.
type RadiusRequest struct {
	Rule        automaton.Rule
	Width       int
	Generations int
	MaxRadius   int
	Trials      int
}

func (c *Client) Radius(_ context.Context, req RadiusRequest) (locality.Report, error) {
	if req.Width <= 0 {
		req.Width = DefaultRadiusWidth
	}
	if req.Generations <= 0 {
		req.Generations = DefaultRadiusGenerations
	}
	if req.MaxRadius < 0 {
		req.MaxRadius = locality.DefaultMaxRadius
	}
	if req.Trials <= 0 {
		req.Trials = infer.DefaultTrials
	}
	start := time.Now()

	rep := locality.Run(locality.Config{
		Rule:        req.Rule,
		Width:       req.Width,
		Generations: req.Generations,
		MaxRadius:   req.MaxRadius,
		Trials:      req.Trials,
	})
	c.observe("radius", start, nil, "rule", req.Rule, "radius", rep.Radius, "found", rep.Found)
	return rep, nil
}

func (c *Client) RadiusSurvey(ctx context.Context, req SurveyRequest) (locality.SurveyReport, error) {
	if req.Width <= 0 {
		req.Width = DefaultRadiusWidth
	}
	if req.Generations <= 0 {
		req.Generations = DefaultRadiusGenerations
	}
	start := time.Now()

	rep, err := locality.Survey(ctx, c.workers, req.Width, req.Generations)
	c.observe("radius-survey", start, err, "width", req.Width)
	if err != nil {
		return locality.SurveyReport{}, err
	}
	c.metrics.Surveyed("radius-survey", len(rep.Entries))
	return rep, nil
}

// Dependency classifies all rules by the positions their tables depend on.
func (c *Client) Dependency(_ context.Context) ([]dependency.Group, error) {
	start := time.Now()
	groups := dependency.Classify256()
	c.observe("dependency", start, nil)
	c.metrics.Surveyed("dependency", len(automaton.AllRules()))
	return groups, nil
}

type DependencyInferRequest struct {
	Rule        automaton.Rule
	Width       int
	Generations int
	Trials      int
}

func (c *Client) DependencyInfer(_ context.Context, req DependencyInferRequest) (dependency.Report, error) {
	if req.Width <= 0 {
		req.Width = DefaultDependencyWidth
	}
	if req.Generations <= 0 {
		req.Generations = DefaultDependencyGenerations
	}
	if req.Trials <= 0 {
		req.Trials = infer.DefaultTrials
	}
	start := time.Now()

	rep := dependency.Infer(dependency.Config{
		Rule:        req.Rule,
		Width:       req.Width,
		Generations: req.Generations,
		Trials:      req.Trials,
	})
	c.observe("dependency-infer", start, nil, "rule", req.Rule, "match", rep.Match)
	return rep, nil
}
