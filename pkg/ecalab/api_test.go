package ecalab

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecalab/internal/compress"
	"ecalab/internal/cycle"
	"ecalab/internal/entropy"
	"ecalab/internal/locality"
	"ecalab/internal/metrics"
)

func newTestClient(t *testing.T, opts Options) *Client {
	t.Helper()
	base := t.TempDir()
	if opts.StoreKind == "" {
		opts.StoreKind = "memory"
	}
	if opts.ArtifactsDir == "" {
		opts.ArtifactsDir = filepath.Join(base, "runs")
	}
	if opts.ExportsDir == "" {
		opts.ExportsDir = filepath.Join(base, "exports")
	}
	client, err := New(opts)
	require.NoError(t, err)
	require.NoError(t, client.Init(context.Background()))
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}

func TestTraceAppliesDefaults(t *testing.T) {
	client := newTestClient(t, Options{})
	res, err := client.Trace(context.Background(), TraceRequest{Rule: DefaultRule})
	require.NoError(t, err)
	assert.Equal(t, DefaultTraceWidth, res.Width)
	assert.Len(t, res.Rows, DefaultTraceGenerations+1)
	assert.Len(t, res.Diagram, DefaultTraceGenerations+1)
	assert.Equal(t, strings.Repeat(" ", 39)+"#"+strings.Repeat(" ", 39), res.Diagram[0])

	series := res.Series()
	require.Len(t, series, DefaultTraceGenerations+1)
	assert.Equal(t, 1.0, series[0].Value)
}

func TestTraceRule110Width7(t *testing.T) {
	client := newTestClient(t, Options{})
	res, err := client.Trace(context.Background(), TraceRequest{Rule: 110, Width: 7, Generations: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"   #   ", "  ##   ", " ###   ", "## #   "}, res.Diagram)
}

func TestCycleReportsGuarantee(t *testing.T) {
	client := newTestClient(t, Options{})
	res, err := client.Cycle(context.Background(), CycleRequest{Rule: 90, Width: 8, MaxSteps: 300})
	require.NoError(t, err)
	assert.True(t, res.Guaranteed)
	assert.True(t, res.Analysis.Resolved())

	res, err = client.Cycle(context.Background(), CycleRequest{Rule: 110, MaxSteps: -1})
	require.NoError(t, err)
	assert.Equal(t, DefaultCycleWidth, res.Width)
	assert.Equal(t, DefaultCycleMaxSteps, res.MaxSteps)
	assert.False(t, res.Guaranteed)
}

func TestZeroBoundsAreHonored(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t, Options{})

	radius, err := client.Radius(ctx, RadiusRequest{Rule: 110, MaxRadius: 0})
	require.NoError(t, err)
	assert.Equal(t, 0, radius.Config.MaxRadius)
	assert.Len(t, radius.Results, 1)
	assert.False(t, radius.Found)
	assert.Equal(t, locality.DiagnosisUnresolved, radius.Diagnosis)

	tr, err := client.Entropy(ctx, EntropyRequest{Rule: 30, BlockSize: 0})
	require.NoError(t, err)
	assert.Equal(t, 0, tr.BlockSize)
	assert.Zero(t, tr.Summary.Mean)
	assert.Zero(t, tr.Normalized)

	res, err := client.Cycle(ctx, CycleRequest{Rule: 110, MaxSteps: 0})
	require.NoError(t, err)
	assert.Equal(t, 0, res.MaxSteps)
	assert.False(t, res.Analysis.Resolved())

	neg, err := client.Radius(ctx, RadiusRequest{Rule: 110, MaxRadius: -1})
	require.NoError(t, err)
	assert.Equal(t, locality.DefaultMaxRadius, neg.Config.MaxRadius)
	assert.True(t, neg.Found)
}

func TestAnalyzeCoversEveryRule(t *testing.T) {
	client := newTestClient(t, Options{Workers: 3})
	res, err := client.Analyze(context.Background(), AnalyzeRequest{Width: 11, MaxSteps: 200})
	require.NoError(t, err)
	require.Len(t, res.Rows, 256)
	total := 0
	for _, n := range res.Counts {
		total += n
	}
	assert.Equal(t, 256, total)
	assert.Equal(t, cycle.ClassDies, res.Rows[0].Class)
	for _, row := range res.Notable() {
		assert.True(t, !row.Analysis.Died || row.Analysis.Transient > 1)
	}
}

func TestEntropySurveyMatchesDirectMeasure(t *testing.T) {
	client := newTestClient(t, Options{Workers: 8})
	res, err := client.EntropySurvey(context.Background(), SurveyRequest{Width: 31, Generations: 20})
	require.NoError(t, err)
	require.Len(t, res.Signatures, 256)
	assert.Equal(t, entropy.Measure(30, 31, 20, DefaultBlockSize), res.Signatures[30])
	assert.Equal(t, entropy.ClassDead, res.Signatures[0].Class)
}

func TestCompressUsesConfiguredCodec(t *testing.T) {
	client := newTestClient(t, Options{Codec: compress.ZstdName})
	est, err := client.Compress(context.Background(), CompressRequest{Rule: 30})
	require.NoError(t, err)
	assert.Equal(t, compress.ZstdName, est.Codec)
	assert.Equal(t, DefaultCompressWidth*(DefaultCompressGenerations+1), est.RawBits)

	_, err = New(Options{Codec: "lzma"})
	assert.ErrorIs(t, err, compress.ErrUnknownCodec)
}

func TestCompressSurveyRanks(t *testing.T) {
	client := newTestClient(t, Options{})
	ranking, err := client.CompressSurvey(context.Background(), SurveyRequest{Width: 31, Generations: 40})
	require.NoError(t, err)
	require.Len(t, ranking.Estimates, 256)
	for i := 1; i < len(ranking.Estimates); i++ {
		assert.LessOrEqual(t, ranking.Estimates[i-1].Ratio, ranking.Estimates[i].Ratio)
	}
}

func TestInferRadiusAndDependency(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t, Options{})

	rep, err := client.Infer(ctx, InferRequest{Rule: 110})
	require.NoError(t, err)
	assert.True(t, rep.Exact)
	assert.Equal(t, 10, rep.Config.Trials)

	radius, err := client.Radius(ctx, RadiusRequest{Rule: 110, MaxRadius: locality.DefaultMaxRadius})
	require.NoError(t, err)
	assert.Equal(t, 1, radius.Radius)
	assert.Equal(t, locality.DiagnosisSuccess, radius.Diagnosis)

	groups, err := client.Dependency(ctx)
	require.NoError(t, err)
	assert.Len(t, groups, 8)

	dep, err := client.DependencyInfer(ctx, DependencyInferRequest{Rule: DefaultDependencyRule})
	require.NoError(t, err)
	assert.True(t, dep.Match)
	assert.Equal(t, DefaultDependencyGenerations, dep.Config.Generations)
}

func TestRunsReadPersistentStore(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "runs.badger")

	first := newTestClient(t, Options{StoreKind: "badger", DBPath: dbPath})
	res, err := first.Cycle(ctx, CycleRequest{Rule: 90, Width: 8, MaxSteps: 300})
	require.NoError(t, err)
	saved, err := first.Save(ctx, SaveRequest{Kind: "cycle", Summary: "rule=90", Params: CycleRequest{Rule: 90, Width: 8, MaxSteps: 300}, Result: res})
	require.NoError(t, err)
	_, err = first.Save(ctx, SaveRequest{Kind: "compress", Summary: "rule=30", Params: CompressRequest{Rule: 30}, Result: res})
	require.NoError(t, err)
	require.NoError(t, first.Close())

	// a fresh artifacts dir has an empty index, so every listed run comes from badger
	second := newTestClient(t, Options{StoreKind: "badger", DBPath: dbPath})
	runs, err := second.Runs(ctx, RunsRequest{})
	require.NoError(t, err)
	require.Len(t, runs, 2)

	cycles, err := second.Runs(ctx, RunsRequest{Kind: "cycle"})
	require.NoError(t, err)
	require.Len(t, cycles, 1)
	assert.Equal(t, saved.RunID, cycles[0].RunID)
	assert.Equal(t, "rule=90", cycles[0].Summary)

	limited, err := second.Runs(ctx, RunsRequest{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	detail, err := second.Show(ctx, ShowRequest{RunID: saved.RunID})
	require.NoError(t, err)
	assert.Equal(t, "store", detail.Source)
}

func TestSaveRunsShowAndExport(t *testing.T) {
	ctx := context.Background()
	rec := metrics.NewRecorder()
	var logs bytes.Buffer
	client := newTestClient(t, Options{Metrics: rec, Logger: log.New(&logs)})

	tr, err := client.Entropy(ctx, EntropyRequest{Rule: 30, Width: 31, Generations: 10, BlockSize: DefaultBlockSize})
	require.NoError(t, err)
	item, err := client.Save(ctx, SaveRequest{
		Kind:    "entropy",
		Summary: "rule 30",
		Params:  EntropyRequest{Rule: 30, Width: 31, Generations: 10, BlockSize: DefaultBlockSize},
		Result:  tr,
		Series:  EntropySeries(tr),
	})
	require.NoError(t, err)
	require.NotEmpty(t, item.RunID)
	assert.Contains(t, logs.String(), "run saved")

	runs, err := client.Runs(ctx, RunsRequest{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, item.RunID, runs[0].RunID)
	assert.Equal(t, "entropy", runs[0].Kind)

	filtered, err := client.Runs(ctx, RunsRequest{Kind: "cycle"})
	require.NoError(t, err)
	assert.Empty(t, filtered)

	detail, err := client.Show(ctx, ShowRequest{Latest: true})
	require.NoError(t, err)
	assert.Equal(t, "store", detail.Source)
	assert.Len(t, detail.Series, 11)
	var decoded entropy.Trace
	require.NoError(t, json.Unmarshal(detail.Result, &decoded))
	assert.Equal(t, tr.Summary, decoded.Summary)

	exported, err := client.Export(ctx, ExportRequest{RunID: item.RunID})
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(exported.Directory, "report.json"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(exported.Directory, "series.csv"))
	require.NoError(t, err)

	_, err = client.Export(ctx, ExportRequest{RunID: item.RunID, Latest: true})
	assert.Error(t, err)
}

func TestShowFallsBackToArtifacts(t *testing.T) {
	ctx := context.Background()
	artifacts := filepath.Join(t.TempDir(), "runs")

	first := newTestClient(t, Options{ArtifactsDir: artifacts})
	res, err := first.Cycle(ctx, CycleRequest{Rule: 110, Width: 9, MaxSteps: 600})
	require.NoError(t, err)
	item, err := first.Save(ctx, SaveRequest{Kind: "cycle", Params: CycleRequest{Rule: 110, Width: 9, MaxSteps: 600}, Result: res})
	require.NoError(t, err)

	second := newTestClient(t, Options{ArtifactsDir: artifacts})
	detail, err := second.Show(ctx, ShowRequest{RunID: item.RunID})
	require.NoError(t, err)
	assert.Equal(t, "artifacts", detail.Source)
	assert.Equal(t, "cycle", detail.Kind)

	var decoded CycleResult
	require.NoError(t, json.Unmarshal(detail.Result, &decoded))
	assert.Equal(t, res.Analysis, decoded.Analysis)

	_, err = second.Show(ctx, ShowRequest{RunID: "missing"})
	assert.Error(t, err)
}

func TestShowWithoutRuns(t *testing.T) {
	client := newTestClient(t, Options{})
	_, err := client.Show(context.Background(), ShowRequest{Latest: true})
	assert.Error(t, err)
	_, err = client.Show(context.Background(), ShowRequest{})
	assert.Error(t, err)
}
