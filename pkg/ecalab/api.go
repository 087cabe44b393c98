package ecalab

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"ecalab/internal/compress"
	"ecalab/internal/metrics"
	"ecalab/internal/model"
	"ecalab/internal/stats"
	"ecalab/internal/storage"
	"ecalab/internal/survey"
)

const (
	defaultArtifactsDir = "runs"
	defaultExportsDir   = "exports"
	defaultDBPath       = "ecalab.db"
)

type Options struct {
	StoreKind    string
	DBPath       string
	ArtifactsDir string
	ExportsDir   string
	Codec        string
	Workers      int
	Logger       *log.Logger
	Metrics      *metrics.Recorder
}

// Client runs analyses and manages saved runs. Analyses never touch the store;
// only Save, Runs, Show and Export do.
type Client struct {
	store      storage.Store
	persistent bool
	codec      compress.Codec
	workers    int
	logger     *log.Logger
	metrics    *metrics.Recorder

	artifactsDir string
	exportsDir   string
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" && storeKind != storage.StoreBadger {
		dbPath = defaultDBPath
	}
	artifactsDir := opts.ArtifactsDir
	if artifactsDir == "" {
		artifactsDir = defaultArtifactsDir
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = survey.DefaultWorkers
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	codec, err := compress.CodecByName(opts.Codec)
	if err != nil {
		return nil, err
	}
	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:        store,
		persistent:   storage.Persistent(storeKind, dbPath),
		codec:        codec,
		workers:      workers,
		logger:       logger,
		metrics:      opts.Metrics,
		artifactsDir: artifactsDir,
		exportsDir:   exportsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

// Init prepares the store; it must be called before Save, Runs, Show or Export.
func (c *Client) Init(ctx context.Context) error {
	if err := c.store.Init(ctx); err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	return nil
}

// observe logs and records one finished analysis.
func (c *Client) observe(kind string, start time.Time, err error, keyvals ...any) {
	elapsed := time.Since(start)
	c.metrics.Observe(kind, elapsed, err)
	keyvals = append([]any{"kind", kind, "duration", elapsed}, keyvals...)
	if err != nil {
		c.logger.Error("analysis failed", append(keyvals, "err", err)...)
		return
	}
	c.logger.Debug("analysis complete", keyvals...)
}

type SaveRequest struct {
	Kind    string
	Summary string
	Params  any
	Result  any
	Series  []model.SeriesPoint
	Diagram []string
}

type RunItem struct {
	RunID        string
	Kind         string
	Summary      string
	CreatedAtUTC string
	ArtifactsDir string
}

// Save persists a finished analysis to the store and writes its artifacts directory.
func (c *Client) Save(ctx context.Context, req SaveRequest) (RunItem, error) {
	if req.Kind == "" {
		return RunItem{}, errors.New("save requires a kind")
	}
	params, err := json.Marshal(req.Params)
	if err != nil {
		return RunItem{}, fmt.Errorf("encode params: %w", err)
	}
	payload, err := json.Marshal(req.Result)
	if err != nil {
		return RunItem{}, fmt.Errorf("encode result: %w", err)
	}

	runID := uuid.NewString()
	created := time.Now().UTC().Format(time.RFC3339Nano)
	report := model.Report{
		VersionedRecord: storage.Stamp(),
		ID:              runID,
		Kind:            req.Kind,
		Summary:         req.Summary,
		CreatedAtUTC:    created,
		Params:          params,
		Payload:         payload,
	}
	if err := c.store.SaveReport(ctx, report); err != nil {
		return RunItem{}, fmt.Errorf("save report %s: %w", runID, err)
	}
	if len(req.Series) > 0 {
		series := model.Series{VersionedRecord: storage.Stamp(), RunID: runID, Name: req.Kind, Points: req.Series}
		if err := c.store.SaveSeries(ctx, series); err != nil {
			return RunItem{}, fmt.Errorf("save series %s: %w", runID, err)
		}
	}

	runDir, err := stats.WriteRunArtifacts(c.artifactsDir, stats.RunArtifacts{
		Config: stats.RunConfig{
			RunID:        runID,
			Kind:         req.Kind,
			Params:       params,
			Codec:        c.codec.Name(),
			Workers:      c.workers,
			CreatedAtUTC: created,
		},
		Report:  payload,
		Series:  req.Series,
		Diagram: req.Diagram,
	})
	if err != nil {
		return RunItem{}, fmt.Errorf("write artifacts %s: %w", runID, err)
	}
	if err := stats.AppendRunIndex(c.artifactsDir, stats.RunIndexEntry{
		RunID:        runID,
		Kind:         req.Kind,
		Summary:      req.Summary,
		CreatedAtUTC: created,
	}); err != nil {
		return RunItem{}, fmt.Errorf("index run %s: %w", runID, err)
	}

	c.metrics.Saved()
	c.logger.Info("run saved", "run_id", runID, "kind", req.Kind, "dir", runDir)
	return RunItem{RunID: runID, Kind: req.Kind, Summary: req.Summary, CreatedAtUTC: created, ArtifactsDir: runDir}, nil
}

type RunsRequest struct {
	Limit int
	Kind  string
}

// Runs lists saved runs newest first: from the store when it is persistent, from the
// artifacts index otherwise.
func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}
	if c.persistent {
		return c.storedRuns(ctx, req)
	}

	entries, err := stats.ListRunIndex(c.artifactsDir)
	if err != nil {
		return nil, err
	}

	out := make([]RunItem, 0, len(entries))
	for _, e := range entries {
		if req.Kind != "" && e.Kind != req.Kind {
			continue
		}
		out = append(out, RunItem{
			RunID:        e.RunID,
			Kind:         e.Kind,
			Summary:      e.Summary,
			CreatedAtUTC: e.CreatedAtUTC,
			ArtifactsDir: filepath.Join(c.artifactsDir, e.RunID),
		})
		if len(out) == req.Limit {
			break
		}
	}
	return out, nil
}

func (c *Client) storedRuns(ctx context.Context, req RunsRequest) ([]RunItem, error) {
	reports, err := c.store.ListReports(ctx, req.Kind)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	if len(reports) > req.Limit {
		reports = reports[:req.Limit]
	}
	out := make([]RunItem, 0, len(reports))
	for _, r := range reports {
		out = append(out, RunItem{
			RunID:        r.ID,
			Kind:         r.Kind,
			Summary:      r.Summary,
			CreatedAtUTC: r.CreatedAtUTC,
			ArtifactsDir: filepath.Join(c.artifactsDir, r.ID),
		})
	}
	return out, nil
}

type ShowRequest struct {
	RunID  string
	Latest bool
}

type RunDetail struct {
	RunID        string
	Kind         string
	CreatedAtUTC string
	Params       json.RawMessage
	Result       json.RawMessage
	Series       []model.SeriesPoint
	Source       string
}

// Show loads a saved run from the store, falling back to its artifacts directory
// when the store does not hold it (e.g. an in-memory store in a new process).
func (c *Client) Show(ctx context.Context, req ShowRequest) (RunDetail, error) {
	runID, err := c.resolveRunID(ctx, req.RunID, req.Latest)
	if err != nil {
		return RunDetail{}, err
	}

	report, ok, err := c.store.GetReport(ctx, runID)
	if err != nil {
		return RunDetail{}, fmt.Errorf("load report %s: %w", runID, err)
	}
	if ok {
		detail := RunDetail{
			RunID:        report.ID,
			Kind:         report.Kind,
			CreatedAtUTC: report.CreatedAtUTC,
			Params:       report.Params,
			Result:       report.Payload,
			Source:       "store",
		}
		series, ok, err := c.store.GetSeries(ctx, runID)
		if err != nil {
			return RunDetail{}, fmt.Errorf("load series %s: %w", runID, err)
		}
		if ok {
			detail.Series = series.Points
		}
		return detail, nil
	}

	cfg, ok, err := stats.ReadRunConfig(c.artifactsDir, runID)
	if err != nil {
		return RunDetail{}, err
	}
	if !ok {
		return RunDetail{}, fmt.Errorf("run not found: %s", runID)
	}
	result, _, err := stats.ReadReport(c.artifactsDir, runID)
	if err != nil {
		return RunDetail{}, err
	}
	series, _, err := stats.ReadSeries(c.artifactsDir, runID)
	if err != nil {
		return RunDetail{}, err
	}
	return RunDetail{
		RunID:        cfg.RunID,
		Kind:         cfg.Kind,
		CreatedAtUTC: cfg.CreatedAtUTC,
		Params:       cfg.Params,
		Result:       result,
		Series:       series,
		Source:       "artifacts",
	}, nil
}

type ExportRequest struct {
	RunID  string
	Latest bool
	OutDir string
}

type ExportSummary struct {
	RunID     string
	Directory string
}

func (c *Client) Export(ctx context.Context, req ExportRequest) (ExportSummary, error) {
	if req.OutDir == "" {
		req.OutDir = c.exportsDir
	}
	runID, err := c.resolveRunID(ctx, req.RunID, req.Latest)
	if err != nil {
		return ExportSummary{}, err
	}

	exportedDir, err := stats.ExportRunArtifacts(c.artifactsDir, runID, req.OutDir)
	if err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{RunID: runID, Directory: filepath.Clean(exportedDir)}, nil
}

func (c *Client) resolveRunID(ctx context.Context, runID string, latest bool) (string, error) {
	if runID != "" && latest {
		return "", errors.New("use either run id or latest")
	}
	if runID == "" && !latest {
		return "", errors.New("requires run id or latest")
	}
	if runID != "" {
		return runID, nil
	}
	runs, err := c.Runs(ctx, RunsRequest{Limit: 1})
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", errors.New("no runs available")
	}
	return runs[0].RunID, nil
}
