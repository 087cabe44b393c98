package storage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"ecalab/internal/model"
)

// exerciseStore runs the behavior every backend must share.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	reports := []model.Report{
		{VersionedRecord: Stamp(), ID: "a", Kind: "cycle", CreatedAtUTC: "2026-10-01T00:00:00Z", Params: json.RawMessage(`{}`), Payload: json.RawMessage(`{"period":1}`)},
		{VersionedRecord: Stamp(), ID: "b", Kind: "entropy", CreatedAtUTC: "2026-10-03T00:00:00Z", Params: json.RawMessage(`{}`), Payload: json.RawMessage(`{}`)},
		{VersionedRecord: Stamp(), ID: "c", Kind: "cycle", CreatedAtUTC: "2026-10-02T00:00:00Z", Params: json.RawMessage(`{}`), Payload: json.RawMessage(`{}`)},
	}
	for _, r := range reports {
		if err := store.SaveReport(ctx, r); err != nil {
			t.Fatalf("save report %s: %v", r.ID, err)
		}
	}

	got, ok, err := store.GetReport(ctx, "a")
	if err != nil {
		t.Fatalf("get report: %v", err)
	}
	if !ok || got.Kind != "cycle" || string(got.Payload) != `{"period":1}` {
		t.Fatalf("unexpected report: ok=%v %+v", ok, got)
	}
	if _, ok, err := store.GetReport(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected missing report, ok=%v err=%v", ok, err)
	}

	all, err := store.ListReports(ctx, "")
	if err != nil {
		t.Fatalf("list reports: %v", err)
	}
	if ids := reportIDs(all); ids != "bca" {
		t.Fatalf("expected newest first order bca, got %s", ids)
	}
	cycles, err := store.ListReports(ctx, "cycle")
	if err != nil {
		t.Fatalf("list cycle reports: %v", err)
	}
	if ids := reportIDs(cycles); ids != "ca" {
		t.Fatalf("expected ca, got %s", ids)
	}

	stale := reports[0]
	stale.SchemaVersion = 99
	if err := store.SaveReport(ctx, stale); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected version mismatch, got %v", err)
	}

	series := model.Series{
		VersionedRecord: Stamp(),
		RunID:           "b",
		Name:            "block_entropy",
		Points:          []model.SeriesPoint{{Generation: 0, Value: 0.5, Density: 0.1}, {Generation: 1, Value: 0.9, Density: 0.2}},
	}
	if err := store.SaveSeries(ctx, series); err != nil {
		t.Fatalf("save series: %v", err)
	}
	loaded, ok, err := store.GetSeries(ctx, "b")
	if err != nil {
		t.Fatalf("get series: %v", err)
	}
	if !ok || len(loaded.Points) != 2 || loaded.Points[1].Value != 0.9 {
		t.Fatalf("unexpected series: ok=%v %+v", ok, loaded)
	}
	if _, ok, err := store.GetSeries(ctx, "a"); err != nil || ok {
		t.Fatalf("expected missing series, ok=%v err=%v", ok, err)
	}
}

func reportIDs(reports []model.Report) string {
	ids := ""
	for _, r := range reports {
		ids += r.ID
	}
	return ids
}
