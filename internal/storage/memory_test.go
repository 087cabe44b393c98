package storage

import (
	"context"
	"testing"

	"ecalab/internal/model"
)

func TestMemoryStoreContract(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	exerciseStore(t, store)
}

func TestMemoryStoreRequiresInit(t *testing.T) {
	store := NewMemoryStore()
	err := store.SaveReport(context.Background(), model.Report{VersionedRecord: Stamp(), ID: "x"})
	if err == nil {
		t.Fatal("expected error before init")
	}
}

func TestMemoryStoreSeriesIsCopied(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	points := []model.SeriesPoint{{Generation: 0, Value: 1}}
	if err := store.SaveSeries(ctx, model.Series{VersionedRecord: Stamp(), RunID: "r", Points: points}); err != nil {
		t.Fatalf("save series: %v", err)
	}
	points[0].Value = 42

	loaded, _, err := store.GetSeries(ctx, "r")
	if err != nil {
		t.Fatalf("get series: %v", err)
	}
	if loaded.Points[0].Value != 1 {
		t.Fatalf("stored series aliased caller slice: %+v", loaded.Points)
	}
}
