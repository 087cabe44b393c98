//go:build sqlite

package storage

import (
	"context"
	"path/filepath"
	"testing"

	"ecalab/internal/model"
)

func TestSQLiteStoreContract(t *testing.T) {
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "ecalab.db"))
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	exerciseStore(t, store)
}

func TestSQLiteStoreUpsertsReport(t *testing.T) {
	ctx := context.Background()
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "ecalab.db"))
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	report := model.Report{VersionedRecord: Stamp(), ID: "r1", Kind: "trace", CreatedAtUTC: "2026-10-01T00:00:00Z"}
	if err := store.SaveReport(ctx, report); err != nil {
		t.Fatalf("save: %v", err)
	}
	report.Kind = "cycle"
	if err := store.SaveReport(ctx, report); err != nil {
		t.Fatalf("resave: %v", err)
	}
	all, err := store.ListReports(ctx, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 || all[0].Kind != "cycle" {
		t.Fatalf("expected single upserted report, got %+v", all)
	}
}

func TestSQLiteStoreRequiresPath(t *testing.T) {
	if err := NewSQLiteStore("").Init(context.Background()); err == nil {
		t.Fatal("expected missing path error")
	}
}

func TestNewStoreSQLite(t *testing.T) {
	store, err := NewStore("sqlite", filepath.Join(t.TempDir(), "factory.db"))
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	if _, ok := store.(*SQLiteStore); !ok {
		t.Fatalf("expected sqlite store, got %T", store)
	}
}
