//go:build sqlite

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"ecalab/internal/model"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveReport(ctx context.Context, report model.Report) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	if err := checkVersion(report.VersionedRecord); err != nil {
		return err
	}

	payload, err := EncodeReport(report)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO reports (id, kind, created_at_utc, schema_version, codec_version, payload)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind = excluded.kind,
			created_at_utc = excluded.created_at_utc,
			schema_version = excluded.schema_version,
			codec_version = excluded.codec_version,
			payload = excluded.payload
	`, report.ID, report.Kind, report.CreatedAtUTC, report.SchemaVersion, report.CodecVersion, payload)
	return err
}

func (s *SQLiteStore) GetReport(ctx context.Context, id string) (model.Report, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.Report{}, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM reports WHERE id = ?`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Report{}, false, nil
		}
		return model.Report{}, false, err
	}

	report, err := DecodeReport(payload)
	if err != nil {
		return model.Report{}, false, fmt.Errorf("decode report %s: %w", id, err)
	}
	return report, true, nil
}

func (s *SQLiteStore) ListReports(ctx context.Context, kind string) ([]model.Report, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, payload FROM reports
		WHERE ? = '' OR kind = ?
		ORDER BY created_at_utc DESC, id ASC
	`, kind, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Report
	for rows.Next() {
		var (
			id      string
			payload []byte
		)
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, err
		}
		report, err := DecodeReport(payload)
		if err != nil {
			return nil, fmt.Errorf("decode report %s: %w", id, err)
		}
		out = append(out, report)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) SaveSeries(ctx context.Context, series model.Series) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	if err := checkVersion(series.VersionedRecord); err != nil {
		return err
	}

	payload, err := EncodeSeries(series)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO series (run_id, payload)
		VALUES (?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			payload = excluded.payload
	`, series.RunID, payload)
	return err
}

func (s *SQLiteStore) GetSeries(ctx context.Context, runID string) (model.Series, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.Series{}, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM series WHERE run_id = ?`, runID).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Series{}, false, nil
		}
		return model.Series{}, false, err
	}

	series, err := DecodeSeries(payload)
	if err != nil {
		return model.Series{}, false, fmt.Errorf("decode series %s: %w", runID, err)
	}
	return series, true, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS reports (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			created_at_utc TEXT NOT NULL,
			schema_version INTEGER NOT NULL,
			codec_version INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS reports_kind ON reports (kind);
		CREATE TABLE IF NOT EXISTS series (
			run_id TEXT PRIMARY KEY,
			payload BLOB NOT NULL
		);
	`)
	return err
}

func DefaultStoreKind() string {
	return StoreSQLite
}

func newSQLiteStore(path string) (Store, error) {
	return NewSQLiteStore(path), nil
}
