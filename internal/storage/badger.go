package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"ecalab/internal/model"
)

const (
	reportPrefix = "report/"
	seriesPrefix = "series/"
)

// BadgerStore keeps JSON records in an embedded Badger key-value database. An empty
// path opens an in-memory database.
type BadgerStore struct {
	path string

	mu sync.RWMutex
	db *badger.DB
}

func NewBadgerStore(path string) *BadgerStore {
	return &BadgerStore{path: path}
}

func (s *BadgerStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}

	var opts badger.Options
	if s.path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(s.path, 0o750); err != nil {
			return fmt.Errorf("create badger directory %s: %w", s.path, err)
		}
		opts = badger.DefaultOptions(s.path).WithSyncWrites(true)
	}
	opts = opts.WithNumVersionsToKeep(1).WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return fmt.Errorf("open badger database: %w", err)
	}
	s.db = db
	return nil
}

func (s *BadgerStore) SaveReport(_ context.Context, report model.Report) error {
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
	return db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(reportPrefix+report.ID), payload)
	})
}

func (s *BadgerStore) GetReport(_ context.Context, id string) (model.Report, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.Report{}, false, err
	}
	payload, ok, err := get(db, reportPrefix+id)
	if err != nil || !ok {
		return model.Report{}, false, err
	}
	report, err := DecodeReport(payload)
	if err != nil {
		return model.Report{}, false, fmt.Errorf("decode report %s: %w", id, err)
	}
	return report, true, nil
}

func (s *BadgerStore) ListReports(ctx context.Context, kind string) ([]model.Report, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	var out []model.Report
	err = db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(reportPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			payload, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			report, err := DecodeReport(payload)
			if err != nil {
				return fmt.Errorf("decode report %s: %w", item.Key()[len(reportPrefix):], err)
			}
			if kind == "" || report.Kind == kind {
				out = append(out, report)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortReports(out)
	return out, nil
}

func (s *BadgerStore) SaveSeries(_ context.Context, series model.Series) error {
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
	return db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(seriesPrefix+series.RunID), payload)
	})
}

func (s *BadgerStore) GetSeries(_ context.Context, runID string) (model.Series, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.Series{}, false, err
	}
	payload, ok, err := get(db, seriesPrefix+runID)
	if err != nil || !ok {
		return model.Series{}, false, err
	}
	series, err := DecodeSeries(payload)
	if err != nil {
		return model.Series{}, false, fmt.Errorf("decode series %s: %w", runID, err)
	}
	return series, true, nil
}

func (s *BadgerStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *BadgerStore) getDB() (*badger.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}

func get(db *badger.DB, key string) ([]byte, bool, error) {
	var payload []byte
	err := db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		payload, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return payload, true, nil
}
