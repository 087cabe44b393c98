package storage

import "fmt"

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreBadger = "badger"
)

// NewStore builds a backend by name. path is the sqlite database file or the badger
// directory; an empty badger path runs in memory.
func NewStore(kind, path string) (Store, error) {
	switch kind {
	case "", StoreMemory:
		return NewMemoryStore(), nil
	case StoreSQLite:
		return newSQLiteStore(path)
	case StoreBadger:
		return NewBadgerStore(path), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}

// Persistent reports whether a backend built by NewStore(kind, path) outlives the
// process.
func Persistent(kind, path string) bool {
	switch kind {
	case StoreSQLite:
		return true
	case StoreBadger:
		return path != ""
	default:
		return false
	}
}

func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
