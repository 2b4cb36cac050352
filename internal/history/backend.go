package history

import (
	"context"
	"fmt"

	"rafeyshell/internal/logging"
)

// Backend persists the full entry list.
type Backend interface {
	Load(ctx context.Context) ([]Entry, error)
	Save(ctx context.Context, entries []Entry) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Open returns the backend named kind. path is the history file or database.
func Open(kind, path string) (Backend, error) {
	switch kind {
	case "", BackendJSON:
		return NewJSONFile(path), nil
	case BackendSQLite:
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown history backend %q (valid: json, sqlite)", kind)
	}
}

// LoadOrEmpty loads persisted entries into a new Store. Any load failure is
// logged and treated as empty history.
func LoadOrEmpty(ctx context.Context, b Backend) *Store {
	timer := logging.StartTimer(logging.CategoryStore, "LoadOrEmpty")
	defer timer.Stop()

	entries, err := b.Load(ctx)
	if err != nil {
		logging.Get(logging.CategoryStore).Warn("Failed to load history, starting empty: %v", err)
		return NewStore()
	}
	logging.StoreDebug("Loaded %d history entries", len(entries))
	return NewStore(entries...)
}
