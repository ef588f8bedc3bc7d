package tabledef

import (
	"errors"
	"fmt"
	"slices"

	"github.com/ardanlabs/chaindb/foundation/keystore"
)

// Source provides the stored fragments for a table.
type Source interface {
	Fragments(table string) ([]string, error)
}

// Store is the behavior required of a keyed configuration store.
type Store interface {
	Get(key string, dest any) error
}

// StoreSource reads definitions from a keyed store.
type StoreSource struct {
	store Store
}

// NewStoreSource constructs a Source over the specified store.
func NewStoreSource(store Store) StoreSource {
	return StoreSource{
		store: store,
	}
}

// Fragments implements the Source interface.
func (ss StoreSource) Fragments(table string) ([]string, error) {
	var fragments []string
	if err := ss.store.Get(table, &fragments); err != nil {
		if errors.Is(err, keystore.ErrNotFound) {
			return nil, fmt.Errorf("table %q: %w: %w", table, ErrNotFound, err)
		}
		return nil, fmt.Errorf("table %q: %w", table, err)
	}

	return fragments, nil
}

// MemorySource holds definitions in memory keyed by table.
type MemorySource map[string][]string

// Fragments implements the Source interface. The caller gets a copy.
func (ms MemorySource) Fragments(table string) ([]string, error) {
	fragments, exists := ms[table]
	if !exists {
		return nil, fmt.Errorf("table %q: %w", table, ErrNotFound)
	}

	return slices.Clone(fragments), nil
}
