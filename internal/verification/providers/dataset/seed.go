package dataset

import _ "embed"

// Seed datasets ship embedded so a fresh deployment can run the reference-list
// checks before the first scheduled import lands. Production deployments
// replace these with full list imports.
//
//go:embed seed.json
var seedJSON []byte

// NewSeededInMemoryStore returns an in-memory store pre-loaded with the
// embedded seed lists.
func NewSeededInMemoryStore() (*InMemoryStore, error) {
	store := NewInMemoryStore()
	if err := store.LoadSeed(seedJSON); err != nil {
		return nil, err
	}
	return store, nil
}
