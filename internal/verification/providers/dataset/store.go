package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"vetgate/internal/verification/models"
)

// Record is one entry of a reference list (exclusion, sanctions, debarment).
// Names are stored normalized; DateOfBirth is an ISO date or empty when the
// source list does not publish one. Attributes carry source-specific fields
// surfaced to reviewers when the record matches.
type Record struct {
	FullName    string            `json:"full_name"`
	DateOfBirth string            `json:"date_of_birth,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

// Store provides read access to the reference lists backing dataset checks.
// Lists are bounded and pre-loaded; imports that refresh them run elsewhere.
type Store interface {
	// FindByName returns all records on the given list whose normalized name
	// equals the (already normalized) query name.
	FindByName(ctx context.Context, list models.CheckType, normalizedName string) ([]Record, error)
}

// InMemoryStore keeps reference lists in process memory, indexed by normalized
// name. Suitable for dev deployments and the default seed datasets.
type InMemoryStore struct {
	mu    sync.RWMutex
	lists map[models.CheckType]map[string][]Record
}

// NewInMemoryStore creates an empty in-memory reference store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		lists: make(map[models.CheckType]map[string][]Record),
	}
}

// Add inserts a record into a list, normalizing its name for the index.
func (s *InMemoryStore) Add(list models.CheckType, record Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byName, ok := s.lists[list]
	if !ok {
		byName = make(map[string][]Record)
		s.lists[list] = byName
	}
	key := NormalizeName(record.FullName)
	byName[key] = append(byName[key], record)
}

// FindByName implements Store.
func (s *InMemoryStore) FindByName(_ context.Context, list models.CheckType, normalizedName string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byName, ok := s.lists[list]
	if !ok {
		return nil, nil
	}
	records := byName[normalizedName]
	out := make([]Record, len(records))
	copy(out, records)
	return out, nil
}

type seedFile struct {
	Lists map[string][]Record `json:"lists"`
}

// LoadSeed populates the store from a JSON seed document keyed by check type.
func (s *InMemoryStore) LoadSeed(raw []byte) error {
	var file seedFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse dataset seed: %w", err)
	}
	for list, records := range file.Lists {
		for _, record := range records {
			if record.FullName == "" {
				return fmt.Errorf("dataset seed: record on %q missing full_name", list)
			}
			s.Add(models.CheckType(list), record)
		}
	}
	return nil
}
