package store

import (
	"context"
	"sort"
	"sync"

	"vetgate/internal/candidate/models"
	vmodels "vetgate/internal/verification/models"
	id "vetgate/pkg/domain"
	"vetgate/pkg/platform/sentinel"
)

// InMemoryStore is the default store for local development and tests.
type InMemoryStore struct {
	mu         sync.RWMutex
	candidates map[id.CandidateID]*models.Candidate
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{candidates: make(map[id.CandidateID]*models.Candidate)}
}

func (s *InMemoryStore) Create(_ context.Context, candidate *models.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.candidates[candidate.ID]; exists {
		return sentinel.ErrConflict
	}
	s.candidates[candidate.ID] = clone(candidate)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, candidateID id.CandidateID) (*models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	candidate, ok := s.candidates[candidateID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(candidate), nil
}

func (s *InMemoryStore) Update(_ context.Context, candidate *models.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.candidates[candidate.ID]; !exists {
		return sentinel.ErrNotFound
	}
	s.candidates[candidate.ID] = clone(candidate)
	return nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Candidate, 0, len(s.candidates))
	for _, candidate := range s.candidates {
		out = append(out, clone(candidate))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// clone deep-copies a candidate so callers never share check slices with the
// stored value.
func clone(candidate *models.Candidate) *models.Candidate {
	copied := *candidate
	if candidate.Compliance.Checks != nil {
		copied.Compliance.Checks = append(
			[]vmodels.VerificationCheckResult(nil), candidate.Compliance.Checks...)
	}
	return &copied
}
