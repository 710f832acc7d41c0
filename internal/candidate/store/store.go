// Package store persists candidates. Implementations return sentinel errors;
// services translate them into coded domain errors at the boundary.
package store

import (
	"context"

	"vetgate/internal/candidate/models"
	id "vetgate/pkg/domain"
)

// Store is the candidate persistence port.
type Store interface {
	// Create inserts a new candidate. Returns sentinel.ErrConflict when the id
	// already exists.
	Create(ctx context.Context, candidate *models.Candidate) error

	// FindByID returns the candidate or sentinel.ErrNotFound.
	FindByID(ctx context.Context, candidateID id.CandidateID) (*models.Candidate, error)

	// Update replaces the stored candidate wholesale, compliance state
	// included. Returns sentinel.ErrNotFound for unknown ids. Concurrent
	// updates are last-write-wins.
	Update(ctx context.Context, candidate *models.Candidate) error

	// List returns all candidates ordered by creation time, newest first.
	List(ctx context.Context) ([]*models.Candidate, error)
}
