package exclusions

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	cmodels "vetgate/internal/candidate/models"
	"vetgate/internal/verification/models"
	id "vetgate/pkg/domain"
)

type ExclusionsProviderSuite struct {
	suite.Suite
	ctx context.Context
}

func TestExclusionsProviderSuite(t *testing.T) {
	suite.Run(t, new(ExclusionsProviderSuite))
}

func (s *ExclusionsProviderSuite) SetupTest() {
	s.ctx = context.Background()
}

func (s *ExclusionsProviderSuite) newCandidate(name string) *cmodels.Candidate {
	candidate, err := cmodels.NewCandidate(id.NewCandidateID(), name, "")
	s.Require().NoError(err)
	return candidate
}

func (s *ExclusionsProviderSuite) serve(handler http.HandlerFunc) *httptest.Server {
	server := httptest.NewServer(handler)
	s.T().Cleanup(server.Close)
	return server
}

// =============================================================================
// Credential Handling
// =============================================================================

func (s *ExclusionsProviderSuite) TestMissingCredential() {
	provider := New(Config{APIKey: ""})

	result, err := provider.Run(s.ctx, s.newCandidate("Sarah Chen"))
	s.Require().NoError(err)
	s.Equal(models.StatusPending, result.Status)
	s.Contains(result.Summary, "not configured")
	s.Empty(result.ErrorDetail)
}

// =============================================================================
// Response Mapping
// =============================================================================

func (s *ExclusionsProviderSuite) TestResponseMapping() {
	s.Run("zero hits is clear", func() {
		server := s.serve(func(w http.ResponseWriter, r *http.Request) {
			s.Equal("test-key", r.Header.Get("X-Api-Key"))
			s.Equal("Sarah Chen", r.URL.Query().Get("name"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"total": 0, "results": []}`))
		})
		provider := New(Config{BaseURL: server.URL, APIKey: "test-key"})

		result, err := provider.Run(s.ctx, s.newCandidate("Sarah Chen"))
		s.Require().NoError(err)
		s.Equal(models.StatusClear, result.Status)
		s.InDelta(0.95, result.Confidence, 0.001)
	})

	s.Run("positive hit count flags with raw records", func() {
		server := s.serve(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"total": 2, "results": [
				{"full_name": "James T. Powell", "agency": "HHS", "active": true},
				{"full_name": "James Powell", "agency": "VA", "active": false}
			]}`))
		})
		provider := New(Config{BaseURL: server.URL, APIKey: "test-key"})

		result, err := provider.Run(s.ctx, s.newCandidate("James T. Powell"))
		s.Require().NoError(err)
		s.Equal(models.StatusFlagged, result.Status)
		s.InDelta(0.8, result.Confidence, 0.001)
		s.Require().Len(result.Matches, 2)
		s.Equal("James T. Powell", result.Matches[0]["full_name"])
		s.Equal("true", result.Matches[0]["active"])
	})
}

// =============================================================================
// Failure Containment
// =============================================================================

func (s *ExclusionsProviderSuite) TestFailureContainment() {
	s.Run("non-2xx becomes ERROR with the status code", func() {
		server := s.serve(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})
		provider := New(Config{BaseURL: server.URL, APIKey: "test-key"})

		result, err := provider.Run(s.ctx, s.newCandidate("Sarah Chen"))
		s.Require().NoError(err)
		s.Equal(models.StatusError, result.Status)
		s.Contains(result.Summary, "429")
	})

	s.Run("unreachable registry becomes ERROR", func() {
		server := httptest.NewServer(http.NotFoundHandler())
		server.Close() // connection refused from here on
		provider := New(Config{BaseURL: server.URL, APIKey: "test-key"})

		result, err := provider.Run(s.ctx, s.newCandidate("Sarah Chen"))
		s.Require().NoError(err)
		s.Equal(models.StatusError, result.Status)
		s.NotEmpty(result.ErrorDetail)
	})

	s.Run("malformed response body becomes ERROR", func() {
		server := s.serve(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"total":`))
		})
		provider := New(Config{BaseURL: server.URL, APIKey: "test-key"})

		result, err := provider.Run(s.ctx, s.newCandidate("Sarah Chen"))
		s.Require().NoError(err)
		s.Equal(models.StatusError, result.Status)
		s.NotEmpty(result.ErrorDetail)
	})

	s.Run("latency is recorded on every outcome", func() {
		server := s.serve(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"total": 0}`))
		})
		provider := New(Config{BaseURL: server.URL, APIKey: "test-key"})

		result, err := provider.Run(s.ctx, s.newCandidate("Sarah Chen"))
		s.Require().NoError(err)
		s.GreaterOrEqual(result.LatencyMS, int64(0))
		s.False(result.CheckedAt.IsZero())
	})
}
