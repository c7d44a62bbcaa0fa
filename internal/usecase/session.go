package usecase

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/naka-gawa/github-dashboard/internal/analytics"
	"github.com/naka-gawa/github-dashboard/internal/domain"
	"github.com/naka-gawa/github-dashboard/internal/gateway"
	"github.com/naka-gawa/github-dashboard/internal/normalize"
	"github.com/naka-gawa/github-dashboard/internal/observability"
	"github.com/naka-gawa/github-dashboard/internal/search"
	"github.com/prometheus/client_golang/prometheus"
)

// State is the result of one successful refresh. It is never mutated after
// it is published.
type State struct {
	Entities        domain.Entities          `json:"entities"`
	Snapshot        domain.AnalyticsSnapshot `json:"snapshot"`
	RefreshedAt     time.Time                `json:"refreshed_at"`
	Degraded        []string                 `json:"degraded,omitempty"`
	MappingFailures int                      `json:"mapping_failures"`
}

// Session is the explicit context object shared by every pipeline stage:
// the credential-bound fetcher and the last good State.
type Session struct {
	orchestrator *Orchestrator
	logger       *log.Logger
	now          func() time.Time
	loc          *time.Location
	state        atomic.Pointer[State]
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSessionClock fixes "now" for normalization, analytics and scoring.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// WithSessionLocation sets the timezone for hour, weekday and month buckets.
func WithSessionLocation(loc *time.Location) SessionOption {
	return func(s *Session) { s.loc = loc }
}

// NewSession creates a Session with no state; Current returns nil until a
// Refresh or Restore succeeds.
func NewSession(fetcher gateway.Fetcher, logger *log.Logger, opts ...SessionOption) *Session {
	s := &Session{
		orchestrator: NewOrchestrator(fetcher, logger),
		logger:       logger,
		now:          time.Now,
		loc:          time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Refresh runs fetch, normalize and aggregate, then publishes the new state
// wholesale. On error the previous state stays in place.
func (s *Session) Refresh(ctx context.Context) (*State, error) {
	timer := prometheus.NewTimer(observability.RefreshDuration)
	defer timer.ObserveDuration()

	bundle, err := s.orchestrator.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh: %w", err)
	}

	now := s.now()
	normalizer := normalize.New(s.logger, normalize.WithClock(s.now), normalize.WithLocation(s.loc))
	entities, failures := normalizer.All(bundle)

	st := &State{
		Entities:        entities,
		Snapshot:        analytics.Generate(entities, now, s.loc),
		RefreshedAt:     now,
		Degraded:        bundle.Degraded,
		MappingFailures: len(bundle.DecodeFailures) + len(failures),
	}
	s.state.Store(st)
	s.logger.Printf("Usecase: Refresh complete (%d pull requests, %d issues, %d repositories).",
		len(entities.PullRequests), len(entities.Issues), len(entities.Repositories))
	return st, nil
}

// Restore publishes a previously persisted state, e.g. one read from the cache.
func (s *Session) Restore(st *State) {
	if st == nil {
		return
	}
	s.state.Store(st)
}

// Current returns the published state, or nil before the first success.
func (s *Session) Current() *State {
	return s.state.Load()
}

// Search runs q against the entities of the state published when it starts,
// so one query never mixes two refreshes.
func (s *Session) Search(q search.Query) []search.Result {
	st := s.state.Load()
	if st == nil {
		return []search.Result{}
	}
	return search.Search(st.Entities, q, s.now())
}
