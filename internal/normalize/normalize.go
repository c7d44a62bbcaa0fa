// Package normalize maps raw GitHub payloads onto the canonical entities.
//
// Every mapping is pure apart from logging: a record that cannot be mapped is
// dropped, logged and counted, and the rest of the batch carries on.
package normalize

import (
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/naka-gawa/github-dashboard/internal/domain"
	"github.com/naka-gawa/github-dashboard/internal/observability"
)

var (
	errNilRecord        = errors.New("nil record")
	errMissingNumber    = errors.New("missing number")
	errMissingCreatedAt = errors.New("missing created_at")
	errMissingName      = errors.New("missing full name")
	errMissingLogin     = errors.New("missing login")
)

// Normalizer holds the reference clock and timezone used for derived fields.
// It is not safe for concurrent use.
type Normalizer struct {
	logger   *log.Logger
	now      func() time.Time
	loc      *time.Location
	failures []error
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithClock fixes "now", which days-open is measured against for open items.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) { n.now = now }
}

// WithLocation sets the timezone for hour-of-day, day-of-week and month buckets.
func WithLocation(loc *time.Location) Option {
	return func(n *Normalizer) { n.loc = loc }
}

// New returns a Normalizer measuring against time.Now in UTC unless overridden.
func New(logger *log.Logger, opts ...Option) *Normalizer {
	n := &Normalizer{
		logger: logger,
		now:    time.Now,
		loc:    time.UTC,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// All normalizes a whole bundle and returns the mapping failures collected
// along the way.
func (n *Normalizer) All(bundle *domain.RawDataBundle) (domain.Entities, []error) {
	n.failures = nil
	entities := domain.Entities{
		PullRequests:  n.PullRequests(bundle.PullRequests),
		Issues:        n.Issues(bundle.Issues),
		Repositories:  n.Repositories(bundle.Repositories),
		Organizations: n.Organizations(bundle.Organizations),
		Starred:       n.StarredRepositories(bundle.Starred),
		Contributions: n.Contributions(bundle.Events),
		Calendar:      append([]domain.ContributionDay{}, bundle.Contributions...),
	}
	if bundle.Profile != nil {
		entities.Login = bundle.Profile.GetLogin()
	}
	failures := n.failures
	n.failures = nil
	return entities, failures
}

func (n *Normalizer) fail(kind string, index int, err error) {
	mappingErr := &domain.RecordMappingError{Kind: kind, Index: index, Err: err}
	n.logger.Println(mappingErr)
	observability.RecordMappingFailuresTotal.WithLabelValues(kind).Inc()
	n.failures = append(n.failures, mappingErr)
}

// mapRecords applies fn to every record, isolating failures (including
// panics) to the record that caused them.
func mapRecords[R, T any](n *Normalizer, kind string, raw []*R, fn func(*R) (T, error)) []T {
	out := make([]T, 0, len(raw))
	for i, r := range raw {
		v, err := safeMap(r, fn)
		if err != nil {
			n.fail(kind, i, err)
			continue
		}
		out = append(out, v)
	}
	return out
}

func safeMap[R, T any](r *R, fn func(*R) (T, error)) (v T, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	if r == nil {
		return v, errNilRecord
	}
	return fn(r)
}

func daysBetween(from, to time.Time) float64 {
	days := to.Sub(from).Hours() / 24
	if days < 0 {
		return 0
	}
	return math.Round(days*10) / 10
}

// repositoryFromURL extracts "owner/name" from an API or HTML URL.
func repositoryFromURL(apiURL, htmlURL string) string {
	if i := strings.Index(apiURL, "/repos/"); i >= 0 {
		return strings.Trim(apiURL[i+len("/repos/"):], "/")
	}
	if i := strings.Index(htmlURL, "://"); i >= 0 {
		parts := strings.Split(htmlURL[i+3:], "/")
		if len(parts) >= 3 {
			return parts[1] + "/" + parts[2]
		}
	}
	return "unknown"
}
