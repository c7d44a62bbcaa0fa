// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"

	"github.com/naka-gawa/github-dashboard/internal/domain"
	"github.com/naka-gawa/github-dashboard/internal/gateway"
	"github.com/naka-gawa/github-dashboard/internal/observability"
	"golang.org/x/sync/errgroup"
)

// Orchestrator is the use case for fetching one complete raw data bundle.
// It validates the credential, resolves the acting user, then fetches every
// independent resource concurrently.
type Orchestrator struct {
	fetcher gateway.Fetcher
	logger  *log.Logger
}

// NewOrchestrator creates a new Orchestrator instance.
func NewOrchestrator(fetcher gateway.Fetcher, logger *log.Logger) *Orchestrator {
	return &Orchestrator{
		fetcher: fetcher,
		logger:  logger,
	}
}

// FetchAll returns a bundle in which every resource that failed after
// retries is left with whatever the gateway managed to return and is named
// in Degraded. Only an AuthError aborts the cycle.
func (o *Orchestrator) FetchAll(ctx context.Context) (*domain.RawDataBundle, error) {
	o.logger.Println("Usecase: Verifying credential...")
	if !o.fetcher.VerifyToken(ctx) {
		return nil, &domain.AuthError{Err: errors.New("credential rejected by verification probe")}
	}

	bundle := &domain.RawDataBundle{}
	var mu sync.Mutex
	degrade := func(resource string, err error) {
		resErr := &domain.ResourceError{Resource: resource, Err: err}
		o.logger.Println(resErr)
		observability.ResourceFailuresTotal.WithLabelValues(resource).Inc()
		mu.Lock()
		bundle.Degraded = append(bundle.Degraded, resource)
		mu.Unlock()
	}

	profile, err := o.fetcher.FetchProfile(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return nil, err
		}
		degrade("profile", err)
	}
	bundle.Profile = profile

	eg, egCtx := errgroup.WithContext(ctx)
	run := func(resource string, fetch func(context.Context) error) {
		eg.Go(func() error {
			err := fetch(egCtx)
			if err == nil {
				return nil
			}
			if errors.Is(err, domain.ErrUnauthorized) {
				return err
			}
			degrade(resource, err)
			return nil
		})
	}

	run("pull_requests", func(ctx context.Context) (err error) {
		bundle.PullRequests, err = o.fetcher.FetchPullRequests(ctx)
		return err
	})
	run("issues", func(ctx context.Context) (err error) {
		bundle.Issues, err = o.fetcher.FetchIssues(ctx)
		return err
	})
	run("repositories", func(ctx context.Context) (err error) {
		bundle.Repositories, err = o.fetcher.FetchRepositories(ctx)
		return err
	})
	run("organizations", func(ctx context.Context) (err error) {
		bundle.Organizations, err = o.fetcher.FetchOrganizations(ctx)
		return err
	})
	run("starred", func(ctx context.Context) (err error) {
		bundle.Starred, err = o.fetcher.FetchStarred(ctx)
		return err
	})
	run("contributions", func(ctx context.Context) (err error) {
		bundle.Contributions, err = o.fetcher.FetchContributionCalendar(ctx)
		return err
	})
	// The events feed is keyed by login, so it depends on the profile.
	if login := profile.GetLogin(); login != "" {
		run("events", func(ctx context.Context) (err error) {
			bundle.Events, err = o.fetcher.FetchEvents(ctx, login)
			return err
		})
	} else {
		degrade("events", errors.New("username unavailable"))
	}

	err = eg.Wait()
	bundle.DecodeFailures = o.fetcher.DrainDecodeFailures()
	if err != nil {
		return nil, err
	}

	sort.Strings(bundle.Degraded)
	o.logger.Printf("Usecase: Fetch complete (%d resources degraded).", len(bundle.Degraded))
	return bundle, nil
}
