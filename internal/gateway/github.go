// Package gateway provides a gateway to the GitHub API: a retrying,
// rate-limit-aware transport, a pagination driver, and one fetcher per
// top-level resource the dashboard reads.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"sync"

	"github.com/naka-gawa/github-dashboard/internal/config"
	"github.com/naka-gawa/github-dashboard/internal/domain"
	"github.com/shurcooL/githubv4"
)

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	VerifyToken(ctx context.Context) bool
	FetchProfile(ctx context.Context) (*domain.RawUser, error)
	FetchPullRequests(ctx context.Context) ([]*domain.RawPullRequest, error)
	FetchIssues(ctx context.Context) ([]*domain.RawIssue, error)
	FetchRepositories(ctx context.Context) ([]*domain.RawRepository, error)
	FetchOrganizations(ctx context.Context) ([]*domain.RawOrganization, error)
	FetchStarred(ctx context.Context) ([]*domain.RawStarredRepository, error)
	FetchEvents(ctx context.Context, login string) ([]*domain.RawActivityEvent, error)
	FetchContributionCalendar(ctx context.Context) ([]domain.ContributionDay, error)
	// DrainDecodeFailures returns the records dropped as undecodable since
	// the last call, and forgets them.
	DrainDecodeFailures() []error
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	client        *Client
	graphqlClient *githubv4.Client
	logger        *log.Logger

	mu             sync.Mutex
	decodeFailures []error
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(cfg *config.Config, logger *log.Logger) (Fetcher, error) {
	httpClient, err := NewHTTPClient(cfg.GitHubToken)
	if err != nil {
		return nil, err
	}
	client, err := NewClient(httpClient, logger,
		WithBaseURL(cfg.APIURL),
		WithRequestsPerSecond(cfg.RequestsPerSecond),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}
	return &GitHubGateway{
		client:        client,
		graphqlClient: githubv4.NewEnterpriseClient(cfg.GraphQLURL, httpClient),
		logger:        logger,
	}, nil
}

// VerifyToken reports whether the API accepts the configured token.
func (g *GitHubGateway) VerifyToken(ctx context.Context) bool {
	return g.client.VerifyToken(ctx)
}

// FetchProfile returns the authenticated user. The events feed is keyed by
// login, so this runs before the fan-out.
func (g *GitHubGateway) FetchProfile(ctx context.Context) (*domain.RawUser, error) {
	g.logger.Println("Fetching user profile...")
	body, err := g.client.Request(ctx, "user")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	var user domain.RawUser
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	return &user, nil
}

// FetchPullRequests fetches every pull request authored by the user via the search API.
func (g *GitHubGateway) FetchPullRequests(ctx context.Context) ([]*domain.RawPullRequest, error) {
	g.logger.Println("Fetching authored pull requests...")
	return fetchCollection[domain.RawPullRequest](ctx, g, searchPath("author:@me type:pr"), "pull_request")
}

// FetchIssues fetches every issue authored by the user via the search API.
func (g *GitHubGateway) FetchIssues(ctx context.Context) ([]*domain.RawIssue, error) {
	g.logger.Println("Fetching authored issues...")
	return fetchCollection[domain.RawIssue](ctx, g, searchPath("author:@me type:issue"), "issue")
}

// FetchRepositories fetches the repositories the user owns, collaborates on or reaches through an organization.
func (g *GitHubGateway) FetchRepositories(ctx context.Context) ([]*domain.RawRepository, error) {
	g.logger.Println("Fetching repositories...")
	return fetchCollection[domain.RawRepository](ctx, g, "user/repos?sort=updated&affiliation=owner,collaborator,organization_member", "repository")
}

// FetchOrganizations fetches the organizations the user belongs to.
func (g *GitHubGateway) FetchOrganizations(ctx context.Context) ([]*domain.RawOrganization, error) {
	g.logger.Println("Fetching organizations...")
	return fetchCollection[domain.RawOrganization](ctx, g, "user/orgs", "organization")
}

// FetchStarred fetches the repositories the user has starred.
func (g *GitHubGateway) FetchStarred(ctx context.Context) ([]*domain.RawStarredRepository, error) {
	g.logger.Println("Fetching starred repositories...")
	return fetchCollection[domain.RawStarredRepository](ctx, g, "user/starred", "starred")
}

// FetchEvents fetches the recent activity events of login.
func (g *GitHubGateway) FetchEvents(ctx context.Context, login string) ([]*domain.RawActivityEvent, error) {
	if login == "" {
		return nil, fmt.Errorf("failed to fetch events: no username")
	}
	g.logger.Printf("Fetching activity events for %s...", login)
	return fetchCollection[domain.RawActivityEvent](ctx, g, "users/"+url.PathEscape(login)+"/events", "event")
}

// fetchCollection paginates path and decodes every record. On a page
// failure it returns the decoded partial result along with the error.
func fetchCollection[T any](ctx context.Context, g *GitHubGateway, path, kind string) ([]*T, error) {
	records, err := FetchAllPages(ctx, g.client, path, g.logger)
	out, failures := decodeRecords[T](records, kind, g.logger)
	g.addDecodeFailures(failures)
	if err != nil {
		return out, fmt.Errorf("failed to fetch %s collection: %w", kind, err)
	}
	g.logger.Printf("Completed fetching %d %s records.", len(out), kind)
	return out, nil
}

func (g *GitHubGateway) addDecodeFailures(failures []error) {
	if len(failures) == 0 {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.decodeFailures = append(g.decodeFailures, failures...)
}

// DrainDecodeFailures implements Fetcher.
func (g *GitHubGateway) DrainDecodeFailures() []error {
	g.mu.Lock()
	defer g.mu.Unlock()
	failures := g.decodeFailures
	g.decodeFailures = nil
	return failures
}

func searchPath(query string) string {
	return "search/issues?q=" + url.QueryEscape(query) + "&sort=created&order=desc"
}
