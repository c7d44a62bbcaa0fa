package gateway

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/naka-gawa/github-dashboard/internal/domain"
	"github.com/shurcooL/githubv4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestGateway creates a GitHubGateway that communicates with a mock HTTP server.
func setupTestGateway(t *testing.T, handler http.Handler) (*GitHubGateway, *httptest.Server) {
	server := httptest.NewServer(handler)
	logger := log.New(io.Discard, "", 0)

	client, err := NewClient(server.Client(), logger,
		WithBaseURL(server.URL),
		WithClock(time.Now, func(context.Context, time.Duration) error { return nil }),
	)
	require.NoError(t, err)

	gateway := &GitHubGateway{
		client:        client,
		graphqlClient: githubv4.NewEnterpriseClient(server.URL, server.Client()),
		logger:        logger,
	}
	return gateway, server
}

func TestGitHubGateway_FetchPullRequests(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/issues", r.URL.Path)
		assert.Equal(t, "author:@me type:pr", r.URL.Query().Get("q"))
		switch r.URL.Query().Get("page") {
		case "1":
			fmt.Fprint(w, `{"total_count":3,"items":[
				{"number":1,"title":"first","state":"open","created_at":"2024-05-01T10:00:00Z","pull_request":{"url":"u"}},
				{"number":"broken"},
				{"number":3,"title":"third","state":"closed","created_at":"2024-05-02T10:00:00Z","pull_request":{"url":"u","merged_at":"2024-05-03T10:00:00Z"}}
			]}`)
		default:
			fmt.Fprint(w, `{"total_count":3,"items":[]}`)
		}
	}
	gateway, server := setupTestGateway(t, http.HandlerFunc(handler))
	defer server.Close()

	prs, err := gateway.FetchPullRequests(context.Background())

	require.NoError(t, err)
	require.Len(t, prs, 2)
	assert.Equal(t, 1, prs[0].GetNumber())
	assert.Equal(t, 3, prs[1].GetNumber())
	assert.True(t, prs[1].IsPullRequest())

	failures := gateway.DrainDecodeFailures()
	require.Len(t, failures, 1)
	var mappingErr *domain.RecordMappingError
	require.ErrorAs(t, failures[0], &mappingErr)
	assert.Equal(t, "pull_request", mappingErr.Kind)
	assert.Equal(t, 1, mappingErr.Index)
	assert.Empty(t, gateway.DrainDecodeFailures())
}

func TestGitHubGateway_Collections(t *testing.T) {
	testCases := []struct {
		name         string
		expectedPath string
		call         func(g *GitHubGateway) (int, error)
		body         string
		expectedLen  int
	}{
		{
			name:         "FetchRepositories",
			expectedPath: "/user/repos",
			call: func(g *GitHubGateway) (int, error) {
				r, err := g.FetchRepositories(context.Background())
				return len(r), err
			},
			body:        `[{"full_name":"octocat/hello","language":"Go","stargazers_count":3}]`,
			expectedLen: 1,
		},
		{
			name:         "FetchOrganizations",
			expectedPath: "/user/orgs",
			call: func(g *GitHubGateway) (int, error) {
				r, err := g.FetchOrganizations(context.Background())
				return len(r), err
			},
			body:        `[{"login":"github"},{"login":"golang"}]`,
			expectedLen: 2,
		},
		{
			name:         "FetchStarred",
			expectedPath: "/user/starred",
			call: func(g *GitHubGateway) (int, error) {
				r, err := g.FetchStarred(context.Background())
				return len(r), err
			},
			body:        `[{"full_name":"golang/go"}]`,
			expectedLen: 1,
		},
		{
			name:         "FetchEvents",
			expectedPath: "/users/octocat/events",
			call: func(g *GitHubGateway) (int, error) {
				r, err := g.FetchEvents(context.Background(), "octocat")
				return len(r), err
			},
			body:        `[{"type":"PushEvent","repo":{"name":"octocat/hello"},"payload":{"size":2},"created_at":"2024-05-01T10:00:00Z"}]`,
			expectedLen: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tc.expectedPath, r.URL.Path)
				if r.URL.Query().Get("page") == "1" {
					fmt.Fprint(w, tc.body)
					return
				}
				fmt.Fprint(w, `[]`)
			}
			gateway, server := setupTestGateway(t, http.HandlerFunc(handler))
			defer server.Close()

			n, err := tc.call(gateway)

			assert.NoError(t, err)
			assert.Equal(t, tc.expectedLen, n)
		})
	}
}

func TestGitHubGateway_FetchEventsRequiresLogin(t *testing.T) {
	gateway, server := setupTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected request to %s", r.URL.Path)
	}))
	defer server.Close()

	_, err := gateway.FetchEvents(context.Background(), "")
	assert.Error(t, err)
}

func TestGitHubGateway_PartialCollectionOnFailure(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			fmt.Fprint(w, `[{"login":"github"}]`)
			return
		}
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, `{"message":"Server Error"}`)
	}
	gateway, server := setupTestGateway(t, http.HandlerFunc(handler))
	defer server.Close()

	orgs, err := gateway.FetchOrganizations(context.Background())

	assert.Error(t, err)
	require.Len(t, orgs, 1)
	assert.Equal(t, "github", orgs[0].GetLogin())
}

func TestGitHubGateway_ResultCapEndsCollection(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/octocat/events", r.URL.Path)
		if r.URL.Query().Get("page") == "1" {
			fmt.Fprint(w, `[{"id":"1","type":"PushEvent"},{"id":"2","type":"WatchEvent"}]`)
			return
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"message":"In order to keep the API fast for everyone, pagination is limited for this resource."}`)
	}
	gateway, server := setupTestGateway(t, http.HandlerFunc(handler))
	defer server.Close()

	events, err := gateway.FetchEvents(context.Background(), "octocat")

	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestGitHubGateway_FetchProfile(t *testing.T) {
	testCases := []struct {
		name           string
		handlerFunc    func(w http.ResponseWriter, r *http.Request)
		expectedLogin  string
		expectError    bool
		expectedErrMsg string
	}{
		{
			name: "happy path",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/user", r.URL.Path)
				fmt.Fprint(w, `{"login":"octocat","name":"The Octocat"}`)
			},
			expectedLogin: "octocat",
		},
		{
			name: "bad credentials",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				fmt.Fprint(w, `{"message":"Bad credentials"}`)
			},
			expectError:    true,
			expectedErrMsg: "failed to fetch profile",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gateway, server := setupTestGateway(t, http.HandlerFunc(tc.handlerFunc))
			defer server.Close()

			user, err := gateway.FetchProfile(context.Background())
			if tc.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedErrMsg)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expectedLogin, user.GetLogin())
			}
		})
	}
}

func TestGitHubGateway_FetchContributionCalendar(t *testing.T) {
	testCases := []struct {
		name         string
		responseBody string
		expected     []struct {
			date  string
			count int
		}
		expectError    bool
		expectedErrMsg string
	}{
		{
			name: "happy path",
			responseBody: `{"data":{"viewer":{"contributionsCollection":{"contributionCalendar":{"totalContributions":5,"weeks":[
				{"contributionDays":[{"date":"2024-05-05","contributionCount":2},{"date":"2024-05-06","contributionCount":0}]},
				{"contributionDays":[{"date":"2024-05-12","contributionCount":3}]}
			]}}}}}`,
			expected: []struct {
				date  string
				count int
			}{{"2024-05-05", 2}, {"2024-05-06", 0}, {"2024-05-12", 3}},
		},
		{
			name:           "error case",
			responseBody:   `{"errors":[{"message":"Something went wrong"}]}`,
			expectError:    true,
			expectedErrMsg: "failed to execute GraphQL query",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := func(w http.ResponseWriter, r *http.Request) {
				body, err := io.ReadAll(r.Body)
				require.NoError(t, err)
				assert.Contains(t, string(body), "contributionCalendar")
				w.WriteHeader(http.StatusOK)
				fmt.Fprint(w, tc.responseBody)
			}
			gateway, server := setupTestGateway(t, http.HandlerFunc(handler))
			defer server.Close()

			days, err := gateway.FetchContributionCalendar(context.Background())

			if tc.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedErrMsg)
				return
			}
			require.NoError(t, err)
			require.Len(t, days, len(tc.expected))
			for i, want := range tc.expected {
				assert.Equal(t, want.date, days[i].Date)
				assert.Equal(t, want.count, days[i].Count)
			}
		})
	}
}
