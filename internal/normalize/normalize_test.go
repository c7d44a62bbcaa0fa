package normalize

import (
	"encoding/json"
	"io"
	"log"
	"testing"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/naka-gawa/github-dashboard/internal/domain"
	"github.com/naka-gawa/github-dashboard/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var refNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestNormalizer() *Normalizer {
	return New(log.New(io.Discard, "", 0), WithClock(func() time.Time { return refNow }))
}

func ts(t time.Time) *github.Timestamp { return &github.Timestamp{Time: t} }

func rawPR(number int, state string, created time.Time) *domain.RawPullRequest {
	return &github.Issue{
		Number:           github.Int(number),
		Title:            github.String("PR"),
		State:            github.String(state),
		CreatedAt:        ts(created),
		RepositoryURL:    github.String("https://api.github.com/repos/octocat/hello"),
		HTMLURL:          github.String("https://github.com/octocat/hello/pull/1"),
		PullRequestLinks: &github.PullRequestLinks{URL: github.String("https://api.github.com/repos/octocat/hello/pulls/1")},
	}
}

func TestNormalizer_PullRequests(t *testing.T) {
	created := time.Date(2024, 6, 10, 9, 30, 0, 0, time.UTC) // Monday

	merged := rawPR(1, "closed", created)
	merged.ClosedAt = ts(created.Add(36 * time.Hour))
	merged.PullRequestLinks.MergedAt = ts(created.Add(36 * time.Hour))
	merged.Labels = []*github.Label{{Name: github.String("bug")}, {Name: github.String("urgent")}}
	merged.Comments = github.Int(4)

	open := rawPR(2, "open", created)
	closed := rawPR(3, "closed", created)
	closed.ClosedAt = ts(created.Add(12 * time.Hour))

	malformed := rawPR(4, "open", created)
	malformed.CreatedAt = nil

	before := testutil.ToFloat64(observability.RecordMappingFailuresTotal.WithLabelValues("pull_request"))

	prs := newTestNormalizer().PullRequests([]*domain.RawPullRequest{merged, open, malformed, nil, closed})

	require.Len(t, prs, 3)
	assert.Equal(t, 2.0, testutil.ToFloat64(observability.RecordMappingFailuresTotal.WithLabelValues("pull_request"))-before)

	assert.Equal(t, domain.PullRequest{
		Number:     1,
		Repository: "octocat/hello",
		Title:      "PR",
		State:      domain.StateMerged,
		DaysOpen:   1.5,
		CreatedAt:  created,
		UpdatedAt:  created,
		Hour:       9,
		Weekday:    time.Monday,
		Labels:     "bug, urgent",
		Comments:   4,
		URL:        "https://github.com/octocat/hello/pull/1",
	}, prs[0])

	assert.Equal(t, domain.StateOpen, prs[1].State)
	assert.Equal(t, 5.1, prs[1].DaysOpen)
	assert.Equal(t, "", prs[1].Labels)

	assert.Equal(t, domain.StateClosed, prs[2].State)
	assert.Equal(t, 0.5, prs[2].DaysOpen)
}

func TestNormalizer_PullRequestsOneGoodOneBad(t *testing.T) {
	good := rawPR(1, "open", refNow.Add(-24*time.Hour))
	bad := &github.Issue{Title: github.String("no number")}

	assert.NotPanics(t, func() {
		prs := newTestNormalizer().PullRequests([]*domain.RawPullRequest{good, bad})
		assert.Len(t, prs, 1)
	})
}

func TestNormalizer_HourAndWeekdayFollowLocation(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	created := time.Date(2024, 6, 9, 20, 0, 0, 0, time.UTC) // Sunday 20:00 UTC, Monday 05:00 JST

	n := New(log.New(io.Discard, "", 0), WithClock(func() time.Time { return refNow }), WithLocation(tokyo))
	prs := n.PullRequests([]*domain.RawPullRequest{rawPR(1, "open", created)})

	require.Len(t, prs, 1)
	assert.Equal(t, 5, prs[0].Hour)
	assert.Equal(t, time.Monday, prs[0].Weekday)
}

func TestNormalizer_Issues(t *testing.T) {
	created := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	issue := &github.Issue{
		Number:        github.Int(7),
		Title:         github.String("Crash on start"),
		State:         github.String("closed"),
		CreatedAt:     ts(created),
		ClosedAt:      ts(created.Add(48 * time.Hour)),
		RepositoryURL: github.String("https://api.github.com/repos/octocat/hello"),
	}
	prMarked := rawPR(8, "open", created)

	before := testutil.ToFloat64(observability.RecordMappingFailuresTotal.WithLabelValues("issue"))
	issues := newTestNormalizer().Issues([]*domain.RawIssue{issue, prMarked})

	require.Len(t, issues, 1)
	assert.Equal(t, 7, issues[0].Number)
	assert.Equal(t, domain.StateClosed, issues[0].State)
	assert.Equal(t, 2.0, issues[0].DaysOpen)
	assert.Equal(t, "octocat/hello", issues[0].Repository)
	assert.Equal(t, 0.0, testutil.ToFloat64(observability.RecordMappingFailuresTotal.WithLabelValues("issue"))-before)
}

func TestNormalizer_Repositories(t *testing.T) {
	repos := newTestNormalizer().Repositories([]*domain.RawRepository{
		{
			FullName:        github.String("octocat/hello"),
			Language:        github.String("Go"),
			StargazersCount: github.Int(10),
			ForksCount:      github.Int(2),
			Private:         github.Bool(true),
			Topics:          []string{"cli"},
		},
		{Description: github.String("no name")},
		{FullName: github.String("octocat/fork"), Fork: github.Bool(true)},
	})

	require.Len(t, repos, 2)
	assert.Equal(t, "Go", repos[0].Language)
	assert.Equal(t, 10, repos[0].Stars)
	assert.True(t, repos[0].Private)
	assert.Equal(t, []string{"cli"}, repos[0].Topics)
	assert.True(t, repos[1].Fork)
	assert.NotNil(t, repos[1].Topics)
	assert.Empty(t, repos[1].Topics)
}

func TestNormalizer_Organizations(t *testing.T) {
	orgs := newTestNormalizer().Organizations([]*domain.RawOrganization{
		{Login: github.String("github"), Name: github.String("GitHub"), HTMLURL: github.String("https://github.com/github")},
		{Login: github.String("golang")},
		{Name: github.String("anonymous")},
	})

	require.Len(t, orgs, 2)
	assert.Equal(t, "GitHub", orgs[0].Name)
	assert.Equal(t, "golang", orgs[1].Name)
	assert.Equal(t, "https://github.com/golang", orgs[1].URL)
}

func TestNormalizer_StarredRepositories(t *testing.T) {
	starred := newTestNormalizer().StarredRepositories([]*domain.RawStarredRepository{
		{FullName: github.String("golang/go"), StargazersCount: github.Int(120000), Topics: []string{"go", "language"}},
	})

	require.Len(t, starred, 1)
	assert.Equal(t, "golang/go", starred[0].FullName)
	assert.Equal(t, 120000, starred[0].Stars)
}

func event(eventType, repo string, created time.Time, payload string) *domain.RawActivityEvent {
	e := &github.Event{
		Type:      github.String(eventType),
		Repo:      &github.Repository{Name: github.String(repo)},
		CreatedAt: ts(created),
	}
	if payload != "" {
		raw := json.RawMessage(payload)
		e.RawPayload = &raw
	}
	return e
}

func TestNormalizer_Contributions(t *testing.T) {
	may := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)
	june := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)

	summary := newTestNormalizer().Contributions([]*domain.RawActivityEvent{
		event("PushEvent", "octocat/hello", may, `{"size":3}`),
		event("PushEvent", "octocat/hello", june, `{"commits":[{"sha":"a"},{"sha":"b"}]}`),
		event("PushEvent", "octocat/world", june, `{"size":1}`),
		event("WatchEvent", "golang/go", june, `{"action":"started"}`),
		event("SponsorshipEvent", "octocat/hello", june, ""),
		nil,
	})

	assert.Equal(t, 3, summary.EventTypes["Push"])
	assert.Equal(t, 1, summary.EventTypes["Star"])
	assert.Equal(t, 1, summary.EventTypes[OtherLabel])
	assert.Equal(t, 0, summary.EventTypes["Fork"])
	assert.Contains(t, summary.EventTypes, "Release")

	assert.Equal(t, map[string]int{"May 2024": 3, "Jun 2024": 3}, summary.MonthlyCommits)

	assert.Equal(t, []domain.RepoActivity{
		{Name: "octocat/hello", Events: 3, Commits: 5},
		{Name: "golang/go", Events: 1},
		{Name: "octocat/world", Events: 1, Commits: 1},
	}, summary.Repositories)
}

func TestEventLabel(t *testing.T) {
	assert.Equal(t, "Pull Request", EventLabel("PullRequestEvent"))
	assert.Equal(t, OtherLabel, EventLabel("SomethingNewEvent"))
}

func TestMapRecordsRecoversFromPanics(t *testing.T) {
	type rec struct{ v int }
	n := newTestNormalizer()

	out := mapRecords(n, "test", []*rec{{1}, {0}, {2}}, func(r *rec) (int, error) {
		return 10 / r.v, nil
	})

	assert.Equal(t, []int{10, 5}, out)
	require.Len(t, n.failures, 1)
	var mappingErr *domain.RecordMappingError
	require.ErrorAs(t, n.failures[0], &mappingErr)
	assert.Equal(t, 1, mappingErr.Index)
}

func TestNormalizer_All(t *testing.T) {
	bundle := &domain.RawDataBundle{
		Profile:       &github.User{Login: github.String("octocat")},
		PullRequests:  []*domain.RawPullRequest{rawPR(1, "open", refNow.Add(-time.Hour)), {}},
		Repositories:  []*domain.RawRepository{{FullName: github.String("octocat/hello")}},
		Contributions: []domain.ContributionDay{{Date: "2024-06-14", Count: 2}},
	}

	entities, failures := newTestNormalizer().All(bundle)

	assert.Equal(t, "octocat", entities.Login)
	assert.Len(t, entities.PullRequests, 1)
	assert.Len(t, entities.Repositories, 1)
	assert.Empty(t, entities.Issues)
	assert.Equal(t, bundle.Contributions, entities.Calendar)
	assert.Len(t, failures, 1)
}
