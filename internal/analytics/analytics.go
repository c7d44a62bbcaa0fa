// Package analytics derives chart-ready series and distributions from a
// normalized entity set. Everything here is a pure function of its inputs:
// the same entities, reference time and location always give the same
// snapshot.
package analytics

import (
	"time"

	"github.com/naka-gawa/github-dashboard/internal/domain"
)

// Generate recomputes the whole snapshot. now anchors the trailing-12-month
// buckets; loc decides which month a timestamp falls into.
func Generate(entities domain.Entities, now time.Time, loc *time.Location) domain.AnalyticsSnapshot {
	if loc == nil {
		loc = time.UTC
	}
	months := MonthLabels(now, loc)

	prCreated := make([]time.Time, len(entities.PullRequests))
	prWeekdays := make([]time.Weekday, len(entities.PullRequests))
	prHours := make([]int, len(entities.PullRequests))
	for i, pr := range entities.PullRequests {
		prCreated[i], prWeekdays[i], prHours[i] = pr.CreatedAt, pr.Weekday, pr.Hour
	}
	issueCreated := make([]time.Time, len(entities.Issues))
	issueWeekdays := make([]time.Weekday, len(entities.Issues))
	issueHours := make([]int, len(entities.Issues))
	for i, is := range entities.Issues {
		issueCreated[i], issueWeekdays[i], issueHours[i] = is.CreatedAt, is.Weekday, is.Hour
	}

	return domain.AnalyticsSnapshot{
		PRTimeline:      Timeline(months, prCreated, loc),
		IssueTimeline:   Timeline(months, issueCreated, loc),
		PRWeekdays:      WeekdayHistogram(prWeekdays),
		IssueWeekdays:   WeekdayHistogram(issueWeekdays),
		PRHours:         HourHistogram(prHours),
		IssueHours:      HourHistogram(issueHours),
		PRStates:        StateDistribution(entities.PullRequests),
		Visibility:      VisibilityDistribution(entities.Repositories),
		Origin:          OriginDistribution(entities.Repositories),
		Languages:       LanguageDistribution(entities.Repositories),
		MonthlyCommits:  MonthlyCommits(months, entities.Contributions.MonthlyCommits),
		Topics:          TopTopics(entities.Repositories, maxTopics),
		EventTypes:      EventTypes(entities.Contributions.EventTypes),
		TopRepositories: topRepositories(entities.Contributions.Repositories, maxTopRepositories),
		PRLifecycle:     PRLifecycle(entities.PullRequests),
		Contributions:   ContributionStreaks(entities.Calendar),
	}
}

func topRepositories(repos []domain.RepoActivity, n int) []domain.RepoActivity {
	if len(repos) > n {
		repos = repos[:n]
	}
	return append([]domain.RepoActivity{}, repos...)
}
