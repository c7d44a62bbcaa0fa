package normalize

import (
	"errors"
	"sort"

	"github.com/google/go-github/v62/github"
	"github.com/naka-gawa/github-dashboard/internal/domain"
)

// OtherLabel collects event types without a friendly name.
const OtherLabel = "Other"

var eventLabels = map[string]string{
	"PushEvent":                     "Push",
	"PullRequestEvent":              "Pull Request",
	"PullRequestReviewEvent":        "Review",
	"PullRequestReviewCommentEvent": "Review Comment",
	"IssuesEvent":                   "Issue",
	"IssueCommentEvent":             "Issue Comment",
	"CommitCommentEvent":            "Commit Comment",
	"CreateEvent":                   "Create",
	"DeleteEvent":                   "Delete",
	"ForkEvent":                     "Fork",
	"WatchEvent":                    "Star",
	"ReleaseEvent":                  "Release",
	"PublicEvent":                   "Public",
	"MemberEvent":                   "Member",
	"GollumEvent":                   "Wiki",
}

// EventLabel returns the friendly label for a raw event type.
func EventLabel(eventType string) string {
	if label, ok := eventLabels[eventType]; ok {
		return label
	}
	return OtherLabel
}

// Contributions folds the event stream once into the event-type histogram,
// per-month commit counts and per-repository activity.
func (n *Normalizer) Contributions(events []*domain.RawActivityEvent) domain.ContributionSummary {
	summary := domain.ContributionSummary{
		EventTypes:     make(map[string]int, len(eventLabels)+1),
		MonthlyCommits: make(map[string]int),
	}
	for _, label := range eventLabels {
		summary.EventTypes[label] = 0
	}
	summary.EventTypes[OtherLabel] = 0

	perRepo := make(map[string]*domain.RepoActivity)
	for i, e := range events {
		if e == nil {
			n.fail("event", i, errNilRecord)
			continue
		}
		summary.EventTypes[EventLabel(e.GetType())]++

		name := e.GetRepo().GetName()
		if name != "" {
			if _, ok := perRepo[name]; !ok {
				perRepo[name] = &domain.RepoActivity{Name: name}
			}
			perRepo[name].Events++
		}

		if e.GetType() != "PushEvent" {
			continue
		}
		commits, err := pushCommits(e)
		if err != nil {
			n.fail("event", i, err)
			continue
		}
		month := e.GetCreatedAt().In(n.loc).Format("Jan 2006")
		summary.MonthlyCommits[month] += commits
		if name != "" {
			perRepo[name].Commits += commits
		}
	}

	summary.Repositories = make([]domain.RepoActivity, 0, len(perRepo))
	for _, r := range perRepo {
		summary.Repositories = append(summary.Repositories, *r)
	}
	sort.Slice(summary.Repositories, func(i, j int) bool {
		a, b := summary.Repositories[i], summary.Repositories[j]
		if a.Events != b.Events {
			return a.Events > b.Events
		}
		return a.Name < b.Name
	})
	return summary
}

// pushCommits counts the commits carried by one push, not the push itself.
func pushCommits(e *github.Event) (int, error) {
	if e.RawPayload == nil {
		return 0, nil
	}
	payload, err := e.ParsePayload()
	if err != nil {
		return 0, err
	}
	push, ok := payload.(*github.PushEvent)
	if !ok {
		return 0, errors.New("push event payload has unexpected type")
	}
	if size := push.GetSize(); size > 0 {
		return size, nil
	}
	return len(push.Commits), nil
}
