package normalize

import (
	"strings"

	"github.com/google/go-github/v62/github"
	"github.com/naka-gawa/github-dashboard/internal/domain"
)

// PullRequests maps search results for authored pull requests.
func (n *Normalizer) PullRequests(raw []*domain.RawPullRequest) []domain.PullRequest {
	return mapRecords(n, "pull_request", raw, n.pullRequest)
}

// Issues maps authored issues. Records carrying a pull-request marker are not
// issues and are skipped without counting as failures.
func (n *Normalizer) Issues(raw []*domain.RawIssue) []domain.Issue {
	issues := make([]*domain.RawIssue, 0, len(raw))
	for _, r := range raw {
		if r != nil && r.IsPullRequest() {
			continue
		}
		issues = append(issues, r)
	}
	return mapRecords(n, "issue", issues, n.issue)
}

func (n *Normalizer) pullRequest(r *github.Issue) (domain.PullRequest, error) {
	pr, err := n.ticket(r)
	if err != nil {
		return pr, err
	}
	mergedAt := r.GetPullRequestLinks().GetMergedAt()
	switch {
	case !mergedAt.IsZero():
		pr.State = domain.StateMerged
		if r.ClosedAt == nil {
			pr.DaysOpen = daysBetween(pr.CreatedAt, mergedAt.Time)
		}
	case r.GetState() == "closed":
		pr.State = domain.StateClosed
	}
	return pr, nil
}

func (n *Normalizer) issue(r *github.Issue) (domain.Issue, error) {
	t, err := n.ticket(r)
	if err != nil {
		return domain.Issue{}, err
	}
	if r.GetState() == "closed" {
		t.State = domain.StateClosed
	}
	return domain.Issue(t), nil
}

// ticket fills the fields pull requests and issues share. State starts Open.
func (n *Normalizer) ticket(r *github.Issue) (domain.PullRequest, error) {
	if r.Number == nil {
		return domain.PullRequest{}, errMissingNumber
	}
	if r.CreatedAt == nil || r.CreatedAt.IsZero() {
		return domain.PullRequest{}, errMissingCreatedAt
	}

	created := r.GetCreatedAt().Time
	end := n.now()
	if r.ClosedAt != nil {
		end = r.GetClosedAt().Time
	}
	updated := r.GetUpdatedAt().Time
	if updated.IsZero() {
		updated = created
	}

	local := created.In(n.loc)
	names := make([]string, 0, len(r.Labels))
	for _, l := range r.Labels {
		if name := l.GetName(); name != "" {
			names = append(names, name)
		}
	}

	repo := repositoryFromURL(r.GetRepositoryURL(), r.GetHTMLURL())
	if r.Repository != nil && r.Repository.GetFullName() != "" {
		repo = r.Repository.GetFullName()
	}

	return domain.PullRequest{
		Number:     r.GetNumber(),
		Repository: repo,
		Title:      r.GetTitle(),
		State:      domain.StateOpen,
		DaysOpen:   daysBetween(created, end),
		CreatedAt:  created,
		UpdatedAt:  updated,
		Hour:       local.Hour(),
		Weekday:    local.Weekday(),
		Labels:     strings.Join(names, ", "),
		Comments:   r.GetComments(),
		URL:        r.GetHTMLURL(),
	}, nil
}
