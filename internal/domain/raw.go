package domain

import "github.com/google/go-github/v62/github"

// Raw records are decoded straight into the go-github types. They live only
// for the duration of one fetch cycle.
type (
	RawUser              = github.User
	RawPullRequest       = github.Issue
	RawIssue             = github.Issue
	RawRepository        = github.Repository
	RawOrganization      = github.Organization
	RawStarredRepository = github.Repository
	RawActivityEvent     = github.Event
)

// RawDataBundle is everything one fetch cycle returned. A resource that
// failed to load is an empty slice, never nil-vs-error ambiguity.
type RawDataBundle struct {
	Profile       *RawUser                `json:"profile"`
	PullRequests  []*RawPullRequest       `json:"pull_requests"`
	Issues        []*RawIssue             `json:"issues"`
	Repositories  []*RawRepository        `json:"repositories"`
	Organizations []*RawOrganization      `json:"organizations"`
	Starred       []*RawStarredRepository `json:"starred"`
	Events        []*RawActivityEvent     `json:"events"`
	Contributions []ContributionDay       `json:"contributions"`
	// Degraded lists the resources whose fetch failed after retries.
	Degraded []string `json:"degraded,omitempty"`
	// DecodeFailures holds the records dropped because they could not be
	// decoded at all.
	DecodeFailures []error `json:"-"`
}
