package domain

import "time"

// State is the closed set of lifecycle states for pull requests and issues.
type State string

const (
	StateOpen   State = "Open"
	StateClosed State = "Closed"
	StateMerged State = "Merged"
)

// PullRequest is the canonical shape of a pull request authored by the user.
type PullRequest struct {
	Number     int          `json:"number"`
	Repository string       `json:"repository"`
	Title      string       `json:"title"`
	State      State        `json:"state"`
	DaysOpen   float64      `json:"days_open"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
	Hour       int          `json:"hour"`
	Weekday    time.Weekday `json:"weekday"`
	Labels     string       `json:"labels"`
	Comments   int          `json:"comments"`
	URL        string       `json:"url"`
}

// Issue mirrors PullRequest without merge semantics; State is never Merged.
type Issue struct {
	Number     int          `json:"number"`
	Repository string       `json:"repository"`
	Title      string       `json:"title"`
	State      State        `json:"state"`
	DaysOpen   float64      `json:"days_open"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
	Hour       int          `json:"hour"`
	Weekday    time.Weekday `json:"weekday"`
	Labels     string       `json:"labels"`
	Comments   int          `json:"comments"`
	URL        string       `json:"url"`
}

type Repository struct {
	FullName    string    `json:"full_name"`
	Description string    `json:"description"`
	Language    string    `json:"language"`
	Stars       int       `json:"stars"`
	Forks       int       `json:"forks"`
	Watchers    int       `json:"watchers"`
	Private     bool      `json:"private"`
	Archived    bool      `json:"archived"`
	Fork        bool      `json:"fork"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Topics      []string  `json:"topics"`
	Size        int       `json:"size"`
	URL         string    `json:"url"`
}

type Organization struct {
	Login       string `json:"login"`
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url"`
	AvatarURL   string `json:"avatar_url"`
}

type StarredRepository struct {
	FullName    string    `json:"full_name"`
	Description string    `json:"description"`
	Language    string    `json:"language"`
	Stars       int       `json:"stars"`
	URL         string    `json:"url"`
	Topics      []string  `json:"topics"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ContributionDay is one cell of the contribution calendar.
type ContributionDay struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Entities is one complete normalized set. It is rebuilt wholesale on every
// refresh and never mutated afterwards.
type Entities struct {
	Login         string              `json:"login"`
	PullRequests  []PullRequest       `json:"pull_requests"`
	Issues        []Issue             `json:"issues"`
	Repositories  []Repository        `json:"repositories"`
	Organizations []Organization      `json:"organizations"`
	Starred       []StarredRepository `json:"starred"`
	Contributions ContributionSummary `json:"contributions"`
	Calendar      []ContributionDay   `json:"calendar"`
}
