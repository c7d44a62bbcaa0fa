package domain

// RepoActivity holds the activity counts for a single repository as seen
// through the user's event stream.
type RepoActivity struct {
	Name    string `json:"name"`
	Events  int    `json:"events"`
	Commits int    `json:"commits"`
}

// ContributionSummary is the result of folding the activity-event stream once.
type ContributionSummary struct {
	// EventTypes maps a friendly event label ("Push", "Pull Request", ...) to a count.
	EventTypes map[string]int `json:"event_types"`
	// MonthlyCommits maps "Jan 2006" to the number of pushed commits.
	MonthlyCommits map[string]int `json:"monthly_commits"`
	// Repositories is sorted by event count, then name.
	Repositories []RepoActivity `json:"repositories"`
}
