package domain

// Series is a labelled sequence of counts; Labels and Data always have the
// same length.
type Series struct {
	Labels []string `json:"labels"`
	Data   []int    `json:"data"`
}

// Distribution is a categorical breakdown ready for a chart widget.
type Distribution struct {
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
	Colors []string  `json:"colors"`
}

type TopicCount struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

type Lifecycle struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean_days"`
	Median float64 `json:"median_days"`
	P90    float64 `json:"p90_days"`
}

type Streaks struct {
	Total   int `json:"total"`
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// AnalyticsSnapshot is a pure function of an Entities set and a reference time.
type AnalyticsSnapshot struct {
	PRTimeline      Series         `json:"pr_timeline"`
	IssueTimeline   Series         `json:"issue_timeline"`
	PRWeekdays      Series         `json:"pr_weekdays"`
	IssueWeekdays   Series         `json:"issue_weekdays"`
	PRHours         Series         `json:"pr_hours"`
	IssueHours      Series         `json:"issue_hours"`
	PRStates        Distribution   `json:"pr_states"`
	Visibility      Distribution   `json:"visibility"`
	Origin          Distribution   `json:"origin"`
	Languages       Distribution   `json:"languages"`
	MonthlyCommits  Series         `json:"monthly_commits"`
	Topics          []TopicCount   `json:"topics"`
	EventTypes      Series         `json:"event_types"`
	TopRepositories []RepoActivity `json:"top_repositories"`
	PRLifecycle     Lifecycle      `json:"pr_lifecycle"`
	Contributions   Streaks        `json:"contributions"`
}
