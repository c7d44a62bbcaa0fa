// Package search implements the cross-entity query engine: free-text
// matching, field filters, relevance scoring, sorting and grouping over the
// normalized entity set. Every query recomputes from scratch.
package search

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/naka-gawa/github-dashboard/internal/domain"
)

type Category string

const (
	CategoryAll           Category = "all"
	CategoryRepositories  Category = "repositories"
	CategoryPullRequests  Category = "pull_requests"
	CategoryIssues        Category = "issues"
	CategoryOrganizations Category = "organizations"
	CategoryStarred       Category = "starred"
)

type SortOption string

const (
	SortRelevance  SortOption = "relevance"
	SortNewest     SortOption = "newest"
	SortOldest     SortOption = "oldest"
	SortMostStars  SortOption = "stars"
	SortMostActive SortOption = "active"
)

type GroupKey string

const (
	GroupNone       GroupKey = ""
	GroupRepository GroupKey = "repository"
	GroupType       GroupKey = "type"
	GroupOwner      GroupKey = "owner"
	GroupLanguage   GroupKey = "language"
)

const ungrouped = "(none)"

var categoryTypes = map[Category]ItemType{
	CategoryRepositories:  TypeRepository,
	CategoryPullRequests:  TypePullRequest,
	CategoryIssues:        TypeIssue,
	CategoryOrganizations: TypeOrganization,
	CategoryStarred:       TypeStarred,
}

// Query is one complete search request.
type Query struct {
	Text     string            `json:"text"`
	Filters  []FilterCondition `json:"filters,omitempty"`
	Category Category          `json:"category,omitempty"`
	Sort     SortOption        `json:"sort,omitempty"`
	GroupBy  GroupKey          `json:"group_by,omitempty"`
}

// Result is either a matched item with its score, or a group header that
// precedes the members of its group.
type Result struct {
	Item          *Item   `json:"item,omitempty"`
	Score         float64 `json:"score"`
	IsGroupHeader bool    `json:"is_group_header,omitempty"`
	GroupName     string  `json:"group_name,omitempty"`
	Count         int     `json:"count,omitempty"`
}

func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(s))
	if c == "" || c == CategoryAll {
		return CategoryAll, nil
	}
	if _, ok := categoryTypes[c]; !ok {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

func ParseSort(s string) (SortOption, error) {
	switch o := SortOption(strings.ToLower(s)); o {
	case "":
		return SortRelevance, nil
	case SortRelevance, SortNewest, SortOldest, SortMostStars, SortMostActive:
		return o, nil
	}
	return "", fmt.Errorf("unknown sort %q", s)
}

func ParseGroupKey(s string) (GroupKey, error) {
	switch g := GroupKey(strings.ToLower(s)); g {
	case GroupNone, GroupRepository, GroupType, GroupOwner, GroupLanguage:
		return g, nil
	}
	return "", fmt.Errorf("unknown group key %q", s)
}

// Search runs match, sort and group over entities.
func Search(entities domain.Entities, q Query, now time.Time) []Result {
	text := strings.ToLower(strings.TrimSpace(q.Text))
	wantType, typed := categoryTypes[q.Category]

	items := Index(entities)
	results := make([]Result, 0, len(items))
	for i := range items {
		it := &items[i]
		if typed && it.Type != wantType {
			continue
		}
		if !matchesText(it, text) || !matchesFilters(it, q.Filters) {
			continue
		}
		results = append(results, Result{Item: it, Score: Score(it, text, now)})
	}

	sortResults(results, q.Sort)
	if q.GroupBy == GroupNone {
		return results
	}
	return group(results, q.GroupBy)
}

func matchesFilters(it *Item, filters []FilterCondition) bool {
	for _, f := range filters {
		if !f.Matches(it) {
			return false
		}
	}
	return true
}

// sortResults is stable, so ties keep index order.
func sortResults(results []Result, by SortOption) {
	var less func(a, b *Item, sa, sb float64) bool
	switch by {
	case SortNewest:
		less = func(a, b *Item, _, _ float64) bool { return a.UpdatedAt.After(b.UpdatedAt) }
	case SortOldest:
		less = func(a, b *Item, _, _ float64) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	case SortMostStars:
		less = func(a, b *Item, _, _ float64) bool { return a.Stars > b.Stars }
	case SortMostActive:
		less = func(a, b *Item, _, _ float64) bool { return activity(a) > activity(b) }
	default:
		less = func(_, _ *Item, sa, sb float64) bool { return sa > sb }
	}
	sort.SliceStable(results, func(i, j int) bool {
		return less(results[i].Item, results[j].Item, results[i].Score, results[j].Score)
	})
}

func activity(it *Item) int {
	return it.Stars + 2*it.Forks
}

func groupName(it *Item, key GroupKey) string {
	var name string
	switch key {
	case GroupRepository:
		name = it.Repository
	case GroupType:
		name = string(it.Type)
	case GroupOwner:
		name = it.Owner
	case GroupLanguage:
		name = it.Language
		if name == "" {
			name = "Unknown"
		}
	}
	if name == "" {
		return ungrouped
	}
	return name
}

// group partitions sorted results by key, ordering groups by first
// appearance and keeping members in their sorted order.
func group(results []Result, key GroupKey) []Result {
	var order []string
	members := make(map[string][]Result)
	for _, r := range results {
		name := groupName(r.Item, key)
		if _, ok := members[name]; !ok {
			order = append(order, name)
		}
		members[name] = append(members[name], r)
	}

	out := make([]Result, 0, len(results)+len(order))
	for _, name := range order {
		out = append(out, Result{IsGroupHeader: true, GroupName: name, Count: len(members[name])})
		out = append(out, members[name]...)
	}
	return out
}
