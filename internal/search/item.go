package search

import (
	"strings"
	"time"

	"github.com/naka-gawa/github-dashboard/internal/domain"
)

type ItemType string

const (
	TypeRepository   ItemType = "repository"
	TypeStarred      ItemType = "starred"
	TypePullRequest  ItemType = "pull_request"
	TypeIssue        ItemType = "issue"
	TypeOrganization ItemType = "organization"
)

// Item is the query-time projection of one normalized entity.
type Item struct {
	Type        ItemType  `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Language    string    `json:"language,omitempty"`
	Labels      []string  `json:"labels,omitempty"`
	Repository  string    `json:"repository,omitempty"`
	Owner       string    `json:"owner,omitempty"`
	State       string    `json:"state,omitempty"`
	URL         string    `json:"url,omitempty"`
	Stars       int       `json:"stars,omitempty"`
	Forks       int       `json:"forks,omitempty"`
	Comments    int       `json:"comments,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// Index flattens the entity set into items. The order (repositories,
// starred, pull requests, issues, organizations) is the tie-break order for
// every sort.
func Index(e domain.Entities) []Item {
	items := make([]Item, 0, len(e.Repositories)+len(e.Starred)+len(e.PullRequests)+len(e.Issues)+len(e.Organizations))
	for _, r := range e.Repositories {
		items = append(items, Item{
			Type:        TypeRepository,
			Title:       r.FullName,
			Description: r.Description,
			Language:    r.Language,
			Labels:      r.Topics,
			Repository:  r.FullName,
			Owner:       ownerOf(r.FullName),
			URL:         r.URL,
			Stars:       r.Stars,
			Forks:       r.Forks,
			CreatedAt:   r.CreatedAt,
			UpdatedAt:   r.UpdatedAt,
		})
	}
	for _, r := range e.Starred {
		items = append(items, Item{
			Type:        TypeStarred,
			Title:       r.FullName,
			Description: r.Description,
			Language:    r.Language,
			Labels:      r.Topics,
			Repository:  r.FullName,
			Owner:       ownerOf(r.FullName),
			URL:         r.URL,
			Stars:       r.Stars,
			UpdatedAt:   r.UpdatedAt,
		})
	}
	for _, pr := range e.PullRequests {
		items = append(items, Item{
			Type:       TypePullRequest,
			Title:      pr.Title,
			Labels:     splitLabels(pr.Labels),
			Repository: pr.Repository,
			Owner:      ownerOf(pr.Repository),
			State:      string(pr.State),
			URL:        pr.URL,
			Comments:   pr.Comments,
			CreatedAt:  pr.CreatedAt,
			UpdatedAt:  pr.UpdatedAt,
		})
	}
	for _, is := range e.Issues {
		items = append(items, Item{
			Type:       TypeIssue,
			Title:      is.Title,
			Labels:     splitLabels(is.Labels),
			Repository: is.Repository,
			Owner:      ownerOf(is.Repository),
			State:      string(is.State),
			URL:        is.URL,
			Comments:   is.Comments,
			CreatedAt:  is.CreatedAt,
			UpdatedAt:  is.UpdatedAt,
		})
	}
	for _, o := range e.Organizations {
		items = append(items, Item{
			Type:        TypeOrganization,
			Title:       o.Name,
			Description: o.Description,
			Owner:       o.Login,
			URL:         o.URL,
		})
	}
	return items
}

// Field returns the named field's value (string, float64 or time.Time) and
// whether the item actually has it.
func (it *Item) Field(name string) (any, bool) {
	switch strings.ToLower(name) {
	case "title":
		return it.Title, it.Title != ""
	case "description":
		return it.Description, it.Description != ""
	case "language":
		return it.Language, it.Language != ""
	case "state":
		return it.State, it.State != ""
	case "repository", "repo":
		return it.Repository, it.Repository != ""
	case "owner":
		return it.Owner, it.Owner != ""
	case "type":
		return string(it.Type), true
	case "labels", "label", "topics":
		return strings.Join(it.Labels, ", "), len(it.Labels) > 0
	case "stars":
		return float64(it.Stars), it.Type == TypeRepository || it.Type == TypeStarred
	case "forks":
		return float64(it.Forks), it.Type == TypeRepository
	case "comments":
		return float64(it.Comments), it.Type == TypePullRequest || it.Type == TypeIssue
	case "created":
		return it.CreatedAt, !it.CreatedAt.IsZero()
	case "updated":
		return it.UpdatedAt, !it.UpdatedAt.IsZero()
	}
	return nil, false
}

func ownerOf(fullName string) string {
	owner, _, _ := strings.Cut(fullName, "/")
	return owner
}

func splitLabels(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, ", ")
}
