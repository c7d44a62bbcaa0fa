package normalize

import (
	"github.com/google/go-github/v62/github"
	"github.com/naka-gawa/github-dashboard/internal/domain"
)

// Repositories maps the user's repositories. A record without a full name is dropped.
func (n *Normalizer) Repositories(raw []*domain.RawRepository) []domain.Repository {
	return mapRecords(n, "repository", raw, repository)
}

// StarredRepositories maps the repositories the user has starred.
func (n *Normalizer) StarredRepositories(raw []*domain.RawStarredRepository) []domain.StarredRepository {
	return mapRecords(n, "starred", raw, starred)
}

// Organizations maps organization memberships, filling a missing name and URL from the login.
func (n *Normalizer) Organizations(raw []*domain.RawOrganization) []domain.Organization {
	return mapRecords(n, "organization", raw, organization)
}

func repository(r *github.Repository) (domain.Repository, error) {
	if r.GetFullName() == "" {
		return domain.Repository{}, errMissingName
	}
	return domain.Repository{
		FullName:    r.GetFullName(),
		Description: r.GetDescription(),
		Language:    r.GetLanguage(),
		Stars:       r.GetStargazersCount(),
		Forks:       r.GetForksCount(),
		Watchers:    r.GetWatchersCount(),
		Private:     r.GetPrivate(),
		Archived:    r.GetArchived(),
		Fork:        r.GetFork(),
		CreatedAt:   r.GetCreatedAt().Time,
		UpdatedAt:   r.GetUpdatedAt().Time,
		Topics:      topics(r.Topics),
		Size:        r.GetSize(),
		URL:         r.GetHTMLURL(),
	}, nil
}

func starred(r *github.Repository) (domain.StarredRepository, error) {
	if r.GetFullName() == "" {
		return domain.StarredRepository{}, errMissingName
	}
	return domain.StarredRepository{
		FullName:    r.GetFullName(),
		Description: r.GetDescription(),
		Language:    r.GetLanguage(),
		Stars:       r.GetStargazersCount(),
		URL:         r.GetHTMLURL(),
		Topics:      topics(r.Topics),
		UpdatedAt:   r.GetUpdatedAt().Time,
	}, nil
}

func organization(o *github.Organization) (domain.Organization, error) {
	login := o.GetLogin()
	if login == "" {
		return domain.Organization{}, errMissingLogin
	}
	url := o.GetHTMLURL()
	if url == "" {
		url = "https://github.com/" + login
	}
	name := o.GetName()
	if name == "" {
		name = login
	}
	return domain.Organization{
		Login:       login,
		Name:        name,
		Description: o.GetDescription(),
		URL:         url,
		AvatarURL:   o.GetAvatarURL(),
	}, nil
}

func topics(in []string) []string {
	if in == nil {
		return []string{}
	}
	return append([]string(nil), in...)
}
