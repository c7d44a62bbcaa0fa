package gateway

import (
	"context"
	"fmt"

	"github.com/naka-gawa/github-dashboard/internal/domain"
	"github.com/shurcooL/githubv4"
)

// contributionCalendarQuery covers the viewer's last year of contributions.
type contributionCalendarQuery struct {
	Viewer struct {
		ContributionsCollection struct {
			ContributionCalendar struct {
				TotalContributions githubv4.Int
				Weeks              []struct {
					ContributionDays []struct {
						Date              string
						ContributionCount githubv4.Int
					}
				}
			}
		}
	}
}

// FetchContributionCalendar returns one entry per calendar day, oldest first.
func (g *GitHubGateway) FetchContributionCalendar(ctx context.Context) ([]domain.ContributionDay, error) {
	g.logger.Println("Fetching contribution calendar using GraphQL API...")
	var q contributionCalendarQuery
	if err := g.graphqlClient.Query(ctx, &q, nil); err != nil {
		return nil, fmt.Errorf("failed to execute GraphQL query for contribution calendar: %w", err)
	}

	var days []domain.ContributionDay
	for _, week := range q.Viewer.ContributionsCollection.ContributionCalendar.Weeks {
		for _, day := range week.ContributionDays {
			days = append(days, domain.ContributionDay{
				Date:  day.Date,
				Count: int(day.ContributionCount),
			})
		}
	}
	g.logger.Printf("Completed fetching contribution calendar (%d days, %d contributions).",
		len(days), q.Viewer.ContributionsCollection.ContributionCalendar.TotalContributions)
	return days, nil
}
