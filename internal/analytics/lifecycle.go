package analytics

import (
	"math"

	"github.com/montanaflynn/stats"
	"github.com/naka-gawa/github-dashboard/internal/domain"
)

// PRLifecycle summarizes how long merged pull requests stayed open.
func PRLifecycle(prs []domain.PullRequest) domain.Lifecycle {
	var days stats.Float64Data
	for _, pr := range prs {
		if pr.State == domain.StateMerged {
			days = append(days, pr.DaysOpen)
		}
	}
	if len(days) == 0 {
		return domain.Lifecycle{}
	}

	mean, _ := days.Mean()
	median, _ := days.Median()
	// Nearest rank, so P90 is always an observed value.
	p90, _ := days.PercentileNearestRank(90)

	return domain.Lifecycle{
		Count:  len(days),
		Mean:   round1(mean),
		Median: round1(median),
		P90:    round1(p90),
	}
}

// ContributionStreaks expects calendar days oldest first. A zero on the last
// day does not break the current streak, since today may not be over.
func ContributionStreaks(days []domain.ContributionDay) domain.Streaks {
	var s domain.Streaks
	run := 0
	for _, d := range days {
		s.Total += d.Count
		if d.Count > 0 {
			run++
			s.Longest = max(s.Longest, run)
		} else {
			run = 0
		}
	}

	end := len(days) - 1
	if end >= 0 && days[end].Count == 0 {
		end--
	}
	for i := end; i >= 0 && days[i].Count > 0; i-- {
		s.Current++
	}
	return s
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
