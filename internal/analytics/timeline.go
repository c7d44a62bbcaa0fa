package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/naka-gawa/github-dashboard/internal/domain"
)

const (
	monthLayout    = "Jan 2006"
	trailingMonths = 12
)

var weekdayLabels = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// MonthLabels returns the trailing twelve months ending with now's month,
// oldest first.
func MonthLabels(now time.Time, loc *time.Location) []string {
	local := now.In(loc)
	first := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	labels := make([]string, 0, trailingMonths)
	for i := trailingMonths - 1; i >= 0; i-- {
		labels = append(labels, first.AddDate(0, -i, 0).Format(monthLayout))
	}
	return labels
}

// Timeline counts timestamps per month bucket. Timestamps outside the
// buckets are ignored; empty months stay at zero.
func Timeline(months []string, created []time.Time, loc *time.Location) domain.Series {
	index := make(map[string]int, len(months))
	for i, m := range months {
		index[m] = i
	}
	data := make([]int, len(months))
	for _, t := range created {
		if i, ok := index[t.In(loc).Format(monthLayout)]; ok {
			data[i]++
		}
	}
	return domain.Series{Labels: append([]string{}, months...), Data: data}
}

// MonthlyCommits projects the sparse "Jan 2006" → count map onto the month buckets.
func MonthlyCommits(months []string, perMonth map[string]int) domain.Series {
	data := make([]int, len(months))
	for i, m := range months {
		data[i] = perMonth[m]
	}
	return domain.Series{Labels: append([]string{}, months...), Data: data}
}

// WeekdayHistogram buckets weekdays Monday first.
func WeekdayHistogram(days []time.Weekday) domain.Series {
	data := make([]int, 7)
	for _, d := range days {
		data[(int(d)+6)%7]++
	}
	return domain.Series{Labels: append([]string{}, weekdayLabels...), Data: data}
}

func HourHistogram(hours []int) domain.Series {
	labels := make([]string, 24)
	for h := range labels {
		labels[h] = fmt.Sprintf("%02d:00", h)
	}
	data := make([]int, 24)
	for _, h := range hours {
		if h >= 0 && h < 24 {
			data[h]++
		}
	}
	return domain.Series{Labels: labels, Data: data}
}

// EventTypes orders the event histogram by count, then label.
func EventTypes(counts map[string]int) domain.Series {
	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if counts[labels[i]] != counts[labels[j]] {
			return counts[labels[i]] > counts[labels[j]]
		}
		return labels[i] < labels[j]
	})
	data := make([]int, len(labels))
	for i, label := range labels {
		data[i] = counts[label]
	}
	return domain.Series{Labels: labels, Data: data}
}
