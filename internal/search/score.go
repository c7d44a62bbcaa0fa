package search

import (
	"math"
	"strings"
	"time"
)

const (
	starBonusCap     = 5
	starsPerPoint    = 100
	recencyBonusMax  = 3
	recencyWindowDay = 90
)

// matchesText reports whether the lower-cased query occurs in the title,
// description, language or any label.
func matchesText(it *Item, q string) bool {
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(it.Title), q) ||
		strings.Contains(strings.ToLower(it.Description), q) ||
		strings.Contains(strings.ToLower(it.Language), q) {
		return true
	}
	for _, l := range it.Labels {
		if strings.Contains(strings.ToLower(l), q) {
			return true
		}
	}
	return false
}

// Score ranks an item against a lower-cased query.
func Score(it *Item, q string, now time.Time) float64 {
	var score float64
	if q != "" {
		title := strings.ToLower(it.Title)
		if strings.Contains(title, q) {
			score += 10
			if title == q {
				score += 5
			}
			if strings.HasPrefix(title, q) {
				score += 3
			}
		}
		if strings.Contains(strings.ToLower(it.Description), q) {
			score += 5
		}
		if strings.Contains(strings.ToLower(it.Language), q) {
			score += 3
		}
	}

	score += math.Min(float64(it.Stars)/starsPerPoint, starBonusCap)

	if !it.UpdatedAt.IsZero() {
		days := now.Sub(it.UpdatedAt).Hours() / 24
		if days < recencyWindowDay {
			score += recencyBonusMax * (1 - math.Max(days, 0)/recencyWindowDay)
		}
	}
	return score
}
