package analytics

import (
	"math"
	"sort"

	"github.com/naka-gawa/github-dashboard/internal/domain"
)

const (
	maxLanguages       = 10
	languageWeightMin  = 0.5
	maxTopics          = 20
	maxTopRepositories = 10

	OtherLabel = "Other"
)

// StateDistribution always reports Open, Closed and Merged in that order.
func StateDistribution(prs []domain.PullRequest) domain.Distribution {
	counts := map[domain.State]float64{}
	for _, pr := range prs {
		counts[pr.State]++
	}
	return domain.Distribution{
		Labels: []string{string(domain.StateOpen), string(domain.StateClosed), string(domain.StateMerged)},
		Data:   []float64{counts[domain.StateOpen], counts[domain.StateClosed], counts[domain.StateMerged]},
		Colors: []string{"#2ea44f", "#cb2431", "#6f42c1"},
	}
}

func VisibilityDistribution(repos []domain.Repository) domain.Distribution {
	var private float64
	for _, r := range repos {
		if r.Private {
			private++
		}
	}
	return domain.Distribution{
		Labels: []string{"Public", "Private"},
		Data:   []float64{float64(len(repos)) - private, private},
		Colors: []string{"#2ea44f", "#f9c513"},
	}
}

func OriginDistribution(repos []domain.Repository) domain.Distribution {
	var forked float64
	for _, r := range repos {
		if r.Fork {
			forked++
		}
	}
	return domain.Distribution{
		Labels: []string{"Original", "Forked"},
		Data:   []float64{float64(len(repos)) - forked, forked},
		Colors: []string{"#0366d6", "#8b949e"},
	}
}

type weighted struct {
	name   string
	weight float64
}

// LanguageDistribution weighs each non-fork repository's language by
// 1+log2(stars+1), keeps the ten heaviest, folds the rest into "Other" and
// expresses the result as percentages of what was kept.
func LanguageDistribution(repos []domain.Repository) domain.Distribution {
	weights := make(map[string]float64)
	for _, r := range repos {
		if r.Fork || r.Language == "" {
			continue
		}
		weights[r.Language] += 1 + math.Log2(float64(r.Stars)+1)
	}

	entries := make([]weighted, 0, len(weights))
	for name, w := range weights {
		if w < languageWeightMin {
			continue
		}
		entries = append(entries, weighted{name: name, weight: w})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].weight != entries[j].weight {
			return entries[i].weight > entries[j].weight
		}
		return entries[i].name < entries[j].name
	})

	if len(entries) > maxLanguages {
		var rest float64
		for _, e := range entries[maxLanguages:] {
			rest += e.weight
		}
		entries = append(entries[:maxLanguages:maxLanguages], weighted{name: OtherLabel, weight: rest})
	}

	var total float64
	for _, e := range entries {
		total += e.weight
	}

	dist := domain.Distribution{
		Labels: make([]string, 0, len(entries)),
		Data:   make([]float64, 0, len(entries)),
		Colors: make([]string, 0, len(entries)),
	}
	for _, e := range entries {
		dist.Labels = append(dist.Labels, e.name)
		dist.Data = append(dist.Data, math.Round(e.weight/total*10000)/100)
		dist.Colors = append(dist.Colors, LanguageColor(e.name))
	}
	return dist
}

// TopTopics counts topic occurrences across repositories.
func TopTopics(repos []domain.Repository, limit int) []domain.TopicCount {
	counts := make(map[string]int)
	for _, r := range repos {
		for _, t := range r.Topics {
			counts[t]++
		}
	}
	out := make([]domain.TopicCount, 0, len(counts))
	for topic, n := range counts {
		out = append(out, domain.TopicCount{Topic: topic, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Topic < out[j].Topic
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
