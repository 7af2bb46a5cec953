// Package aggregator reduces analyzed postings to frequency statistics:
// ranked skill counts, per-category views, geographic and time breakdowns.
// The reduction is a single deterministic pass; identical input always
// produces identical ordered output.
package aggregator

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/project-tktt/go-techwatch/internal/domain"
)

// Granularity controls the time-series bucket size
type Granularity string

const (
	GranularityDay     Granularity = "day"
	GranularityMonth   Granularity = "month"
	GranularityQuarter Granularity = "quarter"
)

const topSkillsPerCategory = 10

// Aggregator computes AggregateStats from analyzed postings
type Aggregator struct {
	taxonomy *domain.Taxonomy
	now      func() time.Time
}

// NewAggregator creates an aggregator bound to a read-only taxonomy
func NewAggregator(t *domain.Taxonomy) *Aggregator {
	return &Aggregator{taxonomy: t, now: time.Now}
}

// Aggregate reduces a batch of postings to summary statistics. Only postings
// with at least one extracted skill are considered; an empty batch yields
// zero counts and empty rankings, not an error. Skill detection counters on
// the taxonomy are advanced here, under the single-writer assumption.
func (a *Aggregator) Aggregate(postings []*domain.Posting, source string, granularity Granularity) *domain.AggregateStats {
	if granularity == "" {
		granularity = GranularityMonth
	}
	analyzedAt := a.now()

	stats := &domain.AggregateStats{
		Source:      source,
		Period:      analyzedAt.Format("2006-01"),
		AnalyzedAt:  analyzedAt,
		Categories:  make(map[domain.SkillCategory]domain.CategoryStats),
		Departments: make(map[string]int),
	}

	// 1. Consider only postings the matcher attached skills to
	var considered []*domain.Posting
	for _, p := range postings {
		if p.HasSkills() {
			considered = append(considered, p)
		}
	}
	stats.TotalPostings = len(considered)
	if len(considered) == 0 {
		return stats
	}

	// 2. Distinct-posting count per skill. Skill lists carry set semantics
	// already, but a doubled entry must still count once.
	skillCounts := make(map[string]int)
	timeCounts := make(map[string]int)
	for _, p := range considered {
		inPosting := make(map[string]bool, len(p.Skills))
		for _, name := range p.Skills {
			if inPosting[name] {
				continue
			}
			inPosting[name] = true
			skillCounts[name]++
		}

		if p.Department != "" {
			stats.Departments[p.Department]++
		}
		timeCounts[periodKey(p.CreatedAt, granularity)]++
	}

	// 3. Ranked list: count desc, ties alphabetical on canonical name
	total := len(considered)
	for name, count := range skillCounts {
		category, _ := a.taxonomy.CategoryOf(name)
		stats.TopSkills = append(stats.TopSkills, domain.SkillCount{
			Name:       name,
			Category:   category,
			Count:      count,
			Percentage: percentage(count, total),
		})
	}
	sortRanked(stats.TopSkills)

	// 4. Per-category views, same counting rule
	for category, skills := range a.taxonomy.Categories {
		stats.Categories[category] = a.categoryStats(category, skills, considered, skillCounts, analyzedAt)
	}

	// 5. Time series, chronological
	for period, count := range timeCounts {
		stats.TimeSeries = append(stats.TimeSeries, domain.TimeBucket{Period: period, Count: count})
	}
	sort.Slice(stats.TimeSeries, func(i, j int) bool {
		return stats.TimeSeries[i].Period < stats.TimeSeries[j].Period
	})

	return stats
}

func (a *Aggregator) categoryStats(
	category domain.SkillCategory,
	skills []*domain.Skill,
	considered []*domain.Posting,
	skillCounts map[string]int,
	analyzedAt time.Time,
) domain.CategoryStats {
	names := make(map[string]bool, len(skills))
	for _, s := range skills {
		names[s.Name] = true
	}

	// Postings with at least one skill of this category count once
	withCategory := 0
	for _, p := range considered {
		for _, name := range p.Skills {
			if names[name] {
				withCategory++
				break
			}
		}
	}

	cs := domain.CategoryStats{
		Category:     category,
		PostingCount: withCategory,
		Percentage:   percentage(withCategory, len(considered)),
		SkillsTotal:  len(skills),
	}

	var ranked []domain.SkillCount
	for _, s := range skills {
		count := skillCounts[s.Name]
		if count == 0 {
			continue
		}
		// Single-writer counter update during the reduction pass
		s.DetectionCount += count
		s.LastDetectedAt = analyzedAt

		ranked = append(ranked, domain.SkillCount{
			Name:       s.Name,
			Category:   category,
			Count:      count,
			Percentage: percentage(count, len(considered)),
		})
	}
	sortRanked(ranked)

	cs.SkillsDetected = len(ranked)
	if len(ranked) > topSkillsPerCategory {
		ranked = ranked[:topSkillsPerCategory]
	}
	cs.TopSkills = ranked
	return cs
}

// sortRanked orders by count descending, ties broken alphabetically
func sortRanked(ranked []domain.SkillCount) {
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Name < ranked[j].Name
	})
}

// percentage returns count/total*100 with 1 decimal of precision
func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(count)/float64(total)*1000) / 10
}

// periodKey formats a timestamp at the requested granularity
func periodKey(t time.Time, g Granularity) string {
	switch g {
	case GranularityDay:
		return t.Format("2006-01-02")
	case GranularityQuarter:
		return fmt.Sprintf("%d-Q%d", t.Year(), (int(t.Month())-1)/3+1)
	default:
		return t.Format("2006-01")
	}
}
