package domain

import "time"

// SkillCount is one entry of the ranked skill list
type SkillCount struct {
	Name       string        `json:"name"`
	Category   SkillCategory `json:"category"`
	Count      int           `json:"count"`      // Distinct postings mentioning the skill
	Percentage float64       `json:"percentage"` // Of postings considered, 1 decimal
}

// CategoryStats summarizes one taxonomy category
type CategoryStats struct {
	Category       SkillCategory `json:"category"`
	PostingCount   int           `json:"posting_count"` // Postings with at least one skill of the category
	Percentage     float64       `json:"percentage"`
	SkillsDetected int           `json:"skills_detected"`
	SkillsTotal    int           `json:"skills_total"`
	TopSkills      []SkillCount  `json:"top_skills"`
}

// TimeBucket is one point of the time-series breakdown
type TimeBucket struct {
	Period string `json:"period"` // e.g. "2025-08-14", "2025-08", "2025-Q3"
	Count  int    `json:"count"`
}

// AggregateStats is the computed summary for one analysis run.
// Derived entirely from postings and the taxonomy; recomputed per run.
type AggregateStats struct {
	Source        string                          `json:"source"`
	Period        string                          `json:"period"` // e.g. "2025-08"
	AnalyzedAt    time.Time                       `json:"analyzed_at"`
	TotalPostings int                             `json:"total_postings"` // Postings considered (with skills)
	TopSkills     []SkillCount                    `json:"top_skills"`
	Categories    map[SkillCategory]CategoryStats `json:"categories"`
	Departments   map[string]int                  `json:"departments"`
	TimeSeries    []TimeBucket                    `json:"time_series"`
}
