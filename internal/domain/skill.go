package domain

import "time"

// SkillCategory classifies taxonomy entries
type SkillCategory string

const (
	CategoryLanguages     SkillCategory = "langages_programmation"
	CategoryFrameworks    SkillCategory = "frameworks_libraries"
	CategoryDatabases     SkillCategory = "bases_donnees"
	CategoryCloudDevops   SkillCategory = "cloud_devops"
	CategoryDevTools      SkillCategory = "outils_developpement"
	CategorySystems       SkillCategory = "systemes_os"
	CategoryMethodologies SkillCategory = "methodologies"
	CategorySoftSkills    SkillCategory = "soft_skills"
)

// Skill is one canonical technology entry in the taxonomy
type Skill struct {
	Name           string        `json:"name"`
	NormalizedKey  string        `json:"normalized_key"` // lowercase, accent-stripped
	Category       SkillCategory `json:"category"`
	Synonyms       []string      `json:"synonyms"`
	DetectionCount int           `json:"detection_count"`
	LastDetectedAt time.Time     `json:"last_detected_at,omitempty"`
}

// Taxonomy maps categories to their skills. Loaded once per run and treated
// as read-only afterward; a skill name never belongs to two categories.
type Taxonomy struct {
	Categories map[SkillCategory][]*Skill
}

// IsEmpty reports whether the taxonomy holds no skills at all.
// An empty taxonomy is a degraded-but-valid state, not an error.
func (t *Taxonomy) IsEmpty() bool {
	if t == nil {
		return true
	}
	for _, skills := range t.Categories {
		if len(skills) > 0 {
			return false
		}
	}
	return true
}

// SkillCount returns the total number of skills across all categories.
func (t *Taxonomy) SkillCount() int {
	n := 0
	for _, skills := range t.Categories {
		n += len(skills)
	}
	return n
}

// CategoryOf returns the category for a canonical skill name.
func (t *Taxonomy) CategoryOf(name string) (SkillCategory, bool) {
	for cat, skills := range t.Categories {
		for _, s := range skills {
			if s.Name == name {
				return cat, true
			}
		}
	}
	return "", false
}

// AllSkills returns every skill across categories in one flat slice.
func (t *Taxonomy) AllSkills() []*Skill {
	var all []*Skill
	for _, skills := range t.Categories {
		all = append(all, skills...)
	}
	return all
}
