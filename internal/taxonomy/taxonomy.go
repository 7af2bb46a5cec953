// Package taxonomy loads the categorized referential of technical skills
// used by the matcher and the aggregator.
package taxonomy

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/project-tktt/go-techwatch/internal/common/normalizer"
	"github.com/project-tktt/go-techwatch/internal/domain"
)

//go:embed competences.json
var defaultReferential []byte

// entry is one skill of the referential file. It accepts either a bare
// string ("Python") or an object with explicit synonyms.
type entry struct {
	Name     string   `json:"name"`
	Synonyms []string `json:"synonyms"`
}

func (e *entry) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &e.Name)
	}
	type plain entry
	return json.Unmarshal(data, (*plain)(e))
}

// Load reads and validates a referential from a JSON file.
func Load(path string) (*domain.Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read referential %s: %w", path, err)
	}
	return Parse(data)
}

// Default returns the embedded referential.
func Default() (*domain.Taxonomy, error) {
	return Parse(defaultReferential)
}

// Parse decodes a category -> skill list mapping and validates it.
// Structural problems (empty category, a skill name appearing in two
// categories) are fatal before any posting is processed.
func Parse(data []byte) (*domain.Taxonomy, error) {
	var raw map[string][]entry
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return nil, &domain.ConfigurationError{Reason: fmt.Sprintf("malformed JSON: %v", err)}
	}

	t := &domain.Taxonomy{Categories: make(map[domain.SkillCategory][]*domain.Skill, len(raw))}
	seen := make(map[string]domain.SkillCategory) // normalized name -> first category

	for cat, entries := range raw {
		if len(entries) == 0 {
			return nil, &domain.ConfigurationError{Reason: fmt.Sprintf("category %q has no skills", cat)}
		}
		category := domain.SkillCategory(cat)
		for _, e := range entries {
			name := strings.TrimSpace(e.Name)
			if name == "" {
				return nil, &domain.ConfigurationError{Reason: fmt.Sprintf("category %q contains an unnamed skill", cat)}
			}
			key := normalizer.Fold(name)
			if prev, dup := seen[key]; dup {
				return nil, &domain.ConfigurationError{
					Reason: fmt.Sprintf("skill %q appears in both %q and %q", name, prev, category),
				}
			}
			seen[key] = category

			t.Categories[category] = append(t.Categories[category], &domain.Skill{
				Name:          name,
				NormalizedKey: strings.ReplaceAll(key, " ", "_"),
				Category:      category,
				Synonyms:      e.Synonyms,
			})
		}
	}

	return t, nil
}
