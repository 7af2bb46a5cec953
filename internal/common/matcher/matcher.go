// Package matcher detects taxonomy skills in normalized posting text.
// Patterns are compiled once from the taxonomy at startup so matching is
// pure lookup work, independent of any I/O.
package matcher

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/project-tktt/go-techwatch/internal/common/normalizer"
	"github.com/project-tktt/go-techwatch/internal/domain"
)

// Match is one detected skill occurrence
type Match struct {
	Name     string
	Category domain.SkillCategory
}

// compiledSkill carries every pattern that can fire for one skill:
// the canonical name plus each synonym, each with a spaced variant
// when the term contains a dot or hyphen joiner.
type compiledSkill struct {
	skill    *domain.Skill
	patterns []*regexp.Regexp
	keys     map[string]bool // folded exact terms, for label matching
}

// Matcher scans normalized text for taxonomy entries
type Matcher struct {
	taxonomy *domain.Taxonomy
	compiled []*compiledSkill
}

// NewMatcher builds the pattern table from the taxonomy. An empty taxonomy
// yields a matcher that never matches, not an error.
func NewMatcher(t *domain.Taxonomy) (*Matcher, error) {
	m := &Matcher{taxonomy: t}
	if t == nil {
		return m, nil
	}

	for _, skill := range t.AllSkills() {
		cs := &compiledSkill{skill: skill, keys: make(map[string]bool)}

		terms := append([]string{skill.Name}, skill.Synonyms...)
		for _, term := range terms {
			norm := normalizer.Normalize(term)
			if norm == "" {
				continue
			}
			cs.keys[norm] = true

			for _, variant := range termVariants(norm) {
				re, err := regexp.Compile(boundaryPattern(variant))
				if err != nil {
					return nil, fmt.Errorf("compile pattern for %q term %q: %w", skill.Name, term, err)
				}
				cs.patterns = append(cs.patterns, re)
			}
		}

		if len(cs.patterns) > 0 {
			m.compiled = append(m.compiled, cs)
		}
	}

	// Stable iteration order so Extract output never depends on map order
	sort.Slice(m.compiled, func(i, j int) bool {
		return m.compiled[i].skill.Name < m.compiled[j].skill.Name
	})

	return m, nil
}

// Extract returns the set of skills mentioned in normalized text, sorted by
// canonical name. A skill matched through several synonyms is recorded once;
// two different skills matching overlapping text are both recorded.
func (m *Matcher) Extract(normalizedText string) []Match {
	if normalizedText == "" || len(m.compiled) == 0 {
		return nil
	}

	var matches []Match
	for _, cs := range m.compiled {
		for _, re := range cs.patterns {
			if re.MatchString(normalizedText) {
				matches = append(matches, Match{Name: cs.skill.Name, Category: cs.skill.Category})
				break
			}
		}
	}
	return matches
}

// ExtractText normalizes raw text and extracts skills from it.
func (m *Matcher) ExtractText(text string) []Match {
	return m.Extract(normalizer.Normalize(text))
}

// MatchLabels maps structured competence labels from the source API onto
// taxonomy skills. A label matches when its normalized form equals a skill
// term exactly, or contains a multi-word term as a whole phrase.
func (m *Matcher) MatchLabels(labels []string) []Match {
	if len(labels) == 0 || len(m.compiled) == 0 {
		return nil
	}

	found := make(map[string]domain.SkillCategory)
	for _, label := range labels {
		norm := normalizer.Normalize(label)
		if norm == "" {
			continue
		}
		for _, cs := range m.compiled {
			if cs.keys[norm] {
				found[cs.skill.Name] = cs.skill.Category
				continue
			}
			for _, re := range cs.patterns {
				if re.MatchString(norm) {
					found[cs.skill.Name] = cs.skill.Category
					break
				}
			}
		}
	}

	matches := make([]Match, 0, len(found))
	for name, cat := range found {
		matches = append(matches, Match{Name: name, Category: cat})
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Name < matches[j].Name })
	return matches
}

// Merge combines match sets with set semantics, sorted by name.
func Merge(sets ...[]Match) []Match {
	seen := make(map[string]Match)
	for _, set := range sets {
		for _, match := range set {
			seen[match.Name] = match
		}
	}
	merged := make([]Match, 0, len(seen))
	for _, match := range seen {
		merged = append(merged, match)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Name < merged[j].Name })
	return merged
}

// Names flattens matches to their canonical skill names.
func Names(matches []Match) []string {
	names := make([]string, 0, len(matches))
	for _, match := range matches {
		names = append(names, match.Name)
	}
	return names
}

// termVariants returns the normalized term plus, when it contains a dot or
// hyphen joiner, the variant with joiners replaced by spaces, so "react.js"
// also matches "react js".
func termVariants(term string) []string {
	variants := []string{term}
	if strings.ContainsAny(term, ".-") && !strings.HasPrefix(term, ".") {
		spaced := strings.Join(strings.Fields(strings.Map(func(r rune) rune {
			if r == '.' || r == '-' {
				return ' '
			}
			return r
		}, term)), " ")
		if spaced != "" && spaced != term {
			variants = append(variants, spaced)
		}
	}
	return variants
}

// boundaryPattern wraps an escaped term with boundary assertions. \b only
// works against word characters, so terms starting or ending with + # or .
// get explicit whitespace-or-edge anchors instead. Short tokens (<= 2 chars)
// rely on the same hard boundaries on both sides, which is what keeps "R"
// out of "react" and "java" out of "javascript".
func boundaryPattern(term string) string {
	escaped := regexp.QuoteMeta(term)

	lead := `\b`
	if !isWordChar(rune(term[0])) {
		lead = `(?:^|\s)`
	}
	trail := `\b`
	if !isWordChar(rune(term[len(term)-1])) {
		trail = `(?:$|\s)`
	}

	return lead + escaped + trail
}

func isWordChar(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}
