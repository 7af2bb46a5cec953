package normalizer

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/project-tktt/go-techwatch/internal/domain"
)

// Normalizer converts RawPosting to the normalized Posting format
type Normalizer struct{}

// NewNormalizer creates a new normalizer
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize converts a RawPosting to a validated Posting. A missing required
// field (source id, title, creation date) yields a ValidationError; the
// caller skips the record and reports it, other records continue.
func (n *Normalizer) Normalize(raw *domain.RawPosting) (*domain.Posting, error) {
	data := raw.RawData

	sourceID := raw.SourceID
	if sourceID == "" {
		sourceID = getString(data, "id", "source_id")
	}
	if sourceID == "" {
		return nil, &domain.ValidationError{Field: "source_id"}
	}

	title := getString(data, "intitule", "title")
	if title == "" {
		return nil, &domain.ValidationError{SourceID: sourceID, Field: "intitule"}
	}

	createdAt := parseTimeAny(data["dateCreation"])
	if createdAt.IsZero() {
		return nil, &domain.ValidationError{SourceID: sourceID, Field: "dateCreation"}
	}

	posting := &domain.Posting{
		SourceID:    sourceID,
		Title:       html.UnescapeString(title),
		Description: html.UnescapeString(getString(data, "description")),
		Source:      raw.Source,
		SourceURL:   raw.URL,
		CreatedAt:   createdAt,
		UpdatedAt:   parseTimeAny(data["dateActualisation"]),
		CollectedAt: raw.CollectedAt,

		ContractType:  getString(data, "typeContrat"),
		ContractLabel: getString(data, "typeContratLibelle"),
		Experience:    getString(data, "experienceLibelle"),
		RomeCode:      getString(data, "romeCode"),
		RomeLabel:     getString(data, "romeLibelle"),
		Alternance:    getBool(data, "alternance"),
	}

	if posting.CollectedAt.IsZero() {
		posting.CollectedAt = time.Now()
	}

	// Location: France Travail nests it under lieuTravail
	if lieu, ok := data["lieuTravail"].(map[string]any); ok {
		posting.City = getString(lieu, "commune", "libelle")
		posting.PostalCode = getString(lieu, "codePostal")
	}
	if posting.PostalCode == "" {
		posting.PostalCode = getString(data, "codePostal", "postal_code")
	}
	if len(posting.PostalCode) >= 2 {
		posting.Department = posting.PostalCode[:2]
	}

	if ent, ok := data["entreprise"].(map[string]any); ok {
		posting.CompanyName = getString(ent, "nom", "name")
	}

	if posting.SourceURL == "" {
		if origine, ok := data["origineOffre"].(map[string]any); ok {
			posting.SourceURL = getString(origine, "urlOrigine")
		}
	}

	return posting, nil
}

// CompetenceLabels extracts the structured competence labels the source API
// attaches to a posting (France Travail "competences" list).
func CompetenceLabels(data map[string]any) []string {
	val, ok := data["competences"]
	if !ok || val == nil {
		return nil
	}
	items, ok := val.([]any)
	if !ok {
		return nil
	}

	var labels []string
	for _, item := range items {
		switch v := item.(type) {
		case string:
			if v != "" {
				labels = append(labels, v)
			}
		case map[string]any:
			if lib := getString(v, "libelle"); lib != "" {
				labels = append(labels, lib)
			}
		}
	}
	return labels
}

// getString tries multiple keys and returns the first non-empty value
func getString(data map[string]any, keys ...string) string {
	for _, key := range keys {
		if val, ok := data[key]; ok {
			switch v := val.(type) {
			case string:
				if v != "" {
					return strings.TrimSpace(v)
				}
			case float64:
				return fmt.Sprintf("%.0f", v)
			case int:
				return strconv.Itoa(v)
			}
		}
	}
	return ""
}

// getBool extracts bool from data
func getBool(data map[string]any, key string) bool {
	if val, ok := data[key]; ok {
		switch v := val.(type) {
		case bool:
			return v
		case string:
			return v == "true" || v == "1"
		}
	}
	return false
}

// parseTimeAny parses the timestamp formats the source APIs emit
func parseTimeAny(val any) time.Time {
	switch v := val.(type) {
	case time.Time:
		return v
	case float64:
		return time.Unix(int64(v), 0)
	case string:
		formats := []string{
			time.RFC3339Nano,
			time.RFC3339,
			"2006-01-02T15:04:05.000Z",
			"2006-01-02",
		}
		for _, format := range formats {
			if t, err := time.Parse(format, v); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}
