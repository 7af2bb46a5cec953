package normalizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/project-tktt/go-techwatch/internal/domain"
)

func rawFranceTravail() *domain.RawPosting {
	return &domain.RawPosting{
		SourceID:    "193XQRB",
		Source:      string(domain.SourceFranceTravail),
		CollectedAt: time.Date(2025, 8, 14, 9, 0, 0, 0, time.UTC),
		RawData: map[string]any{
			"id":                 "193XQRB",
			"intitule":           "Développeur / Développeuse full-stack",
			"description":        "Recherche développeur Python et Docker",
			"dateCreation":       "2025-08-12T10:22:00.000Z",
			"dateActualisation":  "2025-08-13T08:00:00.000Z",
			"typeContrat":        "CDI",
			"typeContratLibelle": "Contrat à durée indéterminée",
			"experienceLibelle":  "2 ans",
			"romeCode":           "M1805",
			"romeLibelle":        "Études et développement informatique",
			"alternance":         false,
			"lieuTravail": map[string]any{
				"libelle":    "54 - NANCY",
				"commune":    "54395",
				"codePostal": "54000",
			},
			"entreprise": map[string]any{
				"nom": "ACME Software",
			},
			"origineOffre": map[string]any{
				"urlOrigine": "https://candidat.francetravail.fr/offres/recherche/detail/193XQRB",
			},
		},
	}
}

func TestNormalizePosting(t *testing.T) {
	n := NewNormalizer()

	posting, err := n.Normalize(rawFranceTravail())
	require.NoError(t, err)

	assert.Equal(t, "193XQRB", posting.SourceID)
	assert.Equal(t, "Développeur / Développeuse full-stack", posting.Title)
	assert.Equal(t, "CDI", posting.ContractType)
	assert.Equal(t, "54000", posting.PostalCode)
	assert.Equal(t, "54", posting.Department)
	assert.Equal(t, "54395", posting.City)
	assert.Equal(t, "ACME Software", posting.CompanyName)
	assert.Equal(t, "https://candidat.francetravail.fr/offres/recherche/detail/193XQRB", posting.SourceURL)
	assert.Equal(t, time.Date(2025, 8, 12, 10, 22, 0, 0, time.UTC), posting.CreatedAt)
	assert.False(t, posting.Processed)
	assert.Empty(t, posting.Skills)
}

func TestNormalizePostingMissingRequiredFields(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		name   string
		mutate func(*domain.RawPosting)
		field  string
	}{
		{
			"missing id", func(r *domain.RawPosting) {
				r.SourceID = ""
				delete(r.RawData, "id")
			}, "source_id",
		},
		{
			"missing title", func(r *domain.RawPosting) {
				delete(r.RawData, "intitule")
			}, "intitule",
		},
		{
			"missing creation date", func(r *domain.RawPosting) {
				delete(r.RawData, "dateCreation")
			}, "dateCreation",
		},
		{
			"unparseable creation date", func(r *domain.RawPosting) {
				r.RawData["dateCreation"] = "yesterday"
			}, "dateCreation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := rawFranceTravail()
			tt.mutate(raw)

			_, err := n.Normalize(raw)
			require.Error(t, err)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestCompetenceLabels(t *testing.T) {
	data := map[string]any{
		"competences": []any{
			map[string]any{"code": "300886", "libelle": "Python", "exigence": "S"},
			map[string]any{"libelle": "Docker"},
			map[string]any{"code": "no-label"},
			"SQL",
		},
	}

	assert.Equal(t, []string{"Python", "Docker", "SQL"}, CompetenceLabels(data))
	assert.Nil(t, CompetenceLabels(map[string]any{}))
	assert.Nil(t, CompetenceLabels(map[string]any{"competences": "not-a-list"}))
}
