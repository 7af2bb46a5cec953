package taxonomy

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/project-tktt/go-techwatch/internal/domain"
)

func TestParse(t *testing.T) {
	data := []byte(`{
		"langages_programmation": [
			"Python",
			{"name": "C#", "synonyms": ["c sharp", ".net"]}
		],
		"cloud_devops": [
			{"name": "Kubernetes", "synonyms": ["k8s"]}
		]
	}`)

	tax, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, 3, tax.SkillCount())
	assert.False(t, tax.IsEmpty())

	langs := tax.Categories[domain.CategoryLanguages]
	require.Len(t, langs, 2)
	assert.Equal(t, "Python", langs[0].Name)
	assert.Equal(t, "python", langs[0].NormalizedKey)
	assert.Empty(t, langs[0].Synonyms)
	assert.Equal(t, "C#", langs[1].Name)
	assert.Equal(t, []string{"c sharp", ".net"}, langs[1].Synonyms)

	cat, ok := tax.CategoryOf("Kubernetes")
	require.True(t, ok)
	assert.Equal(t, domain.CategoryCloudDevops, cat)
}

func TestParseNormalizedKey(t *testing.T) {
	tax, err := Parse([]byte(`{"methodologies": ["Intégration Continue"]}`))
	require.NoError(t, err)

	skills := tax.Categories[domain.CategoryMethodologies]
	require.Len(t, skills, 1)
	assert.Equal(t, "integration_continue", skills[0].NormalizedKey)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed json", `{"langages_programmation": [`},
		{"empty category", `{"langages_programmation": []}`},
		{"unnamed skill", `{"langages_programmation": [{"synonyms": ["x"]}]}`},
		{"blank name", `{"langages_programmation": ["  "]}`},
		{"duplicate across categories", `{
			"langages_programmation": ["Python"],
			"outils_developpement": ["python"]
		}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			require.Error(t, err)

			var cfgErr *domain.ConfigurationError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestDefault(t *testing.T) {
	tax, err := Default()
	require.NoError(t, err)

	assert.False(t, tax.IsEmpty())
	assert.Len(t, tax.Categories, 8)

	// A few anchors the matcher and tests rely on
	for _, name := range []string{"Python", "JavaScript", "Docker", "PostgreSQL"} {
		_, ok := tax.CategoryOf(name)
		assert.True(t, ok, "missing %s", name)
	}
}

func TestLoad(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
