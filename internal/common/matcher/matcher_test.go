package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/project-tktt/go-techwatch/internal/domain"
)

func testTaxonomy() *domain.Taxonomy {
	return &domain.Taxonomy{
		Categories: map[domain.SkillCategory][]*domain.Skill{
			domain.CategoryLanguages: {
				{Name: "Python", Category: domain.CategoryLanguages},
				{Name: "Java", Category: domain.CategoryLanguages},
				{Name: "JavaScript", Category: domain.CategoryLanguages, Synonyms: []string{"js"}},
				{Name: "C++", Category: domain.CategoryLanguages, Synonyms: []string{"cpp"}},
				{Name: "C#", Category: domain.CategoryLanguages, Synonyms: []string{"c sharp", ".net"}},
				{Name: "R", Category: domain.CategoryLanguages},
			},
			domain.CategoryFrameworks: {
				{Name: "React", Category: domain.CategoryFrameworks, Synonyms: []string{"react.js", "reactjs"}},
				{Name: "Node.js", Category: domain.CategoryFrameworks, Synonyms: []string{"nodejs"}},
			},
			domain.CategoryCloudDevops: {
				{Name: "Docker", Category: domain.CategoryCloudDevops},
				{Name: "Kubernetes", Category: domain.CategoryCloudDevops, Synonyms: []string{"k8s"}},
			},
			domain.CategoryDatabases: {
				{Name: "PostgreSQL", Category: domain.CategoryDatabases, Synonyms: []string{"postgres", "psql"}},
			},
		},
	}
}

func newTestMatcher(t *testing.T) *Matcher {
	t.Helper()
	m, err := NewMatcher(testTaxonomy())
	require.NoError(t, err)
	return m
}

func TestExtractText(t *testing.T) {
	m := newTestMatcher(t)

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			"simple mention",
			"Développeur Python avec Docker",
			[]string{"Docker", "Python"},
		},
		{
			"synonym fires for canonical name",
			"Nous cherchons un profil JS avec de l'expérience Docker",
			[]string{"Docker", "JavaScript"},
		},
		{
			"substring never matches",
			"Java et JavaScript requis",
			[]string{"Java", "JavaScript"},
		},
		{
			"single letter stays out of longer words",
			"Expérience React indispensable",
			[]string{"React"},
		},
		{
			"dot is a boundary so js fires inside node.js",
			"Stack Node.js côté serveur",
			[]string{"JavaScript", "Node.js"},
		},
		{
			"plus suffix anchors",
			"Maîtrise du C++ exigée",
			[]string{"C++"},
		},
		{
			"hash suffix anchors",
			"Développement C# sur plateforme Azure",
			[]string{"C#"},
		},
		{
			"leading dot synonym",
			"Environnement .NET et SQL Server",
			[]string{"C#"},
		},
		{
			"spaced variant of dotted synonym",
			"Frontend React JS moderne",
			[]string{"JavaScript", "React"},
		},
		{
			"multiple synonyms count once",
			"PostgreSQL (postgres) en production",
			[]string{"PostgreSQL"},
		},
		{
			"accented and cased input",
			"KUBERNETES ou k8s apprécié",
			[]string{"Kubernetes"},
		},
		{
			"no skills",
			"Poste de chargé de clientèle en banque",
			nil,
		},
		{
			"empty text",
			"",
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.ExtractText(tt.text)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, Names(got))
		})
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	m := newTestMatcher(t)

	text := "python docker kubernetes javascript react postgres"
	first := Names(m.ExtractText(text))
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Names(m.ExtractText(text)))
	}
}

func TestExtractSubsetOfTaxonomy(t *testing.T) {
	tax := testTaxonomy()
	m, err := NewMatcher(tax)
	require.NoError(t, err)

	known := make(map[string]bool)
	for _, s := range tax.AllSkills() {
		known[s.Name] = true
	}

	for _, match := range m.ExtractText("python js docker k8s react node.js c++ c# postgres") {
		assert.True(t, known[match.Name], "unknown skill %q", match.Name)
	}
}

func TestMatchCarriesCategory(t *testing.T) {
	m := newTestMatcher(t)

	matches := m.ExtractText("Python et Docker")
	require.Len(t, matches, 2)
	assert.Equal(t, domain.CategoryCloudDevops, matches[0].Category)
	assert.Equal(t, "Docker", matches[0].Name)
	assert.Equal(t, domain.CategoryLanguages, matches[1].Category)
}

func TestEmptyTaxonomy(t *testing.T) {
	m, err := NewMatcher(nil)
	require.NoError(t, err)
	assert.Nil(t, m.ExtractText("python docker"))

	m, err = NewMatcher(&domain.Taxonomy{})
	require.NoError(t, err)
	assert.Nil(t, m.ExtractText("python docker"))
}

func TestMatchLabels(t *testing.T) {
	m := newTestMatcher(t)

	tests := []struct {
		name   string
		labels []string
		want   []string
	}{
		{"exact label", []string{"Python"}, []string{"Python"}},
		{"label with accent and case", []string{"PYTHON"}, []string{"Python"}},
		{"phrase label", []string{"Programmation en Python"}, []string{"Python"}},
		{"synonym label", []string{"k8s"}, []string{"Kubernetes"}},
		{"duplicate labels count once", []string{"Docker", "docker"}, []string{"Docker"}},
		{"unknown label", []string{"Relation client"}, []string{}},
		{"no labels", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.MatchLabels(tt.labels)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			assert.Equal(t, tt.want, Names(got))
		})
	}
}

func TestMerge(t *testing.T) {
	fromText := []Match{
		{Name: "Python", Category: domain.CategoryLanguages},
		{Name: "Docker", Category: domain.CategoryCloudDevops},
	}
	fromLabels := []Match{
		{Name: "Docker", Category: domain.CategoryCloudDevops},
		{Name: "Kubernetes", Category: domain.CategoryCloudDevops},
	}

	assert.Equal(t, []string{"Docker", "Kubernetes", "Python"}, Names(Merge(fromText, fromLabels)))
	assert.Empty(t, Merge())
}
