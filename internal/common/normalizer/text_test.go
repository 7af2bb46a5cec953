package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"lowercases", "Python Developer", "python developer"},
		{"folds accents", "Recherche développeur expérimenté", "recherche developpeur experimente"},
		{"replaces separators", "Python/Java, Go; (Rust)", "python java go rust"},
		{"collapses whitespace", "python   \t\n  docker", "python docker"},
		{"punctuation only", "(;,/)", ""},
		{"keeps tech token chars", "C++ et C# avec React.js et .NET", "c++ et c# avec react.js et .net"},
		{"keeps hyphen joins", "full-stack t-sql", "full-stack t-sql"},
		{"non latin passes through", "日本語 Python", "日本語 python"},
		{"html fragments become words", "<p>Python</p>", "p python p"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	in := "Développeur Python / Go (H/F) CDI, Nancy"
	assert.Equal(t, Normalize(in), Normalize(in))
}

func TestFold(t *testing.T) {
	assert.Equal(t, "elodie", Fold("Élodie"))
	assert.Equal(t, "c++", Fold("C++"))
	assert.Equal(t, "francais", Fold("Français"))
}
