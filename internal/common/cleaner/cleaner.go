// Package cleaner strips HTML from posting text before analysis. Posting
// descriptions arrive from the source API as plain text or HTML fragments;
// everything that reaches the matcher must be text only.
package cleaner

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Cleaner sanitizes posting text using Bluemonday
type Cleaner struct {
	strict *bluemonday.Policy
}

// NewCleaner creates a cleaner that strips all HTML
func NewCleaner() *Cleaner {
	return &Cleaner{strict: bluemonday.StrictPolicy()}
}

// CleanToText removes all HTML and returns trimmed plain text
func (c *Cleaner) CleanToText(html string) string {
	text := c.strict.Sanitize(html)
	text = strings.ReplaceAll(text, "\n\n\n", "\n\n")
	return strings.TrimSpace(text)
}

// CleanRawData sanitizes every string value of a raw posting payload,
// recursing into nested objects like entreprise and lieuTravail.
func (c *Cleaner) CleanRawData(data map[string]any) map[string]any {
	result := make(map[string]any, len(data))
	for k, v := range data {
		switch val := v.(type) {
		case string:
			result[k] = c.strict.Sanitize(val)
		case map[string]any:
			result[k] = c.CleanRawData(val)
		default:
			result[k] = v
		}
	}
	return result
}
