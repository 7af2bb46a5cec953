package domain

import "time"

// Posting represents a normalized job posting from any source
type Posting struct {
	SourceID      string    `json:"source_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	CompanyName   string    `json:"company_name"`
	City          string    `json:"city"`
	PostalCode    string    `json:"postal_code"`
	Department    string    `json:"department"` // First two digits of the postal code
	ContractType  string    `json:"contract_type"`
	ContractLabel string    `json:"contract_label"`
	Experience    string    `json:"experience"`
	RomeCode      string    `json:"rome_code"`
	RomeLabel     string    `json:"rome_label"`
	Alternance    bool      `json:"alternance"`
	Source        string    `json:"source"`
	SourceURL     string    `json:"source_url"`
	CreatedAt     time.Time `json:"created_at"` // When the posting was published on the source
	UpdatedAt     time.Time `json:"updated_at"`
	CollectedAt   time.Time `json:"collected_at"`

	// Analysis output
	Skills      []string  `json:"skills"` // Canonical skill names, set semantics
	Processed   bool      `json:"processed"`
	ProcessedAt time.Time `json:"processed_at,omitempty"`
}

// HasSkills reports whether the analysis attached at least one skill.
func (p *Posting) HasSkills() bool {
	return len(p.Skills) > 0
}

// RawPosting represents raw extracted data before validation and analysis
type RawPosting struct {
	SourceID    string         `json:"source_id"`
	Source      string         `json:"source"`
	URL         string         `json:"url"`
	RawData     map[string]any `json:"raw_data"`
	CollectedAt time.Time      `json:"collected_at"`
}

// PostingSource identifies a job posting source
type PostingSource string

const (
	SourceFranceTravail PostingSource = "france_travail"
)
