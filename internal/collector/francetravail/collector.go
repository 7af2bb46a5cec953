package francetravail

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/project-tktt/go-techwatch/internal/collector"
	"github.com/project-tktt/go-techwatch/internal/domain"
)

const (
	// The search endpoint serves at most 150 postings per window and
	// refuses offsets beyond 3000
	pageSize  = 150
	maxOffset = 3000
)

// Config holds France Travail collector configuration
type Config struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	APIBaseURL   string
	Scopes       []string
	// ROME occupation code to collect, e.g. M1805
	RomeCode     string
	RequestDelay time.Duration
	MaxPostings  int
}

// Collector fetches job postings from the France Travail offres d'emploi API
type Collector struct {
	client *http.Client
	config Config
}

// NewCollector creates a France Travail collector. The HTTP client handles
// the OAuth2 client-credentials token exchange and refresh transparently.
func NewCollector(ctx context.Context, cfg Config) (*Collector, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("france travail: client id and secret are required")
	}
	if cfg.RomeCode == "" {
		cfg.RomeCode = "M1805"
	}
	if cfg.RequestDelay <= 0 {
		cfg.RequestDelay = time.Second
	}
	if cfg.MaxPostings <= 0 || cfg.MaxPostings > maxOffset {
		cfg.MaxPostings = maxOffset
	}

	creds := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		Scopes:       cfg.Scopes,
	}

	return &Collector{
		client: creds.Client(ctx),
		config: cfg,
	}, nil
}

// Source returns the source identifier
func (c *Collector) Source() domain.PostingSource {
	return domain.SourceFranceTravail
}

// Collect fetches all postings for the configured ROME code
func (c *Collector) Collect(ctx context.Context) ([]*domain.RawPosting, error) {
	var all []*domain.RawPosting
	err := c.CollectWithCallback(ctx, func(postings []*domain.RawPosting) error {
		all = append(all, postings...)
		return nil
	})
	return all, err
}

// CollectWithCallback fetches postings window by window and calls handler
// after each page
func (c *Collector) CollectWithCallback(ctx context.Context, handler collector.PageHandler) error {
	total := 0

	for offset := 0; offset < c.config.MaxPostings; offset += pageSize {
		end := offset + pageSize - 1
		if end >= c.config.MaxPostings {
			end = c.config.MaxPostings - 1
		}

		log.Printf("[FranceTravail] Fetching range %d-%d (ROME %s)", offset, end, c.config.RomeCode)

		postings, err := c.fetchRange(ctx, offset, end)
		if err != nil {
			return fmt.Errorf("fetch range %d-%d: %w", offset, end, err)
		}

		if len(postings) == 0 {
			log.Printf("[FranceTravail] No more postings at offset %d", offset)
			break
		}

		if err := handler(postings); err != nil {
			log.Printf("[FranceTravail] Handler error on range %d-%d: %v", offset, end, err)
		}

		total += len(postings)

		// A short window means the API ran out of results
		if len(postings) < pageSize {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.config.RequestDelay):
		}
	}

	log.Printf("[FranceTravail] Collected %d postings total", total)
	return nil
}

// fetchRange fetches one pagination window of the search endpoint
func (c *Collector) fetchRange(ctx context.Context, start, end int) ([]*domain.RawPosting, error) {
	params := url.Values{}
	params.Set("codeROME", c.config.RomeCode)
	params.Set("range", fmt.Sprintf("%d-%d", start, end))
	// Include partner postings alongside France Travail's own
	params.Set("origineOffre", "1")

	endpoint := fmt.Sprintf("%s/offres/search?%s", c.config.APIBaseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer res.Body.Close()

	// 204 = empty window, 206 = partial content (normal for paginated results)
	switch res.StatusCode {
	case http.StatusNoContent:
		return nil, nil
	case http.StatusOK, http.StatusPartialContent:
	default:
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("api status %d: %s", res.StatusCode, body)
	}

	var payload struct {
		Resultats []map[string]any `json:"resultats"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	now := time.Now()
	postings := make([]*domain.RawPosting, 0, len(payload.Resultats))
	for _, raw := range payload.Resultats {
		id, _ := raw["id"].(string)
		sourceURL := ""
		if origine, ok := raw["origineOffre"].(map[string]any); ok {
			sourceURL, _ = origine["urlOrigine"].(string)
		}

		postings = append(postings, &domain.RawPosting{
			SourceID:    id,
			Source:      string(domain.SourceFranceTravail),
			URL:         sourceURL,
			RawData:     raw,
			CollectedAt: now,
		})
	}

	return postings, nil
}
