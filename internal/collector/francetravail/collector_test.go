package francetravail

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/project-tktt/go-techwatch/internal/domain"
)

// fakeAPI serves a token endpoint plus a canned sequence of search windows.
type fakeAPI struct {
	t      *testing.T
	pages  []int // postings per successive range request
	calls  int
	ranges []string
	romes  []string
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/connexion/oauth2/access_token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"test-token","token_type":"Bearer","expires_in":1499}`)
	})
	mux.HandleFunc("/offres/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(f.t, "Bearer test-token", r.Header.Get("Authorization"))
		f.ranges = append(f.ranges, r.URL.Query().Get("range"))
		f.romes = append(f.romes, r.URL.Query().Get("codeROME"))

		if f.calls >= len(f.pages) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		n := f.pages[f.calls]
		f.calls++

		results := make([]map[string]any, n)
		for i := range results {
			results[i] = map[string]any{
				"id":       fmt.Sprintf("offer-%d-%d", f.calls, i),
				"intitule": "Développeur",
				"origineOffre": map[string]any{
					"urlOrigine": "https://example.test/offre",
				},
			}
		}
		if n < pageSize {
			w.WriteHeader(http.StatusPartialContent)
		}
		json.NewEncoder(w).Encode(map[string]any{"resultats": results})
	})
	return mux
}

func newTestCollector(t *testing.T, api *fakeAPI, maxPostings int) (*Collector, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)

	c, err := NewCollector(context.Background(), Config{
		ClientID:     "id",
		ClientSecret: "secret",
		TokenURL:     srv.URL + "/connexion/oauth2/access_token",
		APIBaseURL:   srv.URL,
		RomeCode:     "M1805",
		RequestDelay: 1, // nanosecond, keep paging fast under test
		MaxPostings:  maxPostings,
	})
	require.NoError(t, err)
	return c, srv
}

func TestCollectPaginates(t *testing.T) {
	api := &fakeAPI{t: t, pages: []int{pageSize, 40}}
	c, _ := newTestCollector(t, api, 0)

	postings, err := c.Collect(context.Background())
	require.NoError(t, err)

	assert.Len(t, postings, pageSize+40)
	assert.Equal(t, []string{"0-149", "150-299"}, api.ranges)
	assert.Equal(t, "M1805", api.romes[0])

	first := postings[0]
	assert.Equal(t, "offer-1-0", first.SourceID)
	assert.Equal(t, string(domain.SourceFranceTravail), first.Source)
	assert.Equal(t, "https://example.test/offre", first.URL)
	assert.False(t, first.CollectedAt.IsZero())
	assert.Equal(t, "Développeur", first.RawData["intitule"])
}

func TestCollectStopsAtEmptyWindow(t *testing.T) {
	api := &fakeAPI{t: t, pages: nil} // first window already 204
	c, _ := newTestCollector(t, api, 0)

	postings, err := c.Collect(context.Background())
	require.NoError(t, err)
	assert.Empty(t, postings)
	assert.Equal(t, []string{"0-149"}, api.ranges)
}

func TestCollectRespectsMaxPostings(t *testing.T) {
	api := &fakeAPI{t: t, pages: []int{pageSize, pageSize, pageSize}}
	c, _ := newTestCollector(t, api, 300)

	postings, err := c.Collect(context.Background())
	require.NoError(t, err)

	assert.Len(t, postings, 300)
	assert.Equal(t, []string{"0-149", "150-299"}, api.ranges)
}

func TestCollectWithCallbackStreamsPages(t *testing.T) {
	api := &fakeAPI{t: t, pages: []int{pageSize, 10}}
	c, _ := newTestCollector(t, api, 0)

	var pages []int
	err := c.CollectWithCallback(context.Background(), func(batch []*domain.RawPosting) error {
		pages = append(pages, len(batch))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{pageSize, 10}, pages)
}

func TestCollectAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/token" {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token":"t","token_type":"Bearer"}`)
			return
		}
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, err := NewCollector(context.Background(), Config{
		ClientID:     "id",
		ClientSecret: "secret",
		TokenURL:     srv.URL + "/token",
		APIBaseURL:   srv.URL,
	})
	require.NoError(t, err)

	_, err = c.Collect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestNewCollectorRequiresCredentials(t *testing.T) {
	_, err := NewCollector(context.Background(), Config{})
	assert.Error(t, err)

	_, err = NewCollector(context.Background(), Config{ClientID: "id"})
	assert.Error(t, err)
}

func TestNewCollectorDefaults(t *testing.T) {
	c, err := NewCollector(context.Background(), Config{ClientID: "id", ClientSecret: "s"})
	require.NoError(t, err)

	assert.Equal(t, "M1805", c.config.RomeCode)
	assert.Equal(t, maxOffset, c.config.MaxPostings)
	assert.Positive(t, c.config.RequestDelay)
	assert.Equal(t, domain.SourceFranceTravail, c.Source())
}
