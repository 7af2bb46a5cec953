package indexer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/project-tktt/go-techwatch/internal/domain"
)

// ElasticsearchIndexer indexes postings to Elasticsearch for search
type ElasticsearchIndexer struct {
	client    *elasticsearch.Client
	indexName string
}

// NewElasticsearchIndexer creates a new Elasticsearch indexer
func NewElasticsearchIndexer(addresses []string, indexName string) (*ElasticsearchIndexer, error) {
	cfg := elasticsearch.Config{
		Addresses: addresses,
	}

	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create es client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("es info: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("es error: %s", res.Status())
	}

	return &ElasticsearchIndexer{
		client:    client,
		indexName: indexName,
	}, nil
}

// Index indexes a single posting
func (i *ElasticsearchIndexer) Index(ctx context.Context, posting *domain.Posting) error {
	data, err := json.Marshal(posting)
	if err != nil {
		return fmt.Errorf("marshal posting: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      i.indexName,
		DocumentID: posting.SourceID,
		Body:       bytes.NewReader(data),
		Refresh:    "false",
	}

	res, err := req.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("index request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index error: %s", res.Status())
	}

	return nil
}

// BulkIndex indexes multiple postings at once
func (i *ElasticsearchIndexer) BulkIndex(ctx context.Context, postings []*domain.Posting) error {
	if len(postings) == 0 {
		return nil
	}

	var buf bytes.Buffer

	for _, posting := range postings {
		meta := map[string]any{
			"index": map[string]any{
				"_index": i.indexName,
				"_id":    posting.SourceID,
			},
		}
		metaBytes, _ := json.Marshal(meta)
		buf.Write(metaBytes)
		buf.WriteByte('\n')

		docBytes, err := json.Marshal(posting)
		if err != nil {
			log.Printf("marshal posting %s: %v", posting.SourceID, err)
			continue
		}
		buf.Write(docBytes)
		buf.WriteByte('\n')
	}

	res, err := i.client.Bulk(bytes.NewReader(buf.Bytes()), i.client.Bulk.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("bulk request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("bulk error: %s", res.Status())
	}

	var bulkRes struct {
		Errors bool `json:"errors"`
		Items  []struct {
			Index struct {
				ID     string `json:"_id"`
				Status int    `json:"status"`
				Error  struct {
					Type   string `json:"type"`
					Reason string `json:"reason"`
				} `json:"error"`
			} `json:"index"`
		} `json:"items"`
	}

	if err := json.NewDecoder(res.Body).Decode(&bulkRes); err != nil {
		return fmt.Errorf("parse bulk response: %w", err)
	}

	if bulkRes.Errors {
		for _, item := range bulkRes.Items {
			if item.Index.Status >= 400 {
				log.Printf("bulk index error for %s: %s - %s",
					item.Index.ID, item.Index.Error.Type, item.Index.Error.Reason)
			}
		}
	}

	return nil
}

// EnsureIndex creates the index with French-friendly analysis settings
func (i *ElasticsearchIndexer) EnsureIndex(ctx context.Context) error {
	res, err := i.client.Indices.Exists([]string{i.indexName})
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	res.Body.Close()

	if res.StatusCode == 200 {
		return nil // Index already exists
	}

	mapping := `{
		"settings": {
			"analysis": {
				"analyzer": {
					"french_folding": {
						"type": "custom",
						"tokenizer": "standard",
						"filter": ["lowercase", "asciifolding", "french_stem"]
					}
				},
				"filter": {
					"french_stem": {"type": "stemmer", "language": "light_french"}
				}
			}
		},
		"mappings": {
			"properties": {
				"source_id": {"type": "keyword"},
				"title": {
					"type": "text",
					"analyzer": "french_folding",
					"fields": {"keyword": {"type": "keyword"}}
				},
				"description": {"type": "text", "analyzer": "french_folding"},
				"company_name": {"type": "text", "analyzer": "french_folding"},
				"city": {"type": "keyword"},
				"postal_code": {"type": "keyword"},
				"department": {"type": "keyword"},
				"contract_type": {"type": "keyword"},
				"contract_label": {"type": "keyword"},
				"experience": {"type": "keyword"},
				"rome_code": {"type": "keyword"},
				"alternance": {"type": "boolean"},
				"skills": {"type": "keyword"},
				"processed": {"type": "boolean"},
				"source": {"type": "keyword"},
				"source_url": {"type": "keyword"},
				"created_at": {"type": "date"},
				"collected_at": {"type": "date"}
			}
		}
	}`

	res, err = i.client.Indices.Create(
		i.indexName,
		i.client.Indices.Create.WithBody(bytes.NewReader([]byte(mapping))),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("create index error: %s", res.Status())
	}

	return nil
}
