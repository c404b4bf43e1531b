package indexer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/project-tktt/pl-crawler/internal/domain"
)

// ElasticsearchIndexer indexes players to Elasticsearch
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

	// Check connection
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

// BulkIndex indexes multiple players at once
func (i *ElasticsearchIndexer) BulkIndex(ctx context.Context, players []*domain.Player) error {
	if len(players) == 0 {
		return nil
	}

	body, err := i.bulkBody(players)
	if err != nil {
		return err
	}

	res, err := i.client.Bulk(bytes.NewReader(body), i.client.Bulk.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("bulk request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("bulk error: %s", res.Status())
	}

	// Parse response to check for individual errors
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
				log.Printf("[Elasticsearch] Bulk index error for %s: %s - %s",
					item.Index.ID, item.Index.Error.Type, item.Index.Error.Reason)
			}
		}
	}

	return nil
}

// bulkBody builds the NDJSON action/document pairs for the bulk API
func (i *ElasticsearchIndexer) bulkBody(players []*domain.Player) ([]byte, error) {
	var buf bytes.Buffer
	for _, player := range players {
		meta := map[string]any{
			"index": map[string]any{
				"_index": i.indexName,
				"_id":    player.ID,
			},
		}
		metaBytes, err := json.Marshal(meta)
		if err != nil {
			return nil, fmt.Errorf("marshal bulk meta: %w", err)
		}

		docBytes, err := json.Marshal(player)
		if err != nil {
			log.Printf("[Elasticsearch] Marshal player %s: %v", player.ID, err)
			continue
		}

		buf.Write(metaBytes)
		buf.WriteByte('\n')
		buf.Write(docBytes)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// EnsureIndex creates the index with keyword mappings for aggregation if it doesn't exist
func (i *ElasticsearchIndexer) EnsureIndex(ctx context.Context) error {
	res, err := i.client.Indices.Exists([]string{i.indexName}, i.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	res.Body.Close()

	if res.StatusCode == 200 {
		return nil // Index already exists
	}

	res, err = i.client.Indices.Create(
		i.indexName,
		i.client.Indices.Create.WithBody(bytes.NewReader([]byte(playersMapping))),
		i.client.Indices.Create.WithContext(ctx),
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

// Names are searchable text with a keyword copy; country and club are keywords
// so the stats can be reproduced with terms aggregations.
const playersMapping = `{
	"settings": {
		"analysis": {
			"analyzer": {
				"name_analyzer": {
					"type": "custom",
					"tokenizer": "standard",
					"filter": ["lowercase", "asciifolding"]
				}
			}
		}
	},
	"mappings": {
		"properties": {
			"id": {"type": "keyword"},
			"name": {
				"type": "text",
				"analyzer": "name_analyzer",
				"fields": {"keyword": {"type": "keyword"}}
			},
			"position": {"type": "keyword"},
			"nationality": {"type": "keyword"},
			"club": {"type": "keyword"},
			"appearances": {"type": "integer"},
			"source": {"type": "keyword"},
			"source_url": {"type": "keyword"},
			"crawled_at": {"type": "date"}
		}
	}
}`
