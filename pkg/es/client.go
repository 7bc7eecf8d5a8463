// Package es provides the Elasticsearch-backed segment store: index
// management, segment writes at ingestion time, and the nearest-neighbour
// query the retrieval pipeline consumes.
package es

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"corpus-qa-go/internal/config"
	"corpus-qa-go/internal/model"
	"corpus-qa-go/pkg/log"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// ESClient is the shared Elasticsearch client instance.
var ESClient *elasticsearch.Client

// InitES connects to Elasticsearch and ensures the segment index exists.
func InitES(esCfg config.ElasticsearchConfig, dims int) error {
	cfg := elasticsearch.Config{
		Addresses: []string{esCfg.Addresses},
		Username:  esCfg.Username,
		Password:  esCfg.Password,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}
	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return err
	}
	ESClient = client
	return createIndexIfNotExists(esCfg.IndexName, dims)
}

// createIndexIfNotExists creates the segment index when missing.
func createIndexIfNotExists(indexName string, dims int) error {
	res, err := ESClient.Indices.Exists([]string{indexName})
	if err != nil {
		log.Errorf("failed to check index existence: %v", err)
		return err
	}
	if !res.IsError() && res.StatusCode == http.StatusOK {
		log.Infof("index '%s' already exists", indexName)
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		log.Errorf("unexpected status %d while checking index '%s'", res.StatusCode, indexName)
		return fmt.Errorf("unexpected status while checking index: %d", res.StatusCode)
	}

	mapping := fmt.Sprintf(`{
		"mappings": {
			"properties": {
				"segment_id": { "type": "keyword" },
				"doc_hash": { "type": "keyword" },
				"ordinal": { "type": "integer" },
				"heading": { "type": "text" },
				"text_content": { "type": "text" },
				"start_page": { "type": "integer" },
				"end_page": { "type": "integer" },
				"vector": {
					"type": "dense_vector",
					"dims": %d,
					"index": true,
					"similarity": "cosine"
				},
				"model_version": { "type": "keyword" }
			}
		}
	}`, dims)

	res, err = ESClient.Indices.Create(
		indexName,
		ESClient.Indices.Create.WithBody(strings.NewReader(mapping)),
	)
	if err != nil {
		log.Errorf("failed to create index '%s': %v", indexName, err)
		return err
	}
	if res.IsError() {
		log.Errorf("elasticsearch rejected index creation for '%s': %s", indexName, res.String())
		return errors.New("elasticsearch rejected index creation")
	}

	log.Infof("index '%s' created", indexName)
	return nil
}

// IndexSegment writes one segment. SegmentID doubles as the ES document
// ID so reprocessing overwrites instead of duplicating.
func IndexSegment(ctx context.Context, indexName string, seg model.EsSegment) error {
	segBytes, err := json.Marshal(seg)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      indexName,
		DocumentID: seg.SegmentID,
		Body:       bytes.NewReader(segBytes),
		Refresh:    "true",
	}

	res, err := req.Do(ctx, ESClient)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Errorf("failed to index segment: %s", res.String())
		return errors.New("failed to index segment")
	}
	return nil
}

// DeleteByDocHash removes every segment of one document from the index.
func DeleteByDocHash(ctx context.Context, indexName, docHash string) error {
	query := fmt.Sprintf(`{"query":{"term":{"doc_hash":"%s"}}}`, docHash)
	res, err := ESClient.DeleteByQuery(
		[]string{indexName},
		strings.NewReader(query),
		ESClient.DeleteByQuery.WithContext(ctx),
		ESClient.DeleteByQuery.WithRefresh(true),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("delete by doc_hash returned an error: %s", res.String())
	}
	return nil
}

// SegmentStore exposes the nearest-neighbour query over the segment
// index. It satisfies the retrieval pipeline's SegmentSearcher contract.
type SegmentStore struct {
	client    *elasticsearch.Client
	indexName string
}

// NewSegmentStore creates a SegmentStore over the shared client.
func NewSegmentStore(client *elasticsearch.Client, indexName string) *SegmentStore {
	return &SegmentStore{client: client, indexName: indexName}
}

// Nearest runs a kNN search above the cosine threshold, optionally
// restricted to a document set, ordered by similarity descending.
// Elasticsearch reports cosine dense_vector scores as (1+cos)/2; both
// the threshold and the returned similarities are converted at this
// boundary so the rest of the pipeline only ever sees raw cosine.
func (s *SegmentStore) Nearest(ctx context.Context, vector []float32, threshold float64, limit int, docFilter []string) ([]model.SegmentHit, error) {
	knn := map[string]interface{}{
		"field":          "vector",
		"query_vector":   vector,
		"k":              limit,
		"num_candidates": limit * 10,
	}
	if len(docFilter) > 0 {
		knn["filter"] = map[string]interface{}{
			"terms": map[string]interface{}{"doc_hash": docFilter},
		}
	}

	esQuery := map[string]interface{}{
		"knn":       knn,
		"min_score": (1 + threshold) / 2,
		"size":      limit,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(esQuery); err != nil {
		return nil, fmt.Errorf("failed to encode knn query: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.indexName),
		s.client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch returned an error: %s", res.String())
	}

	var esResponse struct {
		Hits struct {
			Hits []struct {
				Source model.EsSegment `json:"_source"`
				Score  float64         `json:"_score"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&esResponse); err != nil {
		return nil, fmt.Errorf("failed to decode es response: %w", err)
	}

	hits := make([]model.SegmentHit, 0, len(esResponse.Hits.Hits))
	for _, h := range esResponse.Hits.Hits {
		hits = append(hits, model.SegmentHit{
			SegmentID:  h.Source.SegmentID,
			DocHash:    h.Source.DocHash,
			Ordinal:    h.Source.Ordinal,
			Heading:    h.Source.Heading,
			Text:       h.Source.TextContent,
			Similarity: 2*h.Score - 1,
		})
	}
	return hits, nil
}
