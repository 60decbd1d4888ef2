// internal/dataaccess/search.go
package dataaccess

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	apperrors "support-chatbot/internal/common/errors"
	"support-chatbot/internal/dataaccess/queries"
	"support-chatbot/internal/models"
)

// productDocument is the indexed shape of a product. Stock is not indexed;
// it changes with every sale and is read live from the database.
type productDocument struct {
	ProductID   int64   `json:"product_id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Brand       string  `json:"brand"`
	Department  string  `json:"department"`
	RetailPrice float64 `json:"retail_price"`
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source struct {
				ProductID int64 `json:"product_id"`
			} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// SearchIndex answers product search from an Elasticsearch index.
type SearchIndex struct {
	client *elasticsearch.Client
	index  string
}

func NewSearchIndex(client *elasticsearch.Client, index string) *SearchIndex {
	return &SearchIndex{client: client, index: index}
}

// SearchProductIDs returns the ids of up to MaxSearchResults matching
// products, lowest id first.
func (s *SearchIndex) SearchProductIDs(ctx context.Context, text string) ([]int64, error) {
	body, err := json.Marshal(buildProductSearchQuery(text))
	if err != nil {
		return nil, err
	}

	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  bytes.NewReader(body),
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, apperrors.NewSearchQueryFailedError(s.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, apperrors.NewSearchQueryFailedError(s.index, fmt.Errorf("status %s", res.Status()))
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	ids := make([]int64, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		ids = append(ids, hit.Source.ProductID)
	}
	if len(ids) > queries.MaxSearchResults {
		ids = ids[:queries.MaxSearchResults]
	}
	return ids, nil
}

// IndexProducts writes products into the index, one document per product id.
func (s *SearchIndex) IndexProducts(ctx context.Context, products []models.ProductView) (int, error) {
	indexed := 0
	for _, p := range products {
		body, err := json.Marshal(documentFromView(p))
		if err != nil {
			return indexed, err
		}
		req := esapi.IndexRequest{
			Index:      s.index,
			DocumentID: strconv.FormatInt(p.ProductID, 10),
			Body:       bytes.NewReader(body),
		}
		res, err := req.Do(ctx, s.client)
		if err != nil {
			return indexed, fmt.Errorf("index product %d: %w", p.ProductID, err)
		}
		isErr := res.IsError()
		status := res.Status()
		res.Body.Close()
		if isErr {
			return indexed, fmt.Errorf("index product %d: %s", p.ProductID, status)
		}
		indexed++
	}
	return indexed, nil
}

// buildProductSearchQuery matches text as a case-insensitive substring of
// name, category or brand.
func buildProductSearchQuery(text string) map[string]interface{} {
	pattern := "*" + escapeWildcard(strings.TrimSpace(text)) + "*"

	should := make([]map[string]interface{}, 0, 3)
	for _, field := range []string{"name", "category", "brand"} {
		should = append(should, map[string]interface{}{
			"wildcard": map[string]interface{}{
				field: map[string]interface{}{
					"value":            pattern,
					"case_insensitive": true,
				},
			},
		})
	}

	return map[string]interface{}{
		"size":    queries.MaxSearchResults,
		"_source": []string{"product_id"},
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"should":               should,
				"minimum_should_match": 1,
			},
		},
		"sort": []interface{}{map[string]interface{}{"product_id": "asc"}},
	}
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

func escapeWildcard(s string) string {
	return wildcardEscaper.Replace(s)
}

func documentFromView(p models.ProductView) productDocument {
	return productDocument{
		ProductID:   p.ProductID,
		Name:        p.Name,
		Category:    p.Category,
		Brand:       p.Brand,
		Department:  p.Department,
		RetailPrice: p.Price,
	}
}
