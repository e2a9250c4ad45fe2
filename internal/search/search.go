package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/lucaria/internal/models"
)

// Index is the product full-text index. The database stays authoritative:
// searches return ids that callers resolve against it.
type Index struct {
	es   *elasticsearch.Client
	name string
}

type productDoc struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
}

const indexMapping = `{
  "mappings": {
    "properties": {
      "id":          {"type": "long"},
      "name":        {"type": "text"},
      "description": {"type": "text"},
      "category":    {"type": "keyword"},
      "price":       {"type": "double"}
    }
  }
}`

func (i *Index) ensureIndex(ctx context.Context) error {
	res, err := i.es.Indices.Exists([]string{i.name}, i.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("es index exists: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = i.es.Indices.Create(i.name,
		i.es.Indices.Create.WithContext(ctx),
		i.es.Indices.Create.WithBody(bytes.NewReader([]byte(indexMapping))),
	)
	if err != nil {
		return fmt.Errorf("es create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("es create index: %s: %s", res.Status(), body)
	}
	return nil
}

func (i *Index) IndexProduct(ctx context.Context, p models.Product) error {
	price, _ := p.Price.Float64()
	doc := productDoc{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       price,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(doc); err != nil {
		return fmt.Errorf("encode product doc: %w", err)
	}

	res, err := i.es.Index(i.name, &buf,
		i.es.Index.WithContext(ctx),
		i.es.Index.WithDocumentID(strconv.FormatUint(uint64(p.ID), 10)),
	)
	if err != nil {
		return fmt.Errorf("es index product %d: %w", p.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("es index product %d: %s", p.ID, res.Status())
	}
	return nil
}

// SearchIDs runs a fuzzy match over name and description and returns the
// matching product ids in relevance order.
func (i *Index) SearchIDs(ctx context.Context, query string, from, size int) (int64, []uint, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^2", "description"},
				"fuzziness": "AUTO",
			},
		},
		"_source": []string{"id"},
		"from":    from,
		"size":    size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("encode search: %w", err)
	}

	res, err := i.es.Search(
		i.es.Search.WithContext(ctx),
		i.es.Search.WithIndex(i.name),
		i.es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("es search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("es search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source productDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("decode search: %w", err)
	}

	ids := make([]uint, len(r.Hits.Hits))
	for n, hit := range r.Hits.Hits {
		ids[n] = hit.Source.ID
	}
	return r.Hits.Total.Value, ids, nil
}

// Reindex pushes every product into the index and returns how many were sent.
func (i *Index) Reindex(ctx context.Context, products []models.Product) (int, error) {
	for n, p := range products {
		if err := i.IndexProduct(ctx, p); err != nil {
			return n, err
		}
	}
	return len(products), nil
}
