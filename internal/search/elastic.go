package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"

	"pustakalu_backend/internal/models"
)

const booksIndex = "books"

// Elasticsearch-backed catalog search. The cluster is optional: every entry
// point takes the client and callers fall back to Mongo regex queries when it
// is nil or a query fails.

type bookDoc struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	TitleTelugu  string  `json:"titleTelugu,omitempty"`
	Author       string  `json:"author"`
	AuthorTelugu string  `json:"authorTelugu,omitempty"`
	Publisher    string  `json:"publisher,omitempty"`
	Category     string  `json:"category,omitempty"`
	Language     string  `json:"language,omitempty"`
	Price        float64 `json:"price"`
	InStock      bool    `json:"inStock"`
	IsActive     bool    `json:"isActive"`
}

// IndexBook upserts one book document. Best effort: a failed index never
// fails the admin write that triggered it.
func IndexBook(client *elasticsearch.Client, book *models.Book) {
	if client == nil {
		return
	}

	doc := bookDoc{
		ID:           book.ID.Hex(),
		Title:        book.Title,
		TitleTelugu:  book.TitleTelugu,
		Author:       book.Author,
		AuthorTelugu: book.AuthorTelugu,
		Publisher:    book.Publisher,
		Category:     book.Category,
		Language:     book.Language,
		Price:        book.Price,
		InStock:      book.InStock,
		IsActive:     book.IsActive,
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return
	}

	res, err := client.Index(booksIndex, bytes.NewReader(body),
		client.Index.WithDocumentID(doc.ID),
		client.Index.WithContext(context.Background()),
	)
	if err != nil {
		log.Printf("⚠️ elastic index failed for book %s: %v", doc.ID, err)
		return
	}
	defer res.Body.Close()
	if res.IsError() {
		log.Printf("⚠️ elastic index error for book %s: %s", doc.ID, res.String())
	}
}

// Books runs a multi-field match query and returns the matching book ids in
// relevance order.
func Books(ctx context.Context, client *elasticsearch.Client, keyword string, limit int) ([]string, error) {
	if client == nil {
		return nil, fmt.Errorf("elasticsearch not configured")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := map[string]interface{}{
		"size": limit,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": map[string]interface{}{
					"multi_match": map[string]interface{}{
						"query":     keyword,
						"fields":    []string{"title^3", "titleTelugu^3", "author^2", "authorTelugu^2", "publisher", "category"},
						"fuzziness": "AUTO",
					},
				},
				"filter": map[string]interface{}{
					"term": map[string]interface{}{"isActive": true},
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return nil, err
	}

	res, err := client.Search(
		client.Search.WithContext(ctx),
		client.Search.WithIndex(booksIndex),
		client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elastic search error: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		if strings.TrimSpace(h.ID) != "" {
			ids = append(ids, h.ID)
		}
	}
	return ids, nil
}
