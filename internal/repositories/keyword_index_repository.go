package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/meilisearch/meilisearch-go"

	"placehub/internal/models/index_models"
)

const upsertBatchSize = 1000

// KeywordFilter is the conjunctive structured filter applied on top of
// the free-text query.
type KeywordFilter struct {
	City       string
	Province   string
	District   string
	Ward       string
	Categories []string
	MinRating  *float64
}

type KeywordSearchResult struct {
	Hits  []index_models.SearchDocument
	Total int64
}

type KeywordIndexRepository interface {
	EnsureIndex(ctx context.Context) error
	UpsertMany(ctx context.Context, docs []index_models.SearchDocument) error
	Delete(ctx context.Context, documentID string) error
	Search(ctx context.Context, query string, filter KeywordFilter, sort []string, limit, offset int) (KeywordSearchResult, error)
	Facets(ctx context.Context, query string, fields []string) (map[string]map[string]int, error)
}

type meiliIndexRepository struct {
	client   meilisearch.ServiceManager
	indexUID string
}

func NewKeywordIndexRepository(client meilisearch.ServiceManager, indexUID string) KeywordIndexRepository {
	return &meiliIndexRepository{
		client:   client,
		indexUID: indexUID,
	}
}

func (r *meiliIndexRepository) index() meilisearch.IndexManager {
	return r.client.Index(r.indexUID)
}

// EnsureIndex creates the index when missing and pushes the full
// settings block. Settings updates are idempotent, so the block is
// applied on every startup.
func (r *meiliIndexRepository) EnsureIndex(ctx context.Context) error {
	if _, err := r.client.GetIndex(r.indexUID); err != nil {
		if _, err := r.client.CreateIndex(&meilisearch.IndexConfig{
			Uid:        r.indexUID,
			PrimaryKey: "id",
		}); err != nil {
			return fmt.Errorf("create index %s: %w", r.indexUID, err)
		}
		log.Printf("Created keyword index %s", r.indexUID)
	}

	_, err := r.index().UpdateSettings(&meilisearch.Settings{
		// Priority order: what a place does ranks above where it is.
		SearchableAttributes: []string{
			"serviceNames",
			"name",
			"serviceGroups",
			"categoryNames",
			"tags",
			"description",
			"address",
			"city",
			"provinceName",
			"districtName",
			"wardName",
		},
		FilterableAttributes: []string{
			"categories",
			"city",
			"province",
			"district",
			"ward",
			"provinceName",
			"districtName",
			"wardName",
			"rating",
		},
		SortableAttributes: []string{
			"rating",
			"popularity",
		},
		RankingRules: []string{
			"exactness",
			"words",
			"attribute",
			"proximity",
			"typo",
			"sort",
		},
		TypoTolerance: &meilisearch.TypoTolerance{
			Enabled: true,
			MinWordSizeForTypos: meilisearch.MinWordSizeForTypos{
				OneTypo:  4,
				TwoTypos: 8,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("update index settings %s: %w", r.indexUID, err)
	}
	return nil
}

func (r *meiliIndexRepository) UpsertMany(ctx context.Context, docs []index_models.SearchDocument) error {
	if len(docs) == 0 {
		return nil
	}

	if _, err := r.index().AddDocumentsInBatches(docs, upsertBatchSize, "id"); err != nil {
		return fmt.Errorf("add documents to %s: %w", r.indexUID, err)
	}
	return nil
}

func (r *meiliIndexRepository) Delete(ctx context.Context, documentID string) error {
	if _, err := r.index().DeleteDocument(documentID); err != nil {
		return fmt.Errorf("delete document %s from %s: %w", documentID, r.indexUID, err)
	}
	return nil
}

func (r *meiliIndexRepository) Search(ctx context.Context, query string, filter KeywordFilter, sort []string, limit, offset int) (KeywordSearchResult, error) {
	req := &meilisearch.SearchRequest{
		Limit:  int64(limit),
		Offset: int64(offset),
	}
	if expr := buildKeywordFilter(filter); expr != "" {
		req.Filter = expr
	}
	if len(sort) > 0 {
		req.Sort = sort
	}

	resp, err := r.index().Search(query, req)
	if err != nil {
		return KeywordSearchResult{}, err
	}

	hits, err := decodeHits(resp.Hits)
	if err != nil {
		return KeywordSearchResult{}, err
	}
	return KeywordSearchResult{
		Hits:  hits,
		Total: resp.EstimatedTotalHits,
	}, nil
}

// Facets computes the facet distribution for a free-text query without
// any structured filters: the counts answer "what other values exist
// for this query", not "what is left after my own filter selection".
func (r *meiliIndexRepository) Facets(ctx context.Context, query string, fields []string) (map[string]map[string]int, error) {
	resp, err := r.index().Search(query, &meilisearch.SearchRequest{
		Limit:  1,
		Facets: fields,
	})
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(resp.FacetDistribution)
	if err != nil {
		return nil, err
	}
	dist := make(map[string]map[string]int)
	if err := json.Unmarshal(raw, &dist); err != nil {
		return nil, err
	}
	return dist, nil
}

// buildKeywordFilter renders the filter into Meilisearch filter-expression
// syntax: equality on single-valued fields, IN on the category list, >=
// on rating, all ANDed.
func buildKeywordFilter(f KeywordFilter) string {
	var clauses []string

	appendEq := func(field, value string) {
		if value != "" {
			clauses = append(clauses, fmt.Sprintf("%s = %q", field, value))
		}
	}
	appendEq("city", f.City)
	appendEq("province", f.Province)
	appendEq("district", f.District)
	appendEq("ward", f.Ward)

	if len(f.Categories) > 0 {
		quoted := make([]string, len(f.Categories))
		for i, c := range f.Categories {
			quoted[i] = fmt.Sprintf("%q", c)
		}
		clauses = append(clauses, fmt.Sprintf("categories IN [%s]", strings.Join(quoted, ", ")))
	}
	if f.MinRating != nil {
		clauses = append(clauses, fmt.Sprintf("rating >= %g", *f.MinRating))
	}

	return strings.Join(clauses, " AND ")
}

func decodeHits(hits []interface{}) ([]index_models.SearchDocument, error) {
	raw, err := json.Marshal(hits)
	if err != nil {
		return nil, err
	}
	var docs []index_models.SearchDocument
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}
