package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"placehub/internal/models/index_models"
	"placehub/internal/models/request_models"
	"placehub/internal/repositories"
	"placehub/pkg/memcache"
	"placehub/pkg/utils"
)

func newSearchFixture(strategy string) (*fakeKeywordRepo, *fakeVectorRepo, *fakeEmbedder, *fakePlaceRepo, SearchServiceInterface) {
	keywords := newFakeKeywordRepo()
	vectors := newFakeVectorRepo()
	embedder := newFakeEmbedder()
	places := newFakePlaceRepo()
	svc := NewSearchService(keywords, vectors, embedder, places, memcache.NewFacetCache(), strategy)
	return keywords, vectors, embedder, places, svc
}

func keywordHits(n int) []index_models.SearchDocument {
	docs := make([]index_models.SearchDocument, 0, n)
	for i := 0; i < n; i++ {
		docs = append(docs, index_models.SearchDocument{
			ID:     fmt.Sprintf("place-%02d", i),
			Name:   fmt.Sprintf("Place %02d", i),
			Rating: float64(n-i) / 2,
		})
	}
	return docs
}

func TestSearchRejectsHalfGeoPair(t *testing.T) {
	_, _, _, _, svc := newSearchFixture(StrategyKeyword)

	lat := 10.7769
	_, _, _, err := svc.Search(request_models.SearchQuery{Query: "spa", Lat: &lat}, context.Background())

	assert.ErrorIs(t, err, utils.ErrInvalidGeoPair)
}

func TestSearchEmptyResultShortCircuits(t *testing.T) {
	keywords, _, _, places, svc := newSearchFixture(StrategyKeyword)
	keywords.searchHits = nil

	results, meta, _, err := svc.Search(request_models.SearchQuery{Query: "nothing"}, context.Background())

	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, int64(0), meta.Total)
	// No entity lookup may happen for an empty candidate set.
	assert.Equal(t, 0, places.findCalls)
}

func TestSearchPaginationMatchesFullSort(t *testing.T) {
	keywords, _, _, _, svc := newSearchFixture(StrategyKeyword)
	keywords.searchHits = keywordHits(12)
	keywords.searchTotal = 12

	full, _, _, err := svc.Search(request_models.SearchQuery{Query: "place", Limit: 50}, context.Background())
	require.NoError(t, err)
	require.Len(t, full, 12)

	page, _, _, err := svc.Search(request_models.SearchQuery{Query: "place", Limit: 5, Offset: 5}, context.Background())
	require.NoError(t, err)
	require.Len(t, page, 5)

	assert.Equal(t, full[5:10], page)
}

func TestSearchSortByDistanceRanksCloserFirst(t *testing.T) {
	keywords, _, _, _, svc := newSearchFixture(StrategyKeyword)
	keywords.searchHits = []index_models.SearchDocument{
		// B is roughly 8 km north of the user, A roughly 2 km; B has
		// better rating and relevance rank, distance must still win.
		{ID: "place-b", Name: "Far Massage", Rating: 5, Geo: &index_models.GeoPoint{Lat: 10.8489, Lng: 106.7009}},
		{ID: "place-a", Name: "Near Massage", Rating: 3, Geo: &index_models.GeoPoint{Lat: 10.7949, Lng: 106.7009}},
	}
	keywords.searchTotal = 2

	lat, lng := 10.7769, 106.7009
	results, _, _, err := svc.Search(request_models.SearchQuery{
		Query:  "massage",
		SortBy: request_models.SortDistance,
		Lat:    &lat,
		Lng:    &lng,
	}, context.Background())

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "place-a", results[0].ID)
	assert.Equal(t, "place-b", results[1].ID)
	require.NotNil(t, results[0].DistanceKm)
	assert.InDelta(t, 2.0, *results[0].DistanceKm, 0.2)
	require.NotNil(t, results[1].DistanceKm)
	assert.InDelta(t, 8.0, *results[1].DistanceKm, 0.3)
}

func TestSearchMissingDistanceSortsLast(t *testing.T) {
	keywords, _, _, _, svc := newSearchFixture(StrategyKeyword)
	keywords.searchHits = []index_models.SearchDocument{
		{ID: "no-geo", Name: "No Geo"},
		{ID: "with-geo", Name: "With Geo", Geo: &index_models.GeoPoint{Lat: 10.78, Lng: 106.70}},
	}
	keywords.searchTotal = 2

	lat, lng := 10.7769, 106.7009
	results, _, _, err := svc.Search(request_models.SearchQuery{
		Query:  "geo",
		SortBy: request_models.SortDistance,
		Lat:    &lat,
		Lng:    &lng,
	}, context.Background())

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "with-geo", results[0].ID)
	assert.Equal(t, "no-geo", results[1].ID)
}

func TestSearchFacetsIgnoreUserFilters(t *testing.T) {
	keywords, _, _, _, svc := newSearchFixture(StrategyKeyword)
	keywords.searchHits = keywordHits(3)
	keywords.searchTotal = 3
	keywords.facetDist = map[string]map[string]int{
		"categories": {"spa": 7, "beauty": 2},
	}

	_, _, unfiltered, err := svc.Search(request_models.SearchQuery{Query: "spa"}, context.Background())
	require.NoError(t, err)

	_, _, filtered, err := svc.Search(request_models.SearchQuery{
		Query:    "spa",
		District: "quan-1",
	}, context.Background())
	require.NoError(t, err)

	assert.Equal(t, unfiltered, filtered)
	assert.Equal(t, map[string]map[string]int{"categories": {"spa": 7, "beauty": 2}}, filtered)
}

func TestSearchQuotaErrorSurfacesAsDegraded(t *testing.T) {
	_, _, embedder, _, svc := newSearchFixture(StrategyVector)
	embedder.err = utils.ErrEmbeddingQuotaExceeded

	_, _, _, err := svc.Search(request_models.SearchQuery{Query: "spa"}, context.Background())

	assert.ErrorIs(t, err, utils.ErrEmbeddingQuotaExceeded)
	assert.NotErrorIs(t, err, utils.ErrSearchBackend)
}

func TestVectorStrategyHybridScoring(t *testing.T) {
	_, vectors, _, _, svc := newSearchFixture(StrategyVector)
	vectors.searchHits = []repositories.VectorCandidate{
		// High similarity but unrelated name.
		{DocumentID: "other", Name: "Noodle House", Score: 0.95},
		// Lower similarity, exact name match: 0.4*0.5 + 0.5*1.0 beats
		// 0.4*0.95.
		{DocumentID: "exact", Name: "Relax Spa", Score: 0.5},
	}

	results, _, _, err := svc.Search(request_models.SearchQuery{Query: "relax spa"}, context.Background())

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "exact", results[0].ID)
}

func TestTextMatchScore(t *testing.T) {
	assert.Equal(t, 1.0, textMatchScore("Relax Spa", "relax spa"))
	assert.Equal(t, 0.8, textMatchScore("relax", "Relax Spa Saigon"))
	assert.Equal(t, 0.6, textMatchScore("spa", "Relax Spa"))
	assert.InDelta(t, 0.2, textMatchScore("relax retreat", "The Relax House"), 1e-9)
	assert.Equal(t, 0.0, textMatchScore("noodles", "Relax Spa"))
	assert.Equal(t, 0.0, textMatchScore("", "Relax Spa"))
}

func TestNearbySortsByDistanceAndTruncates(t *testing.T) {
	_, vectors, _, _, svc := newSearchFixture(StrategyKeyword)
	vectors.scrollHits = []repositories.VectorCandidate{
		{DocumentID: "far", Name: "Far", Lat: 10.8489, Lon: 106.7009, HasGeo: true},
		{DocumentID: "near", Name: "Near", Lat: 10.7949, Lon: 106.7009, HasGeo: true},
		{DocumentID: "mid", Name: "Mid", Lat: 10.8219, Lon: 106.7009, HasGeo: true},
	}

	results, meta, err := svc.Nearby(request_models.NearbyQuery{
		Lat:   10.7769,
		Lng:   106.7009,
		Limit: 2,
	}, context.Background())

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "near", results[0].ID)
	assert.Equal(t, "mid", results[1].ID)
	assert.Equal(t, int64(3), meta.Total)
}

func TestRecommendationsEmpty(t *testing.T) {
	_, vectors, _, _, svc := newSearchFixture(StrategyKeyword)
	vectors.recommends = nil

	results, err := svc.Recommendations("relax-spa-q1", 5, context.Background())

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchResolvesEntitiesForPageOnly(t *testing.T) {
	keywords, _, _, places, svc := newSearchFixture(StrategyKeyword)
	keywords.searchHits = keywordHits(8)
	keywords.searchTotal = 8
	stale := keywordHits(1)[0]
	place := relaxSpa()
	place.DocumentID = stale.ID
	places.places[stale.ID] = *place

	results, _, _, err := svc.Search(request_models.SearchQuery{Query: "place", Limit: 3}, context.Background())

	require.NoError(t, err)
	require.Len(t, results, 3)
	// Entity record wins over the (possibly stale) index document.
	assert.Equal(t, "Relax Spa", results[0].Name)
	assert.Equal(t, 1, places.findCalls)
}
