package services

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"

	"placehub/internal/models/db_models"
	"placehub/internal/models/request_models"
	"placehub/internal/models/response_models"
	"placehub/internal/repositories"
	"placehub/pkg/memcache"
	"placehub/pkg/utils"
)

const (
	StrategyKeyword = "keyword"
	StrategyVector  = "vector"

	defaultLimit  = 10
	maxLimit      = 50
	defaultRadius = 5000.0

	// Candidates fetched per query, as a multiple of the requested
	// page, to leave room for re-ranking.
	candidateFactor = 3

	facetCacheTTL = time.Minute
)

// Hybrid score weights for the vector-first strategy.
const (
	weightVector  = 0.4
	weightName    = 0.5
	weightAddress = 0.1
)

var facetFields = []string{"categories", "city", "provinceName", "districtName"}

type SearchServiceInterface interface {
	Search(q request_models.SearchQuery, ctx context.Context) ([]response_models.SearchResult, response_models.SearchMeta, map[string]map[string]int, error)
	Nearby(q request_models.NearbyQuery, ctx context.Context) ([]response_models.SearchResult, response_models.SearchMeta, error)
	Recommendations(documentID string, limit int, ctx context.Context) ([]response_models.SearchResult, error)
}

// SearchService is the query-time pipeline: candidate fetch from the
// configured backend, hybrid re-ranking, geo attachment, sort, then
// offset/limit truncation, and entity resolution for the final page
// only.
type SearchService struct {
	keywords repositories.KeywordIndexRepository
	vectors  repositories.VectorIndexRepository
	embedder EmbeddingServiceInterface
	places   repositories.PlaceRepository
	facets   memcache.FacetCache
	strategy string
}

func NewSearchService(
	keywords repositories.KeywordIndexRepository,
	vectors repositories.VectorIndexRepository,
	embedder EmbeddingServiceInterface,
	places repositories.PlaceRepository,
	facets memcache.FacetCache,
	strategy string,
) SearchServiceInterface {
	if strategy != StrategyVector {
		strategy = StrategyKeyword
	}
	return &SearchService{
		keywords: keywords,
		vectors:  vectors,
		embedder: embedder,
		places:   places,
		facets:   facets,
		strategy: strategy,
	}
}

// candidate is the internal re-ranking unit, carried from either index.
type candidate struct {
	id          string
	name        string
	description string
	address     string
	city        string
	categories  []string
	rating      float64
	reviewCount int
	popularity  int64
	score       float64
	distanceKm  *float64
	lat         float64
	lon         float64
	hasGeo      bool
}

func (s *SearchService) Search(q request_models.SearchQuery, ctx context.Context) ([]response_models.SearchResult, response_models.SearchMeta, map[string]map[string]int, error) {
	meta := response_models.SearchMeta{SortBy: q.SortBy}

	if (q.Lat == nil) != (q.Lng == nil) {
		return nil, meta, nil, utils.ErrInvalidGeoPair
	}
	limit, offset := clampPage(q.Limit, q.Offset)
	sortBy := q.SortBy
	if sortBy == "" {
		sortBy = request_models.SortRelevance
	}
	meta.Limit = limit
	meta.Offset = offset
	meta.SortBy = sortBy

	fetchSize := (offset + limit) * candidateFactor
	if fetchSize < maxLimit {
		fetchSize = maxLimit
	}

	var (
		candidates []candidate
		total      int64
		err        error
	)
	if s.strategy == StrategyVector {
		candidates, err = s.vectorCandidates(q, fetchSize, ctx)
		total = int64(len(candidates))
	} else {
		candidates, total, err = s.keywordCandidates(q, fetchSize, ctx)
	}
	if err != nil {
		return nil, meta, nil, err
	}

	if q.Lat != nil && q.Lng != nil {
		attachDistances(candidates, *q.Lat, *q.Lng)
	}
	sortCandidates(candidates, sortBy)

	if len(candidates) == 0 {
		meta.Total = 0
		return []response_models.SearchResult{}, meta, nil, nil
	}

	page := slicePage(candidates, offset, limit)
	results, err := s.resolveResults(page, ctx)
	if err != nil {
		return nil, meta, nil, err
	}

	meta.Total = total
	return results, meta, s.facetDistribution(q.Query, ctx), nil
}

func (s *SearchService) Nearby(q request_models.NearbyQuery, ctx context.Context) ([]response_models.SearchResult, response_models.SearchMeta, error) {
	limit, _ := clampPage(q.Limit, 0)
	radius := q.Radius
	if radius <= 0 {
		radius = defaultRadius
	}

	filter := repositories.VectorFilter{
		Geo:        &repositories.GeoRadius{Lat: q.Lat, Lng: q.Lng, RadiusM: radius},
		Categories: q.Categories,
		MinRating:  q.MinRating,
	}
	hits, err := s.vectors.ScrollByFilter(ctx, filter, limit*candidateFactor)
	if err != nil {
		log.Printf("Nearby scroll failed: %v", err)
		return nil, response_models.SearchMeta{}, utils.ErrSearchBackend
	}

	candidates := make([]candidate, 0, len(hits))
	for _, h := range hits {
		candidates = append(candidates, fromVectorCandidate(h))
	}
	attachDistances(candidates, q.Lat, q.Lng)
	sortCandidates(candidates, request_models.SortDistance)

	meta := response_models.SearchMeta{
		Total:  int64(len(candidates)),
		Limit:  limit,
		SortBy: request_models.SortDistance,
	}

	if len(candidates) == 0 {
		return []response_models.SearchResult{}, meta, nil
	}

	page := slicePage(candidates, 0, limit)
	results, err := s.resolveResults(page, ctx)
	if err != nil {
		return nil, meta, err
	}
	return results, meta, nil
}

func (s *SearchService) Recommendations(documentID string, limit int, ctx context.Context) ([]response_models.SearchResult, error) {
	if limit <= 0 {
		limit = 5
	}

	hits, err := s.vectors.Recommend(ctx, documentID, limit)
	if err != nil {
		if err == utils.ErrPlaceNotFound {
			return nil, err
		}
		log.Printf("Recommend failed for place %s: %v", documentID, err)
		return nil, utils.ErrSearchBackend
	}

	candidates := make([]candidate, 0, len(hits))
	for _, h := range hits {
		candidates = append(candidates, fromVectorCandidate(h))
	}
	if len(candidates) == 0 {
		return []response_models.SearchResult{}, nil
	}
	return s.resolveResults(candidates, ctx)
}

// ---------------------------------------------------------------
// candidate fetch
// ---------------------------------------------------------------

func (s *SearchService) keywordCandidates(q request_models.SearchQuery, fetchSize int, ctx context.Context) ([]candidate, int64, error) {
	filter := repositories.KeywordFilter{
		City:       q.City,
		Province:   q.Province,
		District:   q.District,
		Ward:       q.Ward,
		Categories: q.Categories,
		MinRating:  q.MinRating,
	}

	result, err := s.keywords.Search(ctx, q.Query, filter, nil, fetchSize, 0)
	if err != nil {
		log.Printf("Keyword search failed for %q: %v", q.Query, err)
		return nil, 0, utils.ErrSearchBackend
	}

	candidates := make([]candidate, 0, len(result.Hits))
	for i, doc := range result.Hits {
		c := candidate{
			id:          doc.ID,
			name:        doc.Name,
			description: doc.Description,
			address:     doc.Address,
			city:        doc.City,
			categories:  doc.Categories,
			rating:      doc.Rating,
			reviewCount: doc.ReviewCount,
			popularity:  doc.Popularity,
			// The engine already ranked by relevance; preserve that
			// order as a descending score.
			score: 1 - float64(i)/float64(len(result.Hits)),
		}
		if doc.Geo != nil {
			c.lat = doc.Geo.Lat
			c.lon = doc.Geo.Lng
			c.hasGeo = true
		}
		candidates = append(candidates, c)
	}
	return candidates, result.Total, nil
}

func (s *SearchService) vectorCandidates(q request_models.SearchQuery, fetchSize int, ctx context.Context) ([]candidate, error) {
	vector, err := s.embedder.Embed(q.Query, ctx)
	if err != nil {
		// Quota exhaustion surfaces as a distinct degraded condition,
		// not a generic backend failure.
		return nil, err
	}

	filter := repositories.VectorFilter{
		City:       q.City,
		Province:   q.Province,
		District:   q.District,
		Ward:       q.Ward,
		Categories: q.Categories,
		MinRating:  q.MinRating,
	}
	if q.Lat != nil && q.Lng != nil {
		filter.Geo = &repositories.GeoRadius{Lat: *q.Lat, Lng: *q.Lng, RadiusM: defaultRadius * 10}
	}

	hits, err := s.vectors.Search(ctx, vector, filter, fetchSize, 0)
	if err != nil {
		log.Printf("Vector search failed for %q: %v", q.Query, err)
		return nil, utils.ErrSearchBackend
	}

	candidates := make([]candidate, 0, len(hits))
	for _, h := range hits {
		c := fromVectorCandidate(h)
		c.score = weightVector*h.Score +
			weightName*textMatchScore(q.Query, h.Name) +
			weightAddress*textMatchScore(q.Query, h.Address)
		candidates = append(candidates, c)
	}
	return candidates, nil
}

func fromVectorCandidate(h repositories.VectorCandidate) candidate {
	return candidate{
		id:          h.DocumentID,
		name:        h.Name,
		description: h.Description,
		address:     h.Address,
		city:        h.City,
		categories:  h.Categories,
		rating:      h.Rating,
		reviewCount: h.ReviewCount,
		popularity:  h.Popularity,
		score:       h.Score,
		lat:         h.Lat,
		lon:         h.Lon,
		hasGeo:      h.HasGeo,
	}
}

// ---------------------------------------------------------------
// re-ranking
// ---------------------------------------------------------------

// textMatchScore grades how well text matches the query: exact 1.0,
// prefix 0.8, substring 0.6, otherwise 0.4 weighted by the share of
// query words present.
func textMatchScore(query, text string) float64 {
	query = strings.ToLower(strings.TrimSpace(query))
	text = strings.ToLower(strings.TrimSpace(text))
	if query == "" || text == "" {
		return 0
	}

	switch {
	case text == query:
		return 1.0
	case strings.HasPrefix(text, query):
		return 0.8
	case strings.Contains(text, query):
		return 0.6
	}

	words := strings.Fields(query)
	if len(words) == 0 {
		return 0
	}
	overlap := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			overlap++
		}
	}
	return 0.4 * float64(overlap) / float64(len(words))
}

func attachDistances(candidates []candidate, lat, lng float64) {
	for i := range candidates {
		if !candidates[i].hasGeo {
			continue
		}
		d := utils.HaversineKm(lat, lng, candidates[i].lat, candidates[i].lon)
		candidates[i].distanceKm = &d
	}
}

func sortCandidates(candidates []candidate, sortBy string) {
	switch sortBy {
	case request_models.SortRating:
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].rating > candidates[j].rating
		})
	case request_models.SortPopular:
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].popularity > candidates[j].popularity
		})
	case request_models.SortDistance:
		sort.SliceStable(candidates, func(i, j int) bool {
			di, dj := candidates[i].distanceKm, candidates[j].distanceKm
			if di == nil {
				return false
			}
			if dj == nil {
				return true
			}
			return *di < *dj
		})
	default:
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].score > candidates[j].score
		})
	}
}

// slicePage truncates after sorting. Slicing before the sort would
// silently corrupt pagination.
func slicePage(candidates []candidate, offset, limit int) []candidate {
	if offset >= len(candidates) {
		return nil
	}
	end := offset + limit
	if end > len(candidates) {
		end = len(candidates)
	}
	return candidates[offset:end]
}

// ---------------------------------------------------------------
// entity resolution
// ---------------------------------------------------------------

// resolveResults loads full place records for the final page only. An
// empty page short-circuits: some backends treat an empty ID set as
// "match everything".
func (s *SearchService) resolveResults(page []candidate, ctx context.Context) ([]response_models.SearchResult, error) {
	if len(page) == 0 {
		return []response_models.SearchResult{}, nil
	}

	ids := make([]string, 0, len(page))
	for _, c := range page {
		ids = append(ids, c.id)
	}

	places, err := s.places.FindByDocumentIDs(ctx, ids)
	if err != nil {
		log.Printf("Error resolving places for search page: %v", err)
		return nil, utils.ErrDatabaseError
	}
	byID := make(map[string]*db_models.Place, len(places))
	for i := range places {
		byID[places[i].DocumentID] = &places[i]
	}

	results := make([]response_models.SearchResult, 0, len(page))
	for _, c := range page {
		r := response_models.SearchResult{
			ID:          c.id,
			Name:        c.name,
			Description: c.description,
			Address:     c.address,
			City:        c.city,
			Categories:  c.categories,
			Rating:      c.rating,
			ReviewCount: c.reviewCount,
			Popularity:  c.popularity,
			Score:       c.score,
			DistanceKm:  c.distanceKm,
		}
		if place, ok := byID[c.id]; ok {
			r.Name = place.Name
			r.Description = place.Description
			r.Address = place.AddressLine
			r.City = place.City
			r.Rating = place.Rating
			r.ReviewCount = place.ReviewCount
			r.Popularity = place.Popularity
			var slugs []string
			for _, cat := range place.Categories {
				slugs = append(slugs, cat.Slug)
			}
			if len(slugs) > 0 {
				r.Categories = slugs
			}
		}
		results = append(results, r)
	}
	return results, nil
}

// ---------------------------------------------------------------
// facets
// ---------------------------------------------------------------

// facetDistribution is best-effort: a facet failure degrades the
// response to "no facets", it never fails the search.
func (s *SearchService) facetDistribution(query string, ctx context.Context) map[string]map[string]int {
	cacheKey := "facets|" + query
	if cached, ok := s.facets.Get(cacheKey); ok {
		return cached
	}

	dist, err := s.keywords.Facets(ctx, query, facetFields)
	if err != nil {
		log.Printf("Facet query failed for %q: %v", query, err)
		return nil
	}

	s.facets.Set(cacheKey, dist, facetCacheTTL)
	return dist
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
