package search_fx

import (
	"os"

	"go.uber.org/fx"

	"placehub/internal/repositories"
	"placehub/internal/services"
	"placehub/pkg/memcache"
)

var Module = fx.Provide(
	provideFacetCache, provideSearchService)

func provideFacetCache() memcache.FacetCache {
	return memcache.NewFacetCache()
}

func provideSearchService(
	keywordRepo repositories.KeywordIndexRepository,
	vectorRepo repositories.VectorIndexRepository,
	embedder services.EmbeddingServiceInterface,
	placeRepo repositories.PlaceRepository,
	facets memcache.FacetCache,
) services.SearchServiceInterface {
	return services.NewSearchService(
		keywordRepo,
		vectorRepo,
		embedder,
		placeRepo,
		facets,
		os.Getenv("SEARCH_STRATEGY"),
	)
}
