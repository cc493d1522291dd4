package embedding_fx

import (
	"go.uber.org/fx"

	"placehub/internal/services"
)

var Module = fx.Provide(
	provideEmbeddingProvider, provideEmbeddingService)

func provideEmbeddingProvider() (services.EmbeddingProvider, error) {
	return services.NewEmbeddingProviderFromEnv()
}

func provideEmbeddingService(provider services.EmbeddingProvider) services.EmbeddingServiceInterface {
	return services.NewEmbeddingService(provider)
}
