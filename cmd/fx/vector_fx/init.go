package vector_fx

import (
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/fx"

	"placehub/internal/infra"
	"placehub/internal/repositories"
	"placehub/internal/services"
)

var Module = fx.Provide(
	provideQdrantClient, provideVectorIndexRepo)

func provideQdrantClient() *qdrant.Client {
	return infra.InitQdrant()
}

func provideVectorIndexRepo(client *qdrant.Client, embedder services.EmbeddingServiceInterface) repositories.VectorIndexRepository {
	return repositories.NewVectorIndexRepository(client, infra.IndexName(), embedder.Dimension())
}
