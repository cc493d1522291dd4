package keyword_fx

import (
	"github.com/meilisearch/meilisearch-go"
	"go.uber.org/fx"

	"placehub/internal/infra"
	"placehub/internal/repositories"
)

var Module = fx.Provide(
	provideMeilisearchClient, provideKeywordIndexRepo)

func provideMeilisearchClient() meilisearch.ServiceManager {
	return infra.InitMeilisearch()
}

func provideKeywordIndexRepo(client meilisearch.ServiceManager) repositories.KeywordIndexRepository {
	return repositories.NewKeywordIndexRepository(client, infra.IndexName())
}
