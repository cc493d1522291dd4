package sync_fx

import (
	"go.uber.org/fx"

	"placehub/internal/repositories"
	"placehub/internal/services"
)

var Module = fx.Options(
	fx.Provide(provideSyncService),
	fx.Invoke(registerSyncObserver),
)

func provideSyncService(
	placeRepo repositories.PlaceRepository,
	vectorRepo repositories.VectorIndexRepository,
	keywordRepo repositories.KeywordIndexRepository,
	embedder services.EmbeddingServiceInterface,
) services.SyncServiceInterface {
	return services.NewSyncService(placeRepo, vectorRepo, keywordRepo, embedder)
}

// registerSyncObserver subscribes the sync orchestrator to content
// lifecycle events so every mutation reaches both indexes.
func registerSyncObserver(placeRepo repositories.PlaceRepository, syncService services.SyncServiceInterface) {
	placeRepo.Register(syncService)
}
