package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/fx"

	"placehub/cmd/fx/controllers_fx"
	"placehub/cmd/fx/db_fx"
	"placehub/cmd/fx/embedding_fx"
	"placehub/cmd/fx/keyword_fx"
	"placehub/cmd/fx/places_fx"
	"placehub/cmd/fx/search_fx"
	"placehub/cmd/fx/sync_fx"
	"placehub/cmd/fx/vector_fx"
	"placehub/internal/api/controllers"
	"placehub/internal/repositories"
	"placehub/internal/services"
	"placehub/pkg/middleware"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	app := fx.New(
		db_fx.Module,
		embedding_fx.Module,
		vector_fx.Module,
		keyword_fx.Module,
		places_fx.Module,
		sync_fx.Module,
		search_fx.Module,
		controllers_fx.Module,

		fx.Provide(ProvideRouter),
		fx.Invoke(EnsureSearchInfra),
		fx.Invoke(StartServer),
	)

	app.Run()
}

// EnsureSearchInfra brings both indexes up before the server accepts
// traffic. A vector-dimension mismatch is a fatal configuration error
// and aborts startup.
func EnsureSearchInfra(
	lc fx.Lifecycle,
	keywordRepo repositories.KeywordIndexRepository,
	vectorRepo repositories.VectorIndexRepository,
	embedder services.EmbeddingServiceInterface,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := embedder.Init(ctx); err != nil {
				return err
			}
			if err := keywordRepo.EnsureIndex(ctx); err != nil {
				return err
			}
			return vectorRepo.EnsureCollection(ctx, embedder.Dimension())
		},
	})
}

func StartServer(lc fx.Lifecycle, engine *gin.Engine) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := os.Getenv("PORT")
				if port == "" {
					port = "8080"
				}
				log.Printf("Starting HTTP server at :%s", port)
				if err := engine.Run(":" + port); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Println("Stopping HTTP server")
			return nil
		},
	})
}

func ProvideRouter(
	searchController *controllers.SearchController,
	syncController *controllers.SyncController,
	placesController *controllers.PlacesController) *gin.Engine {

	r := gin.Default()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.TraceIDMiddleware())

	RegisterRoutes(r, searchController, syncController, placesController)

	return r
}

func RegisterRoutes(r *gin.Engine,
	searchController *controllers.SearchController,
	syncController *controllers.SyncController,
	placesController *controllers.PlacesController) {

	r.GET("/search", searchController.Search)
	r.GET("/nearby", searchController.Nearby)

	placesGroup := r.Group("/places")
	placesGroup.GET("/:id", placesController.GetPlaceByID)
	placesGroup.POST("", placesController.CreatePlace)
	placesGroup.PUT("/:id", placesController.UpdatePlace)
	placesGroup.DELETE("/:id", placesController.DeletePlace)
	placesGroup.POST("/:id/publish", placesController.PublishPlace)
	placesGroup.POST("/:id/unpublish", placesController.UnpublishPlace)
	placesGroup.GET("/:id/recommendations", searchController.Recommendations)

	syncGroup := r.Group("/sync")
	syncGroup.POST("/places/:id", syncController.SyncOne)
	syncGroup.POST("/all", syncController.SyncAll)
}
