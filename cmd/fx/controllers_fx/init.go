package controllers_fx

import (
	"go.uber.org/fx"

	"placehub/internal/api/controllers"
)

var Module = fx.Provide(
	controllers.NewSearchController,
	controllers.NewSyncController,
	controllers.NewPlacesController,
)
