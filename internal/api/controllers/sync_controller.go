package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"placehub/internal/services"
	"placehub/pkg/utils"
)

type SyncController struct {
	syncService services.SyncServiceInterface
}

func NewSyncController(syncService services.SyncServiceInterface) *SyncController {
	return &SyncController{
		syncService: syncService,
	}
}

func (s *SyncController) SyncOne(c *gin.Context) {
	placeID := c.Param("id")
	if placeID == "" {
		utils.RespondError(c, http.StatusBadRequest, "Place ID is required")
		return
	}

	if err := s.syncService.SyncByDocumentID(placeID, c.Request.Context()); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "Place synced successfully")
}

func (s *SyncController) SyncAll(c *gin.Context) {
	report, err := s.syncService.SyncAll(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, report, "Full re-sync completed")
}
