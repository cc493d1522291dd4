package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"placehub/internal/models/request_models"
	"placehub/internal/services"
	"placehub/pkg/utils"
)

type PlacesController struct {
	placeService services.PlaceServiceInterface
}

func NewPlacesController(placeService services.PlaceServiceInterface) *PlacesController {
	return &PlacesController{
		placeService: placeService,
	}
}

func (p *PlacesController) GetPlaceByID(c *gin.Context) {
	placeID := c.Param("id")
	if placeID == "" {
		utils.RespondError(c, http.StatusBadRequest, "Place ID is required")
		return
	}

	place, err := p.placeService.GetPlaceByID(placeID, c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, place, "Place fetched successfully")
}

func (p *PlacesController) CreatePlace(c *gin.Context) {
	var req request_models.CreatePlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid place payload: "+err.Error())
		return
	}

	place, err := p.placeService.CreatePlace(req, c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, place, "Place created successfully")
}

func (p *PlacesController) UpdatePlace(c *gin.Context) {
	placeID := c.Param("id")
	if placeID == "" {
		utils.RespondError(c, http.StatusBadRequest, "Place ID is required")
		return
	}

	var req request_models.UpdatePlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid place payload: "+err.Error())
		return
	}

	if err := p.placeService.UpdatePlace(placeID, req, c.Request.Context()); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "Place updated successfully")
}

func (p *PlacesController) DeletePlace(c *gin.Context) {
	placeID := c.Param("id")
	if placeID == "" {
		utils.RespondError(c, http.StatusBadRequest, "Place ID is required")
		return
	}

	if err := p.placeService.DeletePlace(placeID, c.Request.Context()); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "Place deleted successfully")
}

func (p *PlacesController) PublishPlace(c *gin.Context) {
	p.setPublished(c, true, "Place published successfully")
}

func (p *PlacesController) UnpublishPlace(c *gin.Context) {
	p.setPublished(c, false, "Place unpublished successfully")
}

func (p *PlacesController) setPublished(c *gin.Context, published bool, message string) {
	placeID := c.Param("id")
	if placeID == "" {
		utils.RespondError(c, http.StatusBadRequest, "Place ID is required")
		return
	}

	if err := p.placeService.SetPublished(placeID, published, c.Request.Context()); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, message)
}
