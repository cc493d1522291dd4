package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"placehub/internal/models/request_models"
	"placehub/internal/services"
	"placehub/pkg/utils"
)

type SearchController struct {
	searchService services.SearchServiceInterface
}

func NewSearchController(searchService services.SearchServiceInterface) *SearchController {
	return &SearchController{
		searchService: searchService,
	}
}

func (s *SearchController) Search(c *gin.Context) {
	q := request_models.SearchQuery{
		Query:      c.Query("q"),
		City:       c.Query("city"),
		Province:   c.Query("province"),
		District:   c.Query("district"),
		Ward:       c.Query("ward"),
		Categories: splitCSV(c.Query("categories")),
		MinRating:  optionalFloat(c.Query("minRating")),
		SortBy:     c.DefaultQuery("sortBy", request_models.SortRelevance),
		Lat:        optionalFloat(c.Query("lat")),
		Lng:        optionalFloat(c.Query("lng")),
		Limit:      intOrDefault(c.Query("limit"), 10),
		Offset:     intOrDefault(c.Query("offset"), 0),
	}

	results, meta, facets, err := s.searchService.Search(q, c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	if facets != nil {
		utils.RespondSuccessWithMeta(c, gin.H{"results": results, "facets": facets}, meta)
		return
	}
	utils.RespondSuccessWithMeta(c, results, meta)
}

func (s *SearchController) Nearby(c *gin.Context) {
	lat := optionalFloat(c.Query("lat"))
	lng := optionalFloat(c.Query("lng"))
	if lat == nil || lng == nil {
		utils.RespondError(c, http.StatusBadRequest, "lat and lng are required")
		return
	}

	q := request_models.NearbyQuery{
		Lat:        *lat,
		Lng:        *lng,
		Radius:     floatOrDefault(c.Query("radius"), 0),
		Categories: splitCSV(c.Query("categories")),
		MinRating:  optionalFloat(c.Query("minRating")),
		Limit:      intOrDefault(c.Query("limit"), 10),
	}

	results, meta, err := s.searchService.Nearby(q, c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccessWithMeta(c, results, meta)
}

func (s *SearchController) Recommendations(c *gin.Context) {
	placeID := c.Param("id")
	if placeID == "" {
		utils.RespondError(c, http.StatusBadRequest, "Place ID is required")
		return
	}
	limit := intOrDefault(c.Query("limit"), 5)

	results, err := s.searchService.Recommendations(placeID, limit, c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, results, "Recommendations fetched successfully")
}

// Optional numeric params fall back to "unset" on parse failure instead
// of rejecting the request.
func optionalFloat(raw string) *float64 {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

func floatOrDefault(raw string, def float64) float64 {
	if v := optionalFloat(raw); v != nil {
		return *v
	}
	return def
}

func intOrDefault(raw string, def int) int {
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
