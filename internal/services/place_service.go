package services

import (
	"context"
	"log"

	"github.com/google/uuid"

	"placehub/internal/models/db_models"
	"placehub/internal/models/request_models"
	"placehub/internal/models/response_models"
	"placehub/internal/repositories"
	"placehub/pkg/utils"
)

type PlaceServiceInterface interface {
	GetPlaceByID(id string, ctx context.Context) (response_models.PlaceResponse, error)
	CreatePlace(req request_models.CreatePlaceRequest, ctx context.Context) (response_models.PlaceResponse, error)
	UpdatePlace(id string, req request_models.UpdatePlaceRequest, ctx context.Context) error
	DeletePlace(id string, ctx context.Context) error
	SetPublished(id string, published bool, ctx context.Context) error
}

// PlaceService is the thin mutation surface over the content store.
// Index synchronization is not called from here: it rides on the
// repository's lifecycle events.
type PlaceService struct {
	places repositories.PlaceRepository
}

func NewPlaceService(places repositories.PlaceRepository) PlaceServiceInterface {
	return &PlaceService{places: places}
}

func (p *PlaceService) GetPlaceByID(id string, ctx context.Context) (response_models.PlaceResponse, error) {
	place, err := p.fetch(id, ctx)
	if err != nil {
		return response_models.PlaceResponse{}, err
	}
	return toPlaceResponse(place), nil
}

func (p *PlaceService) CreatePlace(req request_models.CreatePlaceRequest, ctx context.Context) (response_models.PlaceResponse, error) {
	categories, err := p.places.FindCategoriesBySlugs(ctx, req.CategorySlugs)
	if err != nil {
		log.Printf("Error resolving categories: %v", err)
		return response_models.PlaceResponse{}, utils.ErrDatabaseError
	}

	place := &db_models.Place{
		DocumentID:   req.DocumentID,
		Name:         req.Name,
		Description:  req.Description,
		Status:       db_models.PlaceStatusDraft,
		AddressLine:  req.AddressLine,
		City:         req.City,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		ProvinceCode: req.ProvinceCode,
		ProvinceName: req.ProvinceName,
		DistrictCode: req.DistrictCode,
		DistrictName: req.DistrictName,
		WardCode:     req.WardCode,
		WardName:     req.WardName,
		Rating:       req.Rating,
		ReviewCount:  req.ReviewCount,
		Tags:         req.Tags,
		Categories:   categories,
	}
	for _, svc := range req.Services {
		place.Services = append(place.Services, db_models.PlaceService{
			Name:  svc.Name,
			Group: svc.Group,
		})
	}
	if req.Publish {
		place.Status = db_models.PlaceStatusPublished
	}

	if _, err := p.places.CreatePlace(ctx, place); err != nil {
		log.Printf("Error creating place: %v", err)
		return response_models.PlaceResponse{}, utils.ErrDatabaseError
	}
	return toPlaceResponse(place), nil
}

func (p *PlaceService) UpdatePlace(id string, req request_models.UpdatePlaceRequest, ctx context.Context) error {
	place, err := p.fetch(id, ctx)
	if err != nil {
		return err
	}

	categories, err := p.places.FindCategoriesBySlugs(ctx, req.CategorySlugs)
	if err != nil {
		log.Printf("Error resolving categories: %v", err)
		return utils.ErrDatabaseError
	}

	place.Name = req.Name
	place.Description = req.Description
	place.AddressLine = req.AddressLine
	place.City = req.City
	place.Latitude = req.Latitude
	place.Longitude = req.Longitude
	place.ProvinceCode = req.ProvinceCode
	place.ProvinceName = req.ProvinceName
	place.DistrictCode = req.DistrictCode
	place.DistrictName = req.DistrictName
	place.WardCode = req.WardCode
	place.WardName = req.WardName
	place.Rating = req.Rating
	place.ReviewCount = req.ReviewCount
	place.Tags = req.Tags
	place.Categories = categories

	place.Services = place.Services[:0]
	for _, svc := range req.Services {
		place.Services = append(place.Services, db_models.PlaceService{
			PlaceID: place.ID,
			Name:    svc.Name,
			Group:   svc.Group,
		})
	}

	if err := p.places.UpdatePlace(ctx, place); err != nil {
		log.Printf("Error updating place: %v", err)
		return utils.ErrDatabaseError
	}
	return nil
}

func (p *PlaceService) DeletePlace(id string, ctx context.Context) error {
	place, err := p.fetch(id, ctx)
	if err != nil {
		return err
	}

	if err := p.places.Delete(ctx, place.ID); err != nil {
		log.Printf("Error deleting place: %v", err)
		return utils.ErrDatabaseError
	}
	return nil
}

func (p *PlaceService) SetPublished(id string, published bool, ctx context.Context) error {
	place, err := p.fetch(id, ctx)
	if err != nil {
		return err
	}

	status := db_models.PlaceStatusDraft
	if published {
		status = db_models.PlaceStatusPublished
	}
	if err := p.places.SetStatus(ctx, place.ID, status); err != nil {
		log.Printf("Error setting place status: %v", err)
		return utils.ErrDatabaseError
	}
	return nil
}

// fetch accepts either the internal uuid or the CMS document id.
func (p *PlaceService) fetch(id string, ctx context.Context) (*db_models.Place, error) {
	var (
		place *db_models.Place
		err   error
	)
	if parsed, perr := uuid.Parse(id); perr == nil {
		place, err = p.places.GetByID(ctx, parsed)
	}
	if place == nil && err == nil {
		place, err = p.places.GetByDocumentID(ctx, id)
	}

	if err != nil {
		log.Printf("Error fetching place %s: %v", id, err)
		return nil, utils.ErrDatabaseError
	}
	if place == nil {
		return nil, utils.ErrPlaceNotFound
	}
	return place, nil
}

func toPlaceResponse(place *db_models.Place) response_models.PlaceResponse {
	resp := response_models.PlaceResponse{
		ID:           place.ID.String(),
		DocumentID:   place.DocumentID,
		Name:         place.Name,
		Description:  place.Description,
		Status:       place.Status,
		AddressLine:  place.AddressLine,
		City:         place.City,
		Latitude:     place.Latitude,
		Longitude:    place.Longitude,
		ProvinceName: place.ProvinceName,
		DistrictName: place.DistrictName,
		WardName:     place.WardName,
		Rating:       place.Rating,
		ReviewCount:  place.ReviewCount,
		Popularity:   place.Popularity,
		Tags:         place.Tags,
	}
	for _, svc := range place.Services {
		resp.Services = append(resp.Services, response_models.PlaceServiceResponse{
			Name:  svc.Name,
			Group: svc.Group,
		})
	}
	for _, cat := range place.Categories {
		resp.Categories = append(resp.Categories, cat.Slug)
	}
	return resp
}
