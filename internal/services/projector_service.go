package services

import (
	"strings"

	"placehub/internal/models/db_models"
	"placehub/internal/models/index_models"
)

// Projection is the full derived view of one place: the keyword-index
// document, the vector-index payload, and the text the embedding is
// computed from.
type Projection struct {
	Document   index_models.SearchDocument
	Payload    index_models.VectorPayload
	SearchText string
}

// ProjectPlace flattens a place into its index projections. It is total:
// a partial place (no address, no services) projects to empty defaults,
// never an error. Calling it twice on the same place yields identical
// output, which keeps sync idempotent.
func ProjectPlace(place *db_models.Place) Projection {
	var (
		serviceNames  []string
		serviceGroups []string
	)
	for _, svc := range place.Services {
		serviceNames = append(serviceNames, svc.Name)
		serviceGroups = append(serviceGroups, svc.Group)
	}
	serviceNames = dedupeTrimmed(serviceNames)
	serviceGroups = dedupeTrimmed(serviceGroups)

	// Slug is the canonical filter value; the human name only feeds
	// search text.
	var categorySlugs, categoryNames []string
	for _, cat := range place.Categories {
		if cat.Slug != "" {
			categorySlugs = append(categorySlugs, cat.Slug)
		}
		if cat.Name != "" {
			categoryNames = append(categoryNames, cat.Name)
		}
	}

	tags := dedupeTrimmed(place.Tags)

	searchText := buildSearchText(place, serviceNames, serviceGroups, categoryNames)

	doc := index_models.SearchDocument{
		ID:            place.DocumentID,
		Name:          place.Name,
		Description:   place.Description,
		ServiceNames:  serviceNames,
		ServiceGroups: serviceGroups,
		Categories:    categorySlugs,
		CategoryNames: categoryNames,
		Tags:          tags,
		Address:       place.AddressLine,
		City:          place.City,
		Province:      place.ProvinceCode,
		District:      place.DistrictCode,
		Ward:          place.WardCode,
		ProvinceName:  place.ProvinceName,
		DistrictName:  place.DistrictName,
		WardName:      place.WardName,
		Rating:        place.Rating,
		ReviewCount:   place.ReviewCount,
		Popularity:    place.Popularity,
	}
	if place.Latitude != 0 || place.Longitude != 0 {
		doc.Geo = &index_models.GeoPoint{Lat: place.Latitude, Lng: place.Longitude}
	}

	payload := index_models.VectorPayload{
		DocumentID:    place.DocumentID,
		Name:          place.Name,
		Description:   place.Description,
		ServiceNames:  serviceNames,
		ServiceGroups: serviceGroups,
		Categories:    categorySlugs,
		Tags:          tags,
		Address:       place.AddressLine,
		City:          place.City,
		Province:      place.ProvinceCode,
		District:      place.DistrictCode,
		Ward:          place.WardCode,
		Lat:           place.Latitude,
		Lon:           place.Longitude,
		Rating:        place.Rating,
		ReviewCount:   place.ReviewCount,
		Popularity:    place.Popularity,
	}

	return Projection{
		Document:   doc,
		Payload:    payload,
		SearchText: searchText,
	}
}

// buildSearchText concatenates fields in relevance priority order. The
// text is rebuilt whole on every sync, never patched.
func buildSearchText(place *db_models.Place, serviceNames, serviceGroups, categoryNames []string) string {
	var parts []string

	appendPart := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}

	appendPart(place.Name)
	appendPart(strings.Join(serviceNames, ", "))
	appendPart(strings.Join(serviceGroups, ", "))
	appendPart(strings.Join(categoryNames, ", "))
	appendPart(place.Description)
	appendPart(place.AddressLine)
	appendPart(place.City)
	appendPart(place.ProvinceName)
	appendPart(place.DistrictName)
	appendPart(place.WardName)

	return strings.Join(parts, ". ")
}

// dedupeTrimmed trims entries, drops empties and keeps the first
// occurrence of each value. Comparison is case-sensitive.
func dedupeTrimmed(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
