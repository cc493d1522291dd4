package request_models

type PlaceServiceInput struct {
	Name  string `json:"name" binding:"required"`
	Group string `json:"group"`
}

type CreatePlaceRequest struct {
	DocumentID  string `json:"document_id"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`

	AddressLine string  `json:"address_line"`
	City        string  `json:"city"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`

	ProvinceCode string `json:"province_code"`
	ProvinceName string `json:"province_name"`
	DistrictCode string `json:"district_code"`
	DistrictName string `json:"district_name"`
	WardCode     string `json:"ward_code"`
	WardName     string `json:"ward_name"`

	Rating      float64  `json:"rating"`
	ReviewCount int      `json:"review_count"`
	Tags        []string `json:"tags"`

	Services      []PlaceServiceInput `json:"services"`
	CategorySlugs []string            `json:"category_slugs"`

	Publish bool `json:"publish"`
}

type UpdatePlaceRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`

	AddressLine string  `json:"address_line"`
	City        string  `json:"city"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`

	ProvinceCode string `json:"province_code"`
	ProvinceName string `json:"province_name"`
	DistrictCode string `json:"district_code"`
	DistrictName string `json:"district_name"`
	WardCode     string `json:"ward_code"`
	WardName     string `json:"ward_name"`

	Rating      float64  `json:"rating"`
	ReviewCount int      `json:"review_count"`
	Tags        []string `json:"tags"`

	Services      []PlaceServiceInput `json:"services"`
	CategorySlugs []string            `json:"category_slugs"`
}
