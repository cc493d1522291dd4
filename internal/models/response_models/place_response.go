package response_models

type PlaceServiceResponse struct {
	Name  string `json:"name"`
	Group string `json:"group,omitempty"`
}

type PlaceResponse struct {
	ID          string `json:"id"`
	DocumentID  string `json:"document_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`

	AddressLine string  `json:"address_line,omitempty"`
	City        string  `json:"city,omitempty"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`

	ProvinceName string `json:"province_name,omitempty"`
	DistrictName string `json:"district_name,omitempty"`
	WardName     string `json:"ward_name,omitempty"`

	Rating      float64  `json:"rating"`
	ReviewCount int      `json:"review_count"`
	Popularity  int64    `json:"popularity"`
	Tags        []string `json:"tags,omitempty"`

	Services   []PlaceServiceResponse `json:"services,omitempty"`
	Categories []string               `json:"categories,omitempty"`
}
