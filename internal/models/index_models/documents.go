package index_models

// GeoPoint is the Meilisearch _geo shape.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// SearchDocument is the denormalized keyword-index projection of a
// published place, keyed by the CMS document identifier.
type SearchDocument struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`

	ServiceNames  []string `json:"serviceNames"`
	ServiceGroups []string `json:"serviceGroups"`
	Categories    []string `json:"categories"`
	CategoryNames []string `json:"categoryNames"`
	Tags          []string `json:"tags"`

	Address      string `json:"address"`
	City         string `json:"city"`
	Province     string `json:"province"`
	District     string `json:"district"`
	Ward         string `json:"ward"`
	ProvinceName string `json:"provinceName"`
	DistrictName string `json:"districtName"`
	WardName     string `json:"wardName"`

	Geo *GeoPoint `json:"_geo,omitempty"`

	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"reviewCount"`
	Popularity  int64   `json:"popularity"`
}

// VectorPayload is the payload stored next to a place's embedding in
// the vector index. Field set mirrors SearchDocument; geo is a lat/lon
// pair so radius filters work.
type VectorPayload struct {
	DocumentID  string
	Name        string
	Description string

	ServiceNames  []string
	ServiceGroups []string
	Categories    []string
	Tags          []string

	Address  string
	City     string
	Province string
	District string
	Ward     string

	Lat float64
	Lon float64

	Rating      float64
	ReviewCount int
	Popularity  int64
}

// Map renders the payload for the vector store client, which takes
// loosely typed payload values.
func (p VectorPayload) Map() map[string]any {
	return map[string]any{
		"documentId":    p.DocumentID,
		"name":          p.Name,
		"description":   p.Description,
		"serviceNames":  toAnySlice(p.ServiceNames),
		"serviceGroups": toAnySlice(p.ServiceGroups),
		"categories":    toAnySlice(p.Categories),
		"tags":          toAnySlice(p.Tags),
		"address":       p.Address,
		"city":          p.City,
		"province":      p.Province,
		"district":      p.District,
		"ward":          p.Ward,
		"location": map[string]any{
			"lat": p.Lat,
			"lon": p.Lon,
		},
		"rating":      p.Rating,
		"reviewCount": p.ReviewCount,
		"popularity":  p.Popularity,
	}
}

func toAnySlice(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
