package request_models

const (
	SortRelevance = "relevance"
	SortRating    = "rating"
	SortDistance  = "distance"
	SortPopular   = "popular"
)

// SearchQuery carries parsed /search parameters. Optional numerics are
// pointers; absent means "unset", never zero.
type SearchQuery struct {
	Query string

	Lat *float64
	Lng *float64

	City     string
	Province string
	District string
	Ward     string

	Categories []string
	MinRating  *float64

	SortBy string
	Limit  int
	Offset int
}

// NearbyQuery carries parsed /nearby parameters. Radius is meters.
type NearbyQuery struct {
	Lat    float64
	Lng    float64
	Radius float64

	Categories []string
	MinRating  *float64

	Limit int
}
