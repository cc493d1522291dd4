package response_models

type SearchResult struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Address     string   `json:"address,omitempty"`
	City        string   `json:"city,omitempty"`
	Categories  []string `json:"categories,omitempty"`
	Rating      float64  `json:"rating"`
	ReviewCount int      `json:"review_count"`
	Popularity  int64    `json:"popularity"`
	Score       float64  `json:"score"`
	DistanceKm  *float64 `json:"distance_km,omitempty"`
}

type SearchMeta struct {
	Total  int64  `json:"total"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
	SortBy string `json:"sortBy,omitempty"`
}

// SyncReport is the aggregate outcome of a full re-sync. A place counts
// as failed when either index rejected it; the batch itself never fails.
type SyncReport struct {
	Synced int `json:"synced"`
	Failed int `json:"failed"`
}
