package utils

import "errors"

var (
	ErrPlaceNotFound          = errors.New("place not found")
	ErrInvalidPage            = errors.New("invalid page parameter")
	ErrInvalidPageSize        = errors.New("invalid page size parameter")
	ErrInvalidGeoPair         = errors.New("lat and lng must be provided together")
	ErrDatabaseError          = errors.New("database error")
	ErrSearchBackend          = errors.New("search backend error")
	ErrEmbeddingQuotaExceeded = errors.New("embedding quota exceeded")
	ErrDimensionMismatch      = errors.New("embedding dimension does not match vector collection")
)
