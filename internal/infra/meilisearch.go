package infra

import (
	"os"

	"github.com/meilisearch/meilisearch-go"
)

func InitMeilisearch() meilisearch.ServiceManager {
	host := os.Getenv("MEILI_HOST")
	if host == "" {
		host = "http://localhost:7700"
	}

	return meilisearch.New(host, meilisearch.WithAPIKey(os.Getenv("MEILI_API_KEY")))
}

// IndexName builds the environment-prefixed name shared by the keyword
// index and the vector collection, e.g. "staging_places".
func IndexName() string {
	prefix := os.Getenv("INDEX_PREFIX")
	if prefix == "" {
		return "places"
	}
	return prefix + "_places"
}
