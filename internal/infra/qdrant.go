package infra

import (
	"log"
	"os"
	"strconv"

	"github.com/qdrant/go-client/qdrant"
)

func InitQdrant() *qdrant.Client {
	host := os.Getenv("QDRANT_HOST")
	if host == "" {
		host = "localhost"
	}
	port, _ := strconv.Atoi(os.Getenv("QDRANT_PORT"))
	if port == 0 {
		port = 6334
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: os.Getenv("QDRANT_API_KEY"),
		UseTLS: os.Getenv("QDRANT_USE_TLS") == "true",
	})
	if err != nil {
		log.Fatalf("Error connecting to qdrant: %v", err)
	}

	return client
}
