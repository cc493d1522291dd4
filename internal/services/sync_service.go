package services

import (
	"context"
	"errors"
	"log"
	"sync"

	"placehub/internal/models/db_models"
	"placehub/internal/models/index_models"
	"placehub/internal/models/response_models"
	"placehub/internal/repositories"
	"placehub/pkg/utils"
)

const syncAllPageSize = 200

type SyncServiceInterface interface {
	repositories.PlaceObserver

	SyncByDocumentID(documentID string, ctx context.Context) error
	SyncAll(ctx context.Context) (response_models.SyncReport, error)
}

// SyncService drives both indexes to mirror the published state of the
// content store. Index writes are independent best-effort operations:
// one index failing never blocks the other, and nothing here is ever
// propagated back into the content mutation path.
type SyncService struct {
	places   repositories.PlaceRepository
	vectors  repositories.VectorIndexRepository
	keywords repositories.KeywordIndexRepository
	embedder EmbeddingServiceInterface
}

func NewSyncService(
	places repositories.PlaceRepository,
	vectors repositories.VectorIndexRepository,
	keywords repositories.KeywordIndexRepository,
	embedder EmbeddingServiceInterface,
) SyncServiceInterface {
	return &SyncService{
		places:   places,
		vectors:  vectors,
		keywords: keywords,
		embedder: embedder,
	}
}

// HandlePlaceEvent is the lifecycle entry point. Published content is
// (re-)indexed; anything else is removed from both indexes. Deletes are
// idempotent, so a never-indexed draft passing through here is a no-op.
func (s *SyncService) HandlePlaceEvent(event repositories.PlaceEvent, place *db_models.Place, ctx context.Context) {
	var err error
	switch event {
	case repositories.PlaceCreated, repositories.PlaceUpdated:
		if place.IsPublished() {
			err = s.syncPublished(place, ctx)
		} else {
			err = s.removeFromIndexes(place.DocumentID, ctx)
		}
	case repositories.PlaceDeleted:
		err = s.removeFromIndexes(place.DocumentID, ctx)
	}

	if err != nil {
		log.Printf("Sync failed for place %s after %s: %v", place.DocumentID, event, err)
	}
}

func (s *SyncService) SyncByDocumentID(documentID string, ctx context.Context) error {
	place, err := s.places.GetByDocumentID(ctx, documentID)
	if err != nil {
		log.Printf("Error fetching place %s: %v", documentID, err)
		return utils.ErrDatabaseError
	}
	if place == nil {
		return utils.ErrPlaceNotFound
	}

	if !place.IsPublished() {
		return s.removeFromIndexes(place.DocumentID, ctx)
	}
	return s.syncPublished(place, ctx)
}

// SyncAll re-indexes every published place. Individual failures are
// counted, logged and skipped; the batch always runs to completion.
func (s *SyncService) SyncAll(ctx context.Context) (response_models.SyncReport, error) {
	var report response_models.SyncReport

	for page := 1; ; page++ {
		places, err := s.places.ListPublished(ctx, page, syncAllPageSize)
		if err != nil {
			log.Printf("Error listing published places (page %d): %v", page, err)
			return report, utils.ErrDatabaseError
		}
		if len(places) == 0 {
			break
		}

		for i := range places {
			if err := s.syncPublished(&places[i], ctx); err != nil {
				log.Printf("Sync failed for place %s during full re-sync: %v", places[i].DocumentID, err)
				report.Failed++
				continue
			}
			report.Synced++
		}

		if len(places) < syncAllPageSize {
			break
		}
	}

	return report, nil
}

// syncPublished projects the place once and upserts both indexes
// concurrently. The returned error is only an aggregate for callers
// that count failures; each index write has already been attempted.
func (s *SyncService) syncPublished(place *db_models.Place, ctx context.Context) error {
	projection := ProjectPlace(place)

	var wg sync.WaitGroup
	var keywordErr, vectorErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		keywordErr = s.upsertKeyword(projection.Document, ctx)
	}()
	go func() {
		defer wg.Done()
		vectorErr = s.upsertVector(place.DocumentID, projection, ctx)
	}()
	wg.Wait()

	return errors.Join(keywordErr, vectorErr)
}

func (s *SyncService) upsertKeyword(doc index_models.SearchDocument, ctx context.Context) error {
	if err := s.keywords.UpsertMany(ctx, []index_models.SearchDocument{doc}); err != nil {
		log.Printf("Keyword upsert failed for place %s: %v", doc.ID, err)
		return err
	}
	return nil
}

func (s *SyncService) upsertVector(documentID string, projection Projection, ctx context.Context) error {
	vector, err := s.embedder.Embed(projection.SearchText, ctx)
	if err != nil {
		log.Printf("Embedding failed for place %s: %v", documentID, err)
		return err
	}
	if err := s.vectors.Upsert(ctx, documentID, vector, projection.Payload); err != nil {
		log.Printf("Vector upsert failed for place %s: %v", documentID, err)
		return err
	}
	return nil
}

func (s *SyncService) removeFromIndexes(documentID string, ctx context.Context) error {
	var wg sync.WaitGroup
	var keywordErr, vectorErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		if keywordErr = s.keywords.Delete(ctx, documentID); keywordErr != nil {
			log.Printf("Keyword delete failed for place %s: %v", documentID, keywordErr)
		}
	}()
	go func() {
		defer wg.Done()
		if vectorErr = s.vectors.Delete(ctx, documentID); vectorErr != nil {
			log.Printf("Vector delete failed for place %s: %v", documentID, vectorErr)
		}
	}()
	wg.Wait()

	return errors.Join(keywordErr, vectorErr)
}
