package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"placehub/internal/models/db_models"
	"placehub/internal/repositories"
	"placehub/pkg/utils"
)

func newSyncFixture() (*fakePlaceRepo, *fakeVectorRepo, *fakeKeywordRepo, *fakeEmbedder, SyncServiceInterface) {
	places := newFakePlaceRepo()
	vectors := newFakeVectorRepo()
	keywords := newFakeKeywordRepo()
	embedder := newFakeEmbedder()
	svc := NewSyncService(places, vectors, keywords, embedder)
	return places, vectors, keywords, embedder, svc
}

func TestSyncCreatePublishedIndexesBoth(t *testing.T) {
	_, vectors, keywords, _, svc := newSyncFixture()
	place := relaxSpa()

	svc.HandlePlaceEvent(repositories.PlaceCreated, place, context.Background())

	doc, ok := keywords.doc(place.DocumentID)
	require.True(t, ok)
	assert.Equal(t, []string{"Massage"}, doc.ServiceNames)

	_, ok = vectors.point(place.DocumentID)
	assert.True(t, ok)
}

func TestSyncCreateDraftIsRemoval(t *testing.T) {
	_, vectors, keywords, _, svc := newSyncFixture()
	place := relaxSpa()
	place.Status = db_models.PlaceStatusDraft

	svc.HandlePlaceEvent(repositories.PlaceCreated, place, context.Background())

	_, ok := keywords.doc(place.DocumentID)
	assert.False(t, ok)
	_, ok = vectors.point(place.DocumentID)
	assert.False(t, ok)
}

func TestSyncIsIdempotent(t *testing.T) {
	_, vectors, keywords, _, svc := newSyncFixture()
	place := relaxSpa()

	svc.HandlePlaceEvent(repositories.PlaceCreated, place, context.Background())
	firstDoc, _ := keywords.doc(place.DocumentID)
	firstPoint, _ := vectors.point(place.DocumentID)

	svc.HandlePlaceEvent(repositories.PlaceUpdated, place, context.Background())
	secondDoc, _ := keywords.doc(place.DocumentID)
	secondPoint, _ := vectors.point(place.DocumentID)

	assert.Equal(t, firstDoc, secondDoc)
	assert.Equal(t, firstPoint.vector, secondPoint.vector)
	assert.Equal(t, firstPoint.payload, secondPoint.payload)
}

func TestSyncUnpublishRemovesFromBothIndexes(t *testing.T) {
	_, vectors, keywords, _, svc := newSyncFixture()
	place := relaxSpa()

	svc.HandlePlaceEvent(repositories.PlaceCreated, place, context.Background())

	unpublished := *place
	unpublished.Status = db_models.PlaceStatusDraft
	svc.HandlePlaceEvent(repositories.PlaceUpdated, &unpublished, context.Background())

	_, ok := keywords.doc(place.DocumentID)
	assert.False(t, ok)
	_, ok = vectors.point(place.DocumentID)
	assert.False(t, ok)
}

func TestSyncDeleteRemovesFromBothIndexes(t *testing.T) {
	_, vectors, keywords, _, svc := newSyncFixture()
	place := relaxSpa()

	svc.HandlePlaceEvent(repositories.PlaceCreated, place, context.Background())
	svc.HandlePlaceEvent(repositories.PlaceDeleted, place, context.Background())

	assert.Contains(t, keywords.deleted, place.DocumentID)
	assert.Contains(t, vectors.deleted, place.DocumentID)
}

// Rapid update-then-unpublish has no ordering guarantee across events;
// applied in order, the last write wins and the place ends up absent.
func TestSyncUpdateThenUnpublishLastWriteWins(t *testing.T) {
	_, vectors, keywords, _, svc := newSyncFixture()
	place := relaxSpa()

	svc.HandlePlaceEvent(repositories.PlaceCreated, place, context.Background())
	svc.HandlePlaceEvent(repositories.PlaceUpdated, place, context.Background())

	unpublished := *place
	unpublished.Status = db_models.PlaceStatusDraft
	svc.HandlePlaceEvent(repositories.PlaceUpdated, &unpublished, context.Background())
	svc.HandlePlaceEvent(repositories.PlaceDeleted, &unpublished, context.Background())

	_, ok := keywords.doc(place.DocumentID)
	assert.False(t, ok)
	_, ok = vectors.point(place.DocumentID)
	assert.False(t, ok)
}

func TestSyncOneMissingPlace(t *testing.T) {
	_, _, _, _, svc := newSyncFixture()

	err := svc.SyncByDocumentID("does-not-exist", context.Background())

	assert.ErrorIs(t, err, utils.ErrPlaceNotFound)
}

func TestSyncOnePublishedPlace(t *testing.T) {
	places, vectors, keywords, _, svc := newSyncFixture()
	place := relaxSpa()
	places.places[place.DocumentID] = *place

	err := svc.SyncByDocumentID(place.DocumentID, context.Background())

	require.NoError(t, err)
	_, ok := keywords.doc(place.DocumentID)
	assert.True(t, ok)
	_, ok = vectors.point(place.DocumentID)
	assert.True(t, ok)
}

func TestSyncAllContinuesPastPartialFailure(t *testing.T) {
	places, vectors, keywords, _, svc := newSyncFixture()

	for _, id := range []string{"place-1", "place-2", "place-3"} {
		p := relaxSpa()
		p.DocumentID = id
		places.published = append(places.published, *p)
	}
	vectors.upsertErrOn["place-2"] = errors.New("vector backend down")

	report, err := svc.SyncAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, report.Synced)
	assert.Equal(t, 1, report.Failed)

	// The keyword index still received all three: the failing vector
	// upsert never blocks the sibling index.
	for _, id := range []string{"place-1", "place-2", "place-3"} {
		_, ok := keywords.doc(id)
		assert.True(t, ok, id)
	}
	_, ok := vectors.point("place-2")
	assert.False(t, ok)
}

func TestSyncEmbeddingFailureDoesNotBlockKeywordIndex(t *testing.T) {
	places, vectors, keywords, embedder, svc := newSyncFixture()
	place := relaxSpa()
	places.places[place.DocumentID] = *place
	embedder.err = utils.ErrEmbeddingQuotaExceeded

	err := svc.SyncByDocumentID(place.DocumentID, context.Background())

	assert.Error(t, err)
	_, ok := keywords.doc(place.DocumentID)
	assert.True(t, ok)
	_, ok = vectors.point(place.DocumentID)
	assert.False(t, ok)
}
