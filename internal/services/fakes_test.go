package services

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"placehub/internal/models/db_models"
	"placehub/internal/models/index_models"
	"placehub/internal/repositories"
)

// ---------------------------------------------------------------
// in-memory fakes for the adapter interfaces
// ---------------------------------------------------------------

type fakeKeywordRepo struct {
	mu      sync.Mutex
	docs    map[string]index_models.SearchDocument
	deleted []string

	searchHits  []index_models.SearchDocument
	searchTotal int64
	lastFilter  repositories.KeywordFilter

	facetDist   map[string]map[string]int
	facetCalls  int
	upsertErr   error
	upsertErrOn map[string]error
}

func newFakeKeywordRepo() *fakeKeywordRepo {
	return &fakeKeywordRepo{
		docs:        make(map[string]index_models.SearchDocument),
		upsertErrOn: make(map[string]error),
	}
}

func (f *fakeKeywordRepo) EnsureIndex(ctx context.Context) error { return nil }

func (f *fakeKeywordRepo) UpsertMany(ctx context.Context, docs []index_models.SearchDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range docs {
		if err, ok := f.upsertErrOn[d.ID]; ok {
			return err
		}
		if f.upsertErr != nil {
			return f.upsertErr
		}
		f.docs[d.ID] = d
	}
	return nil
}

func (f *fakeKeywordRepo) Delete(ctx context.Context, documentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs, documentID)
	f.deleted = append(f.deleted, documentID)
	return nil
}

func (f *fakeKeywordRepo) Search(ctx context.Context, query string, filter repositories.KeywordFilter, sort []string, limit, offset int) (repositories.KeywordSearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFilter = filter

	hits := f.searchHits
	if offset < len(hits) {
		end := offset + limit
		if end > len(hits) {
			end = len(hits)
		}
		hits = hits[offset:end]
	} else {
		hits = nil
	}
	return repositories.KeywordSearchResult{Hits: hits, Total: f.searchTotal}, nil
}

func (f *fakeKeywordRepo) Facets(ctx context.Context, query string, fields []string) (map[string]map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.facetCalls++
	return f.facetDist, nil
}

func (f *fakeKeywordRepo) doc(id string) (index_models.SearchDocument, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.docs[id]
	return d, ok
}

type storedVector struct {
	vector  []float32
	payload index_models.VectorPayload
}

type fakeVectorRepo struct {
	mu      sync.Mutex
	points  map[string]storedVector
	deleted []string

	searchHits []repositories.VectorCandidate
	scrollHits []repositories.VectorCandidate
	recommends []repositories.VectorCandidate

	upsertErrOn map[string]error
}

func newFakeVectorRepo() *fakeVectorRepo {
	return &fakeVectorRepo{
		points:      make(map[string]storedVector),
		upsertErrOn: make(map[string]error),
	}
}

func (f *fakeVectorRepo) EnsureCollection(ctx context.Context, dim int) error { return nil }

func (f *fakeVectorRepo) Upsert(ctx context.Context, documentID string, vector []float32, payload index_models.VectorPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.upsertErrOn[documentID]; ok {
		return err
	}
	f.points[documentID] = storedVector{vector: vector, payload: payload}
	return nil
}

func (f *fakeVectorRepo) Delete(ctx context.Context, documentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.points, documentID)
	f.deleted = append(f.deleted, documentID)
	return nil
}

func (f *fakeVectorRepo) Search(ctx context.Context, vector []float32, filter repositories.VectorFilter, limit, offset int) ([]repositories.VectorCandidate, error) {
	return f.searchHits, nil
}

func (f *fakeVectorRepo) ScrollByFilter(ctx context.Context, filter repositories.VectorFilter, limit int) ([]repositories.VectorCandidate, error) {
	return f.scrollHits, nil
}

func (f *fakeVectorRepo) FetchVector(ctx context.Context, documentID string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.points[documentID]; ok {
		return p.vector, nil
	}
	return nil, nil
}

func (f *fakeVectorRepo) Recommend(ctx context.Context, documentID string, limit int) ([]repositories.VectorCandidate, error) {
	return f.recommends, nil
}

func (f *fakeVectorRepo) point(id string) (storedVector, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.points[id]
	return p, ok
}

// fakeEmbedder derives a deterministic vector from the text so
// idempotence assertions hold.
type fakeEmbedder struct {
	err  error
	dim  int
	seen []string
	mu   sync.Mutex
}

func newFakeEmbedder() *fakeEmbedder { return &fakeEmbedder{dim: 4} }

func (f *fakeEmbedder) Init(ctx context.Context) error { return nil }

func (f *fakeEmbedder) Dimension() int { return f.dim }

func (f *fakeEmbedder) Embed(text string, ctx context.Context) ([]float32, error) {
	f.mu.Lock()
	f.seen = append(f.seen, text)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	vec := make([]float32, f.dim)
	for i, r := range text {
		vec[i%f.dim] += float32(r)
	}
	return vec, nil
}

type fakePlaceRepo struct {
	mu        sync.Mutex
	places    map[string]db_models.Place // by document id
	published []db_models.Place
	findCalls int
	observers []repositories.PlaceObserver
}

func newFakePlaceRepo() *fakePlaceRepo {
	return &fakePlaceRepo{places: make(map[string]db_models.Place)}
}

func (f *fakePlaceRepo) CreatePlace(ctx context.Context, place *db_models.Place) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.places[place.DocumentID] = *place
	return place.ID, nil
}

func (f *fakePlaceRepo) UpdatePlace(ctx context.Context, place *db_models.Place) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.places[place.DocumentID] = *place
	return nil
}

func (f *fakePlaceRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (f *fakePlaceRepo) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	return nil
}

func (f *fakePlaceRepo) GetByID(ctx context.Context, id uuid.UUID) (*db_models.Place, error) {
	return nil, nil
}

func (f *fakePlaceRepo) GetByDocumentID(ctx context.Context, documentID string) (*db_models.Place, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.places[documentID]; ok {
		copied := p
		return &copied, nil
	}
	return nil, nil
}

func (f *fakePlaceRepo) FindByDocumentIDs(ctx context.Context, documentIDs []string) ([]db_models.Place, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findCalls++
	var out []db_models.Place
	for _, id := range documentIDs {
		if p, ok := f.places[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePlaceRepo) ListPublished(ctx context.Context, page, pageSize int) ([]db_models.Place, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	start := (page - 1) * pageSize
	if start >= len(f.published) {
		return nil, nil
	}
	end := start + pageSize
	if end > len(f.published) {
		end = len(f.published)
	}
	return f.published[start:end], nil
}

func (f *fakePlaceRepo) FindCategoriesBySlugs(ctx context.Context, slugs []string) ([]db_models.Category, error) {
	return nil, nil
}

func (f *fakePlaceRepo) Register(observer repositories.PlaceObserver) {
	f.observers = append(f.observers, observer)
}
