package repositories

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/qdrant/go-client/qdrant"

	"placehub/internal/models/index_models"
	"placehub/pkg/utils"
)

// GeoRadius is a radius filter around a center point, radius in meters.
type GeoRadius struct {
	Lat     float64
	Lng     float64
	RadiusM float64
}

// VectorFilter is a conjunctive payload filter: every present clause is
// ANDed into the query.
type VectorFilter struct {
	Geo        *GeoRadius
	City       string
	Province   string
	District   string
	Ward       string
	Categories []string
	MinRating  *float64
}

// VectorCandidate is one scored hit from the vector index, flattened
// from the stored payload.
type VectorCandidate struct {
	DocumentID  string
	Score       float64
	Name        string
	Description string
	Address     string
	City        string
	Categories  []string
	Rating      float64
	ReviewCount int
	Popularity  int64
	Lat         float64
	Lon         float64
	HasGeo      bool
}

type VectorIndexRepository interface {
	EnsureCollection(ctx context.Context, dim int) error
	Upsert(ctx context.Context, documentID string, vector []float32, payload index_models.VectorPayload) error
	Delete(ctx context.Context, documentID string) error
	Search(ctx context.Context, vector []float32, filter VectorFilter, limit, offset int) ([]VectorCandidate, error)
	ScrollByFilter(ctx context.Context, filter VectorFilter, limit int) ([]VectorCandidate, error)
	FetchVector(ctx context.Context, documentID string) ([]float32, error)
	Recommend(ctx context.Context, documentID string, limit int) ([]VectorCandidate, error)
}

type qdrantIndexRepository struct {
	client     *qdrant.Client
	collection string
	dim        int

	mu      sync.Mutex
	ensured bool
}

func NewVectorIndexRepository(client *qdrant.Client, collection string, dim int) VectorIndexRepository {
	return &qdrantIndexRepository{
		client:     client,
		collection: collection,
		dim:        dim,
	}
}

// Payload fields that get a secondary index so filtered search does not
// fall back to a full scan.
var keywordIndexFields = []string{"city", "province", "district", "ward", "categories"}

func (r *qdrantIndexRepository) EnsureCollection(ctx context.Context, dim int) error {
	exists, err := r.client.CollectionExists(ctx, r.collection)
	if err != nil {
		return fmt.Errorf("collection exists check: %w", err)
	}

	if exists {
		info, err := r.client.GetCollectionInfo(ctx, r.collection)
		if err != nil {
			return fmt.Errorf("collection info: %w", err)
		}
		size := info.GetConfig().GetParams().GetVectorsConfig().GetParams().GetSize()
		if size != 0 && int(size) != dim {
			return fmt.Errorf("%w: collection %q has %d, embedder produces %d",
				utils.ErrDimensionMismatch, r.collection, size, dim)
		}
		return nil
	}

	if err := r.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: r.collection,
		VectorsConfig: &qdrant.VectorsConfig{
			Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size:     uint64(dim),
					Distance: qdrant.Distance_Cosine,
				},
			},
		},
	}); err != nil {
		return fmt.Errorf("create collection: %w", err)
	}

	for _, field := range keywordIndexFields {
		if _, err := r.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: r.collection,
			FieldName:      field,
			FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		}); err != nil {
			return fmt.Errorf("index payload field %s: %w", field, err)
		}
	}
	if _, err := r.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: r.collection,
		FieldName:      "rating",
		FieldType:      qdrant.FieldType_FieldTypeFloat.Enum(),
	}); err != nil {
		return fmt.Errorf("index payload field rating: %w", err)
	}
	if _, err := r.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: r.collection,
		FieldName:      "location",
		FieldType:      qdrant.FieldType_FieldTypeGeo.Enum(),
	}); err != nil {
		return fmt.Errorf("index payload field location: %w", err)
	}

	log.Printf("Created vector collection %s (dim=%d)", r.collection, dim)
	return nil
}

// ensure lazily self-heals a missing collection on first use.
func (r *qdrantIndexRepository) ensure(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ensured {
		return nil
	}
	if err := r.EnsureCollection(ctx, r.dim); err != nil {
		return err
	}
	r.ensured = true
	return nil
}

func (r *qdrantIndexRepository) Upsert(ctx context.Context, documentID string, vector []float32, payload index_models.VectorPayload) error {
	if err := r.ensure(ctx); err != nil {
		return err
	}

	_, err := r.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: r.collection,
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewIDUUID(utils.PointUUID(documentID)),
				Vectors: qdrant.NewVectors(vector...),
				Payload: qdrant.NewValueMap(payload.Map()),
			},
		},
	})
	return err
}

func (r *qdrantIndexRepository) Delete(ctx context.Context, documentID string) error {
	if err := r.ensure(ctx); err != nil {
		return err
	}

	_, err := r.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: r.collection,
		Points:         qdrant.NewPointsSelector(qdrant.NewIDUUID(utils.PointUUID(documentID))),
	})
	return err
}

func (r *qdrantIndexRepository) Search(ctx context.Context, vector []float32, filter VectorFilter, limit, offset int) ([]VectorCandidate, error) {
	if err := r.ensure(ctx); err != nil {
		return nil, err
	}

	qLimit := uint64(limit)
	qOffset := uint64(offset)
	resp, err := r.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: r.collection,
		Query:          qdrant.NewQuery(vector...),
		Filter:         buildVectorFilter(filter),
		Limit:          &qLimit,
		Offset:         &qOffset,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, err
	}

	out := make([]VectorCandidate, 0, len(resp))
	for _, pt := range resp {
		out = append(out, toCandidate(pt.GetId(), float64(pt.GetScore()), pt.GetPayload()))
	}
	return out, nil
}

func (r *qdrantIndexRepository) ScrollByFilter(ctx context.Context, filter VectorFilter, limit int) ([]VectorCandidate, error) {
	if err := r.ensure(ctx); err != nil {
		return nil, err
	}

	sLimit := uint32(limit)
	resp, err := r.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: r.collection,
		Filter:         buildVectorFilter(filter),
		Limit:          &sLimit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, err
	}

	out := make([]VectorCandidate, 0, len(resp))
	for _, pt := range resp {
		out = append(out, toCandidate(pt.GetId(), 0, pt.GetPayload()))
	}
	return out, nil
}

func (r *qdrantIndexRepository) FetchVector(ctx context.Context, documentID string) ([]float32, error) {
	if err := r.ensure(ctx); err != nil {
		return nil, err
	}

	pts, err := r.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: r.collection,
		Ids:            []*qdrant.PointId{qdrant.NewIDUUID(utils.PointUUID(documentID))},
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, err
	}
	if len(pts) == 0 {
		return nil, utils.ErrPlaceNotFound
	}

	data := pts[0].GetVectors().GetVector().GetData()
	if len(data) == 0 {
		return nil, utils.ErrPlaceNotFound
	}
	return data, nil
}

// Recommend runs a nearest-neighbor search seeded by the stored vector
// of documentID. The seed is its own nearest neighbor, so it is dropped
// from the result before truncation.
func (r *qdrantIndexRepository) Recommend(ctx context.Context, documentID string, limit int) ([]VectorCandidate, error) {
	vector, err := r.FetchVector(ctx, documentID)
	if err != nil {
		return nil, err
	}

	candidates, err := r.Search(ctx, vector, VectorFilter{}, limit+1, 0)
	if err != nil {
		return nil, err
	}

	out := make([]VectorCandidate, 0, limit)
	for _, c := range candidates {
		if c.DocumentID == documentID {
			continue
		}
		out = append(out, c)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func buildVectorFilter(f VectorFilter) *qdrant.Filter {
	var must []*qdrant.Condition

	if f.Geo != nil {
		must = append(must, qdrant.NewGeoRadius("location", f.Geo.Lat, f.Geo.Lng, float32(f.Geo.RadiusM)))
	}
	for field, value := range map[string]string{
		"city":     f.City,
		"province": f.Province,
		"district": f.District,
		"ward":     f.Ward,
	} {
		if value != "" {
			must = append(must, qdrant.NewMatch(field, value))
		}
	}
	if len(f.Categories) > 0 {
		must = append(must, qdrant.NewMatchKeywords("categories", f.Categories...))
	}
	if f.MinRating != nil {
		gte := *f.MinRating
		must = append(must, qdrant.NewRange("rating", &qdrant.Range{Gte: &gte}))
	}

	if len(must) == 0 {
		return nil
	}
	return &qdrant.Filter{Must: must}
}

func toCandidate(id *qdrant.PointId, score float64, payload map[string]*qdrant.Value) VectorCandidate {
	c := VectorCandidate{
		DocumentID: id.GetUuid(),
		Score:      score,
	}

	for key, v := range payload {
		switch key {
		case "documentId":
			if s := v.GetStringValue(); s != "" {
				c.DocumentID = s
			}
		case "name":
			c.Name = v.GetStringValue()
		case "description":
			c.Description = v.GetStringValue()
		case "address":
			c.Address = v.GetStringValue()
		case "city":
			c.City = v.GetStringValue()
		case "categories":
			for _, item := range v.GetListValue().GetValues() {
				c.Categories = append(c.Categories, item.GetStringValue())
			}
		case "rating":
			c.Rating = v.GetDoubleValue()
		case "reviewCount":
			c.ReviewCount = int(v.GetIntegerValue())
		case "popularity":
			c.Popularity = v.GetIntegerValue()
		case "location":
			fields := v.GetStructValue().GetFields()
			if fields != nil {
				c.Lat = fields["lat"].GetDoubleValue()
				c.Lon = fields["lon"].GetDoubleValue()
				c.HasGeo = true
			}
		}
	}
	return c
}
