package repositories

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"placehub/internal/models/db_models"
)

type PlaceEvent string

const (
	PlaceCreated PlaceEvent = "created"
	PlaceUpdated PlaceEvent = "updated"
	PlaceDeleted PlaceEvent = "deleted"
)

// PlaceObserver receives lifecycle events after a place mutation has
// committed. Observers run on the side channel: errors and panics are
// logged and never reach the mutation path.
type PlaceObserver interface {
	HandlePlaceEvent(event PlaceEvent, place *db_models.Place, ctx context.Context)
}

type PlaceRepository interface {
	CreatePlace(ctx context.Context, place *db_models.Place) (uuid.UUID, error)
	UpdatePlace(ctx context.Context, place *db_models.Place) error
	Delete(ctx context.Context, id uuid.UUID) error
	SetStatus(ctx context.Context, id uuid.UUID, status string) error

	GetByID(ctx context.Context, id uuid.UUID) (*db_models.Place, error)
	GetByDocumentID(ctx context.Context, documentID string) (*db_models.Place, error)
	FindByDocumentIDs(ctx context.Context, documentIDs []string) ([]db_models.Place, error)
	ListPublished(ctx context.Context, page, pageSize int) ([]db_models.Place, error)
	FindCategoriesBySlugs(ctx context.Context, slugs []string) ([]db_models.Category, error)

	Register(observer PlaceObserver)
}

type placeRepository struct {
	db        *gorm.DB
	observers []PlaceObserver
}

func NewPlaceRepository(db *gorm.DB) PlaceRepository {
	return &placeRepository{db: db}
}

func (r *placeRepository) Register(observer PlaceObserver) {
	r.observers = append(r.observers, observer)
}

// notify dispatches fire-and-forget: the mutation that triggered the
// event has already committed and must not be failed or delayed by
// index work.
func (r *placeRepository) notify(event PlaceEvent, place *db_models.Place) {
	if place == nil {
		return
	}
	for _, obs := range r.observers {
		go func(obs PlaceObserver) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Printf("Place observer panicked on %s %s: %v", event, place.DocumentID, rec)
				}
			}()
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			obs.HandlePlaceEvent(event, place, ctx)
		}(obs)
	}
}

func (r *placeRepository) CreatePlace(ctx context.Context, place *db_models.Place) (uuid.UUID, error) {
	if place.DocumentID == "" {
		place.DocumentID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(place).Error; err != nil {
		return uuid.Nil, err
	}
	created, err := r.GetByID(ctx, place.ID)
	if err != nil || created == nil {
		created = place
	}
	r.notify(PlaceCreated, created)
	return place.ID, nil
}

func (r *placeRepository) UpdatePlace(ctx context.Context, place *db_models.Place) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("place_id = ?", place.ID).Delete(&db_models.PlaceService{}).Error; err != nil {
			return err
		}
		if err := tx.Model(place).Association("Categories").Replace(place.Categories); err != nil {
			return err
		}
		result := tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(place)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	updated, ferr := r.GetByID(ctx, place.ID)
	if ferr != nil || updated == nil {
		updated = place
	}
	r.notify(PlaceUpdated, updated)
	return nil
}

func (r *placeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// Capture the row first: the deleted event needs the last-known
	// document identifier to clear both indexes.
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}

	if err := r.db.WithContext(ctx).Delete(&db_models.Place{}, "id = ?", id).Error; err != nil &&
		!errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	r.notify(PlaceDeleted, existing)
	return nil
}

func (r *placeRepository) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	result := r.db.WithContext(ctx).
		Model(&db_models.Place{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	updated, err := r.GetByID(ctx, id)
	if err == nil && updated != nil {
		r.notify(PlaceUpdated, updated)
	}
	return nil
}

// ---------------------------------------------------------------
// Read helpers return a default value + nil error when no rows are
// found.
// ---------------------------------------------------------------

func (r *placeRepository) GetByID(ctx context.Context, id uuid.UUID) (*db_models.Place, error) {
	var place db_models.Place
	err := r.db.WithContext(ctx).
		Preload("Services").
		Preload("Categories").
		First(&place, "id = ?", id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &place, nil
}

func (r *placeRepository) GetByDocumentID(ctx context.Context, documentID string) (*db_models.Place, error) {
	var place db_models.Place
	err := r.db.WithContext(ctx).
		Preload("Services").
		Preload("Categories").
		First(&place, "document_id = ?", documentID).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &place, nil
}

func (r *placeRepository) FindByDocumentIDs(ctx context.Context, documentIDs []string) ([]db_models.Place, error) {
	if len(documentIDs) == 0 {
		return []db_models.Place{}, nil
	}

	var places []db_models.Place
	err := r.db.WithContext(ctx).
		Preload("Services").
		Preload("Categories").
		Where("document_id IN ?", documentIDs).
		Find(&places).Error
	if err != nil {
		return nil, err
	}
	return places, nil
}

func (r *placeRepository) ListPublished(ctx context.Context, page, pageSize int) ([]db_models.Place, error) {
	var places []db_models.Place
	offset := (page - 1) * pageSize

	err := r.db.WithContext(ctx).
		Preload("Services").
		Preload("Categories").
		Where("status = ?", db_models.PlaceStatusPublished).
		Order("created_at").
		Offset(offset).
		Limit(pageSize).
		Find(&places).Error
	if err != nil {
		return nil, err
	}
	return places, nil
}

func (r *placeRepository) FindCategoriesBySlugs(ctx context.Context, slugs []string) ([]db_models.Category, error) {
	if len(slugs) == 0 {
		return []db_models.Category{}, nil
	}

	var categories []db_models.Category
	err := r.db.WithContext(ctx).
		Where("slug IN ?", slugs).
		Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}
