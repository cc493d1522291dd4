package db_models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	PlaceStatusDraft     = "draft"
	PlaceStatusPublished = "published"
)

// Place is a listed business location. DocumentID is the stable CMS
// identifier; the uuid primary key is internal to this store.
type Place struct {
	BaseModel
	DocumentID  string `gorm:"uniqueIndex;not null"`
	Name        string `gorm:"not null"`
	Description string
	Status      string `gorm:"default:draft;index"`

	AddressLine string
	City        string
	Latitude    float64
	Longitude   float64

	ProvinceCode string
	ProvinceName string
	DistrictCode string
	DistrictName string
	WardCode     string
	WardName     string

	Rating      float64
	ReviewCount int
	Popularity  int64

	Tags pq.StringArray `gorm:"type:text[]"`

	Services   []PlaceService `gorm:"foreignKey:PlaceID;constraint:OnDelete:CASCADE"`
	Categories []Category     `gorm:"many2many:place_categories"`
}

func (p *Place) IsPublished() bool {
	return p.Status == PlaceStatusPublished
}

// PlaceService is one service offered at a place, e.g. "Foot Massage"
// in group "Massage".
type PlaceService struct {
	BaseModel
	PlaceID uuid.UUID `gorm:"type:uuid;index"`
	Name    string
	Group   string
}
