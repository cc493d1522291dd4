package db_models

// Category tags a place. Slug is the stable, URL-safe value used for
// index filtering; Name is the display value.
type Category struct {
	BaseModel
	Name string `gorm:"unique;not null"`
	Slug string `gorm:"unique;not null"`
}
