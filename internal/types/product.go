package types

import (
	"time"

	"gorm.io/datatypes"
)

// Product is a catalog row. IDs are slugs from the seed file. Concerns,
// SkinTypes and AvoidFor are scorer inputs; Ingredients and Tags feed the
// product detail surface.
type Product struct {
	ID          string         `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null" json:"name"`
	Brand       string         `json:"brand"`
	Category    string         `gorm:"not null;index" json:"category"`
	Description string         `json:"description"`
	Price       *float64       `json:"price,omitempty"`
	Rating      *float64       `json:"rating,omitempty"`
	ImageURL    string         `gorm:"column:image_url" json:"image_url"`
	Ingredients datatypes.JSON `gorm:"type:jsonb" json:"ingredients"`
	Tags        datatypes.JSON `gorm:"type:jsonb" json:"tags"`
	Concerns    datatypes.JSON `gorm:"type:jsonb" json:"concerns"`
	SkinTypes   datatypes.JSON `gorm:"type:jsonb;column:skin_types" json:"skin_types"`
	AvoidFor    datatypes.JSON `gorm:"type:jsonb;column:avoid_for" json:"avoid_for"`
	Published   bool           `gorm:"not null;index" json:"published"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
}

func (Product) TableName() string { return "product" }

// ProductIngredient is the JSON shape stored in Product.Ingredients.
type ProductIngredient struct {
	Name      string `json:"name"`
	Purpose   string `json:"purpose,omitempty"`
	Highlight bool   `json:"highlight,omitempty"`
}
