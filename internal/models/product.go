package models

import "time"

// Category is the fixed set of product departments.
type Category string

const (
	CategoryMen         Category = "men"
	CategoryWomen       Category = "women"
	CategoryElectronics Category = "electronics"
	CategoryJewelry     Category = "jewelry"
)

// Categories lists every accepted category in display order.
var Categories = []Category{CategoryMen, CategoryWomen, CategoryElectronics, CategoryJewelry}

// Product represents a product in the store.
type Product struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(24)"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description" gorm:"not null"`
	Category    Category  `json:"category" gorm:"type:varchar(20);not null"`
	ImageURL    string    `json:"imageUrl" gorm:"column:image_url;not null"`
	Price       float64   `json:"price" gorm:"not null"`
	Creator     string    `json:"creator" gorm:"index;not null"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProductInput is a product payload that has passed schema validation.
// Only the validation package builds one from request data.
type ProductInput struct {
	Title       string
	Description string
	Category    Category
	ImageURL    string
	Price       float64
	Creator     string
}

// NewProduct builds an unsaved Product from validated input.
func (in ProductInput) NewProduct(id string, now time.Time) Product {
	return Product{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		ImageURL:    in.ImageURL,
		Price:       in.Price,
		Creator:     in.Creator,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// ProductUpdate carries the fields to change on an existing product.
// Nil fields are left untouched.
type ProductUpdate struct {
	Title       *string
	Description *string
	Category    *Category
	ImageURL    *string
	Price       *float64
	Creator     *string
}

// FullUpdate returns an update that replaces every user-supplied field.
func (in ProductInput) FullUpdate() ProductUpdate {
	return ProductUpdate{
		Title:       &in.Title,
		Description: &in.Description,
		Category:    &in.Category,
		ImageURL:    &in.ImageURL,
		Price:       &in.Price,
		Creator:     &in.Creator,
	}
}

// Apply merges the update onto p. UpdatedAt is left to the caller.
func (u ProductUpdate) Apply(p *Product) {
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.ImageURL != nil {
		p.ImageURL = *u.ImageURL
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Creator != nil {
		p.Creator = *u.Creator
	}
}

// Columns returns the update as a column -> value map for SQL stores.
func (u ProductUpdate) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if u.Title != nil {
		cols["title"] = *u.Title
	}
	if u.Description != nil {
		cols["description"] = *u.Description
	}
	if u.Category != nil {
		cols["category"] = string(*u.Category)
	}
	if u.ImageURL != nil {
		cols["image_url"] = *u.ImageURL
	}
	if u.Price != nil {
		cols["price"] = *u.Price
	}
	if u.Creator != nil {
		cols["creator"] = *u.Creator
	}
	return cols
}
