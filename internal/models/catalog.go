package models

import "time"

// Category groups subcategories of services.
type Category struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Subcategory belongs to a category.
type Subcategory struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	CategoryID string    `db:"category_id" json:"category_id"`
	Active     bool      `db:"active" json:"active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// Service is a bookable offering of a provider. Its duration defines the
// length of every appointment booked against it.
type Service struct {
	ID              string    `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	Price           float64   `db:"price" json:"price"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	SubcategoryID   string    `db:"subcategory_id" json:"subcategory_id"`
	ProviderID      string    `db:"provider_id" json:"provider_id"`
	StaffID         *string   `db:"staff_id" json:"staff_id,omitempty"`
	Active          bool      `db:"active" json:"active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// CatalogFilter narrows category, subcategory and service listings.
type CatalogFilter struct {
	Active        *bool
	CategoryID    string
	SubcategoryID string
	ProviderID    string
	StaffID       string
}
