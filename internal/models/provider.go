package models

import "time"

// Address holds the postal location of a provider.
type Address struct {
	Country      string   `db:"country" json:"country"`
	District     *string  `db:"district" json:"district,omitempty"`
	City         string   `db:"city" json:"city"`
	Neighborhood *string  `db:"neighborhood" json:"neighborhood,omitempty"`
	Street       string   `db:"street" json:"street"`
	StreetNumber string   `db:"street_number" json:"street_number"`
	BlockNumber  *string  `db:"block_number" json:"block_number,omitempty"`
	Apartment    *string  `db:"apartment" json:"apartment,omitempty"`
	Floor        *string  `db:"floor" json:"floor,omitempty"`
	PostalCode   string   `db:"postal_code" json:"postal_code"`
	Latitude     *float64 `db:"latitude" json:"latitude,omitempty"`
	Longitude    *float64 `db:"longitude" json:"longitude,omitempty"`
}

// ServiceProvider is a registered salon backed by an approved inquiry.
type ServiceProvider struct {
	ID          string    `db:"id" json:"id"`
	CompanyName string    `db:"company_name" json:"company_name"`
	TradeName   string    `db:"trade_name" json:"trade_name"`
	UIC         string    `db:"uic" json:"uic"`
	InquiryID   string    `db:"inquiry_id" json:"inquiry_id"`
	PhotoURL    *string   `db:"photo_url" json:"photo_url,omitempty"`
	Active      bool      `db:"active" json:"active"`
	OwnerIDs    []string  `db:"-" json:"owner_ids,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
	Address
}

// ProviderFilter narrows provider listings.
type ProviderFilter struct {
	Active   *bool
	OwnerID  string
	Page     int
	PageSize int
}
