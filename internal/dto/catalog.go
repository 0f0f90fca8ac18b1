package dto

// CategoryRequest creates or renames a category.
type CategoryRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

// SubcategoryRequest creates a subcategory under a category.
type SubcategoryRequest struct {
	Name       string `json:"name" validate:"required,min=2,max=100"`
	CategoryID string `json:"category_id" validate:"required,uuid"`
}

// UpdateSubcategoryRequest patches a subcategory.
type UpdateSubcategoryRequest struct {
	Name       *string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	CategoryID *string `json:"category_id,omitempty" validate:"omitempty,uuid"`
}

// ServiceRequest creates a bookable service.
type ServiceRequest struct {
	Name            string  `json:"name" validate:"required,min=1,max=100"`
	Price           float64 `json:"price" validate:"gte=0"`
	DurationMinutes int     `json:"duration_minutes" validate:"required,gt=0"`
	SubcategoryID   string  `json:"subcategory_id" validate:"required,uuid"`
	ProviderID      string  `json:"provider_id" validate:"required,uuid"`
	StaffID         *string `json:"staff_id,omitempty" validate:"omitempty,uuid"`
}

// UpdateServiceRequest patches a service.
type UpdateServiceRequest struct {
	Name            *string  `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Price           *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	DurationMinutes *int     `json:"duration_minutes,omitempty" validate:"omitempty,gt=0"`
	SubcategoryID   *string  `json:"subcategory_id,omitempty" validate:"omitempty,uuid"`
	StaffID         *string  `json:"staff_id,omitempty" validate:"omitempty,uuid"`
}

// CatalogListQuery filters catalog listings.
type CatalogListQuery struct {
	Status        string `form:"status" validate:"omitempty,oneof=active inactive"`
	CategoryID    string `form:"category_id" validate:"omitempty,uuid"`
	SubcategoryID string `form:"subcategory_id" validate:"omitempty,uuid"`
	ProviderID    string `form:"provider_id" validate:"omitempty,uuid"`
	StaffID       string `form:"staff_id" validate:"omitempty,uuid"`
}
