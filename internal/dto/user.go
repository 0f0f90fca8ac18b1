package dto

import "github.com/noah-isme/salon-booking-api/internal/models"

// RegisterClientRequest is the public self-registration payload.
type RegisterClientRequest struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required,min=2,max=50,alpha"`
	LastName  string `json:"last_name" validate:"required,min=2,max=50,alpha"`
	Phone     string `json:"phone" validate:"required,phone"`
	Password  string `json:"password" validate:"required,password"`
}

// CreateUserRequest registers a back-office user. STAFF need a provider.
type CreateUserRequest struct {
	Email      string          `json:"email" validate:"required,email"`
	FirstName  string          `json:"first_name" validate:"required,min=2,max=50,alpha"`
	LastName   string          `json:"last_name" validate:"required,min=2,max=50,alpha"`
	Phone      string          `json:"phone" validate:"required,phone"`
	Password   string          `json:"password" validate:"required,password"`
	Role       models.UserRole `json:"role" validate:"required,oneof=ADMIN APPROVER OWNER STAFF"`
	ProviderID *string         `json:"provider_id,omitempty" validate:"omitempty,uuid"`
}

// UpdateUserRequest lists the profile fields a user may change.
type UpdateUserRequest struct {
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,min=2,max=50,alpha"`
	LastName  *string `json:"last_name,omitempty" validate:"omitempty,min=2,max=50,alpha"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,phone"`
}

// Empty reports whether no field was supplied.
func (r UpdateUserRequest) Empty() bool {
	return r.Email == nil && r.FirstName == nil && r.LastName == nil && r.Phone == nil
}

// UserListQuery filters the user listing.
type UserListQuery struct {
	Role     string `form:"role" validate:"omitempty,oneof=ADMIN APPROVER OWNER STAFF CLIENT"`
	Active   *bool  `form:"active"`
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	SortBy   string `form:"sort_by"`
	Order    string `form:"order"`
}
