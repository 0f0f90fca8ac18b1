package dto

// RegisterInquiryRequest is a salon's application to become a provider.
type RegisterInquiryRequest struct {
	FirstName string `json:"first_name" validate:"required,min=2,max=50,alpha"`
	LastName  string `json:"last_name" validate:"required,min=2,max=50,alpha"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required,phone"`
	SalonName string `json:"salon_name" validate:"required,min=2,max=50"`
	City      string `json:"city" validate:"required,min=2,max=50"`
}
