package dto

// AddressRequest carries the postal address of a provider.
type AddressRequest struct {
	Country      string   `json:"country" validate:"required,country"`
	District     *string  `json:"district,omitempty" validate:"omitempty,min=2,max=50"`
	City         string   `json:"city" validate:"required,min=2,max=50"`
	Neighborhood *string  `json:"neighborhood,omitempty" validate:"omitempty,min=2,max=50"`
	Street       string   `json:"street" validate:"required,min=2,max=50"`
	StreetNumber string   `json:"street_number" validate:"required,street_number"`
	BlockNumber  *string  `json:"block_number,omitempty" validate:"omitempty,min=1,max=15"`
	Apartment    *string  `json:"apartment,omitempty" validate:"omitempty,min=1,max=15"`
	Floor        *string  `json:"floor,omitempty" validate:"omitempty,min=1,max=255"`
	PostalCode   string   `json:"postal_code" validate:"required,max=20,postal_code"`
	Latitude     *float64 `json:"latitude,omitempty" validate:"omitempty,min=-90,max=90"`
	Longitude    *float64 `json:"longitude,omitempty" validate:"omitempty,min=-180,max=180"`
}

// CreateProviderRequest registers a provider from an approved inquiry.
// Photo is base64 encoded; PhotoExtension is required alongside it.
type CreateProviderRequest struct {
	CompanyName    string   `json:"company_name" validate:"required,min=2,max=100"`
	TradeName      string   `json:"trade_name" validate:"required,min=2,max=100"`
	UIC            string   `json:"uic" validate:"required,min=9,max=20,alphanum"`
	InquiryID      string   `json:"inquiry_id" validate:"required,uuid"`
	Photo          string   `json:"photo,omitempty" validate:"omitempty,base64"`
	PhotoExtension string   `json:"photo_extension,omitempty" validate:"required_with=Photo,omitempty,oneof=jpg jpeg png webp"`
	OwnerIDs       []string `json:"owner_ids,omitempty" validate:"omitempty,dive,uuid"`
	AddressRequest
}

// UpdateProviderRequest lists the provider fields that may be patched.
type UpdateProviderRequest struct {
	CompanyName  *string  `json:"company_name,omitempty" validate:"omitempty,min=2,max=100"`
	TradeName    *string  `json:"trade_name,omitempty" validate:"omitempty,min=2,max=100"`
	Country      *string  `json:"country,omitempty" validate:"omitempty,country"`
	District     *string  `json:"district,omitempty" validate:"omitempty,min=2,max=50"`
	City         *string  `json:"city,omitempty" validate:"omitempty,min=2,max=50"`
	Neighborhood *string  `json:"neighborhood,omitempty" validate:"omitempty,min=2,max=50"`
	Street       *string  `json:"street,omitempty" validate:"omitempty,min=2,max=50"`
	StreetNumber *string  `json:"street_number,omitempty" validate:"omitempty,street_number"`
	BlockNumber  *string  `json:"block_number,omitempty" validate:"omitempty,min=1,max=15"`
	Apartment    *string  `json:"apartment,omitempty" validate:"omitempty,min=1,max=15"`
	Floor        *string  `json:"floor,omitempty" validate:"omitempty,min=1,max=255"`
	PostalCode   *string  `json:"postal_code,omitempty" validate:"omitempty,max=20,postal_code"`
	Latitude     *float64 `json:"latitude,omitempty" validate:"omitempty,min=-90,max=90"`
	Longitude    *float64 `json:"longitude,omitempty" validate:"omitempty,min=-180,max=180"`
}

// Empty reports whether no field was supplied.
func (r UpdateProviderRequest) Empty() bool {
	return r.CompanyName == nil && r.TradeName == nil && r.Country == nil && r.District == nil &&
		r.City == nil && r.Neighborhood == nil && r.Street == nil && r.StreetNumber == nil &&
		r.BlockNumber == nil && r.Apartment == nil && r.Floor == nil && r.PostalCode == nil &&
		r.Latitude == nil && r.Longitude == nil
}

// ProviderListQuery filters providers by activity.
type ProviderListQuery struct {
	Status   string `form:"status" validate:"omitempty,oneof=active inactive"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}
