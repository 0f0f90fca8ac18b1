package handler

import (
	"context"
	"time"

	"github.com/noah-isme/salon-booking-api/internal/dto"
	"github.com/noah-isme/salon-booking-api/internal/models"
	"github.com/noah-isme/salon-booking-api/pkg/export"
)

type authServiceStub struct {
	loginReq  models.LoginRequest
	loginErr  error
	logoutFor string
}

func (s *authServiceStub) Login(_ context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	s.loginReq = req
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &models.LoginResponse{AccessToken: "access", RefreshToken: "refresh"}, nil
}

func (s *authServiceStub) RefreshToken(context.Context, models.RefreshTokenRequest) (*models.RefreshTokenResponse, error) {
	return &models.RefreshTokenResponse{AccessToken: "access-2", RefreshToken: "refresh-2"}, nil
}

func (s *authServiceStub) Logout(_ context.Context, _ string, userID string, _ models.LoginRequest) error {
	s.logoutFor = userID
	return nil
}

func (s *authServiceStub) ChangePassword(context.Context, string, models.ChangePasswordRequest) error {
	return nil
}

func (s *authServiceStub) ValidateToken(token string) (*models.JWTClaims, error) {
	claims, ok := testTokens[token]
	if !ok {
		return nil, errInvalidToken
	}
	return claims, nil
}

type userServiceStub struct {
	updatedID     string
	deactivatedID string
}

func (s *userServiceStub) RegisterClient(_ context.Context, req dto.RegisterClientRequest) (*models.User, error) {
	return &models.User{ID: "client-new", Email: req.Email, Role: models.RoleClient}, nil
}

func (s *userServiceStub) Create(_ context.Context, req dto.CreateUserRequest, _ *models.JWTClaims) (*models.User, error) {
	return &models.User{ID: "user-new", Email: req.Email, Role: req.Role}, nil
}

func (s *userServiceStub) Profile(_ context.Context, actor *models.JWTClaims) (*models.User, error) {
	return &models.User{ID: actor.UserID, Role: actor.Role}, nil
}

func (s *userServiceStub) Get(_ context.Context, id string, _ *models.JWTClaims) (*models.User, error) {
	return &models.User{ID: id}, nil
}

func (s *userServiceStub) List(context.Context, *models.JWTClaims, dto.UserListQuery) ([]models.User, *models.Pagination, error) {
	return []models.User{}, models.NewPagination(1, 20, 0), nil
}

func (s *userServiceStub) Update(_ context.Context, id string, _ dto.UpdateUserRequest, _ *models.JWTClaims) (*models.User, error) {
	s.updatedID = id
	return &models.User{ID: id}, nil
}

func (s *userServiceStub) Deactivate(_ context.Context, id string, _ *models.JWTClaims) error {
	s.deactivatedID = id
	return nil
}

type appointmentServiceStub struct {
	slotArgs    []string
	created     dto.CreateAppointmentRequest
	transitions []string
	transErr    error
	agenda      dto.AgendaQuery
}

func (s *appointmentServiceStub) AvailableSlots(_ context.Context, staffID, serviceID, date string) (*dto.AvailableSlotsResponse, error) {
	s.slotArgs = []string{staffID, serviceID, date}
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	return &dto.AvailableSlotsResponse{AvailableSlots: []models.TimeSlot{{Start: start, End: start.Add(30 * time.Minute)}}}, nil
}

func (s *appointmentServiceStub) CreateAppointment(_ context.Context, req dto.CreateAppointmentRequest, actor *models.JWTClaims) (*models.AppointmentDetail, error) {
	s.created = req
	detail := &models.AppointmentDetail{}
	detail.ID = "appt-1"
	detail.CustomerID = actor.UserID
	return detail, nil
}

func (s *appointmentServiceStub) EditAppointment(_ context.Context, id string, _ dto.EditAppointmentRequest, _ *models.JWTClaims) (*models.AppointmentDetail, error) {
	detail := &models.AppointmentDetail{}
	detail.ID = id
	return detail, nil
}

func (s *appointmentServiceStub) DeleteAppointment(_ context.Context, id string, _ *models.JWTClaims) error {
	return s.record("delete:" + id)
}

func (s *appointmentServiceStub) Confirm(_ context.Context, id string, _ *models.JWTClaims) error {
	return s.record("confirm:" + id)
}

func (s *appointmentServiceStub) Reject(_ context.Context, id string, _ *models.JWTClaims) error {
	return s.record("reject:" + id)
}

func (s *appointmentServiceStub) Cancel(_ context.Context, id string, _ *models.JWTClaims) error {
	return s.record("cancel:" + id)
}

func (s *appointmentServiceStub) NoShow(_ context.Context, id string, _ *models.JWTClaims) error {
	return s.record("no_show:" + id)
}

func (s *appointmentServiceStub) Complete(_ context.Context, id string, _ *models.JWTClaims) error {
	return s.record("complete:" + id)
}

func (s *appointmentServiceStub) record(entry string) error {
	if s.transErr != nil {
		return s.transErr
	}
	s.transitions = append(s.transitions, entry)
	return nil
}

func (s *appointmentServiceStub) List(context.Context, *models.JWTClaims, dto.AppointmentListQuery) ([]models.AppointmentDetail, *models.Pagination, error) {
	return []models.AppointmentDetail{}, models.NewPagination(1, 20, 0), nil
}

func (s *appointmentServiceStub) ExportAgenda(_ context.Context, _ *models.JWTClaims, query dto.AgendaQuery) ([]byte, export.Exporter, error) {
	s.agenda = query
	exporter, err := export.ForFormat(query.Format)
	if err != nil {
		return nil, nil, err
	}
	return []byte("Start,End\n"), exporter, nil
}

type inquiryServiceStub struct {
	listStatus string
	approved   string
}

func (s *inquiryServiceStub) RegisterInquiry(_ context.Context, req dto.RegisterInquiryRequest) (*models.Inquiry, error) {
	return &models.Inquiry{ID: "inq-1", Email: req.Email, Status: models.InquiryPending}, nil
}

func (s *inquiryServiceStub) List(_ context.Context, status string, page, pageSize int) ([]models.Inquiry, *models.Pagination, error) {
	s.listStatus = status
	return []models.Inquiry{}, models.NewPagination(page, pageSize, 0), nil
}

func (s *inquiryServiceStub) Approve(_ context.Context, id string, _ *models.JWTClaims) (*models.Inquiry, error) {
	s.approved = id
	return &models.Inquiry{ID: id, Status: models.InquiryApproved}, nil
}

func (s *inquiryServiceStub) Reject(_ context.Context, id string, _ *models.JWTClaims) (*models.Inquiry, error) {
	return &models.Inquiry{ID: id, Status: models.InquiryRejected}, nil
}

func (s *inquiryServiceStub) NoShow(_ context.Context, id string, _ *models.JWTClaims) (*models.Inquiry, error) {
	return &models.Inquiry{ID: id, Status: models.InquiryNoShow}, nil
}

type providerServiceStub struct{}

func (providerServiceStub) Create(_ context.Context, req dto.CreateProviderRequest, _ *models.JWTClaims) (*models.ServiceProvider, error) {
	return &models.ServiceProvider{ID: "prov-1", UIC: req.UIC}, nil
}

func (providerServiceStub) Get(_ context.Context, id string) (*models.ServiceProvider, error) {
	return &models.ServiceProvider{ID: id}, nil
}

func (providerServiceStub) List(context.Context, *models.JWTClaims, dto.ProviderListQuery) ([]models.ServiceProvider, *models.Pagination, error) {
	return []models.ServiceProvider{}, models.NewPagination(1, 20, 0), nil
}

func (providerServiceStub) Update(_ context.Context, id string, _ dto.UpdateProviderRequest, _ *models.JWTClaims) (*models.ServiceProvider, error) {
	return &models.ServiceProvider{ID: id}, nil
}

func (providerServiceStub) Deactivate(context.Context, string, *models.JWTClaims) error { return nil }

type catalogServiceStub struct{}

func (catalogServiceStub) CreateCategory(_ context.Context, req dto.CategoryRequest) (*models.Category, error) {
	return &models.Category{ID: "cat-1", Name: req.Name, Active: true}, nil
}

func (catalogServiceStub) GetCategory(_ context.Context, id string) (*models.Category, error) {
	return &models.Category{ID: id}, nil
}

func (catalogServiceStub) ListCategories(context.Context, dto.CatalogListQuery) ([]models.Category, error) {
	return []models.Category{{ID: "cat-1", Name: "Hair", Active: true}}, nil
}

func (catalogServiceStub) UpdateCategory(_ context.Context, id string, req dto.CategoryRequest) (*models.Category, error) {
	return &models.Category{ID: id, Name: req.Name}, nil
}

func (catalogServiceStub) DeactivateCategory(context.Context, string) error { return nil }

func (catalogServiceStub) CreateSubcategory(_ context.Context, req dto.SubcategoryRequest) (*models.Subcategory, error) {
	return &models.Subcategory{ID: "sub-1", Name: req.Name, CategoryID: req.CategoryID}, nil
}

func (catalogServiceStub) GetSubcategory(_ context.Context, id string) (*models.Subcategory, error) {
	return &models.Subcategory{ID: id}, nil
}

func (catalogServiceStub) ListSubcategories(context.Context, dto.CatalogListQuery) ([]models.Subcategory, error) {
	return []models.Subcategory{}, nil
}

func (catalogServiceStub) UpdateSubcategory(_ context.Context, id string, _ dto.UpdateSubcategoryRequest) (*models.Subcategory, error) {
	return &models.Subcategory{ID: id}, nil
}

func (catalogServiceStub) DeactivateSubcategory(context.Context, string) error { return nil }

func (catalogServiceStub) CreateService(_ context.Context, req dto.ServiceRequest) (*models.Service, error) {
	return &models.Service{ID: "svc-1", Name: req.Name}, nil
}

func (catalogServiceStub) GetService(_ context.Context, id string) (*models.Service, error) {
	return &models.Service{ID: id}, nil
}

func (catalogServiceStub) ListServices(context.Context, dto.CatalogListQuery) ([]models.Service, error) {
	return []models.Service{}, nil
}

func (catalogServiceStub) UpdateService(_ context.Context, id string, _ dto.UpdateServiceRequest) (*models.Service, error) {
	return &models.Service{ID: id}, nil
}

func (catalogServiceStub) DeactivateService(context.Context, string) error { return nil }

type workingHoursServiceStub struct{}

func (workingHoursServiceStub) Register(context.Context, dto.RegisterWorkingHoursRequest) ([]models.WorkingHours, error) {
	return []models.WorkingHours{}, nil
}

func (workingHoursServiceStub) List(context.Context, dto.WorkingHoursQuery) ([]models.WorkingHours, error) {
	return []models.WorkingHours{}, nil
}

func (workingHoursServiceStub) Update(_ context.Context, id string, _ dto.UpdateWorkingHoursRequest) (*models.WorkingHours, error) {
	return &models.WorkingHours{ID: id}, nil
}

func (workingHoursServiceStub) Deactivate(context.Context, string) error { return nil }
