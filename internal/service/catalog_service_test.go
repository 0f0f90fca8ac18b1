package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/salon-booking-api/internal/dto"
	"github.com/noah-isme/salon-booking-api/internal/models"
	appErrors "github.com/noah-isme/salon-booking-api/pkg/errors"
)

const (
	testCategoryID    = "aaaaaaaa-aaaa-4aaa-8aaa-aaaaaaaaaaaa"
	testSubcategoryID = "bbbbbbbb-bbbb-4bbb-8bbb-bbbbbbbbbbbb"
)

type memCatalogRepo struct {
	categories    map[string]*models.Category
	subcategories map[string]*models.Subcategory
	services      map[string]*models.Service
	deactivated   []string
	seq           int
}

func newMemCatalogRepo() *memCatalogRepo {
	return &memCatalogRepo{
		categories:    map[string]*models.Category{},
		subcategories: map[string]*models.Subcategory{},
		services:      map[string]*models.Service{},
	}
}

func (m *memCatalogRepo) nextID() string {
	m.seq++
	return fmt.Sprintf("cat-%d", m.seq)
}

func (m *memCatalogRepo) CreateCategory(_ context.Context, c *models.Category) error {
	for _, existing := range m.categories {
		if existing.Name == c.Name {
			return fmt.Errorf("insert category: %w", appErrors.ErrDuplicate)
		}
	}
	c.ID = m.nextID()
	c.Active = true
	cp := *c
	m.categories[c.ID] = &cp
	return nil
}

func (m *memCatalogRepo) FindCategory(_ context.Context, id string) (*models.Category, error) {
	c, ok := m.categories[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *c
	return &cp, nil
}

func (m *memCatalogRepo) ListCategories(_ context.Context, filter models.CatalogFilter) ([]models.Category, error) {
	var out []models.Category
	for _, c := range m.categories {
		if filter.Active != nil && c.Active != *filter.Active {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (m *memCatalogRepo) UpdateCategory(_ context.Context, c *models.Category) error {
	cp := *c
	m.categories[c.ID] = &cp
	return nil
}

func (m *memCatalogRepo) CreateSubcategory(_ context.Context, sub *models.Subcategory) error {
	sub.ID = m.nextID()
	sub.Active = true
	cp := *sub
	m.subcategories[sub.ID] = &cp
	return nil
}

func (m *memCatalogRepo) FindSubcategory(_ context.Context, id string) (*models.Subcategory, error) {
	sub, ok := m.subcategories[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *sub
	return &cp, nil
}

func (m *memCatalogRepo) ListSubcategories(_ context.Context, filter models.CatalogFilter) ([]models.Subcategory, error) {
	var out []models.Subcategory
	for _, sub := range m.subcategories {
		if filter.CategoryID != "" && sub.CategoryID != filter.CategoryID {
			continue
		}
		out = append(out, *sub)
	}
	return out, nil
}

func (m *memCatalogRepo) UpdateSubcategory(_ context.Context, sub *models.Subcategory) error {
	cp := *sub
	m.subcategories[sub.ID] = &cp
	return nil
}

func (m *memCatalogRepo) CreateService(_ context.Context, svc *models.Service) error {
	svc.ID = m.nextID()
	svc.Active = true
	cp := *svc
	m.services[svc.ID] = &cp
	return nil
}

func (m *memCatalogRepo) FindService(_ context.Context, id string) (*models.Service, error) {
	svc, ok := m.services[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *svc
	return &cp, nil
}

func (m *memCatalogRepo) ListServices(_ context.Context, filter models.CatalogFilter) ([]models.Service, error) {
	var out []models.Service
	for _, svc := range m.services {
		if filter.ProviderID != "" && svc.ProviderID != filter.ProviderID {
			continue
		}
		out = append(out, *svc)
	}
	return out, nil
}

func (m *memCatalogRepo) UpdateService(_ context.Context, svc *models.Service) error {
	cp := *svc
	m.services[svc.ID] = &cp
	return nil
}

func (m *memCatalogRepo) Deactivate(_ context.Context, table, id string) error {
	switch table {
	case catalogCategories:
		if c, ok := m.categories[id]; ok {
			c.Active = false
			m.deactivated = append(m.deactivated, table+"/"+id)
			return nil
		}
	case catalogSubcategories:
		if sub, ok := m.subcategories[id]; ok {
			sub.Active = false
			m.deactivated = append(m.deactivated, table+"/"+id)
			return nil
		}
	case catalogServices:
		if svc, ok := m.services[id]; ok {
			svc.Active = false
			m.deactivated = append(m.deactivated, table+"/"+id)
			return nil
		}
	}
	return sql.ErrNoRows
}

func newCatalogFixture() (*CatalogService, *memCatalogRepo) {
	repo := newMemCatalogRepo()
	repo.categories[testCategoryID] = &models.Category{ID: testCategoryID, Name: "Hair", Active: true}
	repo.subcategories[testSubcategoryID] = &models.Subcategory{ID: testSubcategoryID, Name: "Haircut", CategoryID: testCategoryID, Active: true}
	providers := newMemProviderRepo()
	providers.items[testProviderID] = &models.ServiceProvider{ID: testProviderID, Active: true}
	provider := testProviderID
	other := "00000000-0000-4000-8000-000000000000"
	users := userFinderStub{
		testStaffID:      {ID: testStaffID, Role: models.RoleStaff, Active: true, ProviderID: &provider},
		testOtherStaffID: {ID: testOtherStaffID, Role: models.RoleStaff, Active: true, ProviderID: &other},
	}
	return NewCatalogService(repo, providers, users, nil, nil), repo
}

func TestCategoryLifecycle(t *testing.T) {
	svc, repo := newCatalogFixture()
	ctx := context.Background()

	created, err := svc.CreateCategory(ctx, dto.CategoryRequest{Name: "Nails"})
	require.NoError(t, err)
	assert.True(t, created.Active)

	_, err = svc.CreateCategory(ctx, dto.CategoryRequest{Name: "Nails"})
	assert.Equal(t, appErrors.ErrConflict.Code, errorCode(err))

	_, err = svc.CreateCategory(ctx, dto.CategoryRequest{Name: "N"})
	assert.Equal(t, appErrors.ErrValidation.Code, errorCode(err))

	renamed, err := svc.UpdateCategory(ctx, created.ID, dto.CategoryRequest{Name: "Nail care"})
	require.NoError(t, err)
	assert.Equal(t, "Nail care", renamed.Name)

	require.NoError(t, svc.DeactivateCategory(ctx, created.ID))
	assert.False(t, repo.categories[created.ID].Active)

	active, err := svc.ListCategories(ctx, dto.CatalogListQuery{Status: "active"})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Hair", active[0].Name)

	_, err = svc.GetCategory(ctx, "missing")
	assert.Equal(t, appErrors.ErrNotFound.Code, errorCode(err))
	assert.Equal(t, appErrors.ErrNotFound.Code, errorCode(svc.DeactivateCategory(ctx, "missing")))
}

func TestSubcategoryRequiresCategory(t *testing.T) {
	svc, _ := newCatalogFixture()
	ctx := context.Background()

	_, err := svc.CreateSubcategory(ctx, dto.SubcategoryRequest{Name: "Coloring", CategoryID: "cccccccc-cccc-4ccc-8ccc-cccccccccccc"})
	assert.Equal(t, appErrors.ErrNotFound.Code, errorCode(err))

	sub, err := svc.CreateSubcategory(ctx, dto.SubcategoryRequest{Name: "Coloring", CategoryID: testCategoryID})
	require.NoError(t, err)

	name := "Hair coloring"
	updated, err := svc.UpdateSubcategory(ctx, sub.ID, dto.UpdateSubcategoryRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Hair coloring", updated.Name)

	_, err = svc.UpdateSubcategory(ctx, sub.ID, dto.UpdateSubcategoryRequest{})
	assert.Equal(t, appErrors.ErrValidation.Code, errorCode(err))

	listed, err := svc.ListSubcategories(ctx, dto.CatalogListQuery{CategoryID: testCategoryID})
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

func TestCreateServiceChecksReferences(t *testing.T) {
	svc, repo := newCatalogFixture()
	ctx := context.Background()
	staff := testStaffID
	otherStaff := testOtherStaffID

	base := dto.ServiceRequest{Name: "Haircut", Price: 25, DurationMinutes: 30, SubcategoryID: testSubcategoryID, ProviderID: testProviderID}

	created, err := svc.CreateService(ctx, base)
	require.NoError(t, err)
	assert.Nil(t, created.StaffID)

	withStaff := base
	withStaff.StaffID = &staff
	assigned, err := svc.CreateService(ctx, withStaff)
	require.NoError(t, err)
	assert.Equal(t, testStaffID, *assigned.StaffID)

	foreign := base
	foreign.StaffID = &otherStaff
	_, err = svc.CreateService(ctx, foreign)
	assert.Equal(t, appErrors.ErrValidation.Code, errorCode(err))

	zero := base
	zero.DurationMinutes = 0
	_, err = svc.CreateService(ctx, zero)
	assert.Equal(t, appErrors.ErrValidation.Code, errorCode(err))

	unknownProvider := base
	unknownProvider.ProviderID = "00000000-0000-4000-8000-000000000000"
	_, err = svc.CreateService(ctx, unknownProvider)
	assert.Equal(t, appErrors.ErrNotFound.Code, errorCode(err))

	assert.Len(t, repo.services, 2)
}

func TestUpdateAndDeactivateService(t *testing.T) {
	svc, repo := newCatalogFixture()
	ctx := context.Background()
	created, err := svc.CreateService(ctx, dto.ServiceRequest{Name: "Haircut", Price: 25, DurationMinutes: 30, SubcategoryID: testSubcategoryID, ProviderID: testProviderID})
	require.NoError(t, err)

	duration := 45
	price := 30.0
	updated, err := svc.UpdateService(ctx, created.ID, dto.UpdateServiceRequest{DurationMinutes: &duration, Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 45, updated.DurationMinutes)
	assert.Equal(t, 30.0, repo.services[created.ID].Price)

	negative := -5
	_, err = svc.UpdateService(ctx, created.ID, dto.UpdateServiceRequest{DurationMinutes: &negative})
	assert.Equal(t, appErrors.ErrValidation.Code, errorCode(err))

	require.NoError(t, svc.DeactivateService(ctx, created.ID))
	assert.Equal(t, []string{catalogServices + "/" + created.ID}, repo.deactivated)

	listed, err := svc.ListServices(ctx, dto.CatalogListQuery{ProviderID: testProviderID})
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	_, err = svc.GetService(ctx, "missing")
	assert.Equal(t, appErrors.ErrNotFound.Code, errorCode(err))
}
