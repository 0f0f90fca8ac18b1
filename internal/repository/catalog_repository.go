package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/salon-booking-api/internal/models"
)

// CatalogRepository persists categories, subcategories and services.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository constructs the repository.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

const (
	categoryColumns    = `id, name, active, created_at, updated_at`
	subcategoryColumns = `id, name, category_id, active, created_at, updated_at`
	serviceColumns     = `id, name, price, duration_minutes, subcategory_id, provider_id, staff_id, active, created_at, updated_at`
)

// CreateCategory inserts a category.
func (r *CatalogRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	stamp(&category.ID, &category.CreatedAt, &category.UpdatedAt)
	category.Active = true
	const query = `INSERT INTO categories (` + categoryColumns + `) VALUES (:id, :name, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, category); err != nil {
		return writeError("insert category", err)
	}
	return nil
}

// FindCategory returns a category by id.
func (r *CatalogRepository) FindCategory(ctx context.Context, id string) (*models.Category, error) {
	var category models.Category
	if err := r.get(ctx, &category, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &category, nil
}

// ListCategories returns categories ordered by name.
func (r *CatalogRepository) ListCategories(ctx context.Context, filter models.CatalogFilter) ([]models.Category, error) {
	query, args := catalogQuery(`SELECT `+categoryColumns+` FROM categories`, filter, nil)
	var items []models.Category
	if err := r.db.SelectContext(ctx, &items, query+" ORDER BY name", args...); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return items, nil
}

// UpdateCategory renames a category.
func (r *CatalogRepository) UpdateCategory(ctx context.Context, category *models.Category) error {
	category.UpdatedAt = time.Now().UTC()
	res, err := r.db.NamedExecContext(ctx, `UPDATE categories SET name = :name, updated_at = :updated_at WHERE id = :id`, category)
	if err != nil {
		return writeError("update category", err)
	}
	return expectAffected(res)
}

// CreateSubcategory inserts a subcategory.
func (r *CatalogRepository) CreateSubcategory(ctx context.Context, sub *models.Subcategory) error {
	stamp(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt)
	sub.Active = true
	const query = `INSERT INTO subcategories (` + subcategoryColumns + `) VALUES (:id, :name, :category_id, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, sub); err != nil {
		return writeError("insert subcategory", err)
	}
	return nil
}

// FindSubcategory returns a subcategory by id.
func (r *CatalogRepository) FindSubcategory(ctx context.Context, id string) (*models.Subcategory, error) {
	var sub models.Subcategory
	if err := r.get(ctx, &sub, `SELECT `+subcategoryColumns+` FROM subcategories WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListSubcategories returns subcategories ordered by name.
func (r *CatalogRepository) ListSubcategories(ctx context.Context, filter models.CatalogFilter) ([]models.Subcategory, error) {
	query, args := catalogQuery(`SELECT `+subcategoryColumns+` FROM subcategories`, filter, map[string]string{"category_id": filter.CategoryID})
	var items []models.Subcategory
	if err := r.db.SelectContext(ctx, &items, query+" ORDER BY name", args...); err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}
	return items, nil
}

// UpdateSubcategory writes name and category changes.
func (r *CatalogRepository) UpdateSubcategory(ctx context.Context, sub *models.Subcategory) error {
	sub.UpdatedAt = time.Now().UTC()
	res, err := r.db.NamedExecContext(ctx, `UPDATE subcategories SET name = :name, category_id = :category_id, updated_at = :updated_at WHERE id = :id`, sub)
	if err != nil {
		return writeError("update subcategory", err)
	}
	return expectAffected(res)
}

// CreateService inserts a service.
func (r *CatalogRepository) CreateService(ctx context.Context, svc *models.Service) error {
	stamp(&svc.ID, &svc.CreatedAt, &svc.UpdatedAt)
	svc.Active = true
	const query = `INSERT INTO services (` + serviceColumns + `) VALUES (:id, :name, :price, :duration_minutes, :subcategory_id, :provider_id, :staff_id, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, svc); err != nil {
		return writeError("insert service", err)
	}
	return nil
}

// FindService returns a service by id.
func (r *CatalogRepository) FindService(ctx context.Context, id string) (*models.Service, error) {
	var svc models.Service
	if err := r.get(ctx, &svc, `SELECT `+serviceColumns+` FROM services WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &svc, nil
}

// ListServices returns services ordered by name.
func (r *CatalogRepository) ListServices(ctx context.Context, filter models.CatalogFilter) ([]models.Service, error) {
	query, args := catalogQuery(`SELECT `+serviceColumns+` FROM services`, filter, map[string]string{
		"subcategory_id": filter.SubcategoryID,
		"provider_id":    filter.ProviderID,
		"staff_id":       filter.StaffID,
	})
	var items []models.Service
	if err := r.db.SelectContext(ctx, &items, query+" ORDER BY name", args...); err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return items, nil
}

// UpdateService writes the mutable fields of a service.
func (r *CatalogRepository) UpdateService(ctx context.Context, svc *models.Service) error {
	svc.UpdatedAt = time.Now().UTC()
	const query = `UPDATE services SET name = :name, price = :price, duration_minutes = :duration_minutes, subcategory_id = :subcategory_id, staff_id = :staff_id, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, svc)
	if err != nil {
		return writeError("update service", err)
	}
	return expectAffected(res)
}

// Deactivate soft-deletes a row of one of the catalog tables.
func (r *CatalogRepository) Deactivate(ctx context.Context, table, id string) error {
	switch table {
	case "categories", "subcategories", "services":
	default:
		return fmt.Errorf("deactivate: unknown catalog table %q", table)
	}
	query := fmt.Sprintf("UPDATE %s SET active = FALSE, updated_at = $2 WHERE id = $1", table)
	res, err := r.db.ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("deactivate %s: %w", table, err)
	}
	return expectAffected(res)
}

func (r *CatalogRepository) get(ctx context.Context, dest interface{}, query, id string) error {
	if err := r.db.GetContext(ctx, dest, query, id); err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("find catalog entry: %w", err)
	}
	return nil
}

// catalogQuery appends the active flag and any non-empty equality filters.
// Columns are applied in a fixed order so generated SQL is stable.
func catalogQuery(base string, filter models.CatalogFilter, equals map[string]string) (string, []interface{}) {
	var conditions []string
	var args []interface{}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	for _, column := range []string{"category_id", "subcategory_id", "provider_id", "staff_id"} {
		value := equals[column]
		if value == "" {
			continue
		}
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)+1))
		args = append(args, value)
	}
	if len(conditions) == 0 {
		return base, args
	}
	return base + " WHERE " + strings.Join(conditions, " AND "), args
}

func stamp(id *string, createdAt, updatedAt *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	now := time.Now().UTC()
	*createdAt = now
	*updatedAt = now
}
