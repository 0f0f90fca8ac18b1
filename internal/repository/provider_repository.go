package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/salon-booking-api/internal/models"
)

const providerColumns = `id, company_name, trade_name, uic, inquiry_id, photo_url, country, district, city, neighborhood, street, street_number, block_number, apartment, floor, postal_code, latitude, longitude, active, created_at, updated_at`

// ProviderRepository persists service providers and their owners.
type ProviderRepository struct {
	db *sqlx.DB
}

// NewProviderRepository constructs the repository.
func NewProviderRepository(db *sqlx.DB) *ProviderRepository {
	return &ProviderRepository{db: db}
}

// CreateWithTx inserts a provider. A reused UIC or inquiry yields ErrDuplicate.
func (r *ProviderRepository) CreateWithTx(ctx context.Context, tx *sqlx.Tx, provider *models.ServiceProvider) error {
	if provider.ID == "" {
		provider.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	provider.CreatedAt = now
	provider.UpdatedAt = now
	provider.Active = true

	const query = `INSERT INTO service_providers (` + providerColumns + `)
VALUES (:id, :company_name, :trade_name, :uic, :inquiry_id, :photo_url, :country, :district, :city, :neighborhood, :street, :street_number, :block_number, :apartment, :floor, :postal_code, :latitude, :longitude, :active, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, tx, query, provider); err != nil {
		return writeError("insert provider", err)
	}
	return nil
}

// InquiryConsumed reports whether a provider already references the inquiry.
func (r *ProviderRepository) InquiryConsumed(ctx context.Context, tx *sqlx.Tx, inquiryID string) (bool, error) {
	var exists bool
	if err := tx.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM service_providers WHERE inquiry_id = $1)`, inquiryID); err != nil {
		return false, fmt.Errorf("check inquiry usage: %w", err)
	}
	return exists, nil
}

// AddOwnersWithTx links owner users to the provider.
func (r *ProviderRepository) AddOwnersWithTx(ctx context.Context, tx *sqlx.Tx, providerID string, ownerIDs []string) error {
	if len(ownerIDs) == 0 {
		return nil
	}
	const query = `INSERT INTO provider_owners (provider_id, owner_id) SELECT $1, unnest($2::uuid[]) ON CONFLICT DO NOTHING`
	if _, err := tx.ExecContext(ctx, query, providerID, pq.Array(ownerIDs)); err != nil {
		return fmt.Errorf("link provider owners: %w", err)
	}
	return nil
}

// FindByID returns a provider with its owner ids.
func (r *ProviderRepository) FindByID(ctx context.Context, id string) (*models.ServiceProvider, error) {
	const query = `SELECT ` + providerColumns + ` FROM service_providers WHERE id = $1`
	var provider models.ServiceProvider
	if err := r.db.GetContext(ctx, &provider, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find provider: %w", err)
	}
	owners, err := r.ownerIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	provider.OwnerIDs = owners
	return &provider, nil
}

// List returns providers matching the filter with the total count.
func (r *ProviderRepository) List(ctx context.Context, filter models.ProviderFilter) ([]models.ServiceProvider, int, error) {
	var conditions []string
	var args []interface{}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.OwnerID != "" {
		conditions = append(conditions, fmt.Sprintf("id IN (SELECT provider_id FROM provider_owners WHERE owner_id = $%d)", len(args)+1))
		args = append(args, filter.OwnerID)
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	page := models.NewPagination(filter.Page, filter.PageSize, 0)
	listQuery := fmt.Sprintf("SELECT %s FROM service_providers%s ORDER BY trade_name ASC LIMIT %d OFFSET %d", providerColumns, where, page.PageSize, page.Offset())
	var items []models.ServiceProvider
	if err := r.db.SelectContext(ctx, &items, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list providers: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM service_providers"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count providers: %w", err)
	}
	return items, total, nil
}

// Update writes the mutable fields of a provider.
func (r *ProviderRepository) Update(ctx context.Context, provider *models.ServiceProvider) error {
	provider.UpdatedAt = time.Now().UTC()
	const query = `UPDATE service_providers SET company_name = :company_name, trade_name = :trade_name, uic = :uic, photo_url = :photo_url,
country = :country, district = :district, city = :city, neighborhood = :neighborhood, street = :street, street_number = :street_number,
block_number = :block_number, apartment = :apartment, floor = :floor, postal_code = :postal_code, latitude = :latitude, longitude = :longitude,
updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, provider)
	if err != nil {
		return writeError("update provider", err)
	}
	return expectAffected(res)
}

// Deactivate soft-deletes a provider.
func (r *ProviderRepository) Deactivate(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE service_providers SET active = FALSE, updated_at = $2 WHERE id = $1`, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("deactivate provider: %w", err)
	}
	return expectAffected(res)
}

func (r *ProviderRepository) ownerIDs(ctx context.Context, providerID string) ([]string, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, `SELECT owner_id FROM provider_owners WHERE provider_id = $1 ORDER BY owner_id`, providerID); err != nil {
		return nil, fmt.Errorf("list provider owners: %w", err)
	}
	return ids, nil
}
