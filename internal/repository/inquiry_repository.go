package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/salon-booking-api/internal/models"
)

const inquiryColumns = `id, first_name, last_name, email, phone, salon_name, city, status, created_at, updated_at`

// InquiryRepository persists provider registration inquiries.
type InquiryRepository struct {
	db *sqlx.DB
}

// NewInquiryRepository constructs the repository.
func NewInquiryRepository(db *sqlx.DB) *InquiryRepository {
	return &InquiryRepository{db: db}
}

func (r *InquiryRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create inserts a new inquiry. A taken email or phone yields ErrDuplicate.
func (r *InquiryRepository) Create(ctx context.Context, inquiry *models.Inquiry) error {
	if inquiry.ID == "" {
		inquiry.ID = uuid.NewString()
	}
	if inquiry.Status == "" {
		inquiry.Status = models.InquiryPending
	}
	now := time.Now().UTC()
	inquiry.CreatedAt = now
	inquiry.UpdatedAt = now

	const query = `INSERT INTO inquiries (` + inquiryColumns + `) VALUES (:id, :first_name, :last_name, :email, :phone, :salon_name, :city, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, inquiry); err != nil {
		return writeError("insert inquiry", err)
	}
	return nil
}

// FindByID returns an inquiry by id.
func (r *InquiryRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Inquiry, error) {
	const query = `SELECT ` + inquiryColumns + ` FROM inquiries WHERE id = $1`
	var inquiry models.Inquiry
	if err := sqlx.GetContext(ctx, r.exec(exec), &inquiry, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find inquiry: %w", err)
	}
	return &inquiry, nil
}

// FindByIDForUpdate returns an inquiry and locks its row for the rest of tx.
func (r *InquiryRepository) FindByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*models.Inquiry, error) {
	const query = `SELECT ` + inquiryColumns + ` FROM inquiries WHERE id = $1 FOR UPDATE`
	var inquiry models.Inquiry
	if err := tx.GetContext(ctx, &inquiry, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("lock inquiry: %w", err)
	}
	return &inquiry, nil
}

// List returns inquiries, optionally filtered by status, newest first.
func (r *InquiryRepository) List(ctx context.Context, filter models.InquiryFilter) ([]models.Inquiry, int, error) {
	where := ""
	var args []interface{}
	if filter.Status != nil {
		where = " WHERE status = $1"
		args = append(args, string(*filter.Status))
	}

	page := models.NewPagination(filter.Page, filter.PageSize, 0)
	listQuery := fmt.Sprintf("SELECT %s FROM inquiries%s ORDER BY created_at DESC LIMIT %d OFFSET %d", inquiryColumns, where, page.PageSize, page.Offset())
	var items []models.Inquiry
	if err := r.db.SelectContext(ctx, &items, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list inquiries: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM inquiries"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count inquiries: %w", err)
	}
	return items, total, nil
}

// UpdateStatus persists a new inquiry status.
func (r *InquiryRepository) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.InquiryStatus) error {
	const query = `UPDATE inquiries SET status = $2, updated_at = $3 WHERE id = $1`
	res, err := r.exec(exec).ExecContext(ctx, query, id, string(status), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update inquiry status: %w", err)
	}
	return expectAffected(res)
}
