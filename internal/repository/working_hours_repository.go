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

const workingHoursSelect = `SELECT id, provider_id, staff_id, day_of_week, to_char(start_time, 'HH24:MI') AS start_time, to_char(end_time, 'HH24:MI') AS end_time, is_active, created_at, updated_at FROM working_hours`

// WorkingHoursRepository persists recurring weekly working hours.
type WorkingHoursRepository struct {
	db *sqlx.DB
}

// NewWorkingHoursRepository constructs the repository.
func NewWorkingHoursRepository(db *sqlx.DB) *WorkingHoursRepository {
	return &WorkingHoursRepository{db: db}
}

// List returns working hours matching the filter ordered by day and start time.
func (r *WorkingHoursRepository) List(ctx context.Context, filter models.WorkingHoursFilter) ([]models.WorkingHours, error) {
	var conditions []string
	var args []interface{}

	if filter.ProviderID != "" {
		conditions = append(conditions, fmt.Sprintf("provider_id = $%d", len(args)+1))
		args = append(args, filter.ProviderID)
	}
	if filter.StaffID != "" {
		conditions = append(conditions, fmt.Sprintf("staff_id = $%d", len(args)+1))
		args = append(args, filter.StaffID)
	}
	if filter.DayOfWeek != nil {
		conditions = append(conditions, fmt.Sprintf("day_of_week = $%d", len(args)+1))
		args = append(args, *filter.DayOfWeek)
	}
	if filter.ActiveOnly {
		conditions = append(conditions, "is_active = TRUE")
	}

	query := workingHoursSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY day_of_week, start_time"

	var hours []models.WorkingHours
	if err := r.db.SelectContext(ctx, &hours, query, args...); err != nil {
		return nil, fmt.Errorf("list working hours: %w", err)
	}
	return hours, nil
}

// FindByID returns a working hours entry by id.
func (r *WorkingHoursRepository) FindByID(ctx context.Context, id string) (*models.WorkingHours, error) {
	query := workingHoursSelect + ` WHERE id = $1`
	var wh models.WorkingHours
	if err := r.db.GetContext(ctx, &wh, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find working hours: %w", err)
	}
	return &wh, nil
}

// BulkCreateWithTx inserts the entries inside the provided transaction.
func (r *WorkingHoursRepository) BulkCreateWithTx(ctx context.Context, tx *sqlx.Tx, entries []models.WorkingHours) error {
	if len(entries) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range entries {
		if entries[i].ID == "" {
			entries[i].ID = uuid.NewString()
		}
		entries[i].Active = true
		entries[i].CreatedAt = now
		entries[i].UpdatedAt = now
	}
	const query = `INSERT INTO working_hours (id, provider_id, staff_id, day_of_week, start_time, end_time, is_active, created_at, updated_at)
VALUES (:id, :provider_id, :staff_id, :day_of_week, :start_time, :end_time, :is_active, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, tx, query, entries); err != nil {
		return fmt.Errorf("bulk insert working hours: %w", err)
	}
	return nil
}

// Update writes day and time changes for an entry.
func (r *WorkingHoursRepository) Update(ctx context.Context, wh *models.WorkingHours) error {
	wh.UpdatedAt = time.Now().UTC()
	const query = `UPDATE working_hours SET day_of_week = :day_of_week, start_time = :start_time, end_time = :end_time, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, wh)
	if err != nil {
		return fmt.Errorf("update working hours: %w", err)
	}
	return expectAffected(res)
}

// Deactivate soft-deletes an entry.
func (r *WorkingHoursRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE working_hours SET is_active = FALSE, updated_at = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("deactivate working hours: %w", err)
	}
	return expectAffected(res)
}
