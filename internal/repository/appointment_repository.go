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

const appointmentSelect = `SELECT a.id, a.service_id, a.staff_id, a.customer_id, a.appointment_time, s.duration_minutes, a.status, a.created_at, a.updated_at
FROM appointments a
JOIN services s ON s.id = a.service_id`

const appointmentDetailSelect = `SELECT a.id, a.service_id, a.staff_id, a.customer_id, a.appointment_time, s.duration_minutes, a.status, a.created_at, a.updated_at,
s.name AS service_name, st.first_name AS staff_first_name, st.last_name AS staff_last_name, st.email AS staff_email,
cu.first_name AS customer_first_name, cu.last_name AS customer_last_name, cu.email AS customer_email
FROM appointments a
JOIN services s ON s.id = a.service_id
JOIN users st ON st.id = a.staff_id
JOIN users cu ON cu.id = a.customer_id`

// AppointmentRepository persists appointments. Durations are always read from
// the referenced service.
type AppointmentRepository struct {
	db *sqlx.DB
}

// NewAppointmentRepository constructs the repository.
func NewAppointmentRepository(db *sqlx.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

func (r *AppointmentRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// FindByID returns an appointment by id.
func (r *AppointmentRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Appointment, error) {
	query := appointmentSelect + ` WHERE a.id = $1`
	var appt models.Appointment
	if err := sqlx.GetContext(ctx, r.exec(exec), &appt, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find appointment: %w", err)
	}
	return &appt, nil
}

// FindByIDForUpdate returns an appointment and locks its row for the rest of tx.
func (r *AppointmentRepository) FindByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*models.Appointment, error) {
	query := appointmentSelect + ` WHERE a.id = $1 FOR UPDATE OF a`
	var appt models.Appointment
	if err := tx.GetContext(ctx, &appt, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("lock appointment: %w", err)
	}
	return &appt, nil
}

// FindDetail returns the appointment joined with service, staff and customer names.
func (r *AppointmentRepository) FindDetail(ctx context.Context, exec sqlx.ExtContext, id string) (*models.AppointmentDetail, error) {
	query := appointmentDetailSelect + ` WHERE a.id = $1`
	var detail models.AppointmentDetail
	if err := sqlx.GetContext(ctx, r.exec(exec), &detail, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find appointment detail: %w", err)
	}
	return &detail, nil
}

// ListByStaffBetween returns the staff member's slot-holding appointments
// starting in [from, to), ordered by start.
func (r *AppointmentRepository) ListByStaffBetween(ctx context.Context, staffID string, from, to time.Time) ([]models.Appointment, error) {
	query := appointmentSelect + `
WHERE a.staff_id = $1 AND a.appointment_time >= $2 AND a.appointment_time < $3 AND a.status <> ALL($4)
ORDER BY a.appointment_time`
	var appts []models.Appointment
	if err := r.db.SelectContext(ctx, &appts, query, staffID, from, to, pq.Array(releasedStatuses())); err != nil {
		return nil, fmt.Errorf("list staff appointments: %w", err)
	}
	return appts, nil
}

// CountOverlapping counts slot-holding appointments of the staff member that
// intersect [start, end). excludeID, when set, removes one appointment from
// the set so an edit does not collide with itself.
func (r *AppointmentRepository) CountOverlapping(ctx context.Context, exec sqlx.ExtContext, staffID string, start, end time.Time, excludeID string) (int, error) {
	query := `SELECT COUNT(*)
FROM appointments a
JOIN services s ON s.id = a.service_id
WHERE a.staff_id = $1
AND a.appointment_time < $2
AND a.appointment_time + make_interval(mins => s.duration_minutes) > $3
AND a.status <> ALL($4)`
	args := []interface{}{staffID, end, start, pq.Array(releasedStatuses())}
	if excludeID != "" {
		query += fmt.Sprintf(" AND a.id <> $%d", len(args)+1)
		args = append(args, excludeID)
	}
	var count int
	if err := sqlx.GetContext(ctx, r.exec(exec), &count, query, args...); err != nil {
		return 0, fmt.Errorf("count overlapping appointments: %w", err)
	}
	return count, nil
}

// List returns appointment details matching the filter with the total count.
func (r *AppointmentRepository) List(ctx context.Context, filter models.AppointmentFilter) ([]models.AppointmentDetail, int, error) {
	var conditions []string
	var args []interface{}

	if filter.CustomerID != "" {
		conditions = append(conditions, fmt.Sprintf("a.customer_id = $%d", len(args)+1))
		args = append(args, filter.CustomerID)
	}
	if filter.StaffID != "" {
		conditions = append(conditions, fmt.Sprintf("a.staff_id = $%d", len(args)+1))
		args = append(args, filter.StaffID)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("a.status = $%d", len(args)+1))
		args = append(args, string(*filter.Status))
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("a.appointment_time >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("a.appointment_time < $%d", len(args)+1))
		args = append(args, *filter.To)
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	page := models.NewPagination(filter.Page, filter.PageSize, 0)
	listQuery := fmt.Sprintf("%s%s ORDER BY a.appointment_time ASC LIMIT %d OFFSET %d", appointmentDetailSelect, where, page.PageSize, page.Offset())

	var items []models.AppointmentDetail
	if err := r.db.SelectContext(ctx, &items, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list appointments: %w", err)
	}

	countQuery := "SELECT COUNT(*) FROM appointments a" + where
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count appointments: %w", err)
	}
	return items, total, nil
}

// Create inserts a new appointment row.
func (r *AppointmentRepository) Create(ctx context.Context, exec sqlx.ExtContext, appt *models.Appointment) error {
	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	if appt.Status == "" {
		appt.Status = models.AppointmentPending
	}
	now := time.Now().UTC()
	if appt.CreatedAt.IsZero() {
		appt.CreatedAt = now
	}
	appt.UpdatedAt = now

	const query = `INSERT INTO appointments (id, service_id, staff_id, customer_id, appointment_time, status, created_at, updated_at)
VALUES (:id, :service_id, :staff_id, :customer_id, :appointment_time, :status, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, appt); err != nil {
		return writeError("insert appointment", err)
	}
	return nil
}

// UpdateStatus persists a new status.
func (r *AppointmentRepository) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.AppointmentStatus) error {
	const query = `UPDATE appointments SET status = $2, updated_at = $3 WHERE id = $1`
	res, err := r.exec(exec).ExecContext(ctx, query, id, string(status), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update appointment status: %w", err)
	}
	return expectAffected(res)
}

// Reschedule moves the appointment and resets it to the given status.
func (r *AppointmentRepository) Reschedule(ctx context.Context, exec sqlx.ExtContext, appt *models.Appointment) error {
	appt.UpdatedAt = time.Now().UTC()
	const query = `UPDATE appointments SET service_id = :service_id, appointment_time = :appointment_time, status = :status, updated_at = :updated_at WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, appt)
	if err != nil {
		return fmt.Errorf("reschedule appointment: %w", err)
	}
	return expectAffected(res)
}

func releasedStatuses() []string {
	out := make([]string, len(models.SlotReleasingStatuses))
	for i, s := range models.SlotReleasingStatuses {
		out[i] = string(s)
	}
	return out
}
