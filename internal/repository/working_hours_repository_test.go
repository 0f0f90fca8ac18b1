package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/salon-booking-api/internal/models"
)

func TestWorkingHoursListActiveForDay(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewWorkingHoursRepository(db)

	now := time.Now()
	day := 0
	rows := sqlmock.NewRows([]string{"id", "provider_id", "staff_id", "day_of_week", "start_time", "end_time", "is_active", "created_at", "updated_at"}).
		AddRow("wh-1", "p1", "staff-1", 0, "09:00", "17:00", true, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM working_hours WHERE staff_id = $1 AND day_of_week = $2 AND is_active = TRUE ORDER BY day_of_week, start_time")).
		WithArgs("staff-1", 0).
		WillReturnRows(rows)

	hours, err := repo.List(context.Background(), models.WorkingHoursFilter{StaffID: "staff-1", DayOfWeek: &day, ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, hours, 1)
	assert.Equal(t, "09:00", hours[0].StartTime)
	assert.Equal(t, "17:00", hours[0].EndTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkingHoursBulkCreateWithTx(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewWorkingHoursRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO working_hours").WillReturnResult(sqlmock.NewResult(2, 2))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	entries := []models.WorkingHours{
		{ProviderID: "p1", StaffID: "staff-1", DayOfWeek: 0, StartTime: "09:00", EndTime: "12:00"},
		{ProviderID: "p1", StaffID: "staff-1", DayOfWeek: 0, StartTime: "13:00", EndTime: "17:00"},
	}
	require.NoError(t, repo.BulkCreateWithTx(context.Background(), tx, entries))
	require.NoError(t, tx.Commit())
	for _, entry := range entries {
		assert.NotEmpty(t, entry.ID)
		assert.True(t, entry.Active)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkingHoursDeactivate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewWorkingHoursRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE working_hours SET is_active = FALSE")).
		WithArgs("wh-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Deactivate(context.Background(), "wh-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
