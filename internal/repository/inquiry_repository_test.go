package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/salon-booking-api/internal/models"
	appErrors "github.com/noah-isme/salon-booking-api/pkg/errors"
)

func TestInquiryCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewInquiryRepository(db)

	mock.ExpectExec("INSERT INTO inquiries").WillReturnResult(sqlmock.NewResult(1, 1))

	inquiry := &models.Inquiry{FirstName: "Mila", LastName: "Ivanova", Email: "mila@example.com", Phone: "+359888000111", SalonName: "Mila Hair", City: "Sofia"}
	require.NoError(t, repo.Create(context.Background(), inquiry))
	assert.Equal(t, models.InquiryPending, inquiry.Status)
	assert.NotEmpty(t, inquiry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInquiryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewInquiryRepository(db)

	mock.ExpectExec("INSERT INTO inquiries").WillReturnError(&pq.Error{Code: "23505", Constraint: "inquiries_email_key"})

	err := repo.Create(context.Background(), &models.Inquiry{Email: "mila@example.com"})
	assert.ErrorIs(t, err, appErrors.ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInquiryListByStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewInquiryRepository(db)

	now := time.Now()
	status := models.InquiryApproved
	rows := sqlmock.NewRows([]string{"id", "first_name", "last_name", "email", "phone", "salon_name", "city", "status", "created_at", "updated_at"}).
		AddRow("i1", "Mila", "Ivanova", "mila@example.com", "+359888000111", "Mila Hair", "Sofia", "APPROVED", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM inquiries WHERE status = $1 ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		WithArgs("APPROVED").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM inquiries WHERE status = $1")).
		WithArgs("APPROVED").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	items, total, err := repo.List(context.Background(), models.InquiryFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, models.InquiryApproved, items[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
