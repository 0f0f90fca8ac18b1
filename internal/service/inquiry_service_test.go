package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/salon-booking-api/internal/dto"
	"github.com/noah-isme/salon-booking-api/internal/models"
	appErrors "github.com/noah-isme/salon-booking-api/pkg/errors"
)

const testInquiryID = "88888888-8888-4888-8888-888888888888"

type memInquiryRepo struct {
	items  map[string]*models.Inquiry
	emails map[string]bool
	seq    int
}

func newMemInquiryRepo() *memInquiryRepo {
	return &memInquiryRepo{items: map[string]*models.Inquiry{}, emails: map[string]bool{}}
}

func (m *memInquiryRepo) Create(_ context.Context, inquiry *models.Inquiry) error {
	if m.emails[inquiry.Email] || m.emails[inquiry.Phone] {
		return fmt.Errorf("insert inquiry: %w", appErrors.ErrDuplicate)
	}
	m.seq++
	if inquiry.ID == "" {
		inquiry.ID = fmt.Sprintf("inq-%d", m.seq)
	}
	m.emails[inquiry.Email] = true
	m.emails[inquiry.Phone] = true
	cp := *inquiry
	m.items[inquiry.ID] = &cp
	return nil
}

func (m *memInquiryRepo) FindByID(_ context.Context, _ sqlx.ExtContext, id string) (*models.Inquiry, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *item
	return &cp, nil
}

func (m *memInquiryRepo) FindByIDForUpdate(ctx context.Context, _ *sqlx.Tx, id string) (*models.Inquiry, error) {
	return m.FindByID(ctx, nil, id)
}

func (m *memInquiryRepo) List(_ context.Context, filter models.InquiryFilter) ([]models.Inquiry, int, error) {
	var out []models.Inquiry
	for _, item := range m.items {
		if filter.Status != nil && item.Status != *filter.Status {
			continue
		}
		out = append(out, *item)
	}
	return out, len(out), nil
}

func (m *memInquiryRepo) UpdateStatus(_ context.Context, _ sqlx.ExtContext, id string, status models.InquiryStatus) error {
	item, ok := m.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	item.Status = status
	return nil
}

type recordingAudit struct {
	entries []models.AuditLog
	err     error
}

func (r *recordingAudit) CreateAuditLog(_ context.Context, log *models.AuditLog) error {
	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, *log)
	return nil
}

func approverActor() *models.JWTClaims {
	return &models.JWTClaims{UserID: "approver-1", Role: models.RoleApprover}
}

func validInquiryRequest() dto.RegisterInquiryRequest {
	return dto.RegisterInquiryRequest{
		FirstName: "Maria",
		LastName:  "Ivanova",
		Email:     "maria@salon.test",
		Phone:     "0888123456",
		SalonName: "Studio M",
		City:      "Sofia",
	}
}

func TestRegisterInquiryCreatesPending(t *testing.T) {
	repo := newMemInquiryRepo()
	svc := NewInquiryService(nil, repo, nil, nil, nil, nil)

	inquiry, err := svc.RegisterInquiry(context.Background(), validInquiryRequest())
	require.NoError(t, err)
	assert.Equal(t, models.InquiryPending, inquiry.Status)
	assert.Contains(t, repo.items, inquiry.ID)
}

func TestRegisterInquiryDuplicateIsGenericConflict(t *testing.T) {
	repo := newMemInquiryRepo()
	svc := NewInquiryService(nil, repo, nil, nil, nil, nil)
	_, err := svc.RegisterInquiry(context.Background(), validInquiryRequest())
	require.NoError(t, err)

	again := validInquiryRequest()
	again.Email = "other@salon.test"
	_, err = svc.RegisterInquiry(context.Background(), again)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, 409, appErr.Status)
	assert.NotContains(t, appErr.Message, "phone")
	assert.NotContains(t, appErr.Message, "email")
}

func TestRegisterInquiryValidation(t *testing.T) {
	svc := NewInquiryService(nil, newMemInquiryRepo(), nil, nil, nil, nil)
	req := validInquiryRequest()
	req.Phone = "12345"
	_, err := svc.RegisterInquiry(context.Background(), req)
	assert.Equal(t, appErrors.ErrValidation.Code, errorCode(err))
}

func TestTransitionInquiryFollowsTable(t *testing.T) {
	cases := []struct {
		from, to models.InquiryStatus
		allowed  bool
	}{
		{models.InquiryPending, models.InquiryApproved, true},
		{models.InquiryPending, models.InquiryRejected, true},
		{models.InquiryPending, models.InquiryNoShow, false},
		{models.InquiryApproved, models.InquiryNoShow, true},
		{models.InquiryApproved, models.InquiryRejected, false},
		{models.InquiryRejected, models.InquiryApproved, false},
		{models.InquiryNoShow, models.InquiryApproved, false},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%s_to_%s", tc.from, tc.to), func(t *testing.T) {
			db, mock := newTxProviderMock(t)
			repo := newMemInquiryRepo()
			repo.items[testInquiryID] = &models.Inquiry{ID: testInquiryID, Status: tc.from}
			audit := &recordingAudit{}
			metrics := &recordingMetrics{}
			svc := NewInquiryService(db, repo, audit, metrics, nil, nil)

			mock.ExpectBegin()
			if tc.allowed {
				mock.ExpectCommit()
			} else {
				mock.ExpectRollback()
			}

			updated, err := svc.TransitionInquiry(context.Background(), testInquiryID, tc.to, approverActor())
			if tc.allowed {
				require.NoError(t, err)
				assert.Equal(t, tc.to, updated.Status)
				assert.Equal(t, tc.to, repo.items[testInquiryID].Status)
				require.Len(t, audit.entries, 1)
				assert.Equal(t, models.AuditActionInquiryStatus, audit.entries[0].Action)
				assert.Equal(t, "approver-1", *audit.entries[0].UserID)
				assert.JSONEq(t, fmt.Sprintf(`{"status":%q}`, tc.to), string(audit.entries[0].NewValues))
				assert.Equal(t, []string{"inquiry:" + string(tc.from) + "->" + string(tc.to)}, metrics.transitions)
			} else {
				assert.Equal(t, appErrors.ErrInvalidTransition.Code, errorCode(err))
				assert.Equal(t, tc.from, repo.items[testInquiryID].Status)
				assert.Empty(t, audit.entries)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTransitionInquiryUnknown(t *testing.T) {
	db, mock := newTxProviderMock(t)
	svc := NewInquiryService(db, newMemInquiryRepo(), nil, nil, nil, nil)
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Approve(context.Background(), testInquiryID, approverActor())
	assert.Equal(t, appErrors.ErrNotFound.Code, errorCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())

	_, err = svc.TransitionInquiry(context.Background(), testInquiryID, models.InquiryStatus("ARCHIVED"), approverActor())
	assert.Equal(t, appErrors.ErrValidation.Code, errorCode(err))
}

func TestTransitionInquiryAuditFailureIsNotFatal(t *testing.T) {
	db, mock := newTxProviderMock(t)
	repo := newMemInquiryRepo()
	repo.items[testInquiryID] = &models.Inquiry{ID: testInquiryID, Status: models.InquiryPending}
	svc := NewInquiryService(db, repo, &recordingAudit{err: errors.New("audit down")}, nil, nil, nil)
	mock.ExpectBegin()
	mock.ExpectCommit()

	_, err := svc.Reject(context.Background(), testInquiryID, approverActor())
	require.NoError(t, err)
	assert.Equal(t, models.InquiryRejected, repo.items[testInquiryID].Status)
}

func TestListInquiriesByStatus(t *testing.T) {
	repo := newMemInquiryRepo()
	repo.items["a"] = &models.Inquiry{ID: "a", Status: models.InquiryPending}
	repo.items["b"] = &models.Inquiry{ID: "b", Status: models.InquiryApproved}
	svc := NewInquiryService(nil, repo, nil, nil, nil, nil)

	items, page, err := svc.List(context.Background(), "APPROVED", 1, 20)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "b", items[0].ID)
	assert.Equal(t, 1, page.TotalCount)

	_, _, err = svc.List(context.Background(), "archived", 1, 20)
	assert.Equal(t, appErrors.ErrValidation.Code, errorCode(err))

	_, err = svc.Get(context.Background(), "missing")
	assert.Equal(t, appErrors.ErrNotFound.Code, errorCode(err))
}
