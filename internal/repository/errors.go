package repository

import (
	"database/sql"
	"fmt"

	"github.com/noah-isme/salon-booking-api/pkg/database"
	appErrors "github.com/noah-isme/salon-booking-api/pkg/errors"
)

// writeError wraps a failed write, collapsing unique violations into ErrDuplicate.
func writeError(op string, err error) error {
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("%s: %w", op, appErrors.ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// expectAffected turns an update that matched no row into sql.ErrNoRows.
func expectAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
