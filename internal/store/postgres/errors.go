package postgres

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"deskbook/backend/internal/store"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

const (
	constraintBookingAM     = "bookings_seat_date_am_key"
	constraintBookingPM     = "bookings_seat_date_pm_key"
	constraintSeatLabel     = "seats_label_key"
	constraintUserUsername  = "users_username_key"
	constraintBookingSeatFK = "bookings_seat_id_fkey"
)

// violation returns the violated constraint name when err is a postgres
// error with the given SQLSTATE code.
func violation(err error, code string) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	if pgErr.Code != code {
		return "", false
	}
	return pgErr.ConstraintName, true
}

func isSlotViolation(err error) bool {
	name, ok := violation(err, codeUniqueViolation)
	return ok && (name == constraintBookingAM || name == constraintBookingPM)
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}
