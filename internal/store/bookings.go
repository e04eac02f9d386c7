package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"deskbook/backend/internal/domain"
)

// BookingFilter narrows a booking listing. Nil fields are ignored and the
// rest are combined with AND. Start and End are inclusive.
type BookingFilter struct {
	Date   *time.Time
	Start  *time.Time
	End    *time.Time
	UserID *uuid.UUID
}

// BatchResult is the outcome of a conflict-checked batch booking. When OK is
// false nothing was written and Conflicts lists the unavailable dates, or a
// single descriptive entry when SeatMissing is set.
type BatchResult struct {
	OK          bool
	Bookings    []domain.Booking
	Conflicts   []string
	SeatMissing bool
}

type BookingRepository interface {
	IsSeatAvailable(ctx context.Context, seatID uuid.UUID, date time.Time, slot domain.Slot) (bool, error)
	CreateForDates(ctx context.Context, userID, seatID uuid.UUID, dates []time.Time, slot domain.Slot) (BatchResult, error)
	List(ctx context.Context, filter BookingFilter) ([]domain.Booking, error)
	Get(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error)
	Delete(ctx context.Context, bookingID uuid.UUID) error
}
