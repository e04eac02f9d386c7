package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"deskbook/backend/internal/domain"
)

// LedgerTx is the set of reads and writes a batch booking performs while
// holding the seat's ledger lock.
type LedgerTx interface {
	GetSeat(ctx context.Context, seatID uuid.UUID) (domain.Seat, error)
	ListSeatBookings(ctx context.Context, seatID uuid.UUID, date time.Time) ([]domain.Booking, error)
	InsertBooking(ctx context.Context, b domain.Booking) (domain.Booking, error)
}
