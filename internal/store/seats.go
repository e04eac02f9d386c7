package store

import (
	"context"

	"github.com/google/uuid"

	"deskbook/backend/internal/domain"
)

// SeatPlacement moves a seat on the floor plan. The seat is addressed by ID
// when set, otherwise by Label.
type SeatPlacement struct {
	ID    uuid.UUID
	Label string
	X     int
	Y     int
}

type SeatRepository interface {
	List(ctx context.Context) ([]domain.Seat, error)
	Get(ctx context.Context, seatID uuid.UUID) (domain.Seat, error)
	Create(ctx context.Context, seat domain.Seat) (domain.Seat, error)
	Update(ctx context.Context, seat domain.Seat) (domain.Seat, error)
	Delete(ctx context.Context, seatID uuid.UUID) error
	UpdateLayout(ctx context.Context, placements []SeatPlacement) error
}

type UserRepository interface {
	Get(ctx context.Context, userID uuid.UUID) (domain.User, error)
	GetByUsername(ctx context.Context, username string) (domain.User, error)
	Create(ctx context.Context, user domain.User) (domain.User, error)
}
