package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Booking struct {
	bun.BaseModel `bun:"table:bookings,alias:b"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	UserID    uuid.UUID `bun:"user_id,notnull,type:uuid"`
	SeatID    uuid.UUID `bun:"seat_id,notnull,type:uuid"`
	Date      time.Time `bun:"date,notnull,type:date"`
	Slot      Slot      `bun:"slot,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`

	Seat *Seat `bun:"rel:belongs-to,join:seat_id=id"`
	User *User `bun:"rel:belongs-to,join:user_id=id"`
}

func (b *Booking) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); !ok {
		return nil
	}
	if b.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		b.ID = id
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	return nil
}
