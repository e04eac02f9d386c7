package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"deskbook/backend/internal/domain"
	"deskbook/backend/internal/store"
)

type SeatRepo struct {
	db *bun.DB
}

func NewSeatRepo(db *bun.DB) *SeatRepo {
	return &SeatRepo{db: db}
}

func (r *SeatRepo) List(ctx context.Context) ([]domain.Seat, error) {
	rows := make([]domain.Seat, 0)
	err := r.db.NewSelect().
		Model(&rows).
		OrderExpr("s.label ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *SeatRepo) Get(ctx context.Context, seatID uuid.UUID) (domain.Seat, error) {
	return ledgerTx{db: r.db}.GetSeat(ctx, seatID)
}

func (r *SeatRepo) Create(ctx context.Context, seat domain.Seat) (domain.Seat, error) {
	m := seat
	if _, err := r.db.NewInsert().Model(&m).Exec(ctx); err != nil {
		return domain.Seat{}, seatWriteError(err)
	}
	return m, nil
}

func (r *SeatRepo) Update(ctx context.Context, seat domain.Seat) (domain.Seat, error) {
	m := seat
	res, err := r.db.NewUpdate().
		Model(&m).
		ExcludeColumn("id", "created_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return domain.Seat{}, seatWriteError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Seat{}, err
	}
	if affected == 0 {
		return domain.Seat{}, store.ErrNotFound
	}
	return m, nil
}

func (r *SeatRepo) Delete(ctx context.Context, seatID uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*domain.Seat)(nil)).
		Where("id = ?", seatID).
		Exec(ctx)
	if err != nil {
		if name, ok := violation(err, codeForeignKeyViolation); ok && name == constraintBookingSeatFK {
			return store.Conflict("Seat has bookings")
		}
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// UpdateLayout moves every placed seat in one transaction. An unknown seat
// aborts the whole layout.
func (r *SeatRepo) UpdateLayout(ctx context.Context, placements []store.SeatPlacement) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, p := range placements {
			q := tx.NewUpdate().
				Model((*domain.Seat)(nil)).
				Set("grid_x = ?", p.X).
				Set("grid_y = ?", p.Y).
				Set("updated_at = now()")
			if p.ID != uuid.Nil {
				q = q.Where("id = ?", p.ID)
			} else {
				q = q.Where("label = ?", p.Label)
			}

			res, err := q.Exec(ctx)
			if err != nil {
				return err
			}
			affected, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if affected == 0 {
				return fmt.Errorf("seat %s: %w", placementRef(p), store.ErrNotFound)
			}
		}
		return nil
	})
}

func placementRef(p store.SeatPlacement) string {
	if p.ID != uuid.Nil {
		return p.ID.String()
	}
	return p.Label
}

func seatWriteError(err error) error {
	if name, ok := violation(err, codeUniqueViolation); ok && name == constraintSeatLabel {
		return store.Conflict("Seat label already exists")
	}
	return err
}
