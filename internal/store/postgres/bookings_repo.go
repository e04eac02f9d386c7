package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"deskbook/backend/internal/domain"
	"deskbook/backend/internal/store"
)

type BookingRepo struct {
	db *bun.DB
}

func NewBookingRepo(db *bun.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

type ledgerTx struct {
	db bun.IDB
}

// slotTakenError aborts a batch when an insert trips a slot index, which
// happens when the batch itself repeats a date.
type slotTakenError struct {
	date time.Time
}

func (e *slotTakenError) Error() string {
	return "slot taken on " + domain.FormatDate(e.date)
}

func (r *BookingRepo) IsSeatAvailable(ctx context.Context, seatID uuid.UUID, date time.Time, slot domain.Slot) (bool, error) {
	return seatAvailable(ctx, ledgerTx{db: r.db}, seatID, domain.DateOf(date), slot)
}

func (r *BookingRepo) CreateForDates(ctx context.Context, userID, seatID uuid.UUID, dates []time.Time, slot domain.Slot) (store.BatchResult, error) {
	var out store.BatchResult
	err := r.InSeatTransaction(ctx, seatID, func(ctx context.Context, tx store.LedgerTx) error {
		res, err := bookDates(ctx, tx, userID, seatID, dates, slot)
		if err != nil {
			return err
		}
		out = res
		return nil
	})
	if err != nil {
		var taken *slotTakenError
		if errors.As(err, &taken) {
			return store.BatchResult{Conflicts: []string{domain.FormatDate(taken.date)}}, nil
		}
		return store.BatchResult{}, err
	}
	return out, nil
}

func (r *BookingRepo) List(ctx context.Context, filter store.BookingFilter) ([]domain.Booking, error) {
	rows := make([]domain.Booking, 0)
	q := r.db.NewSelect().
		Model(&rows).
		Relation("Seat").
		Relation("User", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.ExcludeColumn("password_hash")
		}).
		OrderExpr("b.created_at DESC")

	if filter.Date != nil {
		q = q.Where("b.date = ?::date", domain.FormatDate(*filter.Date))
	}
	if filter.Start != nil {
		q = q.Where("b.date >= ?::date", domain.FormatDate(*filter.Start))
	}
	if filter.End != nil {
		q = q.Where("b.date <= ?::date", domain.FormatDate(*filter.End))
	}
	if filter.UserID != nil {
		q = q.Where("b.user_id = ?", *filter.UserID)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *BookingRepo) Get(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error) {
	var b domain.Booking
	err := r.db.NewSelect().
		Model(&b).
		Where("b.id = ?", bookingID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return domain.Booking{}, notFound(err)
	}
	return b, nil
}

func (r *BookingRepo) Delete(ctx context.Context, bookingID uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*domain.Booking)(nil)).
		Where("id = ?", bookingID).
		Exec(ctx)
	if err != nil {
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

// InSeatTransaction runs fn in a transaction that holds the seat's ledger
// lock, serializing every batch booking for that seat.
func (r *BookingRepo) InSeatTransaction(ctx context.Context, seatID uuid.UUID, fn func(ctx context.Context, tx store.LedgerTx) error) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockSeatLedger(ctx, tx, seatID); err != nil {
			return err
		}
		return fn(ctx, ledgerTx{db: tx})
	})
}

func lockSeatLedger(ctx context.Context, tx bun.Tx, seatID uuid.UUID) error {
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", "seat:"+seatID.String()).Exec(ctx)
	return err
}

func (l ledgerTx) GetSeat(ctx context.Context, seatID uuid.UUID) (domain.Seat, error) {
	var s domain.Seat
	err := l.db.NewSelect().
		Model(&s).
		Where("s.id = ?", seatID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return domain.Seat{}, notFound(err)
	}
	return s, nil
}

func (l ledgerTx) ListSeatBookings(ctx context.Context, seatID uuid.UUID, date time.Time) ([]domain.Booking, error) {
	var rows []domain.Booking
	err := l.db.NewSelect().
		Model(&rows).
		Where("b.seat_id = ?", seatID).
		Where("b.date = ?::date", domain.FormatDate(date)).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (l ledgerTx) InsertBooking(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	m := domain.Booking{
		ID:        b.ID,
		UserID:    b.UserID,
		SeatID:    b.SeatID,
		Date:      domain.DateOf(b.Date),
		Slot:      b.Slot,
		CreatedAt: b.CreatedAt,
	}

	_, err := l.db.NewInsert().Model(&m).Exec(ctx)
	if err != nil {
		if isSlotViolation(err) {
			return domain.Booking{}, store.ErrConflict
		}
		if name, ok := violation(err, codeForeignKeyViolation); ok && name == constraintBookingSeatFK {
			return domain.Booking{}, store.ErrNotFound
		}
		return domain.Booking{}, err
	}
	return m, nil
}

func seatAvailable(ctx context.Context, tx store.LedgerTx, seatID uuid.UUID, date time.Time, slot domain.Slot) (bool, error) {
	seat, err := tx.GetSeat(ctx, seatID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	existing, err := tx.ListSeatBookings(ctx, seatID, date)
	if err != nil {
		return false, err
	}
	return domain.SlotAvailable(&seat, existing, date, slot), nil
}

// bookDates checks every date against the seat's ledger and inserts one
// booking per date only when none of them conflict.
func bookDates(ctx context.Context, tx store.LedgerTx, userID, seatID uuid.UUID, dates []time.Time, slot domain.Slot) (store.BatchResult, error) {
	seat, err := tx.GetSeat(ctx, seatID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.BatchResult{
				SeatMissing: true,
				Conflicts:   []string{fmt.Sprintf("Seat %s not found", seatID)},
			}, nil
		}
		return store.BatchResult{}, err
	}

	conflicts := make([]string, 0)
	for _, d := range dates {
		existing, err := tx.ListSeatBookings(ctx, seatID, d)
		if err != nil {
			return store.BatchResult{}, err
		}
		if !domain.SlotAvailable(&seat, existing, d, slot) {
			conflicts = append(conflicts, domain.FormatDate(d))
		}
	}
	if len(conflicts) > 0 {
		return store.BatchResult{Conflicts: conflicts}, nil
	}

	created := make([]domain.Booking, 0, len(dates))
	for _, d := range dates {
		b, err := tx.InsertBooking(ctx, domain.Booking{
			UserID: userID,
			SeatID: seatID,
			Date:   d,
			Slot:   slot,
		})
		if err != nil {
			if errors.Is(err, store.ErrConflict) {
				return store.BatchResult{}, &slotTakenError{date: d}
			}
			return store.BatchResult{}, err
		}
		created = append(created, b)
	}

	return store.BatchResult{OK: true, Bookings: created}, nil
}
