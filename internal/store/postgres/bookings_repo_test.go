package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"deskbook/backend/internal/domain"
	"deskbook/backend/internal/store"
)

// fakeLedgerTx keeps bookings in memory and applies the same slot rules the
// partial unique indexes enforce.
type fakeLedgerTx struct {
	seats    map[uuid.UUID]domain.Seat
	bookings []domain.Booking
	inserted int

	insertErr error
}

func newFakeLedgerTx(seats ...domain.Seat) *fakeLedgerTx {
	f := &fakeLedgerTx{seats: make(map[uuid.UUID]domain.Seat, len(seats))}
	for _, s := range seats {
		f.seats[s.ID] = s
	}
	return f
}

func (f *fakeLedgerTx) GetSeat(ctx context.Context, seatID uuid.UUID) (domain.Seat, error) {
	s, ok := f.seats[seatID]
	if !ok {
		return domain.Seat{}, store.ErrNotFound
	}
	return s, nil
}

func (f *fakeLedgerTx) ListSeatBookings(ctx context.Context, seatID uuid.UUID, date time.Time) ([]domain.Booking, error) {
	var out []domain.Booking
	for _, b := range f.bookings {
		if b.SeatID == seatID && b.Date.Equal(domain.DateOf(date)) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeLedgerTx) InsertBooking(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	if f.insertErr != nil {
		return domain.Booking{}, f.insertErr
	}
	for _, e := range f.bookings {
		if e.SeatID == b.SeatID && e.Date.Equal(domain.DateOf(b.Date)) && e.Slot.Overlaps(b.Slot) {
			return domain.Booking{}, store.ErrConflict
		}
	}
	b.ID = uuid.New()
	b.Date = domain.DateOf(b.Date)
	f.bookings = append(f.bookings, b)
	f.inserted++
	return b, nil
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := domain.ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q) error: %v", s, err)
	}
	return d
}

func TestBookDates(t *testing.T) {
	seatID := uuid.MustParse("00000000-0000-0000-0000-000000000010")
	userID := uuid.MustParse("00000000-0000-0000-0000-000000000020")
	seat := domain.Seat{ID: seatID, Label: "T10"}
	ctx := context.Background()

	t.Run("AM then PM coexist and FULL conflicts", func(t *testing.T) {
		tx := newFakeLedgerTx(seat)

		res, err := bookDates(ctx, tx, userID, seatID, []time.Time{date(t, "2024-03-01")}, domain.SlotAM)
		if err != nil || !res.OK {
			t.Fatalf("AM booking = %+v, %v", res, err)
		}
		if len(res.Bookings) != 1 || res.Bookings[0].Slot != domain.SlotAM {
			t.Fatalf("bookings = %+v, want one AM booking", res.Bookings)
		}

		res, err = bookDates(ctx, tx, userID, seatID, []time.Time{date(t, "2024-03-01")}, domain.SlotPM)
		if err != nil || !res.OK {
			t.Fatalf("PM booking = %+v, %v", res, err)
		}

		res, err = bookDates(ctx, tx, userID, seatID, []time.Time{date(t, "2024-03-01")}, domain.SlotFull)
		if err != nil {
			t.Fatalf("FULL booking error: %v", err)
		}
		if res.OK {
			t.Fatalf("FULL booking must conflict")
		}
		if len(res.Conflicts) != 1 || res.Conflicts[0] != "2024-03-01" {
			t.Fatalf("conflicts = %v, want [2024-03-01]", res.Conflicts)
		}
	})

	t.Run("any conflict books nothing", func(t *testing.T) {
		tx := newFakeLedgerTx(seat)
		tx.bookings = []domain.Booking{{SeatID: seatID, Date: date(t, "2024-03-05"), Slot: domain.SlotAM}}

		res, err := bookDates(ctx, tx, userID, seatID, []time.Time{date(t, "2024-03-04"), date(t, "2024-03-05")}, domain.SlotAM)
		if err != nil {
			t.Fatalf("bookDates error: %v", err)
		}
		if res.OK {
			t.Fatalf("expected conflict result")
		}
		if len(res.Conflicts) != 1 || res.Conflicts[0] != "2024-03-05" {
			t.Fatalf("conflicts = %v, want [2024-03-05]", res.Conflicts)
		}
		if tx.inserted != 0 {
			t.Fatalf("inserted = %d, want 0", tx.inserted)
		}
	})

	t.Run("conflicts list every unavailable date in order", func(t *testing.T) {
		tx := newFakeLedgerTx(seat)
		tx.bookings = []domain.Booking{
			{SeatID: seatID, Date: date(t, "2024-03-12"), Slot: domain.SlotFull},
			{SeatID: seatID, Date: date(t, "2024-03-26"), Slot: domain.SlotPM},
		}

		dates := []time.Time{
			date(t, "2024-03-05"),
			date(t, "2024-03-12"),
			date(t, "2024-03-19"),
			date(t, "2024-03-26"),
		}
		res, err := bookDates(ctx, tx, userID, seatID, dates, domain.SlotPM)
		if err != nil {
			t.Fatalf("bookDates error: %v", err)
		}
		want := []string{"2024-03-12", "2024-03-26"}
		if len(res.Conflicts) != len(want) {
			t.Fatalf("conflicts = %v, want %v", res.Conflicts, want)
		}
		for i := range want {
			if res.Conflicts[i] != want[i] {
				t.Fatalf("conflicts = %v, want %v", res.Conflicts, want)
			}
		}
	})

	t.Run("bookings created in request order", func(t *testing.T) {
		tx := newFakeLedgerTx(seat)
		dates := []time.Time{date(t, "2024-03-20"), date(t, "2024-03-06"), date(t, "2024-03-13")}

		res, err := bookDates(ctx, tx, userID, seatID, dates, domain.SlotFull)
		if err != nil || !res.OK {
			t.Fatalf("bookDates = %+v, %v", res, err)
		}
		for i, b := range res.Bookings {
			if !b.Date.Equal(dates[i]) {
				t.Fatalf("booking %d date = %s, want %s", i, domain.FormatDate(b.Date), domain.FormatDate(dates[i]))
			}
			if b.UserID != userID || b.SeatID != seatID {
				t.Fatalf("booking %d owner/seat = %s/%s", i, b.UserID, b.SeatID)
			}
		}
	})

	t.Run("blocked range reports dates inside it", func(t *testing.T) {
		start := date(t, "2024-04-01")
		end := date(t, "2024-04-05")
		blocked := seat
		blocked.IsBlocked = true
		blocked.BlockStartDate = &start
		blocked.BlockEndDate = &end
		tx := newFakeLedgerTx(blocked)

		res, err := bookDates(ctx, tx, userID, seatID, []time.Time{date(t, "2024-04-03"), date(t, "2024-04-06")}, domain.SlotAM)
		if err != nil {
			t.Fatalf("bookDates error: %v", err)
		}
		if res.OK || len(res.Conflicts) != 1 || res.Conflicts[0] != "2024-04-03" {
			t.Fatalf("result = %+v, want conflict on 2024-04-03 only", res)
		}
	})

	t.Run("missing seat is a descriptive conflict", func(t *testing.T) {
		tx := newFakeLedgerTx()

		res, err := bookDates(ctx, tx, userID, seatID, []time.Time{date(t, "2024-03-01")}, domain.SlotAM)
		if err != nil {
			t.Fatalf("bookDates error: %v", err)
		}
		if res.OK || !res.SeatMissing {
			t.Fatalf("result = %+v, want SeatMissing", res)
		}
		if len(res.Conflicts) != 1 || res.Conflicts[0] != "Seat "+seatID.String()+" not found" {
			t.Fatalf("conflicts = %v", res.Conflicts)
		}
	})

	t.Run("repeated date aborts with slot taken", func(t *testing.T) {
		tx := newFakeLedgerTx(seat)

		_, err := bookDates(ctx, tx, userID, seatID, []time.Time{date(t, "2024-03-01"), date(t, "2024-03-01")}, domain.SlotAM)
		var taken *slotTakenError
		if !errors.As(err, &taken) {
			t.Fatalf("err = %v, want *slotTakenError", err)
		}
		if domain.FormatDate(taken.date) != "2024-03-01" {
			t.Fatalf("taken date = %s", domain.FormatDate(taken.date))
		}
	})

	t.Run("insert errors propagate", func(t *testing.T) {
		tx := newFakeLedgerTx(seat)
		boom := errors.New("boom")
		tx.insertErr = boom

		_, err := bookDates(ctx, tx, userID, seatID, []time.Time{date(t, "2024-03-01")}, domain.SlotAM)
		if !errors.Is(err, boom) {
			t.Fatalf("err = %v, want %v", err, boom)
		}
	})
}

func TestSeatAvailable(t *testing.T) {
	seatID := uuid.MustParse("00000000-0000-0000-0000-000000000011")
	ctx := context.Background()

	t.Run("missing seat fails closed", func(t *testing.T) {
		ok, err := seatAvailable(ctx, newFakeLedgerTx(), seatID, date(t, "2024-03-01"), domain.SlotAM)
		if err != nil {
			t.Fatalf("seatAvailable error: %v", err)
		}
		if ok {
			t.Fatalf("missing seat must be unavailable")
		}
	})

	t.Run("repeated reads agree", func(t *testing.T) {
		tx := newFakeLedgerTx(domain.Seat{ID: seatID})
		tx.bookings = []domain.Booking{{SeatID: seatID, Date: date(t, "2024-03-01"), Slot: domain.SlotPM}}

		first, err := seatAvailable(ctx, tx, seatID, date(t, "2024-03-01"), domain.SlotAM)
		if err != nil {
			t.Fatalf("seatAvailable error: %v", err)
		}
		second, err := seatAvailable(ctx, tx, seatID, date(t, "2024-03-01"), domain.SlotAM)
		if err != nil {
			t.Fatalf("seatAvailable error: %v", err)
		}
		if !first || !second {
			t.Fatalf("AM next to PM must be available, got %v then %v", first, second)
		}
		if tx.inserted != 0 || len(tx.bookings) != 1 {
			t.Fatalf("availability check must not write")
		}
	})
}
