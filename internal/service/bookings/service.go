package bookings

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"deskbook/backend/internal/domain"
	"deskbook/backend/internal/events"
	"deskbook/backend/internal/store"
)

// MaxDates caps how many dates one batch may book, two years of weekly
// occurrences.
const MaxDates = 104

// MaxIntervalWeeks caps the gap between generated occurrences at a year.
const MaxIntervalWeeks = 52

type ValidationError struct {
	Field string
	msg   string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(field, msg string) error {
	return &ValidationError{Field: field, msg: msg}
}

type Service struct {
	repo      store.BookingRepository
	publisher events.Publisher
	log       *slog.Logger
	now       func() time.Time
}

func NewService(repo store.BookingRepository, publisher events.Publisher, log *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		log:       log.With(slog.String("component", "bookings")),
		now:       time.Now,
	}
}

type AvailabilityInput struct {
	SeatID uuid.UUID
	Date   string
	Slot   string
}

func (s *Service) IsSeatAvailable(ctx context.Context, in AvailabilityInput) (bool, error) {
	if in.SeatID == uuid.Nil {
		return false, validationError("seatId", "seatId is required")
	}
	date, err := parseDate("date", in.Date)
	if err != nil {
		return false, err
	}
	slot, err := domain.ParseSlot(in.Slot)
	if err != nil {
		return false, validationError("slot", err.Error())
	}
	return s.repo.IsSeatAvailable(ctx, in.SeatID, date, slot)
}

// CreateInput is a batch booking request. Either Dates or StartDate is set,
// never both. Occurrences and IntervalWeeks default to 1.
type CreateInput struct {
	Caller        domain.Caller
	SeatID        uuid.UUID
	Slot          string
	Dates         []string
	StartDate     string
	Occurrences   int
	IntervalWeeks int
}

// CreateBookings expands the request into dates and books all of them or
// none. Unavailable dates come back in the result, not as an error.
func (s *Service) CreateBookings(ctx context.Context, in CreateInput) (store.BatchResult, error) {
	if in.Caller.UserID == uuid.Nil {
		return store.BatchResult{}, validationError("userId", "user is required")
	}
	if in.SeatID == uuid.Nil {
		return store.BatchResult{}, validationError("seatId", "seatId is required")
	}
	slot, err := domain.ParseSlot(in.Slot)
	if err != nil {
		return store.BatchResult{}, validationError("slot", err.Error())
	}

	spec, err := recurrenceSpec(in)
	if err != nil {
		return store.BatchResult{}, err
	}
	dates, err := domain.ExpandDates(spec)
	if err != nil {
		return store.BatchResult{}, validationError("", err.Error())
	}

	res, err := s.repo.CreateForDates(ctx, in.Caller.UserID, in.SeatID, dates, slot)
	if err != nil {
		return store.BatchResult{}, err
	}
	if res.OK {
		s.publish(ctx, events.TypeBookingsCreated, res.Bookings)
	}
	return res, nil
}

func recurrenceSpec(in CreateInput) (domain.RecurrenceSpec, error) {
	startDate := strings.TrimSpace(in.StartDate)
	if len(in.Dates) > 0 && startDate != "" {
		return domain.RecurrenceSpec{}, validationError("dates", "provide either dates or startDate, not both")
	}

	if len(in.Dates) > 0 {
		if len(in.Dates) > MaxDates {
			return domain.RecurrenceSpec{}, validationError("dates", fmt.Sprintf("at most %d dates per request", MaxDates))
		}
		seen := make(map[time.Time]struct{}, len(in.Dates))
		dates := make([]time.Time, 0, len(in.Dates))
		for _, raw := range in.Dates {
			d, err := parseDate("dates", raw)
			if err != nil {
				return domain.RecurrenceSpec{}, err
			}
			if _, ok := seen[d]; ok {
				return domain.RecurrenceSpec{}, validationError("dates", "duplicate date "+domain.FormatDate(d))
			}
			seen[d] = struct{}{}
			dates = append(dates, d)
		}
		return domain.RecurrenceSpec{Dates: dates}, nil
	}

	if startDate == "" {
		return domain.RecurrenceSpec{}, validationError("dates", "dates or startDate is required")
	}
	start, err := parseDate("startDate", startDate)
	if err != nil {
		return domain.RecurrenceSpec{}, err
	}
	if in.Occurrences < 0 {
		return domain.RecurrenceSpec{}, validationError("occurrences", "occurrences must be at least 1")
	}
	if in.Occurrences > MaxDates {
		return domain.RecurrenceSpec{}, validationError("occurrences", fmt.Sprintf("occurrences must be at most %d", MaxDates))
	}
	if in.IntervalWeeks < 0 {
		return domain.RecurrenceSpec{}, validationError("intervalWeeks", "interval must be at least 1")
	}
	if in.IntervalWeeks > MaxIntervalWeeks {
		return domain.RecurrenceSpec{}, validationError("intervalWeeks", fmt.Sprintf("interval must be at most %d weeks", MaxIntervalWeeks))
	}
	return domain.RecurrenceSpec{
		Start:         start,
		Occurrences:   in.Occurrences,
		IntervalWeeks: in.IntervalWeeks,
	}, nil
}

// ListInput holds raw query filters. Empty strings are ignored.
type ListInput struct {
	Date   string
	Start  string
	End    string
	UserID string
}

// List returns bookings newest first. Non-admin callers only ever see their
// own bookings and are refused when they ask for someone else's.
func (s *Service) List(ctx context.Context, caller domain.Caller, in ListInput) ([]domain.Booking, error) {
	var filter store.BookingFilter
	var err error

	if filter.Date, err = optionalDate("date", in.Date); err != nil {
		return nil, err
	}
	if filter.Start, err = optionalDate("start", in.Start); err != nil {
		return nil, err
	}
	if filter.End, err = optionalDate("end", in.End); err != nil {
		return nil, err
	}
	if filter.Start != nil && filter.End != nil && filter.End.Before(*filter.Start) {
		return nil, validationError("end", "end must not be before start")
	}

	if raw := strings.TrimSpace(in.UserID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, validationError("userId", "invalid userId")
		}
		filter.UserID = &id
	}

	if !caller.IsAdmin() {
		if filter.UserID != nil && *filter.UserID != caller.UserID {
			return nil, store.ErrForbidden
		}
		own := caller.UserID
		filter.UserID = &own
	}

	return s.repo.List(ctx, filter)
}

// Occupancy lists every booking on one date across all users, for drawing
// the floor plan.
func (s *Service) Occupancy(ctx context.Context, date string) ([]domain.Booking, error) {
	d, err := parseDate("date", date)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, store.BookingFilter{Date: &d})
}

func (s *Service) Get(ctx context.Context, caller domain.Caller, bookingID uuid.UUID) (domain.Booking, error) {
	if bookingID == uuid.Nil {
		return domain.Booking{}, validationError("id", "booking id is required")
	}
	b, err := s.repo.Get(ctx, bookingID)
	if err != nil {
		return domain.Booking{}, err
	}
	if !caller.CanAccess(b.UserID) {
		return domain.Booking{}, store.ErrForbidden
	}
	return b, nil
}

// Cancel hard-deletes a booking owned by the caller, or any booking when
// the caller is an admin.
func (s *Service) Cancel(ctx context.Context, caller domain.Caller, bookingID uuid.UUID) error {
	b, err := s.Get(ctx, caller, bookingID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, b.ID); err != nil {
		return err
	}
	s.publish(ctx, events.TypeBookingCancelled, []domain.Booking{b})
	return nil
}

func (s *Service) publish(ctx context.Context, eventType string, bookings []domain.Booking) {
	ev := events.NewBookingEvent(eventType, bookings, s.now())
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.log.WarnContext(ctx, "publish booking event failed",
			slog.String("type", eventType),
			slog.Int("bookings", len(bookings)),
			slog.Any("err", err),
		)
	}
}

func parseDate(field, raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, validationError(field, field+" is required")
	}
	d, err := domain.ParseDate(raw)
	if err != nil {
		return time.Time{}, validationError(field, field+" must be a YYYY-MM-DD date")
	}
	return d, nil
}

func optionalDate(field, raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	d, err := parseDate(field, raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
