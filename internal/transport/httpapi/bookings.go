package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"deskbook/backend/internal/domain"
	"deskbook/backend/internal/service/bookings"
)

func (s *Server) listBookings(c echo.Context) error {
	rows, err := s.bookings.List(c.Request().Context(), callerFrom(c), bookings.ListInput{
		Date:   c.QueryParam("date"),
		Start:  c.QueryParam("start"),
		End:    c.QueryParam("end"),
		UserID: c.QueryParam("userId"),
	})
	if err != nil {
		return s.fail(c, "listBookings", err)
	}
	return c.JSON(http.StatusOK, toBookingsJSON(rows))
}

func (s *Server) occupancy(c echo.Context) error {
	rows, err := s.bookings.Occupancy(c.Request().Context(), c.QueryParam("date"))
	if err != nil {
		return s.fail(c, "occupancy", err)
	}
	out := make([]occupancyJSON, 0, len(rows))
	for _, b := range rows {
		out = append(out, occupancyJSON{
			SeatID: b.SeatID.String(),
			Date:   domain.FormatDate(b.Date),
			Slot:   string(b.Slot),
		})
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) getBooking(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return s.fail(c, "getBooking", err)
	}
	b, err := s.bookings.Get(c.Request().Context(), callerFrom(c), id)
	if err != nil {
		return s.fail(c, "getBooking", err)
	}
	return c.JSON(http.StatusOK, toBookingJSON(b))
}

// createBooking books a single date. It shares the batch path so a taken
// slot reports the same 409 body.
func (s *Server) createBooking(c echo.Context) error {
	var req createBookingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return s.fail(c, "createBooking", err)
	}
	seatID, err := uuid.Parse(req.SeatID)
	if err != nil {
		return s.fail(c, "createBooking", errBadRequest("seatId must be a UUID"))
	}
	return s.book(c, "createBooking", bookings.CreateInput{
		Caller: callerFrom(c),
		SeatID: seatID,
		Slot:   req.Slot,
		Dates:  []string{req.Date},
	}, false)
}

func (s *Server) createRecurringBookings(c echo.Context) error {
	var req recurringBookingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return s.fail(c, "createRecurringBookings", err)
	}
	seatID, err := uuid.Parse(req.SeatID)
	if err != nil {
		return s.fail(c, "createRecurringBookings", errBadRequest("seatId must be a UUID"))
	}
	return s.book(c, "createRecurringBookings", bookings.CreateInput{
		Caller:        callerFrom(c),
		SeatID:        seatID,
		Slot:          req.Slot,
		Dates:         req.Dates,
		StartDate:     req.StartDate,
		Occurrences:   req.Occurrences,
		IntervalWeeks: req.IntervalWeeks,
	}, true)
}

func (s *Server) book(c echo.Context, op string, in bookings.CreateInput, batch bool) error {
	ctx := c.Request().Context()
	log := s.log.With(slog.String("op", op))

	res, err := s.bookings.CreateBookings(ctx, in)
	if err != nil {
		return s.fail(c, op, err)
	}

	if !res.OK {
		if res.SeatMissing {
			log.InfoContext(ctx, "booking seat not found", slog.String("seat_id", in.SeatID.String()))
			return c.JSON(http.StatusNotFound, errorBody{Message: "Seat not found", Conflicts: res.Conflicts})
		}
		log.InfoContext(ctx, "booking conflict",
			slog.String("seat_id", in.SeatID.String()),
			slog.String("user_id", in.Caller.UserID.String()),
			slog.Any("conflicts", res.Conflicts),
		)
		msg := "Seat already booked for this slot"
		if batch {
			msg = "Some dates are not available"
		}
		return c.JSON(http.StatusConflict, errorBody{Message: msg, Conflicts: res.Conflicts})
	}

	log.InfoContext(ctx, "bookings created",
		slog.String("seat_id", in.SeatID.String()),
		slog.String("user_id", in.Caller.UserID.String()),
		slog.Int("count", len(res.Bookings)),
	)
	if !batch && len(res.Bookings) == 1 {
		return c.JSON(http.StatusCreated, toBookingJSON(res.Bookings[0]))
	}
	return c.JSON(http.StatusCreated, toBookingsJSON(res.Bookings))
}

func (s *Server) cancelBooking(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return s.fail(c, "cancelBooking", err)
	}
	caller := callerFrom(c)
	if err := s.bookings.Cancel(c.Request().Context(), caller, id); err != nil {
		return s.fail(c, "cancelBooking", err)
	}
	s.log.InfoContext(c.Request().Context(), "booking cancelled",
		slog.String("booking_id", id.String()),
		slog.String("user_id", caller.UserID.String()),
	)
	return c.JSON(http.StatusOK, echo.Map{"message": "Cancelled"})
}
