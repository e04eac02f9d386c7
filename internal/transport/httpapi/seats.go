package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"deskbook/backend/internal/service/bookings"
	"deskbook/backend/internal/service/seats"
	"deskbook/backend/internal/store"
)

func (s *Server) listSeats(c echo.Context) error {
	rows, err := s.seats.List(c.Request().Context())
	if err != nil {
		return s.fail(c, "listSeats", err)
	}
	return c.JSON(http.StatusOK, toSeatsJSON(rows))
}

func (s *Server) getSeat(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return s.fail(c, "getSeat", err)
	}
	seat, err := s.seats.Get(c.Request().Context(), id)
	if err != nil {
		return s.fail(c, "getSeat", err)
	}
	return c.JSON(http.StatusOK, toSeatJSON(seat))
}

func (s *Server) seatAvailability(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return s.fail(c, "seatAvailability", err)
	}
	ok, err := s.bookings.IsSeatAvailable(c.Request().Context(), bookings.AvailabilityInput{
		SeatID: id,
		Date:   c.QueryParam("date"),
		Slot:   c.QueryParam("slot"),
	})
	if err != nil {
		return s.fail(c, "seatAvailability", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"available": ok})
}

func (s *Server) createSeat(c echo.Context) error {
	var req createSeatRequest
	if err := bindAndValidate(c, &req); err != nil {
		return s.fail(c, "createSeat", err)
	}
	seat, err := s.seats.Create(c.Request().Context(), seats.CreateInput{
		Label:  req.Label,
		Type:   req.Type,
		Tags:   req.Tags,
		X:      req.X,
		Y:      req.Y,
		Width:  req.Width,
		Height: req.Height,
	})
	if err != nil {
		return s.fail(c, "createSeat", err)
	}
	s.log.InfoContext(c.Request().Context(), "seat created",
		slog.String("seat_id", seat.ID.String()),
		slog.String("label", seat.Label),
	)
	return c.JSON(http.StatusCreated, toSeatJSON(seat))
}

func (s *Server) updateSeat(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return s.fail(c, "updateSeat", err)
	}
	var req updateSeatRequest
	if err := bindAndValidate(c, &req); err != nil {
		return s.fail(c, "updateSeat", err)
	}
	seat, err := s.seats.Update(c.Request().Context(), id, seats.UpdateInput{
		Label:  req.Label,
		Type:   req.Type,
		Tags:   req.Tags,
		X:      req.X,
		Y:      req.Y,
		Width:  req.Width,
		Height: req.Height,
	})
	if err != nil {
		return s.fail(c, "updateSeat", err)
	}
	return c.JSON(http.StatusOK, toSeatJSON(seat))
}

func (s *Server) deleteSeat(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return s.fail(c, "deleteSeat", err)
	}
	if err := s.seats.Delete(c.Request().Context(), id); err != nil {
		return s.fail(c, "deleteSeat", err)
	}
	s.log.InfoContext(c.Request().Context(), "seat deleted", slog.String("seat_id", id.String()))
	return c.JSON(http.StatusOK, echo.Map{"message": "Deleted"})
}

func (s *Server) blockSeat(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return s.fail(c, "blockSeat", err)
	}
	var req blockSeatRequest
	if err := bindBody(c, &req); err != nil {
		return s.fail(c, "blockSeat", err)
	}
	seat, err := s.seats.Block(c.Request().Context(), id, req.StartDate, req.EndDate)
	if err != nil {
		return s.fail(c, "blockSeat", err)
	}
	s.log.InfoContext(c.Request().Context(), "seat blocked",
		slog.String("seat_id", id.String()),
		slog.String("kind", seat.Blocking().Kind.String()),
	)
	return c.JSON(http.StatusOK, toSeatJSON(seat))
}

func (s *Server) unblockSeat(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return s.fail(c, "unblockSeat", err)
	}
	seat, err := s.seats.Unblock(c.Request().Context(), id)
	if err != nil {
		return s.fail(c, "unblockSeat", err)
	}
	s.log.InfoContext(c.Request().Context(), "seat unblocked", slog.String("seat_id", id.String()))
	return c.JSON(http.StatusOK, toSeatJSON(seat))
}

func (s *Server) saveLayout(c echo.Context) error {
	var req []placementRequest
	if err := bindBody(c, &req); err != nil {
		return s.fail(c, "saveLayout", err)
	}
	placements := make([]store.SeatPlacement, 0, len(req))
	for _, p := range req {
		if err := c.Validate(&p); err != nil {
			return s.fail(c, "saveLayout", err)
		}
		var id uuid.UUID
		if p.ID != "" {
			parsed, err := uuid.Parse(p.ID)
			if err != nil {
				return s.fail(c, "saveLayout", errBadRequest("id must be a UUID"))
			}
			id = parsed
		}
		placements = append(placements, store.SeatPlacement{ID: id, Label: p.Label, X: p.X, Y: p.Y})
	}
	if err := s.seats.SaveLayout(c.Request().Context(), placements); err != nil {
		return s.fail(c, "saveLayout", err)
	}
	s.log.InfoContext(c.Request().Context(), "layout saved", slog.Int("seats", len(placements)))
	return c.JSON(http.StatusOK, echo.Map{"message": "Saved"})
}
