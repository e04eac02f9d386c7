package httpapi

import (
	"time"

	"deskbook/backend/internal/domain"
)

type userJSON struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserJSON(u domain.User) userJSON {
	return userJSON{
		ID:        u.ID.String(),
		Username:  u.Username,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

type seatJSON struct {
	ID             string    `json:"id"`
	Label          string    `json:"label"`
	Type           string    `json:"type"`
	Tags           []string  `json:"tags"`
	IsBlocked      bool      `json:"isBlocked"`
	BlockStartDate *string   `json:"blockStartDate"`
	BlockEndDate   *string   `json:"blockEndDate"`
	X              int       `json:"x"`
	Y              int       `json:"y"`
	Width          int       `json:"width"`
	Height         int       `json:"height"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func toSeatJSON(s domain.Seat) seatJSON {
	tags := s.Tags
	if tags == nil {
		tags = []string{}
	}
	return seatJSON{
		ID:             s.ID.String(),
		Label:          s.Label,
		Type:           string(s.Type),
		Tags:           tags,
		IsBlocked:      s.IsBlocked,
		BlockStartDate: datePtr(s.BlockStartDate),
		BlockEndDate:   datePtr(s.BlockEndDate),
		X:              s.GridX,
		Y:              s.GridY,
		Width:          s.GridWidth,
		Height:         s.GridHeight,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

func toSeatsJSON(in []domain.Seat) []seatJSON {
	out := make([]seatJSON, 0, len(in))
	for _, s := range in {
		out = append(out, toSeatJSON(s))
	}
	return out
}

func datePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := domain.FormatDate(*t)
	return &s
}

type bookingJSON struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	SeatID    string    `json:"seatId"`
	Date      string    `json:"date"`
	Slot      string    `json:"slot"`
	CreatedAt time.Time `json:"createdAt"`
	Seat      *seatJSON `json:"seat,omitempty"`
	User      *userJSON `json:"user,omitempty"`
}

func toBookingJSON(b domain.Booking) bookingJSON {
	out := bookingJSON{
		ID:        b.ID.String(),
		UserID:    b.UserID.String(),
		SeatID:    b.SeatID.String(),
		Date:      domain.FormatDate(b.Date),
		Slot:      string(b.Slot),
		CreatedAt: b.CreatedAt,
	}
	if b.Seat != nil {
		s := toSeatJSON(*b.Seat)
		out.Seat = &s
	}
	if b.User != nil {
		u := toUserJSON(*b.User)
		out.User = &u
	}
	return out
}

func toBookingsJSON(in []domain.Booking) []bookingJSON {
	out := make([]bookingJSON, 0, len(in))
	for _, b := range in {
		out = append(out, toBookingJSON(b))
	}
	return out
}

// occupancyJSON is a booking stripped of who made it.
type occupancyJSON struct {
	SeatID string `json:"seatId"`
	Date   string `json:"date"`
	Slot   string `json:"slot"`
}

type credentialsRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	User      userJSON  `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type createBookingRequest struct {
	SeatID string `json:"seatId" validate:"required,uuid"`
	Date   string `json:"date" validate:"required"`
	Slot   string `json:"slot" validate:"required"`
}

type recurringBookingRequest struct {
	SeatID        string   `json:"seatId" validate:"required,uuid"`
	Slot          string   `json:"slot" validate:"required"`
	Dates         []string `json:"dates"`
	StartDate     string   `json:"startDate"`
	Occurrences   int      `json:"occurrences"`
	IntervalWeeks int      `json:"intervalWeeks"`
}

type createSeatRequest struct {
	Label  string   `json:"label" validate:"required"`
	Type   string   `json:"type" validate:"omitempty,oneof=with_monitor without_monitor"`
	Tags   []string `json:"tags"`
	X      int      `json:"x" validate:"gte=0"`
	Y      int      `json:"y" validate:"gte=0"`
	Width  int      `json:"width" validate:"gte=0"`
	Height int      `json:"height" validate:"gte=0"`
}

type updateSeatRequest struct {
	Label  *string  `json:"label"`
	Type   *string  `json:"type" validate:"omitempty,oneof=with_monitor without_monitor"`
	Tags   []string `json:"tags"`
	X      *int     `json:"x" validate:"omitempty,gte=0"`
	Y      *int     `json:"y" validate:"omitempty,gte=0"`
	Width  *int     `json:"width" validate:"omitempty,gt=0"`
	Height *int     `json:"height" validate:"omitempty,gt=0"`
}

type blockSeatRequest struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type placementRequest struct {
	ID    string `json:"id" validate:"omitempty,uuid"`
	Label string `json:"label"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
}
