package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"deskbook/backend/internal/domain"
)

func TestNewBookingEvent(t *testing.T) {
	seatID := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	userID := uuid.MustParse("00000000-0000-0000-0000-000000000002")
	d1, _ := domain.ParseDate("2024-01-01")
	d2, _ := domain.ParseDate("2024-01-08")
	at := time.Date(2024, 1, 1, 9, 30, 0, 0, time.FixedZone("X", 3600))

	ev := NewBookingEvent(TypeBookingsCreated, []domain.Booking{
		{ID: uuid.MustParse("00000000-0000-0000-0000-00000000000a"), SeatID: seatID, UserID: userID, Date: d1, Slot: domain.SlotAM},
		{ID: uuid.MustParse("00000000-0000-0000-0000-00000000000b"), SeatID: seatID, UserID: userID, Date: d2, Slot: domain.SlotAM},
	}, at)

	b, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}

	if got["type"] != "booking.created" {
		t.Fatalf("type = %v", got["type"])
	}
	if got["seatId"] != seatID.String() || got["userId"] != userID.String() || got["slot"] != "AM" {
		t.Fatalf("payload = %v", got)
	}
	dates, _ := got["dates"].([]any)
	if len(dates) != 2 || dates[0] != "2024-01-01" || dates[1] != "2024-01-08" {
		t.Fatalf("dates = %v", got["dates"])
	}
	if got["occurredAt"] != "2024-01-01T08:30:00Z" {
		t.Fatalf("occurredAt = %v, want UTC", got["occurredAt"])
	}
}

func TestNewBookingEvent_Empty(t *testing.T) {
	ev := NewBookingEvent(TypeBookingCancelled, nil, time.Now())
	if ev.SeatID != "" || len(ev.BookingIDs) != 0 || ev.Dates == nil {
		t.Fatalf("event = %+v", ev)
	}
}

func TestNopPublish(t *testing.T) {
	var p Publisher = Nop{}
	if err := p.Publish(context.Background(), BookingEvent{}); err != nil {
		t.Fatalf("Publish error: %v", err)
	}
}
