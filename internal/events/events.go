package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"deskbook/backend/internal/domain"
)

const (
	TypeBookingsCreated  = "booking.created"
	TypeBookingCancelled = "booking.cancelled"
)

// BookingEvent is the JSON body published for a booking batch or a
// cancellation. A batch produces one event listing every created booking.
type BookingEvent struct {
	Type       string    `json:"type"`
	SeatID     string    `json:"seatId"`
	UserID     string    `json:"userId"`
	Slot       string    `json:"slot"`
	BookingIDs []string  `json:"bookingIds"`
	Dates      []string  `json:"dates"`
	OccurredAt time.Time `json:"occurredAt"`
}

func NewBookingEvent(eventType string, bookings []domain.Booking, at time.Time) BookingEvent {
	ev := BookingEvent{
		Type:       eventType,
		BookingIDs: make([]string, 0, len(bookings)),
		Dates:      make([]string, 0, len(bookings)),
		OccurredAt: at.UTC(),
	}
	for i, b := range bookings {
		if i == 0 {
			ev.SeatID = b.SeatID.String()
			ev.UserID = b.UserID.String()
			ev.Slot = string(b.Slot)
		}
		ev.BookingIDs = append(ev.BookingIDs, b.ID.String())
		ev.Dates = append(ev.Dates, domain.FormatDate(b.Date))
	}
	return ev
}

type Publisher interface {
	Publish(ctx context.Context, ev BookingEvent) error
}

// Nop drops every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(ctx context.Context, ev BookingEvent) error { return nil }

// AMQPPublisher dials the broker per publish and sends persistent JSON
// messages to a durable queue on the default exchange.
type AMQPPublisher struct {
	url   string
	queue string
}

func NewAMQPPublisher(url, queue string) *AMQPPublisher {
	return &AMQPPublisher{url: url, queue: queue}
}

func (p *AMQPPublisher) Publish(ctx context.Context, ev BookingEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("amqp dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("amqp channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("amqp queue declare: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    ev.OccurredAt,
		Type:         ev.Type,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		return fmt.Errorf("amqp publish: %w", err)
	}
	return nil
}
