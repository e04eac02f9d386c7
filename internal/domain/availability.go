package domain

import "time"

// SlotAvailable decides whether slot on date is free for seat given the
// bookings that already exist for that seat and date. A nil seat is never
// available.
func SlotAvailable(seat *Seat, existing []Booking, date time.Time, slot Slot) bool {
	if seat == nil || !slot.Valid() {
		return false
	}
	if seat.Blocking().Covers(date) {
		return false
	}

	if slot == SlotFull {
		return len(existing) == 0
	}
	for _, b := range existing {
		if b.Slot == slot || b.Slot == SlotFull {
			return false
		}
	}
	return true
}
