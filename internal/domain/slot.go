package domain

import (
	"errors"
	"strings"
)

type Slot string

const (
	SlotAM   Slot = "AM"
	SlotPM   Slot = "PM"
	SlotFull Slot = "FULL"
)

var ErrInvalidSlot = errors.New("slot must be one of AM, PM, FULL")

func ParseSlot(s string) (Slot, error) {
	switch Slot(strings.ToUpper(strings.TrimSpace(s))) {
	case SlotAM:
		return SlotAM, nil
	case SlotPM:
		return SlotPM, nil
	case SlotFull:
		return SlotFull, nil
	default:
		return "", ErrInvalidSlot
	}
}

func (s Slot) Valid() bool {
	switch s {
	case SlotAM, SlotPM, SlotFull:
		return true
	default:
		return false
	}
}

// CoversAM reports whether the slot occupies the morning half of the day.
func (s Slot) CoversAM() bool {
	return s == SlotAM || s == SlotFull
}

// CoversPM reports whether the slot occupies the afternoon half of the day.
func (s Slot) CoversPM() bool {
	return s == SlotPM || s == SlotFull
}

// Overlaps reports whether two bookings with these slots on the same seat
// and date would share a half day.
func (s Slot) Overlaps(other Slot) bool {
	return (s.CoversAM() && other.CoversAM()) || (s.CoversPM() && other.CoversPM())
}
