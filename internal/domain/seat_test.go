package domain

import (
	"errors"
	"testing"
	"time"
)

func TestSeatBlockingTransitions(t *testing.T) {
	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 4, 5, 0, 0, 0, 0, time.UTC)

	var s Seat
	if got := s.Blocking().Kind; got != BlockOpen {
		t.Fatalf("new seat kind = %s, want %s", got, BlockOpen)
	}

	s.Block()
	if got := s.Blocking().Kind; got != BlockPermanent {
		t.Fatalf("after Block kind = %s, want %s", got, BlockPermanent)
	}

	if err := s.BlockRange(start, end); err != nil {
		t.Fatalf("BlockRange error: %v", err)
	}
	b := s.Blocking()
	if b.Kind != BlockRange || !b.Start.Equal(start) || !b.End.Equal(end) {
		t.Fatalf("after BlockRange blocking = %+v", b)
	}

	s.Block()
	if s.BlockStartDate != nil || s.BlockEndDate != nil {
		t.Fatalf("Block must clear the range")
	}

	_ = s.BlockRange(start, end)
	s.Unblock()
	if s.IsBlocked || s.BlockStartDate != nil || s.BlockEndDate != nil {
		t.Fatalf("Unblock left state behind: %+v", s)
	}
	if got := s.Blocking().Kind; got != BlockOpen {
		t.Fatalf("after Unblock kind = %s, want %s", got, BlockOpen)
	}
}

func TestSeatBlockRange_RejectsInvertedRange(t *testing.T) {
	var s Seat
	err := s.BlockRange(time.Date(2024, 4, 5, 0, 0, 0, 0, time.UTC), time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))
	if !errors.Is(err, ErrInvalidBlockRange) {
		t.Fatalf("err = %v, want %v", err, ErrInvalidBlockRange)
	}
	if s.IsBlocked || s.BlockStartDate != nil {
		t.Fatalf("rejected range must not change state: %+v", s)
	}
}

func TestSlotOverlaps(t *testing.T) {
	tests := []struct {
		a, b Slot
		want bool
	}{
		{SlotAM, SlotAM, true},
		{SlotAM, SlotPM, false},
		{SlotPM, SlotPM, true},
		{SlotAM, SlotFull, true},
		{SlotPM, SlotFull, true},
		{SlotFull, SlotFull, true},
	}
	for _, tt := range tests {
		if got := tt.a.Overlaps(tt.b); got != tt.want {
			t.Fatalf("%s.Overlaps(%s) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
		if got := tt.b.Overlaps(tt.a); got != tt.want {
			t.Fatalf("%s.Overlaps(%s) = %v, want %v", tt.b, tt.a, got, tt.want)
		}
	}
}

func TestParseSlot(t *testing.T) {
	if s, err := ParseSlot(" full "); err != nil || s != SlotFull {
		t.Fatalf("ParseSlot(full) = %q, %v", s, err)
	}
	if _, err := ParseSlot("noon"); !errors.Is(err, ErrInvalidSlot) {
		t.Fatalf("err = %v, want %v", err, ErrInvalidSlot)
	}
}

func TestParseDate_Strict(t *testing.T) {
	for _, in := range []string{"2024-1-01", "2024/01/01", "01-01-2024", "2024-02-30", ""} {
		if _, err := ParseDate(in); err == nil {
			t.Fatalf("ParseDate(%q) expected error", in)
		}
	}
}
