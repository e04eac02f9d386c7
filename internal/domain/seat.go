package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type SeatType string

const (
	SeatTypeWithMonitor    SeatType = "with_monitor"
	SeatTypeWithoutMonitor SeatType = "without_monitor"
)

func (t SeatType) Valid() bool {
	return t == SeatTypeWithMonitor || t == SeatTypeWithoutMonitor
}

const (
	DefaultGridWidth  = 2
	DefaultGridHeight = 2
)

type Seat struct {
	bun.BaseModel `bun:"table:seats,alias:s"`

	ID             uuid.UUID  `bun:"id,pk,type:uuid"`
	Label          string     `bun:"label,notnull"`
	Type           SeatType   `bun:"type,notnull"`
	Tags           []string   `bun:"tags,type:jsonb"`
	IsBlocked      bool       `bun:"is_blocked,notnull"`
	BlockStartDate *time.Time `bun:"block_start_date,type:date"`
	BlockEndDate   *time.Time `bun:"block_end_date,type:date"`
	GridX          int        `bun:"grid_x,notnull"`
	GridY          int        `bun:"grid_y,notnull"`
	GridWidth      int        `bun:"grid_width,notnull"`
	GridHeight     int        `bun:"grid_height,notnull"`
	CreatedAt      time.Time  `bun:"created_at,notnull"`
	UpdatedAt      time.Time  `bun:"updated_at,notnull"`
}

func (s *Seat) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if s.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			s.ID = id
		}
		if s.GridWidth <= 0 {
			s.GridWidth = DefaultGridWidth
		}
		if s.GridHeight <= 0 {
			s.GridHeight = DefaultGridHeight
		}
		if s.CreatedAt.IsZero() {
			s.CreatedAt = now
		}
		if s.UpdatedAt.IsZero() {
			s.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		s.UpdatedAt = now
	}
	return nil
}

type BlockKind int

const (
	BlockOpen BlockKind = iota
	BlockPermanent
	BlockRange
)

func (k BlockKind) String() string {
	switch k {
	case BlockOpen:
		return "open"
	case BlockPermanent:
		return "permanent"
	case BlockRange:
		return "range"
	default:
		return "unknown"
	}
}

// Blocking is the effective blocking state of a seat. Start and End are
// only meaningful for BlockRange and are inclusive.
type Blocking struct {
	Kind  BlockKind
	Start time.Time
	End   time.Time
}

// Covers reports whether the seat is unavailable on date because of blocking.
func (b Blocking) Covers(date time.Time) bool {
	switch b.Kind {
	case BlockOpen:
		return false
	case BlockPermanent:
		return true
	case BlockRange:
		d := DateOf(date)
		return !d.Before(DateOf(b.Start)) && !d.After(DateOf(b.End))
	default:
		return true
	}
}

var ErrInvalidBlockRange = errors.New("block end date must not be before start date")

// Blocking derives the seat's blocking state. A complete date range takes
// precedence over the permanent flag.
func (s *Seat) Blocking() Blocking {
	if s.BlockStartDate != nil && s.BlockEndDate != nil {
		return Blocking{Kind: BlockRange, Start: *s.BlockStartDate, End: *s.BlockEndDate}
	}
	if s.IsBlocked {
		return Blocking{Kind: BlockPermanent}
	}
	return Blocking{Kind: BlockOpen}
}

func (s *Seat) Block() {
	s.IsBlocked = true
	s.BlockStartDate = nil
	s.BlockEndDate = nil
}

func (s *Seat) BlockRange(start, end time.Time) error {
	start = DateOf(start)
	end = DateOf(end)
	if end.Before(start) {
		return ErrInvalidBlockRange
	}
	s.IsBlocked = true
	s.BlockStartDate = &start
	s.BlockEndDate = &end
	return nil
}

// Unblock clears the flag and both range fields together.
func (s *Seat) Unblock() {
	s.IsBlocked = false
	s.BlockStartDate = nil
	s.BlockEndDate = nil
}
