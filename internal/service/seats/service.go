package seats

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"deskbook/backend/internal/domain"
	"deskbook/backend/internal/store"
)

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
	repo store.SeatRepository
}

func NewService(repo store.SeatRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]domain.Seat, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, seatID uuid.UUID) (domain.Seat, error) {
	if seatID == uuid.Nil {
		return domain.Seat{}, validationError("id", "seat id is required")
	}
	return s.repo.Get(ctx, seatID)
}

type CreateInput struct {
	Label  string
	Type   string
	Tags   []string
	X      int
	Y      int
	Width  int
	Height int
}

func (s *Service) Create(ctx context.Context, in CreateInput) (domain.Seat, error) {
	label := strings.TrimSpace(in.Label)
	if label == "" {
		return domain.Seat{}, validationError("label", "label is required")
	}
	seatType := domain.SeatTypeWithoutMonitor
	if in.Type != "" {
		seatType = domain.SeatType(in.Type)
		if !seatType.Valid() {
			return domain.Seat{}, validationError("type", "type must be with_monitor or without_monitor")
		}
	}
	if err := checkGrid(in.X, in.Y, in.Width, in.Height); err != nil {
		return domain.Seat{}, err
	}

	return s.repo.Create(ctx, domain.Seat{
		Label:      label,
		Type:       seatType,
		Tags:       cleanTags(in.Tags),
		GridX:      in.X,
		GridY:      in.Y,
		GridWidth:  in.Width,
		GridHeight: in.Height,
	})
}

// UpdateInput is a partial update. Nil fields keep their stored value.
type UpdateInput struct {
	Label  *string
	Type   *string
	Tags   []string
	X      *int
	Y      *int
	Width  *int
	Height *int
}

func (s *Service) Update(ctx context.Context, seatID uuid.UUID, in UpdateInput) (domain.Seat, error) {
	seat, err := s.Get(ctx, seatID)
	if err != nil {
		return domain.Seat{}, err
	}

	if in.Label != nil {
		label := strings.TrimSpace(*in.Label)
		if label == "" {
			return domain.Seat{}, validationError("label", "label must not be empty")
		}
		seat.Label = label
	}
	if in.Type != nil {
		t := domain.SeatType(*in.Type)
		if !t.Valid() {
			return domain.Seat{}, validationError("type", "type must be with_monitor or without_monitor")
		}
		seat.Type = t
	}
	if in.Tags != nil {
		seat.Tags = cleanTags(in.Tags)
	}
	if in.X != nil {
		seat.GridX = *in.X
	}
	if in.Y != nil {
		seat.GridY = *in.Y
	}
	if in.Width != nil {
		if *in.Width <= 0 {
			return domain.Seat{}, validationError("width", "width must be positive")
		}
		seat.GridWidth = *in.Width
	}
	if in.Height != nil {
		if *in.Height <= 0 {
			return domain.Seat{}, validationError("height", "height must be positive")
		}
		seat.GridHeight = *in.Height
	}
	if err := checkGrid(seat.GridX, seat.GridY, seat.GridWidth, seat.GridHeight); err != nil {
		return domain.Seat{}, err
	}

	return s.repo.Update(ctx, seat)
}

// Delete removes a seat. Seats that still have bookings are refused with
// store.ErrConflict.
func (s *Service) Delete(ctx context.Context, seatID uuid.UUID) error {
	if seatID == uuid.Nil {
		return validationError("id", "seat id is required")
	}
	return s.repo.Delete(ctx, seatID)
}

// Block blocks a seat for the inclusive range [start, end] when both are
// given, or indefinitely when neither is.
func (s *Service) Block(ctx context.Context, seatID uuid.UUID, start, end string) (domain.Seat, error) {
	start = strings.TrimSpace(start)
	end = strings.TrimSpace(end)
	if (start == "") != (end == "") {
		return domain.Seat{}, validationError("endDate", "startDate and endDate must be given together")
	}

	seat, err := s.Get(ctx, seatID)
	if err != nil {
		return domain.Seat{}, err
	}

	if start == "" {
		seat.Block()
		return s.repo.Update(ctx, seat)
	}

	from, err := parseDate("startDate", start)
	if err != nil {
		return domain.Seat{}, err
	}
	to, err := parseDate("endDate", end)
	if err != nil {
		return domain.Seat{}, err
	}
	if err := seat.BlockRange(from, to); err != nil {
		return domain.Seat{}, validationError("endDate", err.Error())
	}
	return s.repo.Update(ctx, seat)
}

func (s *Service) Unblock(ctx context.Context, seatID uuid.UUID) (domain.Seat, error) {
	seat, err := s.Get(ctx, seatID)
	if err != nil {
		return domain.Seat{}, err
	}
	seat.Unblock()
	return s.repo.Update(ctx, seat)
}

// SaveLayout stores grid positions for a set of seats atomically.
func (s *Service) SaveLayout(ctx context.Context, placements []store.SeatPlacement) error {
	if len(placements) == 0 {
		return validationError("seats", "at least one seat placement is required")
	}
	for i := range placements {
		p := &placements[i]
		p.Label = strings.TrimSpace(p.Label)
		if p.ID == uuid.Nil && p.Label == "" {
			return validationError("seats", "each placement needs an id or a label")
		}
		if p.X < 0 || p.Y < 0 {
			return validationError("seats", "grid coordinates must not be negative")
		}
	}
	return s.repo.UpdateLayout(ctx, placements)
}

func checkGrid(x, y, width, height int) error {
	if x < 0 || y < 0 {
		return validationError("x", "grid coordinates must not be negative")
	}
	if width < 0 || height < 0 {
		return validationError("width", "grid size must not be negative")
	}
	return nil
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func parseDate(field, raw string) (time.Time, error) {
	d, err := domain.ParseDate(raw)
	if err != nil {
		return time.Time{}, validationError(field, field+" must be a YYYY-MM-DD date")
	}
	return d, nil
}
