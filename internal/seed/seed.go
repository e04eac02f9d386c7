package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"deskbook/backend/internal/domain"
	"deskbook/backend/internal/store"
)

// File is the on-disk seed document.
type File struct {
	Users []User `yaml:"users"`
	Seats []Seat `yaml:"seats"`
}

type User struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

type Seat struct {
	Label string   `yaml:"label"`
	Type  string   `yaml:"type"`
	Tags  []string `yaml:"tags"`
	X     int      `yaml:"x"`
	Y     int      `yaml:"y"`
}

func Load(path string) (File, error) {
	f, err := os.Open(path)
	if err != nil {
		return File{}, err
	}
	defer f.Close()
	return Parse(f)
}

func Parse(r io.Reader) (File, error) {
	var out File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&out); err != nil {
		if errors.Is(err, io.EOF) {
			return File{}, nil
		}
		return File{}, fmt.Errorf("decode seed file: %w", err)
	}

	for i := range out.Users {
		u := &out.Users[i]
		u.Username = strings.TrimSpace(u.Username)
		if u.Username == "" {
			return File{}, fmt.Errorf("user %d: username is required", i)
		}
		if u.Role == "" {
			u.Role = string(domain.RoleEmployee)
		}
		if !domain.Role(u.Role).Valid() {
			return File{}, fmt.Errorf("user %s: unknown role %q", u.Username, u.Role)
		}
	}
	for i := range out.Seats {
		s := &out.Seats[i]
		s.Label = strings.TrimSpace(s.Label)
		if s.Label == "" {
			return File{}, fmt.Errorf("seat %d: label is required", i)
		}
		if s.Type == "" {
			s.Type = string(domain.SeatTypeWithoutMonitor)
		}
		if !domain.SeatType(s.Type).Valid() {
			return File{}, fmt.Errorf("seat %s: unknown type %q", s.Label, s.Type)
		}
	}
	return out, nil
}

type UserCreator interface {
	CreateUser(ctx context.Context, username, password string, role domain.Role) (domain.User, error)
}

type Seeder struct {
	users    store.UserRepository
	accounts UserCreator
	seats    store.SeatRepository
	log      *slog.Logger
}

func NewSeeder(users store.UserRepository, accounts UserCreator, seats store.SeatRepository, log *slog.Logger) *Seeder {
	return &Seeder{users: users, accounts: accounts, seats: seats, log: log.With(slog.String("component", "seed"))}
}

type Result struct {
	UsersCreated int
	SeatsCreated int
	SeatsSkipped int
}

// Apply creates missing users and seats. Existing usernames and labels are
// left untouched, so running it on every start is safe.
func (s *Seeder) Apply(ctx context.Context, f File) (Result, error) {
	var res Result

	for _, u := range f.Users {
		_, err := s.users.GetByUsername(ctx, u.Username)
		if err == nil {
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return res, fmt.Errorf("lookup user %s: %w", u.Username, err)
		}
		if _, err := s.accounts.CreateUser(ctx, u.Username, u.Password, domain.Role(u.Role)); err != nil {
			if errors.Is(err, store.ErrConflict) {
				continue
			}
			return res, fmt.Errorf("create user %s: %w", u.Username, err)
		}
		res.UsersCreated++
		s.log.InfoContext(ctx, "seeded user", slog.String("username", u.Username), slog.String("role", u.Role))
	}

	for _, seat := range f.Seats {
		_, err := s.seats.Create(ctx, domain.Seat{
			Label: seat.Label,
			Type:  domain.SeatType(seat.Type),
			Tags:  seat.Tags,
			GridX: seat.X,
			GridY: seat.Y,
		})
		if err != nil {
			if errors.Is(err, store.ErrConflict) {
				res.SeatsSkipped++
				continue
			}
			return res, fmt.Errorf("create seat %s: %w", seat.Label, err)
		}
		res.SeatsCreated++
	}

	s.log.InfoContext(ctx, "seed applied",
		slog.Int("users_created", res.UsersCreated),
		slog.Int("seats_created", res.SeatsCreated),
		slog.Int("seats_skipped", res.SeatsSkipped),
	)
	return res, nil
}
