package seed

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/google/uuid"

	"deskbook/backend/internal/domain"
	"deskbook/backend/internal/store"
)

type memUsers struct {
	byName map[string]domain.User
}

func (m *memUsers) Get(ctx context.Context, userID uuid.UUID) (domain.User, error) {
	panic("Get not configured")
}

func (m *memUsers) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	u, ok := m.byName[username]
	if !ok {
		return domain.User{}, store.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) Create(ctx context.Context, user domain.User) (domain.User, error) {
	if _, ok := m.byName[user.Username]; ok {
		return domain.User{}, store.ErrConflict
	}
	user.ID = uuid.New()
	m.byName[user.Username] = user
	return user, nil
}

func (m *memUsers) CreateUser(ctx context.Context, username, password string, role domain.Role) (domain.User, error) {
	return m.Create(ctx, domain.User{Username: username, PasswordHash: "hashed", Role: role})
}

type memSeats struct {
	store.SeatRepository
	byLabel map[string]domain.Seat
}

func (m *memSeats) Create(ctx context.Context, seat domain.Seat) (domain.Seat, error) {
	if _, ok := m.byLabel[seat.Label]; ok {
		return domain.Seat{}, store.ErrConflict
	}
	seat.ID = uuid.New()
	m.byLabel[seat.Label] = seat
	return seat, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const sample = `
users:
  - username: admin
    password: password
    role: admin
  - username: bob
    password: password
seats:
  - label: T41
    type: with_monitor
    x: 2
    y: 4
  - label: S1
    tags: [standing]
`

func TestParse_Defaults(t *testing.T) {
	f, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(f.Users) != 2 || f.Users[1].Role != "employee" {
		t.Fatalf("users = %+v", f.Users)
	}
	if len(f.Seats) != 2 || f.Seats[1].Type != "without_monitor" || f.Seats[0].X != 2 {
		t.Fatalf("seats = %+v", f.Seats)
	}
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"unknown field": "seats:\n  - label: T1\n    colour: red\n",
		"bad role":      "users:\n  - username: x\n    role: root\n",
		"bad type":      "seats:\n  - label: T1\n    type: standing\n",
		"no label":      "seats:\n  - type: with_monitor\n",
	}
	for name, doc := range cases {
		if _, err := Parse(strings.NewReader(doc)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestParse_Empty(t *testing.T) {
	f, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(f.Users) != 0 || len(f.Seats) != 0 {
		t.Fatalf("file = %+v", f)
	}
}

func TestApply_Idempotent(t *testing.T) {
	f, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	users := &memUsers{byName: map[string]domain.User{}}
	seats := &memSeats{byLabel: map[string]domain.Seat{}}
	s := NewSeeder(users, users, seats, discardLogger())

	first, err := s.Apply(context.Background(), f)
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if first.UsersCreated != 2 || first.SeatsCreated != 2 || first.SeatsSkipped != 0 {
		t.Fatalf("first = %+v", first)
	}
	if users.byName["admin"].Role != domain.RoleAdmin {
		t.Fatalf("admin role = %s", users.byName["admin"].Role)
	}

	second, err := s.Apply(context.Background(), f)
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if second.UsersCreated != 0 || second.SeatsCreated != 0 || second.SeatsSkipped != 2 {
		t.Fatalf("second = %+v", second)
	}
}

func TestApply_LogsSummaryOnce(t *testing.T) {
	f, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	users := &memUsers{byName: map[string]domain.User{}}
	s := NewSeeder(users, users, &memSeats{byLabel: map[string]domain.Seat{}}, log)

	if _, err := s.Apply(context.Background(), f); err != nil {
		t.Fatalf("Apply error: %v", err)
	}

	var summaries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("log line %q: %v", line, err)
		}
		if rec["msg"] == "seed applied" {
			summaries = append(summaries, rec)
		}
	}
	if len(summaries) != 1 {
		t.Fatalf("seed applied logged %d times, want 1", len(summaries))
	}
	if summaries[0]["users_created"] != float64(2) || summaries[0]["seats_created"] != float64(2) {
		t.Fatalf("summary = %v", summaries[0])
	}
}

func TestLoad_DefaultSeedFile(t *testing.T) {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime.Caller failed")
	}
	path := filepath.Join(filepath.Dir(file), "..", "..", "seeds", "default.yaml")

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(f.Seats) != 80 {
		t.Fatalf("len(seats) = %d, want 80", len(f.Seats))
	}
	seen := make(map[string]bool, len(f.Seats))
	for _, s := range f.Seats {
		if seen[s.Label] {
			t.Fatalf("duplicate label %s", s.Label)
		}
		seen[s.Label] = true
	}
}
