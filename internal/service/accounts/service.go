package accounts

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"deskbook/backend/internal/auth"
	"deskbook/backend/internal/domain"
	"deskbook/backend/internal/store"
)

const (
	minPasswordLength = 6
	maxUsernameLength = 64
	// bcrypt only accepts passwords up to 72 bytes.
	maxPasswordBytes = 72
)

// ErrBadCredentials covers both an unknown username and a wrong password.
var ErrBadCredentials = errors.New("invalid username or password")

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

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenIssuer interface {
	Issue(user domain.User) (auth.Token, error)
}

type Service struct {
	users  store.UserRepository
	hasher PasswordHasher
	tokens TokenIssuer
}

func NewService(users store.UserRepository, hasher PasswordHasher, tokens TokenIssuer) *Service {
	return &Service{users: users, hasher: hasher, tokens: tokens}
}

type Session struct {
	User  domain.User
	Token auth.Token
}

// Register creates an employee account and signs it in. Admin accounts only
// come from seeding.
func (s *Service) Register(ctx context.Context, username, password string) (Session, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return Session{}, validationError("username", "username is required")
	}
	if len(username) > maxUsernameLength {
		return Session{}, validationError("username", "username is too long")
	}
	if len(password) < minPasswordLength {
		return Session{}, validationError("password", "password must be at least 6 characters")
	}
	if len(password) > maxPasswordBytes {
		return Session{}, validationError("password", "password must be at most 72 bytes")
	}

	user, err := s.CreateUser(ctx, username, password, domain.RoleEmployee)
	if err != nil {
		return Session{}, err
	}
	return s.session(user)
}

// CreateUser stores a user with a hashed password. It checks only what
// hashing and the role column require.
func (s *Service) CreateUser(ctx context.Context, username, password string, role domain.Role) (domain.User, error) {
	if !role.Valid() {
		return domain.User{}, validationError("role", "role must be admin or employee")
	}
	if len(password) > maxPasswordBytes {
		return domain.User{}, validationError("password", "password must be at most 72 bytes")
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return domain.User{}, err
	}
	return s.users.Create(ctx, domain.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	})
}

func (s *Service) Login(ctx context.Context, username, password string) (Session, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Session{}, ErrBadCredentials
		}
		return Session{}, err
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return Session{}, ErrBadCredentials
		}
		return Session{}, err
	}
	return s.session(user)
}

func (s *Service) Me(ctx context.Context, userID uuid.UUID) (domain.User, error) {
	return s.users.Get(ctx, userID)
}

func (s *Service) session(user domain.User) (Session, error) {
	tok, err := s.tokens.Issue(user)
	if err != nil {
		return Session{}, err
	}
	return Session{User: user, Token: tok}, nil
}
