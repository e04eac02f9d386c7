package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"deskbook/backend/internal/domain"
	"deskbook/backend/internal/store"
)

type UserRepo struct {
	db *bun.DB
}

func NewUserRepo(db *bun.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Get(ctx context.Context, userID uuid.UUID) (domain.User, error) {
	var u domain.User
	err := r.db.NewSelect().
		Model(&u).
		Where("u.id = ?", userID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return domain.User{}, notFound(err)
	}
	return u, nil
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	var u domain.User
	err := r.db.NewSelect().
		Model(&u).
		Where("u.username = ?", username).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return domain.User{}, notFound(err)
	}
	return u, nil
}

func (r *UserRepo) Create(ctx context.Context, user domain.User) (domain.User, error) {
	m := user
	if _, err := r.db.NewInsert().Model(&m).Exec(ctx); err != nil {
		if name, ok := violation(err, codeUniqueViolation); ok && name == constraintUserUsername {
			return domain.User{}, store.Conflict("Username already exists")
		}
		return domain.User{}, err
	}
	return m, nil
}
