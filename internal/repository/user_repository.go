package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/mufant-museum/internal/database"
	"github.com/iliyamo/mufant-museum/internal/model"
	"github.com/iliyamo/mufant-museum/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id, username, email, password_hash, created_at, updated_at"

// Create inserts a user with a bcrypt hash of password and returns the
// stored row. Email is lowercased; username is kept as typed.
func (r *UserRepo) Create(ctx context.Context, username, email, password string, cost int) (*model.User, error) {
	u := &model.User{
		Username: strings.TrimSpace(username),
		Email:    strings.ToLower(strings.TrimSpace(email)),
	}
	if err := model.Validate(u); err != nil {
		return nil, database.Invalid("user", err)
	}
	if password == "" {
		return nil, database.Invalid("user", errors.New("password is required"))
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return nil, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash) VALUES (?,?,?)",
		u.Username, u.Email, hash)
	if err != nil {
		err = database.Classify(err)
		var cv *database.ConstraintViolation
		if errors.As(err, &cv) && cv.Kind == database.ConstraintUnique {
			return nil, fmt.Errorf("%w: %w", ErrUserExists, err)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByUsername fetches a user by exact username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1", strings.TrimSpace(username))
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("user", username)
	}
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	row := r.DB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("user", id)
	}
	return u, err
}

// Authenticate returns the user when password matches the stored hash.
func (r *UserRepo) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	u, err := r.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func scanUser(s rowScanner) (*model.User, error) {
	var (
		u                    model.User
		createdAt, updatedAt database.NullTime
	)
	if err := s.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &createdAt, &updatedAt); err != nil {
		return nil, database.Classify(err)
	}
	u.CreatedAt, u.UpdatedAt = createdAt.Time, updatedAt.Time
	return &u, nil
}
