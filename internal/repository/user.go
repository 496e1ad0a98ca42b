package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tradepost/tradepost/internal/model"
)

// Common errors for user repository operations.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already exists")
)

// CreateUserParams holds the fields for inserting a new user row.
type CreateUserParams struct {
	Email          string
	PasswordHash   string
	Name           *string
	PinCode        *string
	ProfilePicture *string
}

// CreateUser inserts a new user and returns the stored row.
func (r *Repository) CreateUser(ctx context.Context, params CreateUserParams) (*model.User, error) {
	query := `
		INSERT INTO users (email, password_hash, name, pin_code, profile_picture)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, email, password_hash, name, pin_code, profile_picture, created_at
	`

	user, err := scanUser(r.pool.QueryRow(ctx, query,
		params.Email,
		params.PasswordHash,
		params.Name,
		params.PinCode,
		params.ProfilePicture,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetUserByID retrieves a user by their ID.
func (r *Repository) GetUserByID(ctx context.Context, id int) (*model.User, error) {
	query := `
		SELECT id, email, password_hash, name, pin_code, profile_picture, created_at
		FROM users
		WHERE id = $1
	`

	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return user, nil
}

// GetUserByEmail retrieves a user by their email address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `
		SELECT id, email, password_hash, name, pin_code, profile_picture, created_at
		FROM users
		WHERE email = $1
	`

	user, err := scanUser(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// UpdateProfilePicture sets the user's profile picture URL and returns
// the refreshed row.
func (r *Repository) UpdateProfilePicture(ctx context.Context, userID int, pictureURL string) (*model.User, error) {
	query := `
		UPDATE users
		SET profile_picture = $2
		WHERE id = $1
		RETURNING id, email, password_hash, name, pin_code, profile_picture, created_at
	`

	user, err := scanUser(r.pool.QueryRow(ctx, query, userID, pictureURL))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update profile picture: %w", err)
	}

	return user, nil
}

// scanUser scans a single row into a User model.
func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.PinCode,
		&user.ProfilePicture,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
