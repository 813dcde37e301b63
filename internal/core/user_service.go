package core

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserService authenticates operator accounts for the web adapter.
type UserService interface {
	// Authenticate verifies credentials and returns the user on success.
	// Bad credentials return a ValidationError so callers cannot distinguish
	// an unknown username from a wrong password.
	Authenticate(ctx context.Context, username, password string) (*User, error)
	GetUser(ctx context.Context, userID int64) (*User, error)
}

type userService struct {
	pool *pgxpool.Pool
}

func NewUserService(pool *pgxpool.Pool) UserService {
	return &userService{pool: pool}
}

// hashPassword is the stored credential form: hex SHA-256 of the password.
func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || password == "" {
		return nil, Validationf("username and password are required")
	}

	var u User
	err := s.pool.QueryRow(ctx,
		"SELECT id, username, password_hash, role, created_at FROM users WHERE username = $1",
		username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, Validationf("invalid username or password")
		}
		return nil, fmt.Errorf("failed to fetch user %s: %w", username, err)
	}

	supplied := hashPassword(password)
	if subtle.ConstantTimeCompare([]byte(supplied), []byte(u.PasswordHash)) != 1 {
		return nil, Validationf("invalid username or password")
	}
	return &u, nil
}

func (s *userService) GetUser(ctx context.Context, userID int64) (*User, error) {
	var u User
	err := s.pool.QueryRow(ctx,
		"SELECT id, username, password_hash, role, created_at FROM users WHERE id = $1",
		userID,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "user", Ref: fmt.Sprint(userID)}
		}
		return nil, fmt.Errorf("failed to fetch user %d: %w", userID, err)
	}
	return &u, nil
}
