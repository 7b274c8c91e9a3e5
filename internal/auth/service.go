package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/logistica-platform/api/internal/middleware"
)

// ErrUserNotFound is returned when no user matches the given email.
var ErrUserNotFound = errors.New("user not found")

type User struct {
	ID           uuid.UUID
	Email        string
	FullName     string
	Role         string
	PasswordHash string
	IsActive     bool
}

// Service owns users and sessions. Sessions are keyed by the sha256 of the
// raw cookie token; the raw token never touches the database.
type Service struct {
	pool *pgxpool.Pool
	ttl  time.Duration
}

func NewService(pool *pgxpool.Pool, sessionTTL time.Duration) *Service {
	return &Service{pool: pool, ttl: sessionTTL}
}

func (s *Service) UserByEmail(ctx context.Context, email string) (User, error) {
	var user User
	err := s.pool.QueryRow(ctx, `
		SELECT id, email, full_name, role, password_hash, is_active
		FROM users
		WHERE email = $1
	`, email).Scan(&user.ID, &user.Email, &user.FullName, &user.Role, &user.PasswordHash, &user.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("load user by email: %w", err)
	}
	return user, nil
}

// StartSession creates a session for the user and returns the raw token to
// set as a cookie, plus its CSRF counterpart.
func (s *Service) StartSession(ctx context.Context, userID uuid.UUID) (token, csrfToken string, expiresAt time.Time, err error) {
	token, err = GenerateToken()
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("generate session token: %w", err)
	}
	csrfToken, err = GenerateToken()
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("generate csrf token: %w", err)
	}

	expiresAt = time.Now().Add(s.ttl)
	_, err = s.pool.Exec(ctx, `
		INSERT INTO sessions (user_id, token_hash, csrf_token, expires_at)
		VALUES ($1, $2, $3, $4)
	`, userID, HashToken(token), csrfToken, expiresAt)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("create session: %w", err)
	}
	return token, csrfToken, expiresAt, nil
}

// PrincipalByToken implements middleware.SessionStore.
func (s *Service) PrincipalByToken(ctx context.Context, token string) (middleware.Actor, error) {
	var actor middleware.Actor
	var sessionID, userID uuid.UUID
	err := s.pool.QueryRow(ctx, `
		SELECT s.id, u.id, u.email, u.full_name, u.role, s.csrf_token, s.expires_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token_hash = $1
		  AND s.revoked_at IS NULL
		  AND s.expires_at > now()
		  AND u.is_active
	`, HashToken(token)).Scan(&sessionID, &userID, &actor.Email, &actor.FullName, &actor.Role, &actor.CSRFToken, &actor.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return middleware.Actor{}, middleware.ErrSessionNotFound
		}
		return middleware.Actor{}, fmt.Errorf("load session principal: %w", err)
	}

	actor.SessionID = sessionID.String()
	actor.UserID = userID.String()

	_, _ = s.pool.Exec(ctx, `UPDATE sessions SET last_seen_at = now() WHERE id = $1`, sessionID)
	return actor, nil
}

func (s *Service) RevokeSession(ctx context.Context, sessionID uuid.UUID) error {
	if _, err := s.pool.Exec(ctx, `
		UPDATE sessions SET revoked_at = now() WHERE id = $1 AND revoked_at IS NULL
	`, sessionID); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (s *Service) RevokeSessionByToken(ctx context.Context, token string) error {
	if _, err := s.pool.Exec(ctx, `
		UPDATE sessions SET revoked_at = now() WHERE token_hash = $1 AND revoked_at IS NULL
	`, HashToken(token)); err != nil {
		return fmt.Errorf("revoke session by token: %w", err)
	}
	return nil
}
