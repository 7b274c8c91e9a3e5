package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/logistica-platform/api/internal/auth"
	"github.com/logistica-platform/api/internal/config"
	"github.com/logistica-platform/api/internal/httpx"
	"github.com/logistica-platform/api/internal/importer"
	"github.com/logistica-platform/api/internal/middleware"
	"github.com/logistica-platform/api/internal/store"
)

// AuthService is what the handlers need from the auth layer.
type AuthService interface {
	UserByEmail(ctx context.Context, email string) (auth.User, error)
	StartSession(ctx context.Context, userID uuid.UUID) (token, csrfToken string, expiresAt time.Time, err error)
	RevokeSession(ctx context.Context, sessionID uuid.UUID) error
	RevokeSessionByToken(ctx context.Context, token string) error
}

type Server struct {
	Config config.Config
	Store  store.Store
	Runner *importer.Runner
	Auth   AuthService
	Logger *slog.Logger
}

func NewServer(cfg config.Config, s store.Store, runner *importer.Runner, authService AuthService, logger *slog.Logger) *Server {
	return &Server{Config: cfg, Store: s, Runner: runner, Auth: authService, Logger: logger}
}

func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

func (s *Server) PostAuthLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_body", "Malformed JSON body", nil)
		return
	}

	user, err := s.Auth.UserByEmail(r.Context(), req.Email)
	if err != nil && !errors.Is(err, auth.ErrUserNotFound) {
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Failed to load user", nil)
		return
	}

	authorized := err == nil && user.IsActive
	if authorized {
		ok, verifyErr := auth.VerifyPassword(req.Password, user.PasswordHash)
		if verifyErr != nil {
			httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Password verification failed", nil)
			return
		}
		authorized = ok
	}
	if !authorized {
		httpx.WriteError(w, r, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password", nil)
		return
	}

	if old, cookieErr := r.Cookie(s.Config.SessionCookieName); cookieErr == nil && old.Value != "" {
		_ = s.Auth.RevokeSessionByToken(r.Context(), old.Value)
	}

	token, _, expiresAt, err := s.Auth.StartSession(r.Context(), user.ID)
	if err != nil {
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Failed to create session", nil)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.Config.SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.Config.SecureCookies,
		Expires:  expiresAt,
	})

	httpx.WriteJSON(w, http.StatusOK, userResponse{
		ID:       user.ID.String(),
		Email:    user.Email,
		FullName: user.FullName,
		Role:     user.Role,
	})
}

func (s *Server) PostAuthLogout(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, r, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
		return
	}

	sessionID, err := uuid.Parse(actor.SessionID)
	if err != nil {
		httpx.WriteError(w, r, http.StatusUnauthorized, "unauthorized", "Invalid session", nil)
		return
	}
	if err := s.Auth.RevokeSession(r.Context(), sessionID); err != nil {
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Failed to revoke session", nil)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.Config.SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.Config.SecureCookies,
		MaxAge:   -1,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) GetAuthMe(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, r, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, userResponse{
		ID:       actor.UserID,
		Email:    actor.Email,
		FullName: actor.FullName,
		Role:     actor.Role,
	})
}

func (s *Server) GetAuthCsrf(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, r, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"csrfToken": actor.CSRFToken})
}
