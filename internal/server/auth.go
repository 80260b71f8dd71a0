package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"shoutdesk/internal/logging"
	"shoutdesk/internal/services"
	"shoutdesk/internal/store"
)

const sessionName = "shoutdesk-session"

type contextKey string

const userEmailKey contextKey = "user-email"

// userFromContext returns the authenticated user's email, or "" when the
// request did not pass requireSession.
func userFromContext(ctx context.Context) string {
	email, _ := ctx.Value(userEmailKey).(string)
	return email
}

// requireSession rejects requests without a live authenticated session.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := s.sessions.Get(r, sessionName)
		if err != nil {
			// A stale or tampered cookie decodes as a fresh session; fall
			// through to the empty-email check.
			s.logger.Debug("session decode failed", logging.Error(err))
		}
		email, _ := session.Values["email"].(string)
		if email == "" {
			s.writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		ctx := context.WithValue(r.Context(), userEmailKey, email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeServiceError(w, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.writeServiceError(w, services.Wrap(services.ErrTransient, "server", "hash password", "", err))
		return
	}
	user, err := s.store.CreateUser(r.Context(), req.Email, string(hash))
	if err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			s.writeError(w, http.StatusBadRequest, "email already registered")
			return
		}
		s.writeServiceError(w, services.Wrap(services.ErrTransient, "server", "create user", "", err))
		return
	}
	s.writeJSON(w, http.StatusCreated, userPayload{ID: user.ID, Email: user.Email})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeServiceError(w, err)
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		s.writeServiceError(w, services.Wrap(services.ErrTransient, "server", "look up user", "", err))
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		s.writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	session, _ := s.sessions.Get(r, sessionName)
	session.Values["email"] = user.Email
	session.Values["user_id"] = user.ID
	if err := session.Save(r, w); err != nil {
		s.writeServiceError(w, services.Wrap(services.ErrTransient, "server", "save session", "", err))
		return
	}
	s.logger.Info("user logged in", logging.String("email", user.Email))
	s.writeJSON(w, http.StatusOK, userPayload{ID: user.ID, Email: user.Email})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	session, _ := s.sessions.Get(r, sessionName)
	session.Options.MaxAge = -1
	session.Values = map[any]any{}
	if err := session.Save(r, w); err != nil {
		s.writeServiceError(w, services.Wrap(services.ErrTransient, "server", "clear session", "", err))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.ListUsers(r.Context())
	if err != nil {
		s.writeServiceError(w, services.Wrap(services.ErrTransient, "server", "list users", "", err))
		return
	}
	payload := make([]userPayload, 0, len(users))
	for _, user := range users {
		payload = append(payload, userPayload{ID: user.ID, Email: user.Email})
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
