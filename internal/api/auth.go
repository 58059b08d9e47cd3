package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/jobtrack/jobtrack/internal/auth"
	"github.com/jobtrack/jobtrack/internal/domain"
	"github.com/jobtrack/jobtrack/internal/id"
	"github.com/jobtrack/jobtrack/internal/store"
)

const sessionCookieName = "token"

// identity is the authenticated caller attached to the request context.
type identity struct {
	UserID string
	Role   string
	Demo   bool
}

type contextKey struct{ name string }

var identityKey = contextKey{"identity"}

func identityFromContext(ctx context.Context) (identity, bool) {
	ident, ok := ctx.Value(identityKey).(identity)
	return ident, ok
}

// authenticated resolves the session cookie to an identity and rejects
// the request with 401 when it is missing or invalid.
func (s *Server) authenticated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || cookie.Value == "" {
			writeError(w, http.StatusUnauthorized, "authentication invalid")
			return
		}

		claims, err := s.tokens.Verify(cookie.Value)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "authentication invalid")
			return
		}

		ident := identity{
			UserID: claims.UserID,
			Role:   claims.Role,
			Demo:   s.demoUserID != "" && claims.UserID == s.demoUserID,
		}
		next(w, r.WithContext(context.WithValue(r.Context(), identityKey, ident)))
	}
}

func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, ok := identityFromContext(r.Context())
		if !ok || ident.Role != domain.RoleAdmin {
			writeError(w, http.StatusForbidden, "unauthorized to access this route")
			return
		}
		next(w, r)
	}
}

// rejectDemo guards mutating handlers against the read-only demo account.
// It reports whether the request was rejected.
func (s *Server) rejectDemo(w http.ResponseWriter, ident identity) bool {
	if !ident.Demo {
		return false
	}
	writeError(w, http.StatusBadRequest, "demo user, read only")
	return true
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Errorf("hash password failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to register user")
		return
	}

	// The first registered account becomes the admin.
	existing, err := s.users.Count(r.Context())
	if err != nil {
		s.logger.Errorf("count users failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to register user")
		return
	}
	role := domain.RoleUser
	if existing == 0 {
		role = domain.RoleAdmin
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           id.New(),
		Name:         strings.TrimSpace(req.Name),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        strings.TrimSpace(req.Email),
		Location:     strings.TrimSpace(req.Location),
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			writeError(w, http.StatusBadRequest, "email already exists")
			return
		}
		s.logger.Errorf("create user failed for email %s: %v", user.Email, err)
		writeError(w, http.StatusInternalServerError, "failed to register user")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"msg": "user created"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, ok, err := s.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		s.logger.Errorf("lookup user failed for email %s: %v", req.Email, err)
		writeError(w, http.StatusInternalServerError, "failed to log in")
		return
	}
	if !ok || !auth.CheckPassword(user.PasswordHash, req.Password) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		s.logger.Errorf("issue token failed for user %s: %v", user.ID, err)
		writeError(w, http.StatusInternalServerError, "failed to log in")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(s.tokens.TTL()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"msg": "user logged in"})
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"msg": "user logged out"})
}
