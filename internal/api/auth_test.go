package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jobtrack/jobtrack/internal/domain"
)

const registerBody = `{"name":"Ada","lastName":"Lovelace","email":"ada@example.com","location":"London","password":"hunter2hunter2"}`

func register(t *testing.T, env *testEnv, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	return env.do(t, req)
}

func login(t *testing.T, env *testEnv, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	return env.do(t, req)
}

func sessionCookieFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == sessionCookieName {
			return cookie
		}
	}
	t.Fatal("expected a session cookie in the response")
	return nil
}

func TestRegisterLoginCurrentUserFlow(t *testing.T) {
	env := newTestEnv(t)

	if rec := register(t, env, registerBody); rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 on register, got %d: %s", rec.Code, rec.Body.String())
	}

	rec := login(t, env, `{"email":"ada@example.com","password":"hunter2hunter2"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on login, got %d: %s", rec.Code, rec.Body.String())
	}
	cookie := sessionCookieFrom(t, rec)
	if !cookie.HttpOnly {
		t.Fatal("expected the session cookie to be http-only")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/current-user", nil)
	req.AddCookie(cookie)
	rec = env.do(t, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on current-user, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		User struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	decodeBody(t, rec, &resp)
	if resp.User.Email != "ada@example.com" {
		t.Fatalf("expected ada@example.com, got %s", resp.User.Email)
	}
	// The first registered account is the admin.
	if resp.User.Role != domain.RoleAdmin {
		t.Fatalf("expected first user to be admin, got %s", resp.User.Role)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)

	if rec := register(t, env, registerBody); rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 on first register, got %d", rec.Code)
	}
	rec := register(t, env, registerBody)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on duplicate email, got %d", rec.Code)
	}
}

func TestRegisterValidatesInput(t *testing.T) {
	env := newTestEnv(t)

	rec := register(t, env, `{"name":"Ada","lastName":"Lovelace","email":"not-an-email","location":"London","password":"hunter2hunter2"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid email, got %d", rec.Code)
	}

	rec = register(t, env, `{"name":"Ada","lastName":"Lovelace","email":"ada@example.com","location":"London","password":"short"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for short password, got %d", rec.Code)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	register(t, env, registerBody)

	rec := login(t, env, `{"email":"ada@example.com","password":"wrong-password"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", rec.Code)
	}

	rec = login(t, env, `{"email":"nobody@example.com","password":"hunter2hunter2"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown email, got %d", rec.Code)
	}
}

func TestLogoutExpiresCookie(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/logout", nil)
	rec := env.do(t, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on logout, got %d", rec.Code)
	}
	cookie := sessionCookieFrom(t, rec)
	if cookie.Value != "" {
		t.Fatalf("expected cleared cookie value, got %q", cookie.Value)
	}
	if cookie.Expires.Unix() > 0 {
		t.Fatalf("expected expired cookie, got %v", cookie.Expires)
	}
}

func TestAppStatsRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	seedJobs(t, env, "user-1", 3)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/admin/app-stats", nil)
	req.AddCookie(env.sessionCookie(t, "user-1", domain.RoleUser))
	if rec := env.do(t, req); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/users/admin/app-stats", nil)
	req.AddCookie(env.sessionCookie(t, "admin-1", domain.RoleAdmin))
	rec := env.do(t, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", rec.Code)
	}

	var resp struct {
		Users int `json:"users"`
		Jobs  int `json:"jobs"`
	}
	decodeBody(t, rec, &resp)
	if resp.Jobs != 3 {
		t.Fatalf("expected 3 jobs, got %d", resp.Jobs)
	}
}
