package sitekit

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo-contrib/session"
	echo "github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/xpertai/sitekit/backend"
)

func stubView(label string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, label)
		return err
	})
}

func testViews() ViewFuncs {
	return ViewFuncs{
		AdminLogin: func(_ Config, username, errMsg, _ string) templ.Component {
			return stubView("login:" + username + ":" + errMsg)
		},
		AdminSetup: func(_ Config, errMsg, _ string) templ.Component {
			return stubView("setup:" + errMsg)
		},
	}
}

// newTestApp wires an App against a fake backend with the session layer
// installed, skipping the full middleware stack and the listener.
func newTestApp(t *testing.T, backendURL string) *App {
	t.Helper()
	a := New(Config{BackendURL: backendURL, SessionSecret: "test-secret"}, testViews())
	a.log = zap.NewNop().Sugar()
	a.Backend = backend.New(backendURL)
	a.loginLimiter = NewRateLimiter(5, time.Minute)
	a.chats = newChatRegistry(30 * time.Minute)
	a.managers = newManagerRegistry(adminSessionTTL)
	a.workspaces = newWorkspaceRegistry(adminSessionTTL)
	a.Echo.Use(session.Middleware(a.newSessionStore()))
	return a
}

func TestRequireAdminRedirectsAnonymous(t *testing.T) {
	protectedCalls := 0
	backendCalls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		backendCalls++
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	a := newTestApp(t, srv.URL)
	a.Echo.GET("/admin/dashboard/", a.requireAdmin(func(c echo.Context) error {
		protectedCalls++
		var out []backend.Lead
		return a.backendFor(c).List(c.Request().Context(), "leads", &out)
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard/", nil)
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/admin/" {
		t.Errorf("redirect = %q, want /admin/", loc)
	}
	if protectedCalls != 0 || backendCalls != 0 {
		t.Errorf("anonymous request reached protected code: handler=%d backend=%d", protectedCalls, backendCalls)
	}
}

func TestLoginIssuesSessionCookie(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login/" {
			t.Errorf("unexpected backend path %s", r.URL.Path)
		}
		w.Write([]byte(`{"token": "tok-abc", "role": "admin", "user_id": 7}`))
	}))
	defer srv.Close()

	a := newTestApp(t, srv.URL)
	a.Echo.POST("/admin/login/", a.handleAdminLogin)
	a.Echo.GET("/admin/dashboard/", a.requireAdmin(func(c echo.Context) error {
		return c.String(http.StatusOK, "dashboard")
	}))

	form := url.Values{"username": {"root"}, "password": {"hunter22"}}
	req := httptest.NewRequest(http.MethodPost, "/admin/login/", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/admin/dashboard/" {
		t.Fatalf("login response = %d %q", rec.Code, rec.Header().Get("Location"))
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("no session cookie issued")
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/dashboard/", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec = httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "dashboard" {
		t.Errorf("authenticated request = %d %q", rec.Code, rec.Body.String())
	}
}

func TestLoginFailureShowsBackendMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "Invalid credentials."}`))
	}))
	defer srv.Close()

	a := newTestApp(t, srv.URL)
	a.Echo.POST("/admin/login/", a.handleAdminLogin)

	form := url.Values{"username": {"root"}, "password": {"wrong"}}
	req := httptest.NewRequest(http.MethodPost, "/admin/login/", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)

	if !strings.Contains(rec.Body.String(), "Invalid credentials.") {
		t.Errorf("body = %q, want the backend's error message", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "login:root:") {
		t.Errorf("body = %q, want the username preserved in the form", rec.Body.String())
	}
}

func TestLoginRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "nope"}`))
	}))
	defer srv.Close()

	a := newTestApp(t, srv.URL)
	a.Echo.POST("/admin/login/", a.handleAdminLogin)

	post := func() *httptest.ResponseRecorder {
		form := url.Values{"username": {"root"}, "password": {"wrong"}}
		req := httptest.NewRequest(http.MethodPost, "/admin/login/", strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
		rec := httptest.NewRecorder()
		a.Echo.ServeHTTP(rec, req)
		return rec
	}

	// Only failures count; the sixth attempt from the same IP is rejected
	// before any credentials are checked.
	for i := 0; i < 5; i++ {
		if rec := post(); rec.Code == http.StatusTooManyRequests {
			t.Fatalf("attempt %d limited too early", i+1)
		}
	}
	if rec := post(); rec.Code != http.StatusTooManyRequests {
		t.Errorf("sixth failed attempt = %d, want 429", rec.Code)
	}
}

func TestAdminEntryShowsSetupWhenIncomplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/system/status/" {
			t.Errorf("unexpected backend path %s", r.URL.Path)
		}
		w.Write([]byte(`{"is_setup_complete": false}`))
	}))
	defer srv.Close()

	a := newTestApp(t, srv.URL)
	a.Echo.GET("/admin/", a.handleAdmin)

	req := httptest.NewRequest(http.MethodGet, "/admin/", nil)
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)

	if !strings.HasPrefix(rec.Body.String(), "setup:") {
		t.Errorf("body = %q, want the setup view", rec.Body.String())
	}
}

func TestAdminEntryFailsOpenToLogin(t *testing.T) {
	// An unreachable status endpoint must not lock operators out.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	a := newTestApp(t, srv.URL)
	a.Echo.GET("/admin/", a.handleAdmin)

	req := httptest.NewRequest(http.MethodGet, "/admin/", nil)
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)

	if !strings.HasPrefix(rec.Body.String(), "login:") {
		t.Errorf("body = %q, want the login view", rec.Body.String())
	}
}

func TestSetupPasswordMismatchStaysLocal(t *testing.T) {
	backendCalls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		backendCalls++
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	a := newTestApp(t, srv.URL)
	a.Echo.POST("/admin/setup/", a.handleAdminSetup)

	form := url.Values{
		"username":         {"root"},
		"email":            {"root@example.com"},
		"password":         {"longenough1"},
		"confirm_password": {"different"},
	}
	req := httptest.NewRequest(http.MethodPost, "/admin/setup/", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)

	if backendCalls != 0 {
		t.Errorf("mismatched passwords reached the backend (%d calls)", backendCalls)
	}
	if !strings.Contains(rec.Body.String(), "Passwords do not match.") {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestSetupSuccessReturnsToLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/setup/" {
			t.Errorf("unexpected backend path %s", r.URL.Path)
		}
		w.Write([]byte(`{"token": "tok", "role": "admin", "user_id": 1}`))
	}))
	defer srv.Close()

	a := newTestApp(t, srv.URL)
	a.Echo.POST("/admin/setup/", a.handleAdminSetup)

	form := url.Values{
		"username":         {"root"},
		"email":            {"root@example.com"},
		"password":         {"longenough1"},
		"confirm_password": {"longenough1"},
	}
	req := httptest.NewRequest(http.MethodPost, "/admin/setup/", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/admin/?username=root" {
		t.Errorf("redirect = %q, want login pre-filled with the new username", loc)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"token": "tok-abc", "role": "admin", "user_id": 7}`))
	}))
	defer srv.Close()

	a := newTestApp(t, srv.URL)
	a.Echo.POST("/admin/login/", a.handleAdminLogin)
	a.Echo.POST("/admin/logout/", a.handleAdminLogout)
	a.Echo.GET("/admin/dashboard/", a.requireAdmin(func(c echo.Context) error {
		return c.String(http.StatusOK, "dashboard")
	}))

	form := url.Values{"username": {"root"}, "password": {"hunter22"}}
	req := httptest.NewRequest(http.MethodPost, "/admin/login/", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	cookies := rec.Result().Cookies()

	req = httptest.NewRequest(http.MethodPost, "/admin/logout/", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec = httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/admin/" {
		t.Fatalf("logout response = %d %q", rec.Code, rec.Header().Get("Location"))
	}

	// The replacement cookie invalidates the session.
	req = httptest.NewRequest(http.MethodGet, "/admin/dashboard/", nil)
	for _, ck := range rec.Result().Cookies() {
		req.AddCookie(ck)
	}
	rec = httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	if rec.Code != http.StatusSeeOther {
		t.Errorf("request after logout = %d, want redirect to login", rec.Code)
	}
}
