package sitekit

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/xpertai/sitekit/backend"
)

const adminSessionName = "admin_session"

// AdminSession is the authenticated admin's persisted state: the backend's
// bearer token plus the role and user id from the login response. It is the
// only durable client-side state in the system.
type AdminSession struct {
	Token  string
	Role   string
	UserID int
}

// adminSessionFrom reads the session cookie. ok is false for anonymous
// visitors.
func adminSessionFrom(c echo.Context) (AdminSession, bool) {
	sess, err := session.Get(adminSessionName, c)
	if err != nil {
		return AdminSession{}, false
	}
	token, _ := sess.Values["token"].(string)
	if token == "" {
		return AdminSession{}, false
	}
	role, _ := sess.Values["role"].(string)
	userID, _ := sess.Values["user_id"].(int)
	return AdminSession{Token: token, Role: role, UserID: userID}, true
}

func setAdminSession(c echo.Context, auth backend.AuthSession) error {
	sess, err := session.Get(adminSessionName, c)
	if err != nil {
		return err
	}
	// Token and role live under separate keys; the resource client only
	// ever needs the token.
	sess.Values["token"] = auth.Token
	sess.Values["role"] = auth.Role
	sess.Values["user_id"] = auth.UserID
	return sess.Save(c.Request(), c.Response())
}

func clearAdminSession(c echo.Context) error {
	sess, err := session.Get(adminSessionName, c)
	if err != nil {
		return err
	}
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}

// IsAdmin reports whether the request carries an authenticated admin session.
func IsAdmin(c echo.Context) bool {
	_, ok := adminSessionFrom(c)
	return ok
}

// requireAdmin guards every admin page. Unauthenticated navigation is
// redirected to the login screen before any backend fetch is issued, so
// protected data never loads for an anonymous request.
func (a *App) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !IsAdmin(c) {
			return c.Redirect(http.StatusSeeOther, "/admin/")
		}
		return next(c)
	}
}

// backendFor returns the resource client bound to the request's admin
// token. For anonymous requests it is the unauthenticated client.
func (a *App) backendFor(c echo.Context) *backend.Client {
	if sess, ok := adminSessionFrom(c); ok {
		return a.Backend.WithToken(sess.Token)
	}
	return a.Backend
}

// handleAdmin is the admin entry point. An authenticated session goes
// straight to the dashboard. Otherwise the backend's setup flag decides
// between the first-run setup form and the login form; if the status check
// itself fails we fail open to the login screen.
func (a *App) handleAdmin(c echo.Context) error {
	if IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/dashboard/")
	}
	status, err := a.Backend.SystemStatus(c.Request().Context())
	if err == nil && !status.IsSetupComplete {
		return Render(c, a.Views.AdminSetup(a.Config, "", CsrfToken(c)))
	}
	return Render(c, a.Views.AdminLogin(a.Config, c.QueryParam("username"), "", CsrfToken(c)))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	if !a.loginLimiter.Check(c.RealIP()) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	username := c.FormValue("username")
	password := c.FormValue("password")
	if username == "" || password == "" {
		return Render(c, a.Views.AdminLogin(a.Config, username, "Username and password are required.", CsrfToken(c)))
	}

	auth, err := a.Backend.Login(c.Request().Context(), username, password)
	if err != nil {
		a.log.Infow("login failed", "user", username, "ip", c.RealIP())
		a.loginLimiter.Record(c.RealIP())
		return Render(c, a.Views.AdminLogin(a.Config, username, userMessage(err, "Login failed. Check your credentials."), CsrfToken(c)))
	}
	if err := setAdminSession(c, auth); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/dashboard/")
}

// handleAdminSetup creates the first superuser. The password confirmation
// check is local: a mismatch never reaches the backend. On success the UI
// returns to login mode pre-filled with the new username.
func (a *App) handleAdminSetup(c echo.Context) error {
	req := backend.SetupRequest{
		Username: c.FormValue("username"),
		Email:    c.FormValue("email"),
		Password: c.FormValue("password"),
	}
	if req.Password != c.FormValue("confirm_password") {
		return Render(c, a.Views.AdminSetup(a.Config, "Passwords do not match.", CsrfToken(c)))
	}
	if err := validator.New().Struct(&req); err != nil {
		return Render(c, a.Views.AdminSetup(a.Config, "All fields are required; passwords need at least 8 characters.", CsrfToken(c)))
	}

	if _, err := a.Backend.SetupAdmin(c.Request().Context(), req); err != nil {
		return Render(c, a.Views.AdminSetup(a.Config, userMessage(err, "Setup failed. Please try again."), CsrfToken(c)))
	}
	return c.Redirect(http.StatusSeeOther, "/admin/?username="+req.Username)
}

func (a *App) handleAdminLogout(c echo.Context) error {
	if sess, ok := adminSessionFrom(c); ok {
		a.managers.drop(sess.Token)
		a.workspaces.drop(sess.Token)
	}
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

// userMessage extracts the backend's error field for display, falling back
// to a generic string for transport failures.
func userMessage(err error, fallback string) string {
	var ae *backend.APIError
	if errors.As(err, &ae) && ae.Message != "request failed" {
		return ae.Message
	}
	return fallback
}
