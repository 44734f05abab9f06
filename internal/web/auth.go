package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/lostfound/internal/auth"
)

// LoginPage handles GET /admin/login.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "admin_login.html", &PageData{Title: "Admin login"})
}

// LoginSubmit handles POST /admin/login.
func (s *Server) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	password := r.FormValue("password")

	admin, err := auth.Authenticate(r.Context(), s.DB, email, password)
	if err != nil {
		status, msg, result := loginFailure(err)
		if status == http.StatusInternalServerError {
			slog.Error("admin login failed", "email", email, "error", err)
		} else {
			slog.Warn("admin login rejected", "email", email, "reason", result)
		}
		s.Metrics.Login(result)
		s.Templates.RenderStatus(w, status, "admin_login.html", &PageData{
			Title: "Admin login",
			Error: msg,
		})
		return
	}

	sess, err := s.Sessions.Create(r.Context(), admin.ID, s.Cookie.TTL)
	if err != nil {
		slog.Error("failed to create session", "admin", admin.ID, "error", err)
		s.Metrics.Login("database_error")
		s.Templates.RenderStatus(w, http.StatusInternalServerError, "admin_login.html", &PageData{
			Title: "Admin login",
			Error: "Database error",
		})
		return
	}

	signed, err := auth.SignSessionToken(s.Cookie.Secret, sess.Token, sess.ExpiresAt)
	if err != nil {
		slog.Error("failed to sign session cookie", "error", err)
		s.Metrics.Login("signing_error")
		s.Templates.RenderStatus(w, http.StatusInternalServerError, "admin_login.html", &PageData{
			Title: "Admin login",
			Error: "Login failed",
		})
		return
	}

	s.setSessionCookie(w, signed, sess.ExpiresAt)
	s.Metrics.Login("ok")
	slog.Info("admin logged in", "admin", admin.ID)
	http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
}

// loginFailure maps an authentication error to a response status, the
// message shown on the form and a metrics label.
func loginFailure(err error) (status int, msg, result string) {
	switch {
	case errors.Is(err, auth.ErrAdminNotFound):
		return http.StatusUnauthorized, "Admin not found", "admin_not_found"
	case errors.Is(err, auth.ErrCredentialMismatch):
		return http.StatusUnauthorized, "Incorrect password", "incorrect_password"
	case errors.Is(err, auth.ErrVerifier):
		return http.StatusInternalServerError, "Error checking password", "verifier_error"
	default:
		return http.StatusInternalServerError, "Database error", "database_error"
	}
}

// Logout handles GET /admin/logout. It succeeds whether or not a session
// exists.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(s.Cookie.Name); err == nil && cookie.Value != "" {
		if token, err := auth.ParseSessionToken(s.Cookie.Secret, cookie.Value); err == nil {
			if err := s.Sessions.Delete(r.Context(), token); err != nil {
				slog.Error("failed to delete session", "error", err)
			}
		}
	}

	s.clearSessionCookie(w)
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}
