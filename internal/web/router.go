package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/lostfound/internal/metrics"
	"github.com/erazemk/lostfound/internal/session"
	webembed "github.com/erazemk/lostfound/web"
)

// Options configures NewRouter.
type Options struct {
	DB       *sqlx.DB
	Sessions session.Store
	Metrics  *metrics.Metrics
	Cookie   CookieConfig
}

// NewRouter creates the portal handler with all routes and middleware
// registered.
func NewRouter(opts Options) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		DB:        opts.DB,
		Templates: templates,
		Sessions:  opts.Sessions,
		Metrics:   opts.Metrics,
		Cookie:    opts.Cookie,
	}

	mux := http.NewServeMux()
	admin := func(h http.HandlerFunc) http.Handler { return s.AdminAuth(h) }

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	// Operational endpoints.
	mux.HandleFunc("GET /healthz", s.Healthz)
	mux.HandleFunc("GET /readyz", s.Readyz)
	if s.Metrics != nil {
		mux.Handle("GET /metrics", s.Metrics.Handler())
	}

	// Public routes.
	mux.HandleFunc("GET /{$}", s.HomePage)
	mux.HandleFunc("GET /report", s.ReportPage)
	mux.HandleFunc("POST /submit", s.ReportSubmit)
	mux.HandleFunc("GET /thankyou", s.ThankYouPage)
	mux.HandleFunc("GET /items", s.ItemsPage)

	mux.HandleFunc("GET /admin/login", s.LoginPage)
	mux.HandleFunc("POST /admin/login", s.LoginSubmit)
	mux.HandleFunc("GET /admin/logout", s.Logout)

	// Admin routes.
	mux.Handle("GET /admin/dashboard", admin(s.Dashboard))
	mux.Handle("POST /admin/items/{id}/update", admin(s.ItemUpdateSubmit))
	mux.Handle("POST /admin/items/{id}/delete", admin(s.ItemDeleteSubmit))
	mux.Handle("GET /admin/items/{id}/photo", admin(s.ItemPhotoGet))

	return LoggingMiddleware(s.Metrics)(RecoverMiddleware(mux)), nil
}

// Healthz handles GET /healthz.
func (s *Server) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok\n"))
}

// Readyz handles GET /readyz. It reports 503 while the database is
// unreachable.
func (s *Server) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := s.DB.PingContext(ctx); err != nil {
		slog.Error("readiness check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("database unavailable\n"))
		return
	}
	w.Write([]byte("ok\n"))
}
