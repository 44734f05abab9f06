package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/lostfound/internal/imaging"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

// reportForm carries the submitted values back into the form when it has
// to be shown again.
type reportForm struct {
	PageData
	Name        string
	Email       string
	Title       string
	Description string
	Status      string
}

// maxFormBytes bounds a report submission, photo included.
const maxFormBytes = imaging.MaxUploadBytes + 1<<20

// HomePage handles GET /.
func (s *Server) HomePage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "home.html", &PageData{Title: "Lost & Found"})
}

// ReportPage handles GET /report.
func (s *Server) ReportPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "report.html", &reportForm{
		PageData: PageData{Title: "Report an item"},
		Status:   model.StatusLost,
	})
}

// ReportSubmit handles POST /submit.
func (s *Server) ReportSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
			http.Error(w, "request too large", http.StatusRequestEntityTooLarge)
			return
		}
	}

	form := &reportForm{
		PageData:    PageData{Title: "Report an item"},
		Name:        r.FormValue("name"),
		Email:       r.FormValue("email"),
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Status:      r.FormValue("status"),
	}

	if err := model.ValidateStatus(form.Status); err != nil {
		form.Error = "Invalid status"
		s.Templates.RenderStatus(w, http.StatusBadRequest, "report.html", form)
		return
	}

	report := model.Report{
		Name:        form.Name,
		Email:       form.Email,
		Title:       form.Title,
		Description: form.Description,
		Status:      form.Status,
	}

	file, _, err := r.FormFile("photo")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	case err != nil:
		form.Error = "Could not read photo"
		s.Templates.RenderStatus(w, http.StatusBadRequest, "report.html", form)
		return
	default:
		defer file.Close()
		photo, err := imaging.Normalize(file)
		if err != nil {
			slog.Warn("rejected report photo", "error", err)
			form.Error = photoError(err)
			s.Templates.RenderStatus(w, http.StatusBadRequest, "report.html", form)
			return
		}
		report.Photo = photo.Data
		report.PhotoMime = photo.MIME
	}

	res, err := store.SubmitReport(r.Context(), s.DB, report)
	if err != nil {
		slog.Error("failed to save report", "email", report.Email, "error", err)
		http.Error(w, "Failed to save item", http.StatusInternalServerError)
		return
	}

	s.Metrics.ReportSubmitted(report.Status)
	slog.Info("item reported",
		"item", res.ItemID,
		"user", res.UserID,
		"new_user", res.NewUser,
		"status", report.Status,
		"photo", report.Photo != nil,
	)
	http.Redirect(w, r, "/thankyou", http.StatusSeeOther)
}

func photoError(err error) string {
	switch {
	case errors.Is(err, imaging.ErrUnsupportedFormat):
		return "Photo must be a JPEG or PNG image"
	case errors.Is(err, imaging.ErrTooLarge):
		return "Photo is too large"
	default:
		return "Could not read photo"
	}
}

// ThankYouPage handles GET /thankyou.
func (s *Server) ThankYouPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "thankyou.html", &PageData{Title: "Thank you"})
}
