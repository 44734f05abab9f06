package web

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

// Dashboard handles GET /admin/dashboard.
func (s *Server) Dashboard(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListItems(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list items for dashboard", "error", err)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	var lost, found int
	for _, it := range items {
		if it.Status == model.StatusFound {
			found++
		} else {
			lost++
		}
	}

	s.Templates.Render(w, "admin_dashboard.html", &struct {
		PageData
		Items []model.ItemListing
		Lost  int
		Found int
	}{
		PageData: PageData{Title: "Dashboard", Admin: true},
		Items:    items,
		Lost:     lost,
		Found:    found,
	})
}
