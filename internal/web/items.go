package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

// ItemsPage handles GET /items. It is public and never shows item ids.
func (s *Server) ItemsPage(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListItems(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list items", "error", err)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	s.Templates.Render(w, "items.html", &struct {
		PageData
		Items []model.ItemListing
	}{
		PageData: PageData{Title: "Reported items"},
		Items:    items,
	})
}

// ItemUpdateSubmit handles POST /admin/items/{id}/update.
func (s *Server) ItemUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	status := r.FormValue("status")
	if err := store.UpdateItemStatus(r.Context(), s.DB, id, status); err != nil {
		if errors.Is(err, model.ErrInvalidStatus) {
			http.Error(w, "Invalid status", http.StatusBadRequest)
			return
		}
		slog.Error("failed to update item status", "item", id, "error", err)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	slog.Info("item status updated", "admin", AdminID(r.Context()), "item", id, "status", status)
	http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
}

// ItemDeleteSubmit handles POST /admin/items/{id}/delete.
func (s *Server) ItemDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := store.DeleteItem(r.Context(), s.DB, id); err != nil {
		slog.Error("failed to delete item", "item", id, "error", err)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	slog.Info("item deleted", "admin", AdminID(r.Context()), "item", id)
	http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
}

// ItemPhotoGet handles GET /admin/items/{id}/photo.
func (s *Server) ItemPhotoGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	data, mime, err := store.GetItemPhoto(r.Context(), s.DB, id)
	if err != nil {
		slog.Error("failed to get item photo", "item", id, "error", err)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	if data == nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", "inline")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write photo response", "error", err)
	}
}
