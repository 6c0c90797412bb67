package api

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/erazemk/foodrescue/internal/report"
	"github.com/erazemk/foodrescue/internal/store"
)

// DashboardHandler serves the impact dashboard.
type DashboardHandler struct {
	Posts *store.PostStore
	TopN  int
}

// Get handles GET /api/dashboard.
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	posts, err := h.Posts.LoadAll(r.Context())
	if err != nil {
		slog.Error("loading dashboard", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to load posts")
		return
	}
	jsonResponse(w, http.StatusOK, report.Summarize(posts, h.TopN))
}

// ExportHandler serves the raw table as CSV to holders of the export key.
type ExportHandler struct {
	DB    *sql.DB
	Posts *store.PostStore
}

// Export handles GET /api/export. The key is read from the X-Export-Key header.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	ok, err := store.CheckExportKey(r.Context(), h.DB, r.Header.Get("X-Export-Key"))
	if err != nil {
		slog.Error("checking export key", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !ok {
		slog.Warn("export refused", "remote", r.RemoteAddr)
		jsonError(w, http.StatusUnauthorized, "invalid export key")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", store.ExportFilename))
	if err := h.Posts.Export(r.Context(), w); err != nil {
		// Headers are gone by now; the client sees a truncated file.
		slog.Error("exporting posts", "error", err)
		return
	}
	slog.Info("posts exported", "remote", r.RemoteAddr)
}
