package webserver

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ichi0g0y/name-picker/internal/localdb"
)

const defaultHistoryLimit = 50

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	history, err := localdb.GetDrawHistory(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get draw history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": history, "count": len(history)})
}

func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid history id")
		return
	}

	if err := localdb.DeleteDrawHistory(id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete draw history")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := localdb.ClearDrawHistory(); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to clear draw history")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
