package webserver

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ichi0g0y/name-picker/internal/localdb"
	"github.com/ichi0g0y/name-picker/internal/shared/logger"
	"github.com/ichi0g0y/name-picker/internal/status"
	"github.com/ichi0g0y/name-picker/internal/types"
)

type addEntryRequest struct {
	Name   string `json:"name"`
	Weight *int   `json:"weight"`
}

type bulkAddRequest struct {
	Text string `json:"text"`
}

type updateWeightRequest struct {
	Weight int `json:"weight"`
}

func entryNameParam(r *http.Request) string {
	raw := chi.URLParam(r, "name")
	if name, err := url.PathUnescape(raw); err == nil {
		return types.NormalizeName(name)
	}
	return types.NormalizeName(raw)
}

func (s *Server) writeEntries(w http.ResponseWriter, code int) {
	entries, err := localdb.GetAllEntries()
	if err != nil {
		logger.Error("Failed to get entries", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to get entries")
		return
	}
	writeJSON(w, code, map[string]any{"entries": entries, "count": len(entries)})
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	s.writeEntries(w, http.StatusOK)
}

func (s *Server) handleAddEntry(w http.ResponseWriter, r *http.Request) {
	var req addEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if types.NormalizeName(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	weight := types.DefaultWeight
	if req.Weight != nil {
		weight = *req.Weight
	}

	added, err := localdb.AddEntry(req.Name, weight)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to add entry")
		return
	}
	if added {
		status.NotifyPoolChanged()
		s.writeEntries(w, http.StatusCreated)
		return
	}
	// 重複は無視して現在のプールを返す
	s.writeEntries(w, http.StatusOK)
}

func (s *Server) handleBulkAddEntries(w http.ResponseWriter, r *http.Request) {
	var req bulkAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	added, err := localdb.BulkAddEntries(req.Text)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to add entries")
		return
	}
	if added > 0 {
		status.NotifyPoolChanged()
	}

	entries, err := localdb.GetAllEntries()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get entries")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"added": added, "entries": entries, "count": len(entries)})
}

func (s *Server) handleLoadSample(w http.ResponseWriter, r *http.Request) {
	if err := localdb.LoadSampleEntries(); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load sample entries")
		return
	}
	status.NotifyPoolChanged()
	s.writeEntries(w, http.StatusOK)
}

func (s *Server) handleClearEntries(w http.ResponseWriter, r *http.Request) {
	if err := localdb.ClearAllEntries(); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to clear entries")
		return
	}
	status.NotifyPoolChanged()
	s.writeEntries(w, http.StatusOK)
}

func (s *Server) handleRemoveEntry(w http.ResponseWriter, r *http.Request) {
	name := entryNameParam(r)
	removed, err := localdb.RemoveEntry(name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to remove entry")
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "entry not found")
		return
	}
	status.NotifyPoolChanged()
	s.writeEntries(w, http.StatusOK)
}

func (s *Server) handleUpdateWeight(w http.ResponseWriter, r *http.Request) {
	var req updateWeightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	found, err := localdb.UpdateEntryWeight(entryNameParam(r), req.Weight)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update weight")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "entry not found")
		return
	}
	status.NotifyPoolChanged()
	s.writeEntries(w, http.StatusOK)
}
