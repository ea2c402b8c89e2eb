package webserver

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/ichi0g0y/name-picker/internal/settings"
	"github.com/ichi0g0y/name-picker/internal/shared/logger"
)

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	all, err := s.Settings.GetAllSettings()
	if err != nil {
		logger.Error("Failed to get settings", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to get settings")
		return
	}
	writeJSON(w, http.StatusOK, all)
}

// handlePutSettings validates every key before writing any of them.
func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	invalid := map[string]string{}
	for key, value := range req {
		if err := settings.ValidateSetting(key, value); err != nil {
			invalid[key] = err.Error()
		}
	}
	if len(invalid) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid settings", "details": invalid})
		return
	}

	for key, value := range req {
		if err := s.Settings.SetSetting(key, value); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save settings")
			return
		}
		logger.Info("Setting updated", zap.String("key", key))
	}

	s.handleGetSettings(w, r)
}
