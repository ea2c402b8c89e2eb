package webserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/ichi0g0y/name-picker/internal/driver"
	"github.com/ichi0g0y/name-picker/internal/localdb"
	"github.com/ichi0g0y/name-picker/internal/lottery"
	"github.com/ichi0g0y/name-picker/internal/reveal"
	"github.com/ichi0g0y/name-picker/internal/shared/logger"
	"github.com/ichi0g0y/name-picker/internal/status"
)

type startDrawRequest struct {
	Mode  string   `json:"mode"`
	Speed *float64 `json:"speed"`
}

type startDrawResponse struct {
	DrawID   string      `json:"draw_id"`
	Mode     reveal.Mode `json:"mode"`
	Speed    float64     `json:"speed"`
	Weighted bool        `json:"weighted"`
	Entries  int         `json:"entries"`
}

// drawErrorStatus maps start errors to HTTP status codes.
func drawErrorStatus(err error) int {
	switch {
	case errors.Is(err, driver.ErrAlreadyRunning):
		return http.StatusConflict
	case errors.Is(err, lottery.ErrEmptyPool),
		errors.Is(err, lottery.ErrInsufficientEntries),
		errors.Is(err, lottery.ErrPoolTooLarge),
		errors.Is(err, reveal.ErrUnknownMode):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleStartDraw(w http.ResponseWriter, r *http.Request) {
	var req startDrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	mode := s.Settings.DrawMode()
	if req.Mode != "" {
		parsed, err := reveal.ParseMode(req.Mode)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		mode = parsed
	}

	speed := s.Settings.DrawSpeed()
	if req.Speed != nil {
		speed = *req.Speed
	}

	draw, err := s.Driver.Start(mode, speed)
	if err != nil {
		code := drawErrorStatus(err)
		if code == http.StatusInternalServerError {
			logger.Error("Failed to start draw", zap.Error(err))
		}
		writeError(w, code, err.Error())
		return
	}

	go s.announceResult(draw)

	writeJSON(w, http.StatusAccepted, startDrawResponse{
		DrawID:   draw.ID,
		Mode:     draw.Mode,
		Speed:    draw.Speed,
		Weighted: draw.Weighted,
		Entries:  len(draw.Entries),
	})
}

func (s *Server) announceResult(draw *driver.Draw) {
	res, err := draw.Wait(context.Background())
	if err != nil {
		return
	}
	s.Hub.Broadcast(MsgDrawResult, res)
}

func (s *Server) handleCancelDraw(w http.ResponseWriter, r *http.Request) {
	cancelled := s.Driver.Cancel()
	writeJSON(w, http.StatusOK, map[string]bool{"cancelled": cancelled})
}

func (s *Server) handleDrawStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      status.CurrentDraw(),
		"last_winner": s.Driver.LastWinner(),
	})
}

// handleRemoveLastWinner removes the previous winner from the pool.
func (s *Server) handleRemoveLastWinner(w http.ResponseWriter, r *http.Request) {
	if s.Driver.Busy() {
		writeError(w, http.StatusConflict, driver.ErrAlreadyRunning.Error())
		return
	}

	winner := s.Driver.LastWinner()
	if winner == "" {
		writeError(w, http.StatusNotFound, "no winner to remove")
		return
	}

	if _, err := localdb.RemoveEntry(winner); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to remove winner")
		return
	}
	s.Driver.ClearLastWinner()
	status.NotifyPoolChanged()

	logger.Info("Removed last winner from pool", zap.String("winner", winner))
	entries, err := localdb.GetAllEntries()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get entries")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"removed": winner, "entries": entries, "count": len(entries)})
}
