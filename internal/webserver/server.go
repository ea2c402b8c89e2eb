package webserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ichi0g0y/name-picker/internal/driver"
	"github.com/ichi0g0y/name-picker/internal/localdb"
	"github.com/ichi0g0y/name-picker/internal/settings"
	"github.com/ichi0g0y/name-picker/internal/shared/logger"
	"github.com/ichi0g0y/name-picker/internal/status"
	"github.com/ichi0g0y/name-picker/internal/version"
)

var httpServer *http.Server

// Server holds what the HTTP handlers need.
type Server struct {
	Driver   *driver.Driver
	Settings *settings.SettingsManager
	Hub      *Hub
	// PublicURL is used for the share QR code when the PUBLIC_URL setting is empty.
	PublicURL string
}

// corsMiddleware adds CORS headers to HTTP handlers
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// SetupRoutes builds the router.
func SetupRoutes(s *Server) http.Handler {
	r := chi.NewRouter()
	r.Use(corsMiddleware)

	r.Get("/status", s.handleStatus)
	r.Get("/ws", s.Hub.ServeWS)

	r.Route("/api", func(r chi.Router) {
		r.Get("/version", handleVersion)

		r.Route("/entries", func(r chi.Router) {
			r.Get("/", s.handleListEntries)
			r.Post("/", s.handleAddEntry)
			r.Delete("/", s.handleClearEntries)
			r.Post("/bulk", s.handleBulkAddEntries)
			r.Post("/sample", s.handleLoadSample)
			r.Delete("/{name}", s.handleRemoveEntry)
			r.Put("/{name}/weight", s.handleUpdateWeight)
		})

		r.Route("/draw", func(r chi.Router) {
			r.Get("/", s.handleDrawStatus)
			r.Post("/", s.handleStartDraw)
			r.Post("/cancel", s.handleCancelDraw)
			r.Post("/remove-winner", s.handleRemoveLastWinner)
		})

		r.Route("/history", func(r chi.Router) {
			r.Get("/", s.handleListHistory)
			r.Delete("/", s.handleClearHistory)
			r.Delete("/{id}", s.handleDeleteHistory)
		})

		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handlePutSettings)

		r.Get("/share/qr", s.handleShareQR)
	})

	return r
}

// RegisterCallbacks forwards status changes to WebSocket clients.
func (s *Server) RegisterCallbacks() {
	status.RegisterDrawStatusChangeCallback(func(ds status.DrawStatus) {
		s.Hub.Broadcast(MsgDrawStatus, ds)
		if !ds.Busy {
			// 抽選中に編集された内容を抽選終了後に反映する
			s.broadcastPool()
		}
	})
	status.RegisterPoolChangeCallback(s.broadcastPool)
}

func (s *Server) broadcastPool() {
	entries, err := localdb.GetAllEntries()
	if err != nil {
		logger.Warn("Failed to load entries for broadcast", zap.Error(err))
		return
	}
	s.Hub.Broadcast(MsgPoolChanged, entries)
}

// StartWebServer starts the hub until ctx ends and serves HTTP in the background.
func StartWebServer(ctx context.Context, port int, s *Server) error {
	if s == nil || s.Driver == nil || s.Hub == nil {
		return errors.New("webserver: driver and hub are required")
	}

	go s.Hub.Run(ctx)
	s.RegisterCallbacks()

	httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           SetupRoutes(s),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Starting web server", zap.Int("port", port))
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Web server error", zap.Error(err))
		}
	}()
	return nil
}

// Shutdown gracefully shuts down the web server
func Shutdown() {
	if httpServer == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown web server gracefully", zap.Error(err))
	} else {
		logger.Info("Web server shutdown complete")
	}
	httpServer = nil
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	entries, err := localdb.GetAllEntries()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load entries")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"draw":        status.CurrentDraw(),
		"entries":     len(entries),
		"clients":     s.Hub.ClientCount(),
		"last_winner": s.Driver.LastWinner(),
		"version":     version.String(),
	})
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, version.Info())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
