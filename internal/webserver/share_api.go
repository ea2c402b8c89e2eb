package webserver

import (
	"net/http"
	"strconv"

	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/ichi0g0y/name-picker/internal/settings"
	"github.com/ichi0g0y/name-picker/internal/shared/logger"
)

const (
	defaultQRSize = 256
	maxQRSize     = 1024
)

// shareURL picks the address viewers should open: the PUBLIC_URL setting,
// then the configured fallback, then the request host.
func (s *Server) shareURL(r *http.Request) string {
	if s.Settings != nil {
		if v, err := s.Settings.GetSetting(settings.KeyPublicURL); err == nil && v != "" {
			return v
		}
	}
	if s.PublicURL != "" {
		return s.PublicURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/"
}

// handleShareQR returns a PNG QR code of the overlay URL.
func (s *Server) handleShareQR(w http.ResponseWriter, r *http.Request) {
	size := defaultQRSize
	if raw := r.URL.Query().Get("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 64 || parsed > maxQRSize {
			writeError(w, http.StatusBadRequest, "size must be between 64 and 1024")
			return
		}
		size = parsed
	}

	target := s.shareURL(r)
	png, err := qrcode.Encode(target, qrcode.Medium, size)
	if err != nil {
		logger.Error("Failed to encode share QR code", zap.String("url", target), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to generate QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Share-URL", target)
	_, _ = w.Write(png)
}
