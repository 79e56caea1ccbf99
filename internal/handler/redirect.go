package handler

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/linkveil/linkveil/internal/cloak"
	"github.com/linkveil/linkveil/internal/service"
)

// RedirectHandler handles redirect requests.
type RedirectHandler struct {
	svc    *service.RedirectService
	logger *slog.Logger
}

// NewRedirectHandler creates a new RedirectHandler.
func NewRedirectHandler(svc *service.RedirectService, logger *slog.Logger) *RedirectHandler {
	return &RedirectHandler{svc: svc, logger: logger}
}

// Redirect handles GET /r/{linkID}.
func (h *RedirectHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	linkID := chi.URLParam(r, "linkID")
	if linkID == "" {
		h.writeError(w, http.StatusNotFound, "LINK_NOT_FOUND", "Link not found")
		return
	}

	visitor := service.Visitor{
		UserAgent:      r.Header.Get("User-Agent"),
		Referer:        r.Header.Get("Referer"),
		AcceptLanguage: r.Header.Get("Accept-Language"),
		IPAddress:      clientIP(r),
	}

	resp, err := h.svc.Redirect(r.Context(), linkID, visitor)
	if err != nil {
		h.handleRedirectError(w, linkID, err)
		return
	}

	setNoCacheHeaders(w)

	switch resp.Kind {
	case cloak.KindHTML:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("X-Robots-Tag", "noindex, nofollow")
		w.WriteHeader(resp.Status)
		_, _ = w.Write([]byte(resp.Body))

	default:
		http.Redirect(w, r, resp.Location, resp.Status)
	}
}

// handleRedirectError maps pipeline errors to client responses.
func (h *RedirectHandler) handleRedirectError(w http.ResponseWriter, linkID string, err error) {
	switch {
	case errors.Is(err, service.ErrLinkNotFound):
		h.logger.Info("redirect_not_found", "link_id", linkID)
		h.writeError(w, http.StatusNotFound, "LINK_NOT_FOUND", "Link not found")

	case errors.Is(err, service.ErrLinkInactive):
		h.logger.Info("redirect_inactive", "link_id", linkID)
		h.writeError(w, http.StatusForbidden, "LINK_INACTIVE", "Link is not active")

	default:
		h.logger.Error("redirect_error", "link_id", linkID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// writeError writes a JSON error response for redirect failures.
func (h *RedirectHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	setNoCacheHeaders(w)
	writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// setNoCacheHeaders disables caching on redirect responses so intermediaries
// never replay a tracked redirect without a click being recorded.
func setNoCacheHeaders(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	w.Header().Set("X-Content-Type-Options", "nosniff")
}

// clientIP extracts the client address, taking the first hop when a
// forwarding chain is present.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// No port present (e.g. a bare IPv6 address); use the value as is.
		return r.RemoteAddr
	}
	return host
}
