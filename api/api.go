// Package api exposes the forecast service over HTTP. Handlers decode the
// wire DTOs, delegate to the forecast service and map domain errors onto
// status codes. All bodies are JSON.
package api

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/jdalisay/anihan/core/forecast"
	"github.com/jdalisay/anihan/core/logger"
)

// NewMux builds the service routing table.
func NewMux(svc *forecast.Service, log logger.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/api/v1/predict", NewPredictHandler(svc, log))
	mux.Handle("/api/v1/predictions", NewPredictionsHandler(svc, log))
	mux.Handle("/api/v1/predictions/", NewPredictionsHandler(svc, log))
	mux.Handle("/api/v1/models", NewModelsHandler(svc))
	mux.Handle("/api/v1/health", NewHealthHandler(svc))
	return mux
}

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// clientIP prefers the first X-Forwarded-For entry over the socket peer.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
