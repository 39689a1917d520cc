package api

import (
	"net/http"

	"github.com/jdalisay/anihan/core/forecast"
	"github.com/jdalisay/anihan/core/model"
)

type healthResponse struct {
	Status         string          `json:"status"`
	Models         map[string]bool `json:"models"`
	HistoryEnabled bool            `json:"historyEnabled"`
}

// NewHealthHandler serves GET /api/v1/health. The service reports healthy as
// long as it is up; per-species model availability is carried in the body.
func NewHealthHandler(svc *forecast.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		models := make(map[string]bool, len(svc.KnownSpecies()))
		for _, sp := range svc.KnownSpecies() {
			models[sp] = svc.Available(sp)
		}
		writeJSON(w, http.StatusOK, healthResponse{
			Status:         "ok",
			Models:         models,
			HistoryEnabled: svc.History() != nil,
		})
	})
}

type modelsResponse struct {
	Success bool              `json:"success"`
	Models  []model.ModelInfo `json:"models"`
}

// NewModelsHandler serves GET /api/v1/models.
func NewModelsHandler(svc *forecast.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		infos := svc.Models()
		if infos == nil {
			infos = []model.ModelInfo{}
		}
		writeJSON(w, http.StatusOK, modelsResponse{Success: true, Models: infos})
	})
}
