package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/jdalisay/anihan/core/forecast"
	"github.com/jdalisay/anihan/core/history"
	"github.com/jdalisay/anihan/core/logger"
	"github.com/jdalisay/anihan/core/model"
)

type listResponse struct {
	Success     bool              `json:"success"`
	Predictions []history.Summary `json:"predictions"`
	Total       int               `json:"total"`
	Skip        int               `json:"skip"`
	Limit       int               `json:"limit"`
}

type getResponse struct {
	Success     bool                    `json:"success"`
	Record      history.Record          `json:"record"`
	Predictions []model.PredictionPoint `json:"predictions"`
}

// NewPredictionsHandler serves the stored-forecast endpoints:
// GET /api/v1/predictions, GET and DELETE /api/v1/predictions/{id}.
func NewPredictionsHandler(svc *forecast.Service, log logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		store := svc.History()
		if store == nil {
			writeError(w, http.StatusServiceUnavailable, "history persistence is disabled")
			return
		}

		id := strings.TrimPrefix(r.URL.Path, "/api/v1/predictions")
		id = strings.Trim(id, "/")
		if id == "" {
			if r.Method != http.MethodGet {
				writeError(w, http.StatusMethodNotAllowed, "method not allowed")
				return
			}
			list(w, r, store, log)
			return
		}

		switch r.Method {
		case http.MethodGet:
			rec, points, err := store.Get(r.Context(), id)
			if err != nil {
				storeError(w, log, err)
				return
			}
			writeJSON(w, http.StatusOK, getResponse{Success: true, Record: rec, Predictions: points})
		case http.MethodDelete:
			if err := store.Delete(r.Context(), id); err != nil {
				storeError(w, log, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "requestId": id})
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	})
}

func list(w http.ResponseWriter, r *http.Request, store history.Store, log logger.Logger) {
	q := r.URL.Query()
	f := history.Filter{
		Species:  q.Get("species"),
		Province: q.Get("province"),
		City:     q.Get("city"),
	}
	skip := queryInt(q.Get("skip"), 0)
	limit := history.ClampLimit(queryInt(q.Get("limit"), history.MaxPageSize))

	records, err := store.List(r.Context(), f, skip, limit)
	if err != nil {
		storeError(w, log, err)
		return
	}
	total, err := store.Count(r.Context(), f)
	if err != nil {
		storeError(w, log, err)
		return
	}
	if records == nil {
		records = []history.Summary{}
	}
	writeJSON(w, http.StatusOK, listResponse{
		Success:     true,
		Predictions: records,
		Total:       total,
		Skip:        skip,
		Limit:       limit,
	})
}

func storeError(w http.ResponseWriter, log logger.Logger, err error) {
	switch {
	case errors.Is(err, history.ErrNotFound):
		writeError(w, http.StatusNotFound, "prediction request not found")
	case errors.Is(err, history.ErrUnavailable):
		log.Errorf("history store: %v", err)
		writeError(w, http.StatusServiceUnavailable, "history store unavailable")
	default:
		log.Errorf("history store: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func queryInt(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}
	return n
}
