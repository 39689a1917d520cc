package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jdalisay/anihan/core/artifact"
	"github.com/jdalisay/anihan/core/forecast"
	"github.com/jdalisay/anihan/core/logger"
	"github.com/jdalisay/anihan/core/model"
)

// predictRequest is the wire shape of POST /api/v1/predict. Dates travel as
// plain calendar strings.
type predictRequest struct {
	Species  string             `json:"species"`
	Province string             `json:"province"`
	City     string             `json:"city"`
	DateFrom string             `json:"dateFrom"`
	DateTo   string             `json:"dateTo"`
	Features map[string]float64 `json:"features,omitempty"`
}

func (p predictRequest) toModel(r *http.Request) (model.ForecastRequest, error) {
	req := model.ForecastRequest{
		Species:   p.Species,
		Province:  p.Province,
		City:      p.City,
		Features:  p.Features,
		ClientIP:  clientIP(r),
		UserAgent: r.UserAgent(),
	}
	var err error
	if p.DateFrom != "" {
		if req.DateFrom, err = time.Parse(model.DateLayout, p.DateFrom); err != nil {
			return req, &model.ValidationError{Field: "dateFrom", Reason: fmt.Sprintf("expected %s", model.DateLayout)}
		}
	}
	if p.DateTo != "" {
		if req.DateTo, err = time.Parse(model.DateLayout, p.DateTo); err != nil {
			return req, &model.ValidationError{Field: "dateTo", Reason: fmt.Sprintf("expected %s", model.DateLayout)}
		}
	}
	return req, nil
}

// NewPredictHandler serves POST /api/v1/predict.
func NewPredictHandler(svc *forecast.Service, log logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var dto predictRequest
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		req, err := dto.toModel(r)
		if err == nil {
			err = req.Validate(svc.KnownSpecies())
		}
		if err != nil {
			var verr *model.ValidationError
			if errors.As(err, &verr) {
				writeJSON(w, http.StatusBadRequest, errorBody{Error: verr.Reason, Field: verr.Field})
				return
			}
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		resp, err := svc.Forecast(r.Context(), req)
		if err != nil {
			switch {
			case errors.Is(err, artifact.ErrModelUnavailable):
				writeError(w, http.StatusNotFound, fmt.Sprintf("no model available for species %q", req.Species))
			case errors.Is(err, artifact.ErrSchemaMismatch):
				log.Errorf("schema mismatch for %s: %v", req.Species, err)
				writeError(w, http.StatusInternalServerError, "model feature schema mismatch")
			default:
				log.Errorf("forecast for %s failed: %v", req.Species, err)
				writeError(w, http.StatusInternalServerError, "prediction failed")
			}
			return
		}
		writeJSON(w, http.StatusOK, resp)
	})
}
