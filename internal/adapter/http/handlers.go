package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/simaogato/wealthflow-widgets/internal/adapter/api"
	"github.com/simaogato/wealthflow-widgets/internal/domain"
)

// maxBodyBytes bounds request bodies; an allocation is a handful of buckets
const maxBodyBytes = 1 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{"status": "ok"}
	if s.refreshedAt != nil {
		if at := s.refreshedAt(); !at.IsZero() {
			body["series_refreshed_at"] = at.UTC().Format(time.RFC3339)
		}
	}
	s.writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleListInstruments(w http.ResponseWriter, r *http.Request) {
	resp, err := s.api.ListInstruments(r.Context(), api.ListInstrumentsRequest{
		Kind: domain.InstrumentKind(r.URL.Query().Get("kind")),
	})
	if err != nil {
		s.writeAPIError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetSeries(w http.ResponseWriter, r *http.Request) {
	resp, err := s.api.GetSeries(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeAPIError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetAllocation(w http.ResponseWriter, r *http.Request) {
	var req api.SetAllocationRequest
	if !s.decode(w, r, &req) {
		return
	}

	resp, err := s.api.SetAllocation(r.Context(), req)
	if err != nil {
		s.writeAPIError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleToggleLock(w http.ResponseWriter, r *http.Request) {
	var req api.BucketRequest
	if !s.decode(w, r, &req) {
		return
	}

	resp, err := s.api.ToggleLock(r.Context(), req)
	if err != nil {
		s.writeAPIError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleToggleInstrument(w http.ResponseWriter, r *http.Request) {
	var req api.BucketRequest
	if !s.decode(w, r, &req) {
		return
	}

	resp, err := s.api.ToggleInstrument(r.Context(), req)
	if err != nil {
		s.writeAPIError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEqualize(w http.ResponseWriter, r *http.Request) {
	var req api.EqualizeRequest
	if !s.decode(w, r, &req) {
		return
	}

	resp, err := s.api.Equalize(r.Context(), req)
	if err != nil {
		s.writeAPIError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSplit(w http.ResponseWriter, r *http.Request) {
	var req api.SplitRequest
	if !s.decode(w, r, &req) {
		return
	}

	resp, err := s.api.SplitAmount(r.Context(), req)
	if err != nil {
		s.writeAPIError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req api.SimulateRequest
	if !s.decode(w, r, &req) {
		return
	}

	resp, err := s.api.Simulate(r.Context(), req)
	if err != nil {
		s.writeAPIError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// decode reads a JSON body into v and answers 400 on failure
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// writeAPIError maps use case errors to HTTP status codes
func (s *Server) writeAPIError(w http.ResponseWriter, err error) {
	switch api.Classify(err) {
	case api.KindConflict:
		body := map[string]interface{}{"error": err.Error()}
		var deadlock *domain.BalancingDeadlockError
		if errors.As(err, &deadlock) {
			body["bucket_id"] = deadlock.BucketID
			body["remaining"] = deadlock.Remaining
		}
		s.writeJSON(w, http.StatusConflict, body)
	case api.KindInvalid:
		s.writeError(w, http.StatusBadRequest, err.Error())
	case api.KindNotFound:
		s.writeError(w, http.StatusNotFound, err.Error())
	default:
		s.log.Error().Err(err).Msg("Request failed")
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}
