package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/showtally/api/internal/core/domain"
	"github.com/showtally/api/internal/core/ports"
	"github.com/showtally/api/internal/metrics"
)

type VoteHandler struct {
	service ports.VoteService
	metrics *metrics.MetricService
}

func NewVoteHandler(service ports.VoteService, metrics *metrics.MetricService) *VoteHandler {
	return &VoteHandler{
		service: service,
		metrics: metrics,
	}
}

type castVoteRequest struct {
	OptionID uuid.UUID `json:"option_id"`
}

func (h *VoteHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	var req castVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	deviceID, ok := r.Context().Value(DeviceIDKey).(string)
	if !ok || deviceID == "" {
		http.Error(w, "missing device identity", http.StatusBadRequest)
		return
	}

	input := ports.CastInput{
		SessionCode: code,
		OptionID:    req.OptionID,
		DeviceID:    deviceID,
	}

	if err := h.service.Cast(r.Context(), input); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		if errors.Is(err, domain.ErrSessionClosed) {
			h.metrics.IncVotesRejected()
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		if errors.Is(err, domain.ErrInvalidOption) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		// Write-path failure: the attempt is over, the caller retries.
		h.metrics.IncVoteWriteErrors()
		http.Error(w, "could not save vote", http.StatusInternalServerError)
		return
	}

	h.metrics.IncVotesCast()
	w.WriteHeader(http.StatusCreated)
}

func (h *VoteHandler) MyVote(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	deviceID, ok := r.Context().Value(DeviceIDKey).(string)
	if !ok || deviceID == "" {
		http.Error(w, "missing device identity", http.StatusBadRequest)
		return
	}

	vote, err := h.service.MyVote(r.Context(), code, deviceID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) || errors.Is(err, domain.ErrVoteNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"option_id": vote.OptionID.String()}); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
