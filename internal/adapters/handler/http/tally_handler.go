package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/showtally/api/internal/core/domain"
	"github.com/showtally/api/internal/core/ports"
)

type TallyHandler struct {
	service ports.TallyService
}

func NewTallyHandler(service ports.TallyService) *TallyHandler {
	return &TallyHandler{
		service: service,
	}
}

type tallyResponse struct {
	SessionID   uuid.UUID         `json:"session_id"`
	Counts      map[uuid.UUID]int `json:"counts"`
	Total       int               `json:"total"`
	Percentages map[uuid.UUID]int `json:"percentages"`
}

func (h *TallyHandler) GetTally(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	tally, err := h.service.ForCode(r.Context(), code)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := tallyResponse{
		SessionID:   tally.SessionID,
		Counts:      tally.Counts,
		Total:       tally.Total,
		Percentages: make(map[uuid.UUID]int, len(tally.Counts)),
	}
	for optionID := range tally.Counts {
		resp.Percentages[optionID] = tally.Percentage(optionID)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
