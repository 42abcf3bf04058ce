package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/opendraw/draw-engine/models"
	"github.com/opendraw/draw-engine/services"
)

type MatchHandler struct {
	service services.MatchService
}

func NewMatchHandler(service services.MatchService) *MatchHandler {
	return &MatchHandler{service: service}
}

type recordResultRequest struct {
	Winner models.SlotName `json:"winner"`
	Score  *string         `json:"score,omitempty"`
}

func (h *MatchHandler) RecordResult(w http.ResponseWriter, r *http.Request) {
	eventID, categoryID := scopeParams(r)
	matchID := chi.URLParam(r, "matchID")

	var req recordResultRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	bracket, err := h.service.RecordResult(r.Context(), eventID, categoryID, matchID, req.Winner, req.Score)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": bracket}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) ClearResult(w http.ResponseWriter, r *http.Request) {
	eventID, categoryID := scopeParams(r)
	matchID := chi.URLParam(r, "matchID")

	bracket, err := h.service.ClearResult(r.Context(), eventID, categoryID, matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": bracket}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
