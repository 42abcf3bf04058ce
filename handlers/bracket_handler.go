package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/opendraw/draw-engine/brackets"
	"github.com/opendraw/draw-engine/models"
	"github.com/opendraw/draw-engine/services"
)

type BracketHandler struct {
	service services.BracketService
}

func NewBracketHandler(service services.BracketService) *BracketHandler {
	return &BracketHandler{service: service}
}

func scopeParams(r *http.Request) (string, string) {
	return chi.URLParam(r, "eventID"), chi.URLParam(r, "categoryID")
}

type generateBracketRequest struct {
	Rounds []brackets.RoundConfig `json:"rounds,omitempty"`
}

func (h *BracketHandler) Generate(w http.ResponseWriter, r *http.Request) {
	eventID, categoryID := scopeParams(r)
	var req generateBracketRequest
	if r.ContentLength > 0 {
		if err := readJSON(w, r, &req); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	bracket, err := h.service.Generate(r.Context(), eventID, categoryID, req.Rounds)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"bracket": bracket}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BracketHandler) Get(w http.ResponseWriter, r *http.Request) {
	eventID, categoryID := scopeParams(r)
	view, err := h.service.Get(r.Context(), eventID, categoryID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, view, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BracketHandler) Publish(w http.ResponseWriter, r *http.Request) {
	eventID, categoryID := scopeParams(r)
	bracket, err := h.service.Publish(r.Context(), eventID, categoryID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": bracket}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BracketHandler) Unpublish(w http.ResponseWriter, r *http.Request) {
	eventID, categoryID := scopeParams(r)
	bracket, err := h.service.Unpublish(r.Context(), eventID, categoryID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": bracket}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BracketHandler) AppendRound(w http.ResponseWriter, r *http.Request) {
	eventID, categoryID := scopeParams(r)
	var config *brackets.RoundConfig
	if r.ContentLength > 0 {
		config = &brackets.RoundConfig{}
		if err := readJSON(w, r, config); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	bracket, err := h.service.AppendRound(r.Context(), eventID, categoryID, config)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": bracket}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BracketHandler) Resync(w http.ResponseWriter, r *http.Request) {
	eventID, categoryID := scopeParams(r)
	bracket, err := h.service.Resync(r.Context(), eventID, categoryID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": bracket}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BracketHandler) Reset(w http.ResponseWriter, r *http.Request) {
	eventID, categoryID := scopeParams(r)
	if err := h.service.Reset(r.Context(), eventID, categoryID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BracketHandler) Delete(w http.ResponseWriter, r *http.Request) {
	eventID, categoryID := scopeParams(r)
	if err := h.service.Delete(r.Context(), eventID, categoryID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type reshuffleByesRequest struct {
	ExpectedCount *int `json:"expectedCount,omitempty"`
}

func (h *BracketHandler) ReshuffleByes(w http.ResponseWriter, r *http.Request) {
	eventID, categoryID := scopeParams(r)
	var req reshuffleByesRequest
	if r.ContentLength > 0 {
		if err := readJSON(w, r, &req); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	bracket, err := h.service.ReshuffleByes(r.Context(), eventID, categoryID, req.ExpectedCount)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": bracket}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type assignByeRequest struct {
	MatchID       string          `json:"matchId"`
	ParticipantID string          `json:"participantId"`
	Slot          models.SlotName `json:"slot,omitempty"`
}

func (h *BracketHandler) AssignBye(w http.ResponseWriter, r *http.Request) {
	eventID, categoryID := scopeParams(r)
	var req assignByeRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if req.Slot != "" && req.Slot != models.SlotPlayer1 && req.Slot != models.SlotPlayer2 {
		badRequestResponse(w, r, errors.New("slot must be player1 or player2"))
		return
	}

	bracket, err := h.service.AssignBye(r.Context(), eventID, categoryID, req.MatchID, req.ParticipantID, req.Slot)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": bracket}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BracketHandler) FinalizeByes(w http.ResponseWriter, r *http.Request) {
	eventID, categoryID := scopeParams(r)
	bracket, err := h.service.FinalizeByes(r.Context(), eventID, categoryID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": bracket}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
