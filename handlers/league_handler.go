package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/opendraw/draw-engine/models"
	"github.com/opendraw/draw-engine/services"
)

type LeagueHandler struct {
	service services.LeagueService
}

func NewLeagueHandler(service services.LeagueService) *LeagueHandler {
	return &LeagueHandler{service: service}
}

type upsertLeagueRequest struct {
	Participants []models.LeagueParticipant `json:"participants"`
	Rules        *models.LeagueRules        `json:"rules,omitempty"`
}

func (h *LeagueHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	eventID, categoryID := scopeParams(r)
	var req upsertLeagueRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	league := &models.League{
		EventID:      eventID,
		CategoryID:   categoryID,
		Participants: req.Participants,
	}
	if req.Rules != nil {
		league.Rules = *req.Rules
	}

	league, err := h.service.Upsert(r.Context(), league)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"league": league}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LeagueHandler) Get(w http.ResponseWriter, r *http.Request) {
	eventID, categoryID := scopeParams(r)
	league, err := h.service.Get(r.Context(), eventID, categoryID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"league": league}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LeagueHandler) Delete(w http.ResponseWriter, r *http.Request) {
	eventID, categoryID := scopeParams(r)
	if err := h.service.Delete(r.Context(), eventID, categoryID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *LeagueHandler) GenerateFixtures(w http.ResponseWriter, r *http.Request) {
	eventID, categoryID := scopeParams(r)
	created, err := h.service.GenerateFixtures(r.Context(), eventID, categoryID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"fixtures_created": created}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LeagueHandler) ListFixtures(w http.ResponseWriter, r *http.Request) {
	eventID, categoryID := scopeParams(r)
	fixtures, err := h.service.ListFixtures(r.Context(), eventID, categoryID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"fixtures": fixtures}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type leagueResultRequest struct {
	WinnerID *string `json:"winnerId,omitempty"`
	Score    *string `json:"score,omitempty"`
}

func (h *LeagueHandler) RecordResult(w http.ResponseWriter, r *http.Request) {
	eventID, categoryID := scopeParams(r)
	fixtureID, err := strconv.Atoi(chi.URLParam(r, "fixtureID"))
	if err != nil || fixtureID <= 0 {
		badRequestResponse(w, r, errors.New("invalid fixture id"))
		return
	}

	var req leagueResultRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.service.RecordResult(r.Context(), eventID, categoryID, fixtureID, req.WinnerID, req.Score); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *LeagueHandler) Standings(w http.ResponseWriter, r *http.Request) {
	eventID, categoryID := scopeParams(r)
	standings, err := h.service.Standings(r.Context(), eventID, categoryID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
