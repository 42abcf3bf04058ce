package handlers

import (
	"errors"
	"net/http"

	"github.com/opendraw/draw-engine/config"
	"github.com/opendraw/draw-engine/utils"
)

type AuthHandler struct {
	cfg *config.Config
}

func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

type tokenRequest struct {
	Password string `json:"password"`
}

// IssueToken exchanges the operator password for a bearer token.
func (h *AuthHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if !utils.CheckPasswordHash(req.Password, h.cfg.OperatorPasswordHash) {
		unauthorizedResponse(w, r, errors.New("invalid credentials"))
		return
	}

	token, err := utils.GenerateOperatorToken([]byte(h.cfg.JWTSecretKey))
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"token": token}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
