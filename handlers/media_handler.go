package handlers

import (
	"errors"
	"net/http"

	"github.com/opendraw/draw-engine/services"
)

const maxDrawImageBytes = 10 << 20 // 10MB

type MediaHandler struct {
	service services.MediaService
}

func NewMediaHandler(service services.MediaService) *MediaHandler {
	return &MediaHandler{service: service}
}

// UploadDraw accepts a multipart form with a "draw" file field and
// stores it as the category's static draw image.
func (h *MediaHandler) UploadDraw(w http.ResponseWriter, r *http.Request) {
	eventID, categoryID := scopeParams(r)

	if err := r.ParseMultipartForm(maxDrawImageBytes); err != nil {
		badRequestResponse(w, r, errors.New("request must be multipart form data with a 'draw' file"))
		return
	}
	file, header, err := r.FormFile("draw")
	if err != nil {
		badRequestResponse(w, r, errors.New("missing 'draw' file field"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	switch contentType {
	case "image/png", "image/jpeg", "image/webp", "application/pdf":
	default:
		badRequestResponse(w, r, errors.New("unsupported draw content type"))
		return
	}

	bracket, err := h.service.UploadDraw(r.Context(), eventID, categoryID, contentType, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": bracket}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MediaHandler) DeleteDraw(w http.ResponseWriter, r *http.Request) {
	eventID, categoryID := scopeParams(r)
	bracket, err := h.service.DeleteDraw(r.Context(), eventID, categoryID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": bracket}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
