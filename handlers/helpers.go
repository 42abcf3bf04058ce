package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/opendraw/draw-engine/brackets"
	"github.com/opendraw/draw-engine/services"
)

type jsonResponse map[string]interface{}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case err.Error() == "http: request body too large":
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err)
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, err error) {
	env := jsonResponse{"error": err.Error()}
	if code := services.ReasonCode(err); code != "" {
		env["code"] = code
	}
	if writeErr := writeJSON(w, status, env, nil); writeErr != nil {
		slog.Error("failed to write error response", slog.Any("error", writeErr))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err))
	errorResponse(w, r, http.StatusInternalServerError,
		errors.New("the server encountered a problem and could not process your request"))
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, err)
}

func notFoundResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusNotFound, err)
}

func conflictResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusConflict, err)
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusUnauthorized, err)
}

// mapServiceErrorToHTTP translates service-layer errors into HTTP
// responses carrying their reason codes.
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrBracketNotFound),
		errors.Is(err, services.ErrLeagueNotFound),
		errors.Is(err, services.ErrMatchNotFound),
		errors.Is(err, brackets.ErrMatchNotFound):
		notFoundResponse(w, r, err)

	case errors.Is(err, services.ErrBracketLocked),
		errors.Is(err, services.ErrModeConflict),
		errors.Is(err, services.ErrAlreadyPublished),
		errors.Is(err, brackets.ErrPrevRoundIncomplete),
		errors.Is(err, brackets.ErrChampionDecided),
		errors.Is(err, brackets.ErrRankedByeLocked),
		errors.Is(err, brackets.ErrParticipantSeated),
		errors.Is(err, brackets.ErrParticipantRanked):
		conflictResponse(w, r, err)

	case errors.Is(err, services.ErrEventRequired),
		errors.Is(err, services.ErrCategoryRequired),
		errors.Is(err, services.ErrRosterMalformed),
		errors.Is(err, services.ErrDrawNotAllowed),
		errors.Is(err, services.ErrNotMediaDraw),
		errors.Is(err, services.ErrLeagueWinnerUnknown),
		errors.Is(err, brackets.ErrInsufficientParticipants),
		errors.Is(err, brackets.ErrInvalidSeedMap),
		errors.Is(err, brackets.ErrUnknownSeededIDs),
		errors.Is(err, brackets.ErrNotABye),
		errors.Is(err, brackets.ErrParticipantUnknown),
		errors.Is(err, brackets.ErrWinnerSlotEmpty):
		badRequestResponse(w, r, err)

	default:
		serverErrorResponse(w, r, err)
	}
}
