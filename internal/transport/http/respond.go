package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"qquiz-service/internal/domain"
)

type errorPayload struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorPayload{Message: message})
}

// writeError maps use case errors to status codes. Anything unexpected is
// logged and reported without detail; grading and persistence failures are
// already logged by the submission service.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptySubmission):
		writeMessage(w, http.StatusUnprocessableEntity, "select at least one option")
	case errors.Is(err, domain.ErrInvalidChoiceReference), errors.Is(err, domain.ErrInvalidQuiz):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeMessage(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, domain.ErrQuizNotFound):
		writeMessage(w, http.StatusNotFound, "quiz not found")
	case errors.Is(err, domain.ErrResultNotFound):
		writeMessage(w, http.StatusNotFound, "result not found")
	case errors.Is(err, domain.ErrPersistence):
		writeMessage(w, http.StatusInternalServerError, "your result could not be saved, please try again")
	case errors.Is(err, domain.ErrDataIntegrity):
		writeMessage(w, http.StatusInternalServerError, "internal error")
	default:
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		writeMessage(w, http.StatusInternalServerError, "internal error")
	}
}
