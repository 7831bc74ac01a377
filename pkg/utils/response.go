package utils

import (
	"encoding/json"
	"net/http"

	"hostel-backend/internal/apperrors"
)

// JSON writes data as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error maps an error to its HTTP status and writes a JSON error body.
func Error(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch apperrors.KindOf(err) {
	case apperrors.KindNotFound:
		status = http.StatusNotFound
	case apperrors.KindConflict:
		status = http.StatusConflict
	case apperrors.KindInvalidState, apperrors.KindInvalidTransition:
		status = http.StatusUnprocessableEntity
	case apperrors.KindInvalidLayout:
		status = http.StatusBadRequest
	}
	JSON(w, status, map[string]string{"error": err.Error()})
}

// BadRequest writes a 400 with a plain message.
func BadRequest(w http.ResponseWriter, message string) {
	JSON(w, http.StatusBadRequest, map[string]string{"error": message})
}
