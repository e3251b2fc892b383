package api

import (
	"encoding/json"
	"net/http"

	"github.com/chuckhq/chuck-hq/src/internal/errors"
	"github.com/chuckhq/chuck-hq/src/internal/log"
)

const (
	msgNotFound         = "Not found"
	msgInvalidJSON      = "Invalid JSON"
	msgPayloadTooLarge  = "Payload too large"
	msgMethodNotAllowed = "Method not allowed"
	msgInternalError    = "Internal server error"
)

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteError writes an error response to the HTTP response writer.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// WriteNotFound writes a 404 Not Found error.
func WriteNotFound(w http.ResponseWriter) {
	WriteError(w, http.StatusNotFound, msgNotFound)
}

// WriteInvalidJSON writes a 400 Bad Request for bodies that are not a JSON object.
func WriteInvalidJSON(w http.ResponseWriter) {
	WriteError(w, http.StatusBadRequest, msgInvalidJSON)
}

// WritePayloadTooLarge writes a 413 Request Entity Too Large error.
func WritePayloadTooLarge(w http.ResponseWriter) {
	WriteError(w, http.StatusRequestEntityTooLarge, msgPayloadTooLarge)
}

// WriteInternalError writes a 500 Internal Server Error.
func WriteInternalError(w http.ResponseWriter) {
	WriteError(w, http.StatusInternalServerError, msgInternalError)
}

// writeServiceError maps a service error onto a response.
func writeServiceError(w http.ResponseWriter, err error) {
	switch errors.CodeOf(err) {
	case errors.ErrCodeNotFound:
		log.Debugf("%v", err)
		WriteNotFound(w)
	default:
		log.Errorf("%v", err)
		WriteInternalError(w)
	}
}
