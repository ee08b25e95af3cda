// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Success responses may have any shape (a student, a list, a status map).
// Error responses always look like:
//
//	{ "status": "error", "error": "student not found with id: 7" }
package response

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Response is the error envelope.
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// StatusError is the status of every error envelope.
const StatusError = "error"

// WriteJSON sets the JSON content type, writes status and encodes data.
// Headers must be set before WriteHeader, so nothing may be written to w
// before calling it.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// Error writes err as an error envelope with the given HTTP status.
func Error(w http.ResponseWriter, status int, err error) {
	if encErr := WriteJSON(w, status, GeneralError(err)); encErr != nil {
		slog.Warn("failed to write error response", slog.String("error", encErr.Error()))
	}
}

// Invalid writes a 400 whose message lists every failed field.
func Invalid(w http.ResponseWriter, errs validator.ValidationErrors) {
	if encErr := WriteJSON(w, http.StatusBadRequest, ValidationError(errs)); encErr != nil {
		slog.Warn("failed to write error response", slog.String("error", encErr.Error()))
	}
}

// GeneralError wraps any error into the envelope.
func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

// ValidationError turns validator field errors into one readable message,
// e.g. "field Name is required, field Email must be a valid email address".
func ValidationError(errs validator.ValidationErrors) Response {
	msgs := make([]string, 0, len(errs))

	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field %s is required", e.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("field %s must be a valid email address", e.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("field %s is invalid", e.Field()))
		}
	}

	return Response{
		Status: StatusError,
		Error:  strings.Join(msgs, ", "),
	}
}
