// Package httpx provides the JSON response envelope shared by all handlers.
package httpx

import (
	"encoding/json"
	"net/http"
)

// Envelope is the uniform response body: {success, message, data?}.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

// JSON writes an arbitrary payload with the given status code.
func JSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// OK writes a success envelope with optional data.
func OK(w http.ResponseWriter, message string, data any) {
	JSON(w, http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

// Fail writes a failure envelope with the given status code.
func Fail(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Envelope{Success: false, Message: message})
}

// FailFields writes a validation failure including per-field errors.
func FailFields(w http.ResponseWriter, message string, fields map[string]string) {
	JSON(w, http.StatusUnprocessableEntity, Envelope{Success: false, Message: message, Errors: fields})
}

// DecodeJSON decodes a JSON request body into target.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
