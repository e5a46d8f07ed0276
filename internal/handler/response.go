package handler

import (
	"encoding/json"
	"errors"
	"net/http"
)

// WriteJSON writes data as a JSON response with the given status code. The
// Content-Type header must be set before the status code is committed.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status line is already on the wire; an encode failure here has no
	// recovery, so the error is dropped.
	_ = json.NewEncoder(w).Encode(data)
}

// errorResponse is the body of every non-2xx response: a stable
// machine-readable code and a human-readable message.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError writes an errorResponse with the given status code.
func WriteError(w http.ResponseWriter, status int, errorCode, message string) {
	WriteJSON(w, status, errorResponse{
		Error:   errorCode,
		Message: message,
	})
}

// ParseJSON decodes the request body into v. The body must be exactly one
// JSON object with no unknown fields. Content-Type is not checked here;
// the contentTypeJSON middleware rejects non-JSON requests before any
// handler runs.
func ParseJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.New("request body must be a valid JSON object")
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}
