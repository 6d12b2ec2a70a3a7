package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"TASKMANAGER_BACK-END/internal/dto"
)

// WriteJSONResponse writes a JSON response to the HTTP response writer
func WriteJSONResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// WriteErrorResponse writes a JSON error payload with the given status
func WriteErrorResponse(w http.ResponseWriter, status int, errMsg, message string) {
	WriteJSONResponse(w, status, dto.ErrorResponse{Error: errMsg, Message: message})
}

// WriteUnauthorizedResponse writes a 401 with the WWW-Authenticate challenge
// required for bearer-token endpoints.
func WriteUnauthorizedResponse(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", message)
}

// DecodeJSONRequest decodes the request body into dst and writes the error
// response itself on failure, so callers can simply return.
func DecodeJSONRequest(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body", "Request body must be valid JSON")
		return err
	}
	// Reject trailing garbage after the JSON document
	if dec.More() {
		err := errors.New("unexpected data after JSON body")
		WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body", "Request body must be a single JSON document")
		return err
	}
	return nil
}
