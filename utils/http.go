package utils

import (
	"encoding/json"
	"net/http"

	"github.com/fsnd/coffee-shop/auth"
)

// Error codes written in the envelope for non-auth failures
const (
	CodeBadRequest         = "bad_request"
	CodeNotFound           = "not_found"
	CodeMethodNotAllowed   = "method_not_allowed"
	CodeUnprocessable      = "unprocessable"
	CodeConflict           = "conflict"
	CodeServiceUnavailable = "service_unavailable"
	CodeInternalError      = "internal_error"
)

// ErrorResponse is the failure envelope shared by every endpoint
type ErrorResponse struct {
	Success bool                   `json:"success"`
	Error   int                    `json:"error"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return nil
	}

	return json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes {"success": true} merged with fields
func WriteSuccess(w http.ResponseWriter, status int, fields map[string]interface{}) error {
	body := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}
	body["success"] = true
	return WriteJSON(w, status, body)
}

// WriteOK writes a 200 success envelope
func WriteOK(w http.ResponseWriter, fields map[string]interface{}) error {
	return WriteSuccess(w, http.StatusOK, fields)
}

// WriteError writes the failure envelope
func WriteError(w http.ResponseWriter, status int, code, message string, details map[string]interface{}) error {
	if message == "" {
		message = http.StatusText(status)
	}
	return WriteJSON(w, status, ErrorResponse{
		Success: false,
		Error:   status,
		Code:    code,
		Message: message,
		Details: details,
	})
}

// WriteBadRequest writes a 400 Bad Request response with error details
func WriteBadRequest(w http.ResponseWriter, message string, details map[string]interface{}) error {
	return WriteError(w, http.StatusBadRequest, CodeBadRequest, message, details)
}

// WriteNotFound writes a 404 Not Found response
func WriteNotFound(w http.ResponseWriter, message string) error {
	if message == "" {
		message = "Resource not found"
	}
	return WriteError(w, http.StatusNotFound, CodeNotFound, message, nil)
}

// WriteMethodNotAllowed writes a 405 Method Not Allowed response
func WriteMethodNotAllowed(w http.ResponseWriter) error {
	return WriteError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "Method not allowed", nil)
}

// WriteUnprocessable writes a 422 Unprocessable Entity response
func WriteUnprocessable(w http.ResponseWriter, message string, details map[string]interface{}) error {
	if message == "" {
		message = "Unprocessable"
	}
	return WriteError(w, http.StatusUnprocessableEntity, CodeUnprocessable, message, details)
}

// WriteConflict writes a 422 response for data that clashes with stored records
func WriteConflict(w http.ResponseWriter, message string) error {
	if message == "" {
		message = "Conflict"
	}
	return WriteError(w, http.StatusUnprocessableEntity, CodeConflict, message, nil)
}

// WriteServiceUnavailable writes a 503 Service Unavailable response
func WriteServiceUnavailable(w http.ResponseWriter, message string) error {
	if message == "" {
		message = "Service unavailable"
	}
	return WriteError(w, http.StatusServiceUnavailable, CodeServiceUnavailable, message, nil)
}

// WriteInternalServerError writes a 500 Internal Server Error response
func WriteInternalServerError(w http.ResponseWriter, message string) error {
	if message == "" {
		message = "Internal server error"
	}
	return WriteError(w, http.StatusInternalServerError, CodeInternalError, message, nil)
}

// WriteAuthError writes a 401 envelope carrying the auth error kind as code.
// Errors that are not *auth.Error are reported as an unparseable token.
func WriteAuthError(w http.ResponseWriter, err error) error {
	authErr, ok := auth.AsError(err)
	if !ok {
		authErr = auth.ErrMalformedToken
	}
	return WriteError(w, http.StatusUnauthorized, string(authErr.Kind), authErr.Message, nil)
}
