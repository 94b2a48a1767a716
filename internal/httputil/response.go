package httputil

import (
	"encoding/json"
	"net/http"

	"devconnector/internal/validation"
)

// Error codes carried in the optional "code" field of failure envelopes.
const (
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeValidation      = "VALIDATION_FAILED"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeTokenExpired    = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid    = "TOKEN_INVALID"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeConflict        = "CONFLICT"
	ErrCodeResetExpired    = "RESET_TOKEN_EXPIRED"
	ErrCodeTooManyRequests = "RATE_LIMITED"
	ErrCodeBadGateway      = "BAD_GATEWAY"
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeEntityTooLarge  = "PAYLOAD_TOO_LARGE"
)

// Envelope is the body of every API response:
// {"success": bool, "msg": "...", <payload fields>}.
type Envelope map[string]interface{}

// ErrorResponse is the failure envelope.
type ErrorResponse struct {
	Success bool                    `json:"success"`
	Msg     string                  `json:"msg"`
	Code    string                  `json:"code,omitempty"`
	Errors  []validation.FieldError `json:"errors,omitempty"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		// headers are already sent, nothing left to report to the client
		_ = json.NewEncoder(w).Encode(data)
	}
}

// WriteSuccess writes {"success": true, "msg": msg} merged with payload.
func WriteSuccess(w http.ResponseWriter, status int, msg string, payload Envelope) {
	body := Envelope{"success": true, "msg": msg}
	for k, v := range payload {
		body[k] = v
	}
	WriteJSON(w, status, body)
}

// WriteOK is WriteSuccess with 200.
func WriteOK(w http.ResponseWriter, msg string, payload Envelope) {
	WriteSuccess(w, http.StatusOK, msg, payload)
}

// WriteError writes {"success": false, "msg": message, "code": code}.
func WriteError(w http.ResponseWriter, status int, code string, message string) {
	WriteJSON(w, status, ErrorResponse{Msg: message, Code: code})
}

// WriteValidationErrors writes a 400 carrying the field errors.
func WriteValidationErrors(w http.ResponseWriter, errs validation.Errors) {
	WriteJSON(w, http.StatusBadRequest, ErrorResponse{
		Msg:    "Validation failed",
		Code:   ErrCodeValidation,
		Errors: errs,
	})
}

func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

func WriteBadRequestWithCode(w http.ResponseWriter, code string, message string) {
	WriteError(w, http.StatusBadRequest, code, message)
}

func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

func WriteUnauthorizedWithCode(w http.ResponseWriter, code string, message string) {
	WriteError(w, http.StatusUnauthorized, code, message)
}

func WriteForbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, ErrCodeForbidden, message)
}

func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

func WriteConflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, ErrCodeConflict, message)
}

func WriteTooManyRequests(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusTooManyRequests, ErrCodeTooManyRequests, message)
}

func WritePayloadTooLarge(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusRequestEntityTooLarge, ErrCodeEntityTooLarge, message)
}

func WriteBadGateway(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadGateway, ErrCodeBadGateway, message)
}

// WriteInternalError writes a 500. Callers log the underlying error; the
// message sent to the client stays generic.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}
