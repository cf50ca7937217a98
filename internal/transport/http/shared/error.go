// Package shared centralizes domain error translation for every HTTP
// handler, so status mapping lives in one place.
package shared

import (
	"errors"
	"net/http"

	"fides/internal/fraud"
	"fides/internal/transport/http/json"
	dErrors "fides/pkg/domain-errors"
)

// ErrorResponse is the error envelope every handler returns.
type ErrorResponse struct {
	Error            string   `json:"error"`
	ErrorDescription string   `json:"error_description,omitempty"`
	Reasons          []string `json:"reasons,omitempty"`
}

// WriteError translates transport-agnostic domain errors into HTTP status
// codes and the error envelope. Fraud verdicts additionally carry the ordered
// reason codes so clients see why an application was struck.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if !errors.As(err, &domainErr) {
		json.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: string(dErrors.CodeInternal),
		})
		return
	}

	response := ErrorResponse{
		Error:            string(domainErr.Code),
		ErrorDescription: domainErr.Message,
	}
	var detected *fraud.DetectedError
	if errors.As(err, &detected) {
		for _, r := range detected.Reasons {
			response.Reasons = append(response.Reasons, string(r))
		}
	}

	json.WriteJSON(w, StatusForCode(domainErr.Code), response)
}

// StatusForCode translates domain error codes to HTTP status codes.
func StatusForCode(code dErrors.Code) int {
	switch code {
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeValidation:
		return http.StatusBadRequest
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeEligibility:
		return http.StatusForbidden
	case dErrors.CodeFraudDetected:
		return http.StatusUnprocessableEntity
	case dErrors.CodeInvalidState:
		return http.StatusConflict
	case dErrors.CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
