package core

import (
	"encoding/json"
	"net/http"
)

// Standard response codes
const (
	// oks

	CodeOkAuthentication = "ok_authentication" // signup/login success, carries a session token
	CodeOkProfile        = "ok_profile"        // profile read
	CodeOkUsers          = "ok_users"          // admin user listing
	CodeOkUserUpdated    = "ok_user_updated"   // admin state-transition action

	//errors
	CodeErrorTokenGeneration    = "err_token_generation"
	CodeErrorInvalidRequest     = "err_invalid_input"
	CodeErrorInvalidCredentials = "err_invalid_credentials"
	CodeErrorPasswordMismatch   = "err_password_mismatch"
	CodeErrorMissingFields      = "err_missing_fields"
	CodeErrorPasswordComplexity = "err_password_complexity"
	CodeErrorEmailConflict      = "err_email_conflict"
	CodeErrorUsernameConflict   = "err_username_conflict"
	CodeErrorNotFound           = "err_not_found"
	CodeErrorRegistrationFailed = "err_registration_failed"
	CodeErrorServiceUnavailable = "err_service_unavailable"
	CodeErrorNoAuthHeader       = "err_no_auth_header"
	CodeErrorInvalidTokenFormat = "err_invalid_token_format"
	CodeErrorJwtTokenExpired    = "err_token_expired"
	CodeErrorJwtInvalidToken    = "err_invalid_token"
	CodeErrorForbidden          = "err_forbidden"
	CodeErrorInvalidContentType = "err_invalid_content_type"
	CodeErrorInvalidTransition  = "err_invalid_transition"
	CodeErrorTooManyFailedLogins = "err_too_many_failed_logins"
	// oks
)

// PrecomputeBasicResponse builds a short ok or error response (a JsonBasic body).
// PrecomputeBasicResponse() will be executed during initialization (before main() runs),
// and the JSON body will be precomputed and stored in the response variables.
// the variables will contain the fully JSON as []byte already
// It avoids repeated JSON marshaling during request handling
// Any time we use WriteJsonOk or WriteJsonError(w, response) in the code, it
// simply writes the pre-computed bytes to the response writer
func PrecomputeBasicResponse(status int, code, message string) jsonResponse {
	basic := JsonBasic{
		Status:  status,
		Code:    code,
		Message: message,
	}
	body, _ := json.Marshal(basic)
	return jsonResponse{status: status, body: body}
}

// Precomputed error and ok responses with status codes
var (
	//errors
	errorTokenGeneration    = PrecomputeBasicResponse(http.StatusInternalServerError, CodeErrorTokenGeneration, "Failed to generate authentication token")
	errorInvalidRequest     = PrecomputeBasicResponse(http.StatusBadRequest, CodeErrorInvalidRequest, "The request contains invalid data")
	errorInvalidCredentials = PrecomputeBasicResponse(http.StatusUnauthorized, CodeErrorInvalidCredentials, "Invalid credentials provided")
	errorPasswordMismatch   = PrecomputeBasicResponse(http.StatusBadRequest, CodeErrorPasswordMismatch, "Password and confirmation do not match")
	errorMissingFields      = PrecomputeBasicResponse(http.StatusBadRequest, CodeErrorMissingFields, "Required fields are missing")
	errorPasswordComplexity = PrecomputeBasicResponse(http.StatusBadRequest, CodeErrorPasswordComplexity, "Password must be at least 8 characters")
	errorEmailConflict      = PrecomputeBasicResponse(http.StatusConflict, CodeErrorEmailConflict, "Email address is already registered")
	errorUsernameConflict   = PrecomputeBasicResponse(http.StatusConflict, CodeErrorUsernameConflict, "Username is already registered")
	errorNotFound           = PrecomputeBasicResponse(http.StatusNotFound, CodeErrorNotFound, "Requested resource not found")
	errorRegistrationFailed = PrecomputeBasicResponse(http.StatusInternalServerError, CodeErrorRegistrationFailed, "Registration process failed")
	errorServiceUnavailable = PrecomputeBasicResponse(http.StatusServiceUnavailable, CodeErrorServiceUnavailable, "Service is temporarily unavailable")
	errorNoAuthHeader       = PrecomputeBasicResponse(http.StatusUnauthorized, CodeErrorNoAuthHeader, "Authorization header is required")
	errorInvalidTokenFormat = PrecomputeBasicResponse(http.StatusUnauthorized, CodeErrorInvalidTokenFormat, "Invalid authorization token format")
	errorJwtTokenExpired    = PrecomputeBasicResponse(http.StatusUnauthorized, CodeErrorJwtTokenExpired, "Authentication token has expired")
	errorJwtInvalidToken    = PrecomputeBasicResponse(http.StatusUnauthorized, CodeErrorJwtInvalidToken, "Invalid authentication token")
	errorForbidden          = PrecomputeBasicResponse(http.StatusForbidden, CodeErrorForbidden, "Not allowed to perform this action")
	errorInvalidContentType = PrecomputeBasicResponse(http.StatusUnsupportedMediaType, CodeErrorInvalidContentType, "Unsupported media type")
	errorInvalidTransition  = PrecomputeBasicResponse(http.StatusConflict, CodeErrorInvalidTransition, "Requested state transition is not allowed")
	errorTooManyFailedLogins = PrecomputeBasicResponse(http.StatusTooManyRequests, CodeErrorTooManyFailedLogins, "Too many failed login attempts from this address")
)

// For successful precomputed responses
func WriteJsonOk(w http.ResponseWriter, resp jsonResponse) {
	SetHeaders(w, HeadersJson)
	w.WriteHeader(resp.status)
	_, _ = w.Write(resp.body)
}

// WriteJsonError writes a precomputed JSON error response
func WriteJsonError(w http.ResponseWriter, resp jsonResponse) {
	SetHeaders(w, HeadersJson)
	w.WriteHeader(resp.status)
	_, _ = w.Write(resp.body)
}
