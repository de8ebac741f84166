package response

import "net/http"

const (
	ErrCodeSuccess        = 2000 // Success
	ErrCodeParamInvalid   = 4000 // Request body or query invalid
	ErrCodeUnauthorized   = 4010 // Missing or invalid token
	ErrCodeForbidden      = 4030 // Not the owner of the resource
	ErrCodeNotFound       = 4040 // Resource does not exist
	ErrCodeTooManyRequest = 4290 // Rate limited
	ErrCodeStore          = 5000 // Message store failure
	ErrCodeInternal       = 5001 // Anything unclassified
)

// message
var msg = map[int]string{
	ErrCodeSuccess:        "success",
	ErrCodeParamInvalid:   "invalid request",
	ErrCodeUnauthorized:   "unauthorized",
	ErrCodeForbidden:      "forbidden",
	ErrCodeNotFound:       "not found",
	ErrCodeTooManyRequest: "too many requests",
	ErrCodeStore:          "message store unavailable",
	ErrCodeInternal:       "internal server error",
}

var status = map[int]int{
	ErrCodeSuccess:        http.StatusOK,
	ErrCodeParamInvalid:   http.StatusBadRequest,
	ErrCodeUnauthorized:   http.StatusUnauthorized,
	ErrCodeForbidden:      http.StatusForbidden,
	ErrCodeNotFound:       http.StatusNotFound,
	ErrCodeTooManyRequest: http.StatusTooManyRequests,
	ErrCodeStore:          http.StatusInternalServerError,
	ErrCodeInternal:       http.StatusInternalServerError,
}

// Message returns the default client message for code
func Message(code int) string {
	if m, ok := msg[code]; ok {
		return m
	}
	return msg[ErrCodeInternal]
}

// HTTPStatus returns the HTTP status that carries code
func HTTPStatus(code int) int {
	if s, ok := status[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}
