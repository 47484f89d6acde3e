package dto

import (
	"net/http"
	"strings"
)

// Envelope error codes. Domain errors raise bare codes such as NOT_FOUND;
// NormalizeErrorCode lifts those into this ERR_ namespace.
const (
	ErrCodeInternal            = "ERR_INTERNAL"
	ErrCodeBadRequest          = "ERR_BAD_REQUEST"
	ErrCodeInvalidJSON         = "ERR_INVALID_JSON"
	ErrCodeInvalidInput        = "ERR_INVALID_INPUT"
	ErrCodeValidation          = "ERR_VALIDATION"
	ErrCodePayloadTooLarge     = "ERR_PAYLOAD_TOO_LARGE"
	ErrCodeRateLimited         = "ERR_RATE_LIMITED"
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeInvalidState        = "ERR_INVALID_STATE"
	ErrCodeRulesUnavailable    = "ERR_RULES_UNAVAILABLE"
	ErrCodeStorageUnavailable  = "ERR_STORAGE_UNAVAILABLE"
	ErrCodeUploadURLFailed     = "ERR_UPLOAD_URL_FAILED"
)

type codeInfo struct {
	status int
	bare   string
}

var envelopeCodes = map[string]codeInfo{
	ErrCodeInternal:            {http.StatusInternalServerError, "INTERNAL_ERROR"},
	ErrCodeBadRequest:          {http.StatusBadRequest, "BAD_REQUEST"},
	ErrCodeInvalidJSON:         {http.StatusBadRequest, ""},
	ErrCodeInvalidInput:        {http.StatusBadRequest, "INVALID_INPUT"},
	ErrCodeValidation:          {http.StatusBadRequest, "VALIDATION_ERROR"},
	ErrCodePayloadTooLarge:     {http.StatusRequestEntityTooLarge, ""},
	ErrCodeRateLimited:         {http.StatusTooManyRequests, ""},
	ErrCodeNotFound:            {http.StatusNotFound, "NOT_FOUND"},
	ErrCodeAlreadyExists:       {http.StatusConflict, "ALREADY_EXISTS"},
	ErrCodeConcurrencyConflict: {http.StatusConflict, "CONCURRENCY_CONFLICT"},
	ErrCodeInvalidState:        {http.StatusUnprocessableEntity, "INVALID_STATE"},
	ErrCodeRulesUnavailable:    {http.StatusServiceUnavailable, "RULES_UNAVAILABLE"},
	ErrCodeStorageUnavailable:  {http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE"},
	ErrCodeUploadURLFailed:     {http.StatusBadGateway, "UPLOAD_URL_FAILED"},
}

// fromBare is envelopeCodes keyed by bare domain code.
var fromBare = func() map[string]string {
	m := make(map[string]string, len(envelopeCodes))
	for code, info := range envelopeCodes {
		if info.bare != "" {
			m[info.bare] = code
		}
	}
	return m
}()

// GetHTTPStatus returns the HTTP status for an envelope code. Field level
// codes (INVALID_*, ERR_IMPORT_*, DISALLOWED_*) are client errors, ALREADY_*
// state clashes are conflicts, and anything unrecognised is a 500.
func GetHTTPStatus(code string) int {
	if info, ok := envelopeCodes[code]; ok {
		return info.status
	}
	switch {
	case strings.HasPrefix(code, "INVALID_"),
		strings.HasPrefix(code, "ERR_IMPORT_"),
		strings.HasPrefix(code, "DISALLOWED_"):
		return http.StatusBadRequest
	case strings.HasPrefix(code, "ALREADY_"):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// NormalizeErrorCode maps a bare domain code to its envelope code. Other
// codes, field level ones included, pass through unchanged.
func NormalizeErrorCode(code string) string {
	if mapped, ok := fromBare[code]; ok {
		return mapped
	}
	return code
}
