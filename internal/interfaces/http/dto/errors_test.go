package dto

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	cases := map[string]int{
		ErrCodeInternal:             http.StatusInternalServerError,
		ErrCodeInvalidJSON:          http.StatusBadRequest,
		ErrCodeValidation:           http.StatusBadRequest,
		ErrCodeNotFound:             http.StatusNotFound,
		ErrCodeAlreadyExists:        http.StatusConflict,
		ErrCodeConcurrencyConflict:  http.StatusConflict,
		ErrCodeInvalidState:         http.StatusUnprocessableEntity,
		ErrCodeRulesUnavailable:     http.StatusServiceUnavailable,
		ErrCodeStorageUnavailable:   http.StatusServiceUnavailable,
		ErrCodeUploadURLFailed:      http.StatusBadGateway,
		ErrCodePayloadTooLarge:      http.StatusRequestEntityTooLarge,
		ErrCodeRateLimited:          http.StatusTooManyRequests,
		"INVALID_PRICE":             http.StatusBadRequest,
		"INVALID_CONSTRAINT":        http.StatusBadRequest,
		"DISALLOWED_CONTENT_TYPE":   http.StatusBadRequest,
		"ERR_IMPORT_MISSING_HEADER": http.StatusBadRequest,
		"ALREADY_ACTIVE":            http.StatusConflict,
		"SOMETHING_ELSE":            http.StatusInternalServerError,
	}
	for code, status := range cases {
		assert.Equal(t, status, GetHTTPStatus(code), code)
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	assert.Equal(t, ErrCodeNotFound, NormalizeErrorCode("NOT_FOUND"))
	assert.Equal(t, ErrCodeRulesUnavailable, NormalizeErrorCode("RULES_UNAVAILABLE"))
	assert.Equal(t, ErrCodeConcurrencyConflict, NormalizeErrorCode("CONCURRENCY_CONFLICT"))
	assert.Equal(t, ErrCodeNotFound, NormalizeErrorCode(ErrCodeNotFound), "envelope codes are stable")
	assert.Equal(t, "INVALID_SKU", NormalizeErrorCode("INVALID_SKU"), "field codes reach the client")
}

func TestBareCodesMapToEnvelopeCodes(t *testing.T) {
	require.NotEmpty(t, fromBare)
	for bare, code := range fromBare {
		assert.True(t, strings.HasPrefix(code, "ERR_"), bare)
		_, known := envelopeCodes[code]
		assert.True(t, known, bare)
	}
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse("NOT_FOUND", "Resource not found")

	assert.False(t, resp.Success)
	assert.Nil(t, resp.Data)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
	assert.Equal(t, "Resource not found", resp.Error.Message)
	assert.NotZero(t, resp.Error.Timestamp)
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{
		{Field: "sku", Message: "is required"},
		{Field: "price", Message: "must be at least 0"},
	}

	resp := NewValidationErrorResponse("Validation failed", "req-789", details)

	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-789", resp.Error.RequestID)
	assert.Len(t, resp.Error.Details, 2)
	assert.Equal(t, "sku", resp.Error.Details[0].Field)
}

func TestNewErrorResponseWithHelp(t *testing.T) {
	resp := NewErrorResponseWithHelp(ErrCodeRulesUnavailable, "Rules down", "req-001", "retry later")

	require.NotNil(t, resp.Error)
	assert.Equal(t, "retry later", resp.Error.Help)
}

func TestErrorResponseJSON(t *testing.T) {
	resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "Item not found", "req-test-123")

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded Response
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.False(t, decoded.Success)
	require.NotNil(t, decoded.Error)
	assert.Equal(t, ErrCodeNotFound, decoded.Error.Code)
	assert.Equal(t, "req-test-123", decoded.Error.RequestID)
}

func TestErrorResponseTimestamp(t *testing.T) {
	before := time.Now()
	resp := NewErrorResponse(ErrCodeInternal, "Server error")
	after := time.Now()

	assert.False(t, resp.Error.Timestamp.Before(before))
	assert.False(t, resp.Error.Timestamp.After(after))
}

func TestNewSuccessResponseWithMetaPagination(t *testing.T) {
	tests := []struct {
		total         int64
		pageSize      int
		expectedPages int
		expectedSize  int
	}{
		{100, 10, 10, 10},
		{101, 10, 11, 10},
		{0, 10, 0, 10},
		{9, 10, 1, 10},
		{100, 0, 5, 20},
		{100, -1, 5, 20},
	}

	for _, tt := range tests {
		resp := NewSuccessResponseWithMeta([]string{}, tt.total, 1, tt.pageSize)
		require.NotNil(t, resp.Meta)
		assert.True(t, resp.Success)
		assert.Equal(t, tt.expectedPages, resp.Meta.TotalPages)
		assert.Equal(t, tt.expectedSize, resp.Meta.PageSize)
	}
}
