package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeUnauthorized       ErrorCode = "COMMON_003"
	ErrCodeForbidden          ErrorCode = "COMMON_004"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
)

// Registry client error codes
const (
	ErrCodeRegistryUnavailable ErrorCode = "REG_001"
	ErrCodeRegistryRateLimited ErrorCode = "REG_002"
	ErrCodeRegistryParseError  ErrorCode = "REG_003"
	ErrCodeRegistryTimeout     ErrorCode = "REG_004"
	ErrCodeRecordNotFound      ErrorCode = "REG_005"
)

// Detection error codes
const (
	ErrCodeDetectionFailed       ErrorCode = "DET_001"
	ErrCodeUnsupportedItemType   ErrorCode = "DET_002"
	ErrCodeEmptyKeywords         ErrorCode = "DET_003"
	ErrCodeScanSourceUnavailable ErrorCode = "DET_004"
)

// Monitoring / scheduling error codes
const (
	ErrCodeItemNotFound    ErrorCode = "MON_001"
	ErrCodeItemNotActive   ErrorCode = "MON_002"
	ErrCodeCheckInProgress ErrorCode = "MON_003"
	ErrCodeAlertNotFound   ErrorCode = "MON_004"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,

	ErrCodeRegistryUnavailable: http.StatusServiceUnavailable,
	ErrCodeRegistryRateLimited: http.StatusTooManyRequests,
	ErrCodeRegistryParseError:  http.StatusBadGateway,
	ErrCodeRegistryTimeout:     http.StatusGatewayTimeout,
	ErrCodeRecordNotFound:      http.StatusNotFound,

	ErrCodeDetectionFailed:       http.StatusInternalServerError,
	ErrCodeUnsupportedItemType:   http.StatusBadRequest,
	ErrCodeEmptyKeywords:         http.StatusUnprocessableEntity,
	ErrCodeScanSourceUnavailable: http.StatusServiceUnavailable,

	ErrCodeItemNotFound:    http.StatusNotFound,
	ErrCodeItemNotActive:   http.StatusConflict,
	ErrCodeCheckInProgress: http.StatusConflict,
	ErrCodeAlertNotFound:   http.StatusNotFound,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeUnauthorized:       "unauthorized",
	ErrCodeForbidden:          "forbidden",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",

	ErrCodeRegistryUnavailable: "trademark registry unavailable",
	ErrCodeRegistryRateLimited: "trademark registry rate limited",
	ErrCodeRegistryParseError:  "failed to parse registry response",
	ErrCodeRegistryTimeout:     "registry request timed out",
	ErrCodeRecordNotFound:      "trademark record not found",

	ErrCodeDetectionFailed:       "conflict detection failed",
	ErrCodeUnsupportedItemType:   "unsupported monitoring item type",
	ErrCodeEmptyKeywords:         "monitoring item has no keywords",
	ErrCodeScanSourceUnavailable: "scan source unavailable",

	ErrCodeItemNotFound:    "monitoring item not found",
	ErrCodeItemNotActive:   "monitoring item is not active",
	ErrCodeCheckInProgress: "a check is already in progress",
	ErrCodeAlertNotFound:   "conflict alert not found",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
