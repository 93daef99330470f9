package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
// The prefix before the underscore names the module that owns the code.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
	ErrCodeFeatureDisabled    ErrorCode = "COMMON_015"
	ErrCodeStorageError       ErrorCode = "COMMON_017"
	ErrCodeMessageQueueError  ErrorCode = "COMMON_018"
)

// Trajectory backend Error Codes
const (
	ErrCodeBackendUnavailable   ErrorCode = "TRJ_001"
	ErrCodeBackendStatus        ErrorCode = "TRJ_002"
	ErrCodeMalformedPayload     ErrorCode = "TRJ_003"
	ErrCodeInvalidTraclusParams ErrorCode = "TRJ_004"
	ErrCodeInvalidAnnealParams  ErrorCode = "TRJ_005"
	ErrCodeLayerKindUnknown     ErrorCode = "TRJ_006"
)

// Render Error Codes
const (
	ErrCodeRenderFailed            ErrorCode = "RND_001"
	ErrCodeRenderFormatUnsupported ErrorCode = "RND_002"
	ErrCodeSnapshotExportFailed    ErrorCode = "RND_003"
)

// Aliases used by call sites that read better with a short name.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict
	CodeRateLimit    = ErrCodeTooManyRequests
	CodeOK           = ErrorCode("OK")
	CodeUnknown      = ErrorCode("")
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,
	ErrCodeFeatureDisabled:    http.StatusForbidden,
	ErrCodeStorageError:       http.StatusInternalServerError,
	ErrCodeMessageQueueError:  http.StatusInternalServerError,

	ErrCodeBackendUnavailable:   http.StatusServiceUnavailable,
	ErrCodeBackendStatus:        http.StatusBadGateway,
	ErrCodeMalformedPayload:     http.StatusBadGateway,
	ErrCodeInvalidTraclusParams: http.StatusBadRequest,
	ErrCodeInvalidAnnealParams:  http.StatusBadRequest,
	ErrCodeLayerKindUnknown:     http.StatusNotFound,

	ErrCodeRenderFailed:            http.StatusInternalServerError,
	ErrCodeRenderFormatUnsupported: http.StatusBadRequest,
	ErrCodeSnapshotExportFailed:    http.StatusInternalServerError,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",
	ErrCodeFeatureDisabled:    "feature disabled",
	ErrCodeStorageError:       "object storage error",
	ErrCodeMessageQueueError:  "message queue error",

	ErrCodeBackendUnavailable:   "trajectory backend unavailable",
	ErrCodeBackendStatus:        "trajectory backend returned an error",
	ErrCodeMalformedPayload:     "malformed trajectory payload",
	ErrCodeInvalidTraclusParams: "invalid TRACLUS parameters",
	ErrCodeInvalidAnnealParams:  "invalid simulated annealing parameters",
	ErrCodeLayerKindUnknown:     "unknown layer kind",

	ErrCodeRenderFailed:            "layer rendering failed",
	ErrCodeRenderFormatUnsupported: "unsupported render format",
	ErrCodeSnapshotExportFailed:    "snapshot export failed",
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

//Personal.AI order the ending
