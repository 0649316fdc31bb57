package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInsufficientData     ErrorCode = 102
	ErrCodeInvalidPeriod        ErrorCode = 103
	ErrCodeMissingParameter     ErrorCode = 104
	ErrCodeNonMonotonicSeries   ErrorCode = 105
	ErrCodeNonPositiveRate      ErrorCode = 106
	ErrCodeInvalidVersion       ErrorCode = 107

	// Rate source errors (200-299)
	ErrCodeSourceUnavailable  ErrorCode = 200
	ErrCodeAllSourcesFailed   ErrorCode = 201
	ErrCodeSourceParseFailed  ErrorCode = 202
	ErrCodeSourceRateMissing  ErrorCode = 203
	ErrCodeHistoryUnsupported ErrorCode = 204

	// Cache errors (300-399)
	ErrCodeCacheMiss            ErrorCode = 300
	ErrCodeCacheCorrupted       ErrorCode = 301
	ErrCodeCacheVersionMismatch ErrorCode = 302
	ErrCodeCacheWriteFailed     ErrorCode = 303

	// History store errors (400-499)
	ErrCodeHistoryOpenFailed  ErrorCode = 400
	ErrCodeHistoryQueryFailed ErrorCode = 401
	ErrCodeHistoryWriteFailed ErrorCode = 402
	ErrCodeHistoryNoData      ErrorCode = 403

	// Backtest errors (500-599)
	ErrCodeBacktestConfigError ErrorCode = 500
	ErrCodeBacktestNoSeries    ErrorCode = 501
)
