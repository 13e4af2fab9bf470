package errors

// ErrorCode identifies a class of application failure.
type ErrorCode int32

const (
	ErrorCode_HTTP_OK             ErrorCode = 0
	ErrorCode_INTERNAL            ErrorCode = 1
	ErrorCode_INVALID_INPUT       ErrorCode = 2
	ErrorCode_NOT_FOUND           ErrorCode = 3
	ErrorCode_SERVICE_UNAVAILABLE ErrorCode = 4
	ErrorCode_MALFORMED_RESPONSE  ErrorCode = 5
	ErrorCode_STORAGE             ErrorCode = 6
	ErrorCode_MISSING_CREDENTIAL  ErrorCode = 7
)

// String returns the canonical name of the error code.
func (c ErrorCode) String() string {
	switch c {
	case ErrorCode_HTTP_OK:
		return "OK"
	case ErrorCode_INTERNAL:
		return "INTERNAL"
	case ErrorCode_INVALID_INPUT:
		return "INVALID_INPUT"
	case ErrorCode_NOT_FOUND:
		return "NOT_FOUND"
	case ErrorCode_SERVICE_UNAVAILABLE:
		return "SERVICE_UNAVAILABLE"
	case ErrorCode_MALFORMED_RESPONSE:
		return "MALFORMED_RESPONSE"
	case ErrorCode_STORAGE:
		return "STORAGE"
	case ErrorCode_MISSING_CREDENTIAL:
		return "MISSING_CREDENTIAL"
	default:
		return "UNKNOWN"
	}
}
