package sig

type ErrorCode string

const (
	ErrorCodeMissingID          ErrorCode = "missing_id"
	ErrorCodeMissingAttribution ErrorCode = "missing_attribution"
	ErrorCodeEmptyKeyList       ErrorCode = "empty_key_list"
	ErrorCodeInvalidMessage     ErrorCode = "invalid_message"
)

// ValidationError reports a message that cannot be signed: a missing
// identity, a missing actor attribution, or an empty key list. It is
// always raised before any I/O.
type ValidationError struct {
	Code    ErrorCode
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
