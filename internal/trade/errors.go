package trade

import "fmt"

type ValidationReason string

const (
	ReasonInvalidSide           ValidationReason = "invalid_side"
	ReasonInvalidQuantity       ValidationReason = "invalid_quantity"
	ReasonMissingOrInvalidPrice ValidationReason = "missing_or_invalid_price"
	ReasonEmptySymbol           ValidationReason = "empty_symbol"
)

// ValidationError reports a request rejected before any network call.
type ValidationError struct {
	Reason  ValidationReason
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid order: %s", e.Message)
}

// ConfigurationError reports missing or unusable credentials, or a client
// construction failure. Always fatal to the invocation.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// RejectedError reports that the venue rejected the order contents,
// in dry-run or live mode. Message carries the venue's text verbatim.
type RejectedError struct {
	Code    int64
	Message string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("order rejected by venue: %s", e.Message)
}

// VenueError reports a transport, auth or rate-limit failure talking to the
// venue. Never retried here; retry policy belongs to the caller.
type VenueError struct {
	StatusCode int
	Code       int64
	Message    string
	Err        error
}

func (e *VenueError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("venue communication error: %s", e.Message)
	}
	return fmt.Sprintf("venue communication error: %v", e.Err)
}

func (e *VenueError) Unwrap() error {
	return e.Err
}

// UnexpectedError wraps any failure not recognized as one of the categories
// above, preserving the original message.
type UnexpectedError struct {
	Err error
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("unexpected error: %v", e.Err)
}

func (e *UnexpectedError) Unwrap() error {
	return e.Err
}
