package signup

import "errors"

var (
	// ErrInvalidEmail is returned when the field fails the email shape check.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrInFlight is returned when a submission starts while another is outstanding.
	ErrInFlight = errors.New("submission already in flight")
)

// FriendlyError carries the client-facing code and message for a failed
// submission while keeping the cause for logs.
type FriendlyError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *FriendlyError) Error() string {
	return e.Message
}

func (e *FriendlyError) Unwrap() error { return e.Cause }

func dispatchFailed(cause error) error {
	return &FriendlyError{Code: "DISPATCH_FAILED", Message: MessageError, Cause: cause}
}
