package signup

import (
	"context"
	"strings"
)

// Status tracks one submission attempt.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusSubmitting Status = "submitting"
	StatusSuccess    Status = "success"
	StatusError      Status = "error"
)

// User-visible copy shared by every surface.
const (
	MessageSuccess = "Thanks for signing up! We'll keep you posted."
	MessageError   = "Oops! Something went wrong. Please try again."
	MessageInvalid = "Please enter a valid email address."

	LabelSubmit     = "Notify me"
	LabelSubmitting = "Submitting..."
	Placeholder     = "Enter your email"
)

// Notifier relays one captured email to the collection endpoint.
type Notifier interface {
	Notify(ctx context.Context, email string) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, email string) error

func (f NotifierFunc) Notify(ctx context.Context, email string) error { return f(ctx, email) }

// Form is the transient signup state owned by one visitor.
//
// The zero value is an idle, empty form.
type Form struct {
	Email  string
	Status Status
}

// CurrentStatus reports the status, treating the zero value as idle.
func (f Form) CurrentStatus() Status {
	if f.Status == "" {
		return StatusIdle
	}
	return f.Status
}

// SetEmail records input. It never touches the status.
func (f *Form) SetEmail(email string) {
	f.Email = email
}

// Submitting reports whether the submit control is disabled.
func (f Form) Submitting() bool {
	return f.Status == StatusSubmitting
}

// Begin starts an attempt: it rejects a second attempt while one is in
// flight, checks the email shape, and moves to submitting. It returns the
// normalized email to dispatch.
func (f *Form) Begin() (string, error) {
	if f.Submitting() {
		return "", ErrInFlight
	}

	email := strings.TrimSpace(f.Email)
	if !ValidEmail(email) {
		return "", ErrInvalidEmail
	}

	f.Status = StatusSubmitting
	return email, nil
}

// Finish records the dispatch outcome. Success clears the field; an error
// leaves it populated so the visitor can retry.
func (f *Form) Finish(err error) {
	if err != nil {
		f.Status = StatusError
		return
	}
	f.Status = StatusSuccess
	f.Email = ""
}

// Submit runs one full attempt through n.
//
// Success only means the notifier returned no error; with a fire-and-forget
// notifier that is not proof of receipt.
func (f *Form) Submit(ctx context.Context, n Notifier) error {
	email, err := f.Begin()
	if err != nil {
		return err
	}

	err = n.Notify(ctx, email)
	f.Finish(err)
	if err != nil {
		return dispatchFailed(err)
	}
	return nil
}

// Message is the status line shown under the form, if any.
func (f Form) Message() string {
	switch f.Status {
	case StatusSuccess:
		return MessageSuccess
	case StatusError:
		return MessageError
	default:
		return ""
	}
}

// ButtonLabel is the submit control's label for the current status.
func (f Form) ButtonLabel() string {
	if f.Submitting() {
		return LabelSubmitting
	}
	return LabelSubmit
}
