package transport

import "fmt"

// ValidationError is a 4xx rejection carrying a server-provided message.
// The session is left untouched; the message is meant for the UI verbatim.
type ValidationError struct {
	StatusCode int
	Message    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("request rejected (%d): %s", e.StatusCode, e.Message)
}

// PendingApprovalError marks a login or registration that succeeded but is
// waiting for an administrator. It is not a failure; callers translate it
// into a pending-approval outcome.
type PendingApprovalError struct {
	Message string
}

func (e *PendingApprovalError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "account pending approval"
}
