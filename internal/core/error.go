package core

import (
	"errors"
	"fmt"
)

// Error codes
const (
	ErrCodeMalformedPosition = "MALFORMED_POSITION"
	ErrCodeOutOfRange        = "OUT_OF_RANGE"
	ErrCodeIllegalReplayMove = "ILLEGAL_REPLAY_MOVE"
	ErrCodeTransport         = "TRANSPORT"
	ErrCodeInvalidPayload    = "INVALID_PAYLOAD"
)

var (
	ErrMalformedPosition = errors.New("malformed position")
	ErrOutOfRange        = errors.New("index out of range")
	ErrIllegalReplayMove = errors.New("this game record is corrupted")
	ErrTransport         = errors.New("request failed")
	ErrInvalidPayload    = errors.New("invalid response payload")
)

// MalformedPositionError reports position text that could not be decoded.
type MalformedPositionError struct {
	Text   string
	Reason string
}

func (e *MalformedPositionError) Error() string {
	return fmt.Sprintf("%s %q: %s", ErrMalformedPosition, e.Text, e.Reason)
}

func (e *MalformedPositionError) Unwrap() error { return ErrMalformedPosition }

// OutOfRangeError reports a seek outside [Min, Max].
type OutOfRangeError struct {
	Index int
	Min   int
	Max   int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s: %d not in [%d, %d]", ErrOutOfRange, e.Index, e.Min, e.Max)
}

func (e *OutOfRangeError) Unwrap() error { return ErrOutOfRange }

// IllegalReplayMoveError means a stored move did not apply to its own
// pre-move position. The game record is unusable.
type IllegalReplayMoveError struct {
	GameID string
	Index  int
	SAN    string
	Cause  error
}

func (e *IllegalReplayMoveError) Error() string {
	msg := fmt.Sprintf("%s: game %s ply %d (%s)", ErrIllegalReplayMove, e.GameID, e.Index, e.SAN)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *IllegalReplayMoveError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrIllegalReplayMove}
	}
	return []error{ErrIllegalReplayMove, e.Cause}
}

// TransportError is a failed call to the search or game API. The same
// request may be issued again.
type TransportError struct {
	Method     string
	Path       string
	StatusCode int // 0 when no response was received
	Code       string
	Details    string
	Cause      error
}

func (e *TransportError) Error() string {
	msg := fmt.Sprintf("%s: %s %s", ErrTransport, e.Method, e.Path)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" [%d]", e.StatusCode)
	}
	if e.Details != "" {
		msg += ": " + e.Details
	} else if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *TransportError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrTransport}
	}
	return []error{ErrTransport, e.Cause}
}

// Retryable is true for every transport failure except client-side 4xx responses.
func (e *TransportError) Retryable() bool {
	return e.StatusCode == 0 || e.StatusCode >= 500 || e.StatusCode == 429
}

// ErrorResponse is the error body returned by the API.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}
