package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidStay    = errors.New("check-out must be at least one night after check-in")
	ErrInvalidRooms   = errors.New("rooms must be at least 1")
	ErrItemNotFound   = errors.New("cart item not found")
	ErrUnknownFilter  = errors.New("unknown filter")
	ErrNoRefreshToken = errors.New("no refresh token stored")
	ErrInvalidInput   = errors.New("invalid input")
	ErrSessionExpired = errors.New("session expired")
)

// APIError is a failed backend call. The API client has already reported it
// to the session's Notifier by the time a caller sees it.
type APIError struct {
	Status  int    // 0 for transport failures
	Message string // server message or a generic one
	Code    string // envelope "error" field, if any
	Timeout bool
	Expired bool // 401 after the refresh token was rejected; tokens are gone
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("api: %s", e.Message)
	}
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

func (e *APIError) Unauthorized() bool { return e.Status == 401 }

func (e *APIError) Unwrap() error {
	if e.Expired {
		return ErrSessionExpired
	}
	return nil
}

// IsReported tells callers whether the error already produced a notice.
func IsReported(err error) bool {
	var ae *APIError
	return errors.As(err, &ae)
}
