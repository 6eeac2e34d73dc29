package client

import (
	"errors"
	"fmt"
)

// ErrFrameListMismatch means get_frame_ids and get_frame_names disagreed
var ErrFrameListMismatch = errors.New("frame id and frame name lists differ in length")

// ValidationError is a local precondition failure, raised before any request
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NetworkError covers transport failures and responses that cannot be read
type NetworkError struct {
	Op  string
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: request to %s failed: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ServerError means the backend answered but did not report success
type ServerError struct {
	Op         string
	HTTPStatus int // set when the HTTP status itself was not 2xx
	Status     int // envelope status field
	Msg        string
	Err        error
}

func (e *ServerError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.HTTPStatus != 0:
		return fmt.Sprintf("%s: backend returned HTTP %d: %s", e.Op, e.HTTPStatus, e.Msg)
	default:
		return fmt.Sprintf("%s: backend status %d: %s", e.Op, e.Status, e.Msg)
	}
}

func (e *ServerError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is a local precondition failure
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsNetwork reports whether err came from the transport
func IsNetwork(err error) bool {
	var n *NetworkError
	return errors.As(err, &n)
}

// IsServer reports whether the backend rejected the call
func IsServer(err error) bool {
	var s *ServerError
	return errors.As(err, &s)
}
