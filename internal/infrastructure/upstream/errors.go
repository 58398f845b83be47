package upstream

import (
	"errors"
	"fmt"
	"strings"
)

var ErrNilClient = errors.New("nil upstream client")

// AuthError is terminal: the call was rejected after the single
// refresh-and-retry, or no refresh was possible.
type AuthError struct {
	Status int
	Cause  error
}

func (e *AuthError) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause != nil {
		return fmt.Sprintf("upstream authorization failed: status=%d: %v", e.Status, e.Cause)
	}
	return fmt.Sprintf("upstream authorization failed: status=%d", e.Status)
}

func (e *AuthError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// TransportError means no response was received. It is never retried here.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("upstream %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// APIError carries a non-2xx response other than an authorization failure.
type APIError struct {
	Status int
	Body   []byte
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("upstream responded status=%d body=%s", e.Status, strings.TrimSpace(string(e.Body)))
}

func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// IsTransport reports a call that got no response. An AuthError whose refresh
// failed on the network is still an auth failure, so the classes never
// overlap.
func IsTransport(err error) bool {
	if IsAuth(err) {
		return false
	}
	var te *TransportError
	return errors.As(err, &te)
}

// StatusOf returns the upstream status behind err, or 0 when there was none.
// An AuthError reports its own status even when the failed refresh carried
// another one.
func StatusOf(err error) int {
	var au *AuthError
	if errors.As(err, &au) {
		return au.Status
	}
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Status
	}
	return 0
}
