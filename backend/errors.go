package backend

import (
	"errors"
	"fmt"
	"strings"
)

// Failure kinds. Every error a command returns matches exactly one of
// these with errors.Is.
var (
	ErrTransport     = errors.New("transport failure")
	ErrAuthorization = errors.New("authorization failure")
	ErrServer        = errors.New("server failure")
	ErrEmptyResult   = errors.New("empty result")
)

// ErrInvalidRequest is returned before any network call is made.
var ErrInvalidRequest = errors.New("invalid request")

// RequestError describes a failed backend call.
type RequestError struct {
	Op     string // e.g. "close position AAPL"
	Kind   error
	Status int // HTTP status, 0 when no response arrived
	Body   string
	Err    error
}

func (e *RequestError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())
	if e.Status != 0 {
		fmt.Fprintf(&b, " (http %d)", e.Status)
	}
	if e.Body != "" {
		b.WriteString(": ")
		b.WriteString(e.Body)
	} else if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *RequestError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Kind returns the failure kind of err, or nil when err is not a backend
// failure.
func Kind(err error) error {
	for _, k := range []error{ErrTransport, ErrAuthorization, ErrServer, ErrEmptyResult, ErrInvalidRequest} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

func trimBody(b []byte) string {
	const n = 200
	s := strings.TrimSpace(string(b))
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
