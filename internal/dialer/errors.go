package dialer

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/sells-group/outbound-dialer/pkg/elevenlabs"
	"github.com/sells-group/outbound-dialer/pkg/twilio"
)

// Kind classifies why a lead's call attempt did not succeed.
type Kind int

const (
	// KindValidation covers bad input: a malformed number or a missing session.
	KindValidation Kind = iota + 1
	// KindTransport covers provider and carrier request failures.
	KindTransport
	// KindTimeout means a provider request exceeded its deadline.
	KindTimeout
	// KindUnresolved means polling ended without a terminal call status.
	KindUnresolved
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindTransport:
		return "transport"
	case KindTimeout:
		return "timeout"
	case KindUnresolved:
		return "unresolved"
	}
	return "unknown"
}

// CallError is the error type for every per-lead failure. StatusCode and
// Body are set for HTTP-level transport failures.
type CallError struct {
	Kind       Kind
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *CallError) Error() string {
	msg := fmt.Sprintf("dialer: %s: %s", e.Op, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CallError) Unwrap() error { return e.Err }

// KindOf reports the Kind carried by err, if any.
func KindOf(err error) (Kind, bool) {
	var ce *CallError
	if errors.As(err, &ce) {
		return ce.Kind, true
	}
	return 0, false
}

func validationError(op string, err error) *CallError {
	return &CallError{Kind: KindValidation, Op: op, Err: err}
}

// classify converts a client error into a CallError for op.
func classify(op string, err error) *CallError {
	var ce *CallError
	if errors.As(err, &ce) {
		return ce
	}

	var elErr *elevenlabs.APIError
	if errors.As(err, &elErr) {
		return &CallError{Kind: KindTransport, Op: op, StatusCode: elErr.StatusCode, Body: elErr.Body, Err: err}
	}
	var twErr *twilio.APIError
	if errors.As(err, &twErr) {
		return &CallError{Kind: KindTransport, Op: op, StatusCode: twErr.StatusCode, Body: twErr.Body, Err: err}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &CallError{Kind: KindTimeout, Op: op, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &CallError{Kind: KindTimeout, Op: op, Err: err}
	}

	return &CallError{Kind: KindTransport, Op: op, Err: err}
}
