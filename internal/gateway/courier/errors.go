package courier

import (
	"errors"
	"fmt"

	"marketplace-delivery/internal/apperr"
)

// ErrorKind classifies a CourierError.
type ErrorKind int

// Error kinds.
const (
	KindTransport ErrorKind = iota + 1
	KindRejected
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// CourierError is the only error type returned by Client.
type CourierError struct {
	Op         string
	Kind       ErrorKind
	Reason     string
	RawPayload []byte
	Err        error
}

func (e *CourierError) Error() string {
	msg := fmt.Sprintf("courier %s: %s: %s", e.Op, e.Kind, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the apperr sentinel of the kind and the underlying cause.
func (e *CourierError) Unwrap() []error {
	out := make([]error, 0, 2)
	switch e.Kind {
	case KindTransport:
		out = append(out, apperr.ErrProviderTransport)
	case KindRejected:
		out = append(out, apperr.ErrProviderRejected)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

func transportErr(op, reason string, raw []byte, err error) *CourierError {
	return &CourierError{Op: op, Kind: KindTransport, Reason: reason, RawPayload: raw, Err: err}
}

func rejectedErr(op, reason string, raw []byte) *CourierError {
	return &CourierError{Op: op, Kind: KindRejected, Reason: reason, RawPayload: raw}
}

// AsCourierError extracts a *CourierError from err.
func AsCourierError(err error) (*CourierError, bool) {
	var ce *CourierError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
