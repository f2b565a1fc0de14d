package apperr

import "errors"

// ErrInvalid is returned when the input fails domain validation.
var ErrInvalid = errors.New("invalid input")

// ErrNotFound indicates that the requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrPersistence indicates that an order could not be saved (HTTP 500).
var ErrPersistence = errors.New("persistence failure")

// ErrProviderTransport indicates a network or auth failure talking to the courier provider.
var ErrProviderTransport = errors.New("courier provider unavailable")

// ErrProviderRejected indicates the courier provider answered but declined the request.
var ErrProviderRejected = errors.New("courier provider rejected request")
