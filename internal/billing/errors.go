package billing

import "errors"

var (
	// ErrPersistenceUnavailable is returned when the underlying key-value
	// store fails to read or write. A save that returns it did not happen.
	ErrPersistenceUnavailable = errors.New("billing: persistence unavailable")

	// ErrMalformedData marks a stored value that could not be decoded.
	// It is recovered where it occurs (the value is treated as empty) and is
	// only used for logging.
	ErrMalformedData = errors.New("billing: malformed persisted data")

	// ErrMissingRenderTarget is returned by exporters when there is nothing
	// to render for the requested document.
	ErrMissingRenderTarget = errors.New("billing: render target not found")

	// ErrInvalidKind is returned for a document kind other than invoice or
	// quotation.
	ErrInvalidKind = errors.New("billing: invalid document kind")
)
