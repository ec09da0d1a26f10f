package adapter

import "errors"

// Sentinel errors returned by [RemoteStore] implementations. HTTP status
// codes are mapped onto them by mapHTTPError.
var (
	ErrNotFound            = errors.New("record not found")
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("client unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrConflict            = errors.New("conflict")
	ErrUnprocessable       = errors.New("unprocessable record")
	ErrTooManyRequests     = errors.New("too many requests")
	ErrInternalServerError = errors.New("internal server error")
	ErrBadGateway          = errors.New("bad gateway")
	ErrServiceUnavailable  = errors.New("service unavailable")
	ErrUnexpectedStatus    = errors.New("unexpected response status")

	// ErrTransport wraps failures below HTTP: DNS, refused connections,
	// timeouts and cancelled contexts.
	ErrTransport = errors.New("transport failure")

	// ErrMalformedResponse is returned when a 2xx body cannot be decoded.
	ErrMalformedResponse = errors.New("malformed response")
)
