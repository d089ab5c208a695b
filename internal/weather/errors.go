package weather

import "errors"

var (
	// ErrBadRequest is returned for a missing or empty city.
	ErrBadRequest = errors.New("bad request")
	// ErrCityNotFound is returned when the provider has no match for the query.
	ErrCityNotFound = errors.New("city not found")
	// ErrInvalidCredential is returned when the provider rejects the API key.
	ErrInvalidCredential = errors.New("invalid provider credential")
	// ErrUpstreamUnavailable covers transport failures, throttling and provider 5xx.
	ErrUpstreamUnavailable = errors.New("weather provider unavailable")
	// ErrNotSupported is returned when no configured provider offers an operation.
	ErrNotSupported = errors.New("operation not supported by provider")
)
