package types

import "errors"

// Domain specific errors shared across services and handlers.
var (
	ErrNotFound        = errors.New("requested item not found")
	ErrCityNotFound    = errors.New("city not found in catalog")
	ErrBadRequest      = errors.New("bad request")
	ErrUnavailable     = errors.New("upstream provider unavailable")
	ErrNotConfigured   = errors.New("provider not configured")
	ErrPlanExpired     = errors.New("trip plan expired or never existed")
	ErrInvalidStrategy = errors.New("unknown route strategy")
)
