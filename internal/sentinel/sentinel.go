package sentinel

import "errors"

// Sentinel dependency errors. Stores and other dependencies return these
// (optionally wrapped) so services can translate them into domain errors
// exactly once.
var (
	ErrNotFound    = errors.New("not found")
	ErrDuplicate   = errors.New("already exists")
	ErrUnavailable = errors.New("unavailable")
)
