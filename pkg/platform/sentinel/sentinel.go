package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores, sinks and rate limit
// backends return these (optionally wrapped) so the discovery service can
// translate them into domain errors or per-query outcomes.
//
//   - ErrNotFound: case, subject or run does not exist in the store
//   - ErrConflict: a write collided with an existing immutable record
//   - ErrInvalidState: run or query is in the wrong state for the transition
//   - ErrUnavailable: backing service temporarily unavailable
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
