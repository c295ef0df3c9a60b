package sentinel

import "errors"

// Sentinel errors for storage facts. Stores return these (optionally wrapped)
// and services translate them into domain errors.
//
//   - ErrNotFound: row does not exist or is not visible
//   - ErrDuplicate: a uniqueness constraint rejected the write
//   - ErrConflict: the row is referenced or in a state that blocks the write
//   - ErrInvalidState: the row is in the wrong lifecycle state
//   - ErrUnavailable: a backing service is temporarily unavailable
var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicate    = errors.New("duplicate")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
