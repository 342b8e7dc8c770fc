package metadata

import "errors"

var (
	// ErrNotFound reports that a per-row lookup matched nothing. Callers
	// treat it as "unknown at this time", never as a failure.
	ErrNotFound = errors.New("metadata: not found")

	// ErrInvalidTimeSpec reports a reference time that does not carry
	// exactly one of a structured date or an epoch.
	ErrInvalidTimeSpec = errors.New("metadata: invalid time specification")

	// ErrUnknownField reports a requested field that is not a column of
	// the configuration table.
	ErrUnknownField = errors.New("metadata: unknown field")

	// ErrUnknownTable reports a configuration table that is not registered.
	ErrUnknownTable = errors.New("metadata: unknown configuration table")
)
