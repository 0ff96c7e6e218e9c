package steer

import "errors"

// Sentinel errors for the invariant violations §7 says must never panic:
// callers (internal/rpcbus) check these and log a warning, dropping the
// offending input, instead of letting a malformed event take the process
// down.
var (
	// ErrUnknownNode is returned when a station event names a node that
	// has not been registered via NodeRegistry.GetOrCreate.
	ErrUnknownNode = errors.New("steer: unknown node")

	// ErrDuplicateObservation names a duplicate station/node observation.
	// Nothing in this module returns it: StationRegistry.GetOrCreateObservation
	// never errors on a duplicate, it simply returns the existing
	// Observation.
	ErrDuplicateObservation = errors.New("steer: duplicate station/node observation")
)
