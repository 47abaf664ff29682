package engine

import "errors"

// Engine error taxonomy. All of these are returned as structured
// outcomes from Pipeline.Process, never thrown across the pipeline
// boundary.
var (
	// ErrValidation marks a malformed or out-of-range input record that
	// could not be degraded into a usable sample.
	ErrValidation = errors.New("validation rejected record")

	// ErrSensorArtifact marks a spike rejection. Recoverable: the
	// pipeline substitutes the last accepted values.
	ErrSensorArtifact = errors.New("sensor artifact detected")

	// ErrStaleness marks a suppressed emission after the silence window
	// elapsed with nothing trustworthy to emit. Self-healing on the
	// next valid sample.
	ErrStaleness = errors.New("stale stream, emission suppressed")

	// ErrConfiguration marks settings the calculator cannot work with,
	// such as a non-positive active intensity. Must be fixed by the
	// operator; no result is emitted.
	ErrConfiguration = errors.New("invalid settings configuration")
)
