package appointment

import "errors"

var (
	// ErrNotFound is returned when no appointment exists for the given id.
	ErrNotFound = errors.New("appointment not found")
	// ErrInvalid wraps every validation failure so handlers can map the
	// whole class to a 400 without inspecting messages.
	ErrInvalid = errors.New("invalid appointment")
	// ErrPatientNotFound is returned when the referenced patient does not
	// exist, so a create never produces an orphaned record.
	ErrPatientNotFound = errors.New("patient not found")
)
