package prescription

import "errors"

var (
	ErrNotFound        = errors.New("prescription not found")
	ErrInvalid         = errors.New("invalid prescription")
	ErrPatientNotFound = errors.New("patient not found")
)
