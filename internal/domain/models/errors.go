package models

import "strings"

// ValidationError reports rejected input together with the offending fields.
type ValidationError struct {
	Err     error
	Details []string
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return e.Err.Error()
	}
	return e.Err.Error() + ": " + strings.Join(e.Details, "; ")
}

func (e *ValidationError) Unwrap() error { return e.Err }
