// Copyright 2024 Cloudbase Solutions SRL

package params

import "fmt"

// ValidationError is returned when a command line value fails
// validation. No request is made once one of these is raised.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (v *ValidationError) Error() string {
	if v.Value == "" {
		return fmt.Sprintf("%s: %s", v.Field, v.Reason)
	}
	return fmt.Sprintf("%s: %s: %q", v.Field, v.Reason, v.Value)
}

func newValidationError(field, value, reason string) error {
	return &ValidationError{
		Field:  field,
		Value:  value,
		Reason: reason,
	}
}
