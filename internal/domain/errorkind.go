package domain

import (
	"strings"
)

// ErrorKind identifies one employment-period rule violation. Kinds are
// stable symbolic values: clients and tests match on them, so they never
// carry free text.
type ErrorKind string

const (
	MissingStartYear    ErrorKind = "MissingStartYear"
	StartYearOutOfRange ErrorKind = "StartYearOutOfRange"
	MissingEndYear      ErrorKind = "MissingEndYear"
	EndYearOutOfRange   ErrorKind = "EndYearOutOfRange"
	StartAfterEnd       ErrorKind = "StartAfterEnd"
)

// FieldName returns the submission field a kind belongs to.
func (k ErrorKind) FieldName() string {
	switch k {
	case MissingStartYear, StartYearOutOfRange:
		return "employment_start_year"
	default:
		return "employment_end_year"
	}
}

// ValidationError carries the full set of rule violations found in one
// validation pass. The kinds keep the order the rules ran in.
type ValidationError struct {
	Kinds []ErrorKind
}

// NewValidationError builds a ValidationError from the collected kinds.
func NewValidationError(kinds []ErrorKind) *ValidationError {
	return &ValidationError{Kinds: kinds}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Kinds))
	for i, k := range e.Kinds {
		parts[i] = string(k)
	}
	return "employment period validation failed: " + strings.Join(parts, ", ")
}

// Fields maps each violated field to its error kind for transport rendering.
// When two kinds land on the same field (an out-of-range end year that is
// also before the start year), the kind from the earlier rule wins; the full
// ordered list stays available in Kinds.
func (e *ValidationError) Fields() map[string]string {
	fields := make(map[string]string, len(e.Kinds))
	for _, k := range e.Kinds {
		name := k.FieldName()
		if _, taken := fields[name]; !taken {
			fields[name] = string(k)
		}
	}
	return fields
}
