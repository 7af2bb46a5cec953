package domain

import "fmt"

// ValidationError reports a posting missing a required field at the
// ingestion boundary. The record is skipped and reported; the run continues.
type ValidationError struct {
	SourceID string
	Field    string
}

func (e *ValidationError) Error() string {
	if e.SourceID == "" {
		return fmt.Sprintf("posting missing required field %q", e.Field)
	}
	return fmt.Sprintf("posting %s missing required field %q", e.SourceID, e.Field)
}

// ConfigurationError reports a structurally invalid taxonomy. Fatal at load
// time, before any posting is processed.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "taxonomy configuration: " + e.Reason
}

// StateLoadError reports a failure to load the persistent seen-set. Fatal:
// treating every posting as new would mass-insert duplicates.
type StateLoadError struct {
	Err error
}

func (e *StateLoadError) Error() string {
	return "load seen state: " + e.Err.Error()
}

func (e *StateLoadError) Unwrap() error {
	return e.Err
}
