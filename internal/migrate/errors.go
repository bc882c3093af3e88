package migrate

import "fmt"

// MalformedRecordError is a legacy variable whose value cannot be decoded
// into a LegacyRecord. It aborts the run like any other unexpected error.
type MalformedRecordError struct {
	Variable string
	Err      error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed legacy record %s: %v", e.Variable, e.Err)
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}
