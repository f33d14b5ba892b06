package errors

import "fmt"

var (
	ErrUnrecognizedFormat = fmt.Errorf("unrecognized export format")
	ErrUnknownFormat      = fmt.Errorf("unknown export format preset")
	ErrEmptyUpload        = fmt.Errorf("uploaded file is empty")
	ErrUploadTooLarge     = fmt.Errorf("uploaded file exceeds the size limit")
	ErrUnsupportedUpload  = fmt.Errorf("uploaded file is not a text export")
	ErrSessionNotFound    = fmt.Errorf("session not found")
	ErrNoDataset          = fmt.Errorf("session has no parsed export")
	ErrEmptyWords         = fmt.Errorf("no words have been found")
)

// ParseError aborts the whole upload: nothing in the input looked like an export.
type ParseError struct {
	Reason string
	Lines  int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s (%d lines read)", e.Reason, e.Lines)
}

func (e *ParseError) Unwrap() error {
	return ErrUnrecognizedFormat
}

// MalformedTimestampError describes one line whose stamp matched the export
// pattern but could not be turned into a time. The line is skipped.
type MalformedTimestampError struct {
	Line  int
	Stamp string
	Err   error
}

func (e *MalformedTimestampError) Error() string {
	return fmt.Sprintf("line %d: malformed timestamp %q: %v", e.Line, e.Stamp, e.Err)
}

func (e *MalformedTimestampError) Unwrap() error {
	return e.Err
}
