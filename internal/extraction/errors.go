package extraction

import "fmt"

// UnsupportedFormatError is returned for a file that is neither text, PDF nor DOCX when no
// model fallback is configured.
type UnsupportedFormatError struct {
	FileName string
	MIMEType string
}

func (e *UnsupportedFormatError) Error() string {
	if e.MIMEType != "" {
		return fmt.Sprintf("unsupported file format: %s (%s)", e.FileName, e.MIMEType)
	}
	return fmt.Sprintf("unsupported file format: %s", e.FileName)
}

// EmptyDocumentError is returned when a file yields no text.
type EmptyDocumentError struct {
	FileName string
}

func (e *EmptyDocumentError) Error() string {
	return fmt.Sprintf("no text could be extracted from %s", e.FileName)
}

// ExtractError represents a document that could not be read in its detected format
type ExtractError struct {
	FileName string
	Format   Format
	Cause    error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("failed to extract %s text from %s: %v", e.Format, e.FileName, e.Cause)
}

func (e *ExtractError) Unwrap() error {
	return e.Cause
}
