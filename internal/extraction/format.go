package extraction

import (
	"bytes"
	"mime"
	"path/filepath"
	"strings"
)

// Format is a resume file format.
type Format string

// Formats recognised by DetectFormat.
const (
	FormatText    Format = "text"
	FormatPDF     Format = "pdf"
	FormatDOCX    Format = "docx"
	FormatUnknown Format = "unknown"
)

// MIME types for the formats read natively.
const (
	MIMEText = "text/plain"
	MIMEPDF  = "application/pdf"
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// DetectFormat decides the format from the declared MIME type, then the file extension, then
// the leading bytes. Generic types such as application/octet-stream are not trusted.
func DetectFormat(fileName, mimeType string, data []byte) Format {
	if mt, _, err := mime.ParseMediaType(mimeType); err == nil {
		switch {
		case mt == MIMEPDF:
			return FormatPDF
		case mt == MIMEDOCX:
			return FormatDOCX
		case mt == MIMEText || mt == "text/markdown":
			return FormatText
		}
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return FormatPDF
	case ".docx":
		return FormatDOCX
	case ".txt", ".md", ".text":
		return FormatText
	}

	switch {
	case bytes.HasPrefix(data, []byte("%PDF-")):
		return FormatPDF
	case bytes.HasPrefix(data, []byte("PK\x03\x04")) && bytes.Contains(data, []byte("word/")):
		return FormatDOCX
	}
	return FormatUnknown
}

// MIMEType returns the canonical MIME type of f, or fallback for FormatUnknown.
func (f Format) MIMEType(fallback string) string {
	switch f {
	case FormatText:
		return MIMEText
	case FormatPDF:
		return MIMEPDF
	case FormatDOCX:
		return MIMEDOCX
	}
	if fallback == "" {
		return "application/octet-stream"
	}
	return fallback
}
