package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// PageText is one page (or slide) of extracted plain text.
type PageText struct {
	Page int    `json:"page"`
	Text string `json:"text"`
}

// ErrUnsupportedFormat is returned when the payload cannot be recognized
// as any extractable document type.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Extract sniffs the payload's true type from magic bytes first, then falls
// back to the declared mime type and filename extension, and returns ordered
// per-page plain text. Supported: PDF, DOCX, PPTX, plain text / markdown.
func Extract(filename, mimeType string, data []byte) ([]PageText, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty file %q", filename)
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	mt := strings.ToLower(strings.TrimSpace(mimeType))

	switch {
	case isPDF(data):
		return extractPDF(data)
	case isZip(data):
		kind := detectOpenXMLKind(data)
		switch kind {
		case "docx":
			return extractDOCX(data)
		case "pptx":
			return extractPPTX(data)
		default:
			return nil, fmt.Errorf("%w: zip container %q is not docx/pptx", ErrUnsupportedFormat, filename)
		}
	case isProbablyText(data) || strings.HasPrefix(mt, "text/") || ext == "txt" || ext == "md":
		return extractPlain(data), nil
	}

	// The payload claims a binary format it does not actually have.
	if mt == "application/pdf" || ext == "pdf" {
		return nil, fmt.Errorf("%w: %q claims pdf but lacks the %%PDF header", ErrUnsupportedFormat, filename)
	}
	return nil, fmt.Errorf("%w: %q (mime %q)", ErrUnsupportedFormat, filename, mimeType)
}

func isPDF(b []byte) bool {
	return len(b) >= 5 && string(b[:5]) == "%PDF-"
}

func isZip(b []byte) bool {
	return len(b) >= 4 && b[0] == 'P' && b[1] == 'K' && b[2] == 3 && b[3] == 4
}

// isProbablyText reports whether the payload looks like valid text:
// valid UTF-8 with no NUL bytes in the first KB.
func isProbablyText(b []byte) bool {
	probe := b
	if len(probe) > 1024 {
		probe = probe[:1024]
	}
	for _, c := range probe {
		if c == 0 {
			return false
		}
	}
	return utf8.Valid(probe)
}
