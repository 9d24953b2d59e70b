// Package extract turns uploaded résumés and job postings into plain text.
package extract

import (
	"os"
	"path/filepath"
	"strings"
)

// Format identifies how a document's bytes are decoded.
type Format string

const (
	// FormatPDF is a binary paged document.
	FormatPDF Format = "pdf"
	// FormatText is UTF-8 text, including Markdown.
	FormatText Format = "text"
)

// DetectFormat picks the decoder from the file extension. Unknown extensions are read as text.
func DetectFormat(filename string) Format {
	if strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return FormatPDF
	}
	return FormatText
}

// FromFile reads a document from disk and returns its text.
func FromFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		msg := "failed to read file"
		if os.IsNotExist(err) {
			msg = "file not found"
		}
		return "", &ExtractionError{Source: path, Message: msg, Cause: err}
	}
	return FromBytes(filepath.Base(path), data)
}

// FromBytes decodes an in-memory document. name is used for format detection and error messages.
func FromBytes(name string, data []byte) (string, error) {
	switch DetectFormat(name) {
	case FormatPDF:
		return pdfText(name, data)
	default:
		return plainText(name, data)
	}
}

func plainText(name string, data []byte) (string, error) {
	text := CleanText(string(data))
	if text == "" {
		return "", &ExtractionError{Source: name, Message: "document is empty"}
	}
	return text, nil
}
