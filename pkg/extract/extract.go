// Package extract provides per-file text extraction for the ingestion
// pipeline. PDF text layers are read with a pure Go parser; plaintext
// formats are decoded as UTF-8. Each file fails independently: callers
// record the error and move on.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// ErrUnsupportedType indicates the file extension has no extractor.
var ErrUnsupportedType = errors.New("unsupported file type for text extraction")

// ErrNoText indicates extraction produced no text (e.g. an image-only PDF).
var ErrNoText = errors.New("no extractable text")

// plaintextExts are decoded directly as UTF-8.
var plaintextExts = map[string]bool{
	".txt":  true,
	".md":   true,
	".csv":  true,
	".json": true,
	".xml":  true,
	".html": true,
	".htm":  true,
}

// Text extracts the text content of a file from its raw bytes.
// The extension selects the extractor and must include the leading dot
// (".pdf", ".txt", ...); matching is case-insensitive.
func Text(content []byte, ext string) (string, error) {
	switch ext := strings.ToLower(ext); {
	case ext == ".pdf":
		return fromPDF(content)
	case plaintextExts[ext]:
		if !utf8.Valid(content) {
			return "", fmt.Errorf("%s: file encoding not supported", ext)
		}
		return string(content), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}
}

// fromPDF reads the PDF text layer.
func fromPDF(content []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("parse pdf: %w", err)
	}

	var buf bytes.Buffer
	b, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	if _, err := io.Copy(&buf, b); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}

	text := strings.TrimSpace(buf.String())
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}
