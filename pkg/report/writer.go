// Package report persists the rendered HTML report and repairs its
// encoding. Generated documents occasionally arrive as Windows-1252 or
// Latin-1 bytes; the writer normalizes whatever it finds to plain UTF-8.
package report

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Writer owns the report artifact at a fixed path. The file is overwritten
// on every run; no previous version is retained.
type Writer struct {
	path   string
	logger *log.Logger
}

// NewWriter creates a report writer for the given path.
func NewWriter(path string, logger *log.Logger) *Writer {
	if logger == nil {
		logger = log.New(log.Writer(), "[report] ", log.LstdFlags)
	}
	return &Writer{path: path, logger: logger}
}

// Path returns the artifact path.
func (w *Writer) Path() string {
	return w.path
}

// Write persists the document and runs the normalization pass. A failed
// normalization is a logged warning, not an error: the run is still
// complete, and downstream dispatch checks for the artifact itself.
func (w *Writer) Write(content string) error {
	if err := os.WriteFile(w.path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", w.path, err)
	}
	if err := w.Normalize(); err != nil {
		w.logger.Printf("warning: could not normalize report encoding: %v", err)
	}
	return nil
}

// Normalize re-reads the artifact, decodes it with the first candidate
// encoding that accepts the bytes, and rewrites it as plain UTF-8.
// Normalizing an already-canonical file is byte-identical.
func (w *Writer) Normalize() error {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return fmt.Errorf("failed to read report %s: %w", w.path, err)
	}

	content, encoding := decode(data)
	if encoding == "" {
		return fmt.Errorf("no candidate encoding decodes %s", w.path)
	}

	normalized := []byte(content)
	if bytes.Equal(data, normalized) {
		return nil
	}

	w.logger.Printf("rewrote %s from %s to utf-8", w.path, encoding)
	if err := os.WriteFile(w.path, normalized, 0644); err != nil {
		return fmt.Errorf("failed to rewrite report %s: %w", w.path, err)
	}
	return nil
}

// Read returns the artifact content, applying the same candidate-encoding
// fallback as the normalization pass.
func (w *Writer) Read() (string, error) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return "", fmt.Errorf("failed to read report %s: %w", w.path, err)
	}
	content, encoding := decode(data)
	if encoding == "" {
		return "", fmt.Errorf("could not decode report %s with any candidate encoding", w.path)
	}
	return content, nil
}

// Exists reports whether the artifact is present on disk.
func (w *Writer) Exists() bool {
	_, err := os.Stat(w.path)
	return err == nil
}

// decode tries the candidate encodings in order and returns the decoded
// content plus the name of the winning candidate ("" if none decodes).
// Latin-1 accepts any byte sequence, so in practice it is the catch-all
// that bounds how lossy recovery can get.
func decode(data []byte) (string, string) {
	if bytes.HasPrefix(data, utf8BOM) {
		rest := data[len(utf8BOM):]
		if utf8.Valid(rest) {
			return string(rest), "utf-8-sig"
		}
	}
	if utf8.Valid(data) {
		return string(data), "utf-8"
	}
	if content, ok := decodeCharmap(data, charmap.Windows1252); ok {
		return content, "windows-1252"
	}
	if content, ok := decodeCharmap(data, charmap.ISO8859_1); ok {
		return content, "latin-1"
	}
	return "", ""
}

// decodeCharmap decodes with the given character map, treating any byte the
// map leaves undefined as a decode failure for this candidate.
func decodeCharmap(data []byte, cm *charmap.Charmap) (string, bool) {
	out, err := cm.NewDecoder().Bytes(data)
	if err != nil {
		return "", false
	}
	content := string(out)
	if strings.ContainsRune(content, utf8.RuneError) {
		return "", false
	}
	return content, true
}
