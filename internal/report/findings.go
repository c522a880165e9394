// Package report turns audit findings and fix summaries into artifacts for
// the manual review workflow: a JSON list, an XLSX workbook and a plain text
// summary.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/p-n-ai/pai-lingo/internal/completeness"
)

// WriteJSON writes findings as an indented JSON array. A nil slice is
// written as an empty array.
func WriteJSON(w io.Writer, findings []completeness.Finding) error {
	if findings == nil {
		findings = []completeness.Finding{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(findings); err != nil {
		return fmt.Errorf("encoding findings: %w", err)
	}
	return nil
}

// ReadJSON reads a findings list written by WriteJSON.
func ReadJSON(r io.Reader) ([]completeness.Finding, error) {
	var findings []completeness.Finding
	if err := json.NewDecoder(r).Decode(&findings); err != nil {
		return nil, fmt.Errorf("decoding findings: %w", err)
	}
	return findings, nil
}

// WriteJSONFile writes findings to path.
func WriteJSONFile(path string, findings []completeness.Finding) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()
	return WriteJSON(f, findings)
}

// ReadJSONFile reads a findings list from path.
func ReadJSONFile(path string) ([]completeness.Finding, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
