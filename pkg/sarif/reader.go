package sarif

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadFile parses a SARIF file from disk.
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sarif file: %w", err)
	}
	defer f.Close()

	return Read(f)
}

// ReadBytes parses SARIF from a byte slice.
func ReadBytes(data []byte) (*Document, error) {
	return Read(bytes.NewReader(data))
}

// Read parses SARIF from an io.Reader. Trailing whitespace is accepted,
// any other trailing data is an error.
func Read(r io.Reader) (*Document, error) {
	dec := json.NewDecoder(r)
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode sarif: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode sarif: trailing data after document")
	}

	if doc.Version == "" {
		return nil, fmt.Errorf("missing sarif version")
	}

	return &doc, nil
}

// IsSARIF reports whether data decodes as a SARIF document.
func IsSARIF(data []byte) bool {
	_, err := ReadBytes(data)
	return err == nil
}

// Stats aggregates statistics from SARIF results.
type Stats struct {
	TotalIssues int
	ByLevel     map[string]int // error, warning, note, none
	ByRule      map[string]int
	ByFile      map[string]int
}

// ComputeStats calculates aggregate statistics from a SARIF document.
func ComputeStats(doc *Document) Stats {
	stats := Stats{
		ByLevel: make(map[string]int),
		ByRule:  make(map[string]int),
		ByFile:  make(map[string]int),
	}

	for _, run := range doc.Runs {
		for _, result := range run.Results {
			stats.TotalIssues++
			stats.ByLevel[result.Level]++
			stats.ByRule[result.RuleID]++
			if file := result.File(); file != "" {
				stats.ByFile[file]++
			}
		}
	}

	return stats
}

// NormalizePath strips a file:// scheme from an artifact URI.
func NormalizePath(uri string) string {
	return strings.TrimPrefix(uri, "file://")
}
