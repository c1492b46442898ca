// Package report renders check results for the command line.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/phobologic/pycounts/internal/check"
	"github.com/phobologic/pycounts/internal/toon"
	"github.com/phobologic/pycounts/internal/violation"
)

// Format is an output format name.
type Format string

const (
	Text Format = "text"
	JSON Format = "json"
	TOON Format = "toon"
)

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{Text, JSON, TOON}
}

// ParseFormat returns the Format named s.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats() {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q", s)
}

// Count returns the total number of violations in results.
func Count(results []check.FileResult) int {
	n := 0
	for _, r := range results {
		n += len(r.Violations)
	}
	return n
}

// Write renders results to w in format f. root names the checked tree in
// formats that carry a header.
func Write(w io.Writer, f Format, root string, results []check.FileResult) error {
	switch f {
	case Text:
		return FormatText(w, results)
	case JSON:
		return FormatJSON(w, results)
	case TOON:
		_, err := fmt.Fprintln(w, toon.Encode(root, results))
		return err
	default:
		return fmt.Errorf("unknown format %q", f)
	}
}

// FormatText writes one flake8-style line per violation:
// path:line:col: CODE message
func FormatText(w io.Writer, results []check.FileResult) error {
	for _, r := range results {
		for _, v := range r.Violations {
			if _, err := fmt.Fprintf(w, "%s:%s\n", r.Path, v); err != nil {
				return err
			}
		}
	}
	return nil
}

type jsonViolation struct {
	Path string `json:"path"`
	violation.Record
}

// FormatJSON writes every violation as an indented JSON array. Each entry is
// the violation's own JSON form plus the file path.
func FormatJSON(w io.Writer, results []check.FileResult) error {
	out := make([]jsonViolation, 0, Count(results))
	for _, r := range results {
		for _, v := range r.Violations {
			out = append(out, jsonViolation{Path: r.Path, Record: v.Record()})
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
