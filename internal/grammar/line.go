// Package grammar parses the two line-oriented input languages: the
// pipeline configuration and the run metadata. Both parsers are
// deliberately permissive: each line is tested against a fixed
// priority list of shapes, the first match wins, and lines matching
// nothing are dropped without diagnostics.
package grammar

import "strings"

// stripComment removes everything from the first '#' onward.
func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return line[:i]
	}
	return line
}

// cleanLine strips the trailing comment and surrounding whitespace.
// An empty result means the line carries no statement.
func cleanLine(raw string) string {
	return strings.TrimSpace(stripComment(raw))
}
