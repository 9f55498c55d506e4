// Package ignore decides which local entries are excluded from a scan.
package ignore

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher evaluates global patterns against absolute paths and source
// patterns against slash-prefixed source-relative paths.
type Matcher struct {
	global []string
	source []string
}

// New validates the patterns and returns a matcher.
func New(global, source []string) (*Matcher, error) {
	m := &Matcher{}

	for _, p := range global {
		if p = normalize(p); p != "" {
			if !doublestar.ValidatePattern(p) {
				return nil, fmt.Errorf("invalid global ignore pattern %q", p)
			}
			m.global = append(m.global, p)
		}
	}
	for _, p := range source {
		if p = normalize(p); p != "" {
			if !doublestar.ValidatePattern(p) {
				return nil, fmt.Errorf("invalid source ignore pattern %q", p)
			}
			m.source = append(m.source, p)
		}
	}

	return m, nil
}

// Ignored reports whether an entry must be skipped.
// absPath is the filesystem path, sourcePath the source-relative path.
func (m *Matcher) Ignored(absPath, sourcePath string) bool {
	abs := normalize(absPath)
	for _, p := range m.global {
		if match(p, abs) {
			return true
		}
	}

	rel := normalize(sourcePath)
	for _, p := range m.source {
		if match(p, rel) {
			return true
		}
	}

	return false
}

// Patterns returns the number of active patterns.
func (m *Matcher) Patterns() int {
	return len(m.global) + len(m.source)
}

func match(pattern, path string) bool {
	ok, err := doublestar.Match(pattern, path)
	return err == nil && ok
}

// normalize makes patterns and paths relative to the root so that
// leading "**/" also matches entries directly under it.
func normalize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\\", "/")
	return strings.TrimLeft(s, "/")
}
