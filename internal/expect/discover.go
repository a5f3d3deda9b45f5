package expect

import (
	"fmt"
	"io/fs"
	"slices"
	"strings"

	"bennypowers.dev/sitecheck/internal/collections"
	"github.com/bmatcuk/doublestar/v4"
)

// DefaultSuitePattern matches suite files under any __tests__ directory
const DefaultSuitePattern = "**/__tests__/**/*.test.{yaml,yml,json,jsonc}"

// DefaultCoverage lists the site sources expected to be inspected. Patterns
// starting with ! exclude matches of earlier patterns.
var DefaultCoverage = []string{
	"js/**/*.js",
	"css/**/*.css",
	"!js/plugins/**",
	"!css/plugins/**",
}

// Discover returns the suite files in fsys matching pattern, sorted
func Discover(fsys fs.FS, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultSuitePattern
	}
	matches, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to match suites with %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w for %q", ErrNoSuites, pattern)
	}
	slices.Sort(matches)
	return matches, nil
}

// Inventory returns the files in fsys selected by coverage patterns, sorted
func Inventory(fsys fs.FS, patterns []string) ([]string, error) {
	included := collections.NewSet[string]()
	var excludes []string

	for _, pattern := range patterns {
		if exclude, ok := strings.CutPrefix(pattern, "!"); ok {
			excludes = append(excludes, exclude)
			continue
		}
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("failed to match coverage pattern %q: %w", pattern, err)
		}
		included.Add(matches...)
	}

	var files []string
	for _, file := range collections.Sorted(included) {
		if !excluded(file, excludes) {
			files = append(files, file)
		}
	}
	return files, nil
}

func excluded(file string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, file); ok {
			return true
		}
	}
	return false
}
