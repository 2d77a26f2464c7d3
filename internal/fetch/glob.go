package fetch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Glob expands patterns such as "saved/**/*.html" relative to root into
// file paths. Matches are deduplicated, sorted and limited to regular files
// inside root.
func Glob(root string, patterns ...string) ([]string, error) {
	if root == "" {
		root = "."
	}

	seen := make(map[string]struct{})
	matched := make([]string, 0)
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		ms, err := doublestar.Glob(os.DirFS(root), filepath.ToSlash(pattern))
		if err != nil {
			return nil, fmt.Errorf("invalid glob %q: %w", pattern, err)
		}
		for _, m := range ms {
			m = filepath.ToSlash(filepath.Clean(m))
			if m == "." || strings.HasPrefix(m, "../") || strings.HasPrefix(m, "/") {
				continue
			}
			if _, ok := seen[m]; ok {
				continue
			}
			full := filepath.Join(root, filepath.FromSlash(m))
			info, err := os.Stat(full)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			seen[m] = struct{}{}
			matched = append(matched, full)
		}
	}
	sort.Strings(matched)

	return matched, nil
}

// ExpandGlobs expands patterns given on the command line. Each pattern is
// split into its literal base directory and the remaining pattern, so
// "/srv/saved/**/*.html" and "saved/*.html" both work.
func ExpandGlobs(patterns ...string) ([]string, error) {
	seen := make(map[string]struct{})
	matched := make([]string, 0)
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		base, pattern := doublestar.SplitPattern(filepath.ToSlash(p))
		ms, err := Glob(filepath.FromSlash(base), pattern)
		if err != nil {
			return nil, err
		}
		for _, m := range ms {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			matched = append(matched, m)
		}
	}
	sort.Strings(matched)

	return matched, nil
}
