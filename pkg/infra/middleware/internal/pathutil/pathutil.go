// Package pathutil matches request paths against skip lists.
package pathutil

import "strings"

// NewPathMatcher returns a function reporting whether a path is listed in
// paths or starts with one of prefixes.
func NewPathMatcher(paths, prefixes []string) func(string) bool {
	exact := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		exact[p] = struct{}{}
	}
	return func(path string) bool {
		if _, ok := exact[path]; ok {
			return true
		}
		for _, p := range prefixes {
			if strings.HasPrefix(path, p) {
				return true
			}
		}
		return false
	}
}
