package auth

import "strings"

// RequireAuth reports whether path needs authentication given the excluded
// paths. Paths are compared with a trailing slash; an excluded path ending in
// "*" matches every path it prefixes.
func RequireAuth(path string, excludedPaths []string) bool {
	if path == "" || len(excludedPaths) == 0 {
		return true
	}

	if !strings.HasSuffix(path, "/") {
		path += "/"
	}

	var prefixes, exact []string
	for _, p := range excludedPaths {
		if strings.HasSuffix(p, "*") {
			prefixes = append(prefixes, strings.TrimSuffix(p, "*"))
		} else {
			exact = append(exact, p)
		}
	}

	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return false
		}
	}
	for _, p := range exact {
		if p == path {
			return false
		}
	}
	return true
}
