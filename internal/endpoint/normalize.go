package endpoint

import "strings"

// maxPathLength is the ceiling on canonical path length.
const maxPathLength = 500

var validMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "DELETE": true,
	"PATCH": true, "OPTIONS": true, "HEAD": true,
}

// ValidMethod reports whether method is in the fixed seven-method set.
func ValidMethod(method string) bool {
	return validMethods[method]
}

// NormalizePath canonicalizes a path: forces a leading slash, collapses runs
// of slashes, and strips a trailing slash unless the path is root. Returns
// false for empty input or paths exceeding the length ceiling. Normalization
// is idempotent.
func NormalizePath(path string) (string, bool) {
	if path == "" {
		return "", false
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}

	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}

	if len(path) > maxPathLength {
		return "", false
	}

	return path, true
}
