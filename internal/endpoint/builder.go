package endpoint

import (
	"regexp"
	"strings"

	"github.com/routelens/routelens/internal/source"
)

// maxDescriptionLength is the ceiling on sanitized description length.
const maxDescriptionLength = 1000

var reMarkupTag = regexp.MustCompile(`<[^>]*>`)

// Build assembles a validated endpoint record from a raw recognizer capture.
// Returns nil when the candidate is malformed: non-literal or non-rooted
// path, method outside the supported set, or over-long path. Rejections are
// silent; a malformed candidate is not a conflict.
func Build(method, rawPath, rawHandler string, callOffset int, originalText, sourceFile string) *Record {
	path := source.CleanLiteral(rawPath)
	handler := source.CleanLiteral(rawHandler)

	if !strings.HasPrefix(path, "/") {
		return nil
	}
	if !ValidMethod(method) {
		return nil
	}

	path, ok := NormalizePath(path)
	if !ok {
		return nil
	}

	description := SanitizeDescription(
		source.ResolveDescription(originalText, handler, callOffset),
	)

	return &Record{
		Path:        path,
		Method:      method,
		Handler:     handler,
		Description: description,
		Parameters:  ExtractParams(path),
		SourceFile:  sourceFile,
		CurlExample: curlExample(method, path),
	}
}

// SanitizeDescription strips markup-like tags and truncates to the
// description ceiling.
func SanitizeDescription(description string) string {
	description = reMarkupTag.ReplaceAllString(description, "")
	description = strings.TrimSpace(description)
	if len(description) > maxDescriptionLength {
		description = description[:maxDescriptionLength]
	}
	return description
}

func curlExample(method, path string) string {
	if method == "GET" {
		return "curl " + path
	}
	return "curl -X " + method + " " + path
}
